package codon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceToCodons(t *testing.T) {
	tests := []struct {
		seq  string
		want []string
	}{
		{"", nil},
		{"A", []string{"A"}},
		{"GA", []string{"GA"}},
		{"GAT", []string{"GAT"}},
		{"GATT", []string{"GAT", "T"}},
		{"ATGAAATAA", []string{"ATG", "AAA", "TAA"}},
		{"ATGGGGCCCTAG", []string{"ATG", "GGG", "CCC", "TAG"}},
	}

	for _, tt := range tests {
		t.Run(tt.seq, func(t *testing.T) {
			assert.Equal(t, tt.want, SequenceToCodons(tt.seq))
		})
	}
}

func TestSequenceToCodons_Properties(t *testing.T) {
	seqs := []string{
		"",
		"A",
		"AC",
		"ACG",
		"ACGT",
		"ACGTA",
		strings.Repeat("ACGT", 25),
		strings.Repeat("ATG", 40) + "TA",
	}

	for _, s := range seqs {
		codons := SequenceToCodons(s)

		// Concatenation reproduces the input.
		assert.Equal(t, s, strings.Join(codons, ""), "join(%q)", s)

		for i, c := range codons {
			if i < len(codons)-1 {
				assert.Len(t, c, 3, "codon %d of %q", i, s)
			} else {
				assert.GreaterOrEqual(t, len(c), 1)
				assert.LessOrEqual(t, len(c), 3)
			}
		}
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name  string
		codon string
		want  byte
	}{
		{"ATG -> Met (start)", "ATG", 'M'},
		{"GGT -> Gly", "GGT", 'G'},
		{"TAA -> Stop", "TAA", '*'},
		{"TAG -> Stop", "TAG", '*'},
		{"TGA -> Stop", "TGA", '*'},
		{"lowercase atg", "atg", 'M'},
		{"ambiguous base", "TAN", 'X'},
		{"too short", "TA", 'X'},
		{"too long", "ATGG", 'X'},
		{"empty", "", 'X'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Translate(tt.codon)
			if got != tt.want {
				t.Errorf("Translate(%q) = %c, want %c", tt.codon, got, tt.want)
			}
		})
	}
}

func TestIsStopCodon(t *testing.T) {
	for _, c := range StopCodons {
		assert.True(t, IsStopCodon(c), c)
	}
	for _, c := range []string{"ATG", "AAG", "TA", "TAN", ""} {
		assert.False(t, IsStopCodon(c), c)
	}
}

func TestReverseComplement(t *testing.T) {
	tests := []struct {
		seq  string
		want string
	}{
		{"ATGC", "GCAT"},
		{"A", "T"},
		{"ATAT", "ATAT"},
		{"atgc", "gcat"},
		{"ACN", "NGT"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ReverseComplement(tt.seq), "ReverseComplement(%q)", tt.seq)
	}
}
