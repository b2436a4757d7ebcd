package codon

import (
	"sort"
	"strings"

	"github.com/biogo/biogo/seq"
	"go.uber.org/zap"

	"github.com/inodb/riboqc/internal/index"
)

// GeneCodons holds the codons of one spliced coding sequence.
type GeneCodons struct {
	Gene   string
	Codons []string
}

// Record is one row of a codon table. Pos is 1-based.
type Record struct {
	Gene  string
	Pos   int
	Codon string
}

// FeatureSequence returns the bases covered by f on the sequence, reverse
// complemented for minus-strand features. Coordinates past the end of the
// sequence are clipped.
func FeatureSequence(sequence string, f *index.Feature) string {
	start := f.Start - 1
	if start >= len(sequence) {
		return ""
	}
	end := min(f.End, len(sequence))

	s := sequence[start:end]
	if f.Strand == seq.Minus {
		s = ReverseComplement(s)
	}
	return s
}

// Splice concatenates CDS segments in transcript order: ascending start on
// the plus strand, descending start when the first segment is on the minus
// strand.
func Splice(sequence string, segments []*index.Feature) string {
	ordered := make([]*index.Feature, len(segments))
	copy(ordered, segments)

	minus := len(ordered) > 0 && ordered[0].Strand == seq.Minus
	sort.SliceStable(ordered, func(i, j int) bool {
		if minus {
			return ordered[i].Start > ordered[j].Start
		}
		return ordered[i].Start < ordered[j].Start
	})

	var b strings.Builder
	for _, f := range ordered {
		b.WriteString(FeatureSequence(sequence, f))
	}
	return b.String()
}

// Extractor builds codon lists for every transcript with CDS features.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates an extractor that logs nothing.
func NewExtractor() *Extractor {
	return &Extractor{logger: zap.NewNop()}
}

// SetLogger sets the logger for debug messages.
func (e *Extractor) SetLogger(l *zap.Logger) {
	e.logger = l
}

// Extract splices the CDS features of each transcript present in both
// indexes and splits the result into codons. Transcripts missing from
// either index are skipped. Results follow GFF transcript order.
func (e *Extractor) Extract(seqs *index.Sequences, feats *index.Features) []GeneCodons {
	var result []GeneCodons
	for _, id := range feats.SeqIDs() {
		cds := feats.CDS(id)
		if len(cds) == 0 {
			continue
		}
		sequence, ok := seqs.Get(id)
		if !ok {
			e.logger.Debug("skipping transcript without sequence", zap.String("transcript", id))
			continue
		}

		codons := SequenceToCodons(Splice(sequence, cds))
		if len(codons) == 0 {
			continue
		}
		result = append(result, GeneCodons{Gene: id, Codons: codons})
	}
	return result
}

// Rows flattens per-gene codons into table rows, numbering positions from 1
// within each gene.
func Rows(genes []GeneCodons) []Record {
	var n int
	for _, g := range genes {
		n += len(g.Codons)
	}

	rows := make([]Record, 0, n)
	for _, g := range genes {
		for i, c := range g.Codons {
			rows = append(rows, Record{Gene: g.Gene, Pos: i + 1, Codon: c})
		}
	}
	return rows
}
