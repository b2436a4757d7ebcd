package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/riboqc/internal/issues"
)

func sampleIssues() []issues.Issue {
	return []issues.Issue{
		issues.New(issues.ID("YAL004CNoIDNameAttr_mRNA"), issues.ID("YAL004CNoIDNameAttr_mRNA_CDS"), issues.NoIDName, issues.NoData),
		issues.New(issues.ID("YAL008CBadLengthNoStop_mRNA"), issues.ID("YAL008C_CDS"), issues.IncompleteFeature, issues.NoData),
		issues.New(issues.ID("YAL008CBadLengthNoStop_mRNA"), issues.ID("YAL008C_CDS"), issues.NoStopCodon, issues.Codon("TA")),
		issues.New(issues.ID("YAL011CNoStart_mRNA"), issues.ID("YAL011C_CDS"), issues.NoStartCodon, issues.Codon("AAG")),
		issues.New(issues.ID("YAL016CMultiCDS_mRNA"), issues.Wildcard, issues.MultipleCDS, issues.Count(3)),
		issues.New(issues.ID("YAL017CNoCDS_mRNA"), issues.Wildcard, issues.MultipleCDS, issues.Count(0)),
		issues.New(issues.ID("YAL018CGffOnly_mRNA"), issues.NotApplicable, issues.SequenceNotInFASTA, issues.NoData),
		issues.New(issues.Wildcard, issues.ID("YAL005_7CNonUniqueID_CDS"), issues.DuplicateFeatureIDs, issues.Count(3)),
		issues.New(issues.ID("YAL019CFastaOnly_mRNA"), issues.NotApplicable, issues.SequenceNotInGFF, issues.NoData),
	}
}

func TestIssueWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewIssueWriter(&buf)

	require.NoError(t, w.WriteHeader())
	for _, i := range sampleIssues()[3:5] {
		require.NoError(t, w.Write(i))
	}
	require.NoError(t, w.Flush())
	assert.Equal(t, 2, w.Count())

	want := "Sequence\tFeature\tIssueType\tIssueData\n" +
		"YAL011CNoStart_mRNA\tYAL011C_CDS\tNO_START_CODON\tAAG\n" +
		"YAL016CMultiCDS_mRNA\t*\tMULTIPLE_CDS\t3\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteIssues_EmptyDataColumn(t *testing.T) {
	var buf bytes.Buffer
	list := []issues.Issue{
		issues.New(issues.ID("S1"), issues.NotApplicable, issues.SequenceNotInGFF, issues.NoData),
	}
	require.NoError(t, WriteIssues(&buf, list, nil))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "S1\tNotApplicable\tSEQUENCE_NOT_IN_GFF\t", lines[1])
	assert.Len(t, strings.Split(lines[1], "\t"), 4)
}

func TestWriteIssues_Metadata(t *testing.T) {
	var buf bytes.Buffer
	meta := &Metadata{
		Version: "v1.2.3",
		Created: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		FASTA:   "in.fa",
		GFF:     "in.gff",
	}
	require.NoError(t, WriteIssues(&buf, nil, meta))

	want := "# Created by: riboqc v1.2.3 (2024-03-01T12:00:00Z) fasta=in.fa gff=in.gff\n" +
		"Sequence\tFeature\tIssueType\tIssueData\n"
	assert.Equal(t, want, buf.String())
}

func TestReadIssues_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	meta := &Metadata{Version: "dev", Created: time.Now(), FASTA: "a.fa", GFF: "a.gff"}
	require.NoError(t, WriteIssues(&buf, sampleIssues(), meta))

	got, err := ReadIssues(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleIssues(), got)
}

func TestReadIssues_RoundTripUnusualIDs(t *testing.T) {
	list := []issues.Issue{
		issues.New(issues.ID("T1"), issues.ID("a\tb"), issues.DuplicateFeatureID, issues.NoData),
		issues.New(issues.ID("T1"), issues.ID("a\tb"), issues.DuplicateFeatureID, issues.NoData),
		issues.New(issues.Wildcard, issues.ID("a\tb"), issues.DuplicateFeatureIDs, issues.Count(2)),
		issues.New(issues.ID("NotApplicable"), issues.NotApplicable, issues.SequenceNotInGFF, issues.NoData),
		issues.New(issues.ID("*"), issues.NotApplicable, issues.SequenceNotInGFF, issues.NoData),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteIssues(&buf, list, nil))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, len(list)+1)
	for _, line := range lines {
		assert.Len(t, strings.Split(line, "\t"), len(IssueColumns), line)
	}
	assert.Equal(t, "T1\ta%09b\tDUPLICATE_FEATURE_ID\t", lines[1])
	assert.Equal(t, "%4EotApplicable\tNotApplicable\tSEQUENCE_NOT_IN_GFF\t", lines[4])

	got, err := ReadIssues(&buf)
	require.NoError(t, err)
	assert.Equal(t, list, got)
}

func TestReadIssues_HeaderOnly(t *testing.T) {
	got, err := ReadIssues(strings.NewReader("Sequence\tFeature\tIssueType\tIssueData\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadIssues_Malformed(t *testing.T) {
	header := "Sequence\tFeature\tIssueType\tIssueData\n"
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"comment only", "# Created by: riboqc\n"},
		{"wrong header", "Gene\tPos\tCodon\n"},
		{"too few columns", header + "S1\tF1\tNO_ID_NAME\n"},
		{"unknown kind", header + "S1\tF1\tBOGUS\t\n"},
		{"bad count", header + "S1\t*\tMULTIPLE_CDS\tthree\n"},
		{"unexpected data", header + "S1\tF1\tNO_ID_NAME\tx\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadIssues(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrMalformedReport)
		})
	}
}

func TestWriteIssuesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "issues.tsv")

	require.NoError(t, WriteIssuesFile(path, sampleIssues(), nil))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := ReadIssues(f)
	require.NoError(t, err)
	assert.Equal(t, sampleIssues(), got)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file should be renamed away")
}

func TestWriteIssuesFile_BadDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "issues.tsv")
	err := WriteIssuesFile(path, sampleIssues(), nil)
	assert.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	counts := issues.CountByKind(sampleIssues())
	WriteSummary(&buf, counts, false)

	out := buf.String()
	assert.Contains(t, out, "Issue Summary:")
	assert.Regexp(t, `MULTIPLE_CDS:\s+2\n`, out)
	assert.Regexp(t, `INTERNAL_STOP_CODON:\s+0\n`, out)
	assert.Regexp(t, `Total:\s+9\n`, out)
	assert.NotContains(t, out, "\x1b[")
}

func TestWriteSummary_Color(t *testing.T) {
	var buf bytes.Buffer
	WriteSummary(&buf, map[issues.Kind]int{issues.NoStopCodon: 1}, true)
	assert.Contains(t, buf.String(), "\x1b[")
}
