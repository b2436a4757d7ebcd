package duckdb

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/riboqc/internal/codon"
	"github.com/inodb/riboqc/internal/issues"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testFingerprints() (FileFingerprint, FileFingerprint) {
	mod := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	return FileFingerprint{Path: "/data/yeast.fa", Size: 1234, ModTime: mod},
		FileFingerprint{Path: "/data/yeast.gff3", Size: 567, ModTime: mod}
}

func testIssues() []issues.Issue {
	return []issues.Issue{
		issues.New(issues.ID("YAL001C_mRNA"), issues.ID("YAL001C_CDS"), issues.NoStopCodon, issues.Codon("TAN")),
		issues.New(issues.ID("YAL001C_mRNA"), issues.ID("YAL001C_CDS"), issues.IncompleteFeature, issues.NoData),
		issues.New(issues.ID("YAL016CMultiCDS_mRNA"), issues.Wildcard, issues.MultipleCDS, issues.Count(3)),
		issues.New(issues.ID("YAL017CNoCDS_mRNA"), issues.Wildcard, issues.MultipleCDS, issues.Count(0)),
		issues.New(issues.Wildcard, issues.ID("DUP_CDS"), issues.DuplicateFeatureIDs, issues.Count(2)),
		issues.New(issues.ID("YAL019CFastaOnly_mRNA"), issues.NotApplicable, issues.SequenceNotInGFF, issues.NoData),
	}
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.Empty(t, s.Path())

	runs, err := s.Runs()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "riboqc.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}

func TestBeginRun(t *testing.T) {
	s := openInMemory(t)
	fasta, gff := testFingerprints()

	id1, err := s.BeginRun("check", fasta, gff)
	require.NoError(t, err)
	id2, err := s.BeginRun("codons", fasta, gff)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	run, err := s.LookupRun(id1)
	require.NoError(t, err)
	assert.Equal(t, "check", run.Command)
	assert.Equal(t, fasta.Path, run.FASTA.Path)
	assert.Equal(t, fasta.Size, run.FASTA.Size)
	assert.True(t, fasta.ModTime.Equal(run.FASTA.ModTime), "fasta modtime %v", run.FASTA.ModTime)
	assert.Equal(t, gff.Path, run.GFF.Path)
	assert.False(t, run.CreatedAt.IsZero())

	runs, err := s.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, id1, runs[0].ID)
	assert.Equal(t, "codons", runs[1].Command)
}

func TestLookupRun_NotFound(t *testing.T) {
	s := openInMemory(t)
	_, err := s.LookupRun(42)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestWriteAndLookupIssues(t *testing.T) {
	s := openInMemory(t)
	fasta, gff := testFingerprints()

	runID, err := s.BeginRun("check", fasta, gff)
	require.NoError(t, err)
	require.NoError(t, s.WriteIssues(runID, testIssues()))

	got, err := s.LookupIssues(runID)
	require.NoError(t, err)
	assert.Equal(t, testIssues(), got)

	counts, err := s.IssueCounts(runID)
	require.NoError(t, err)
	assert.Equal(t, issues.CountByKind(testIssues()), counts)
}

func TestIssuesAreScopedByRun(t *testing.T) {
	s := openInMemory(t)
	fasta, gff := testFingerprints()

	run1, err := s.BeginRun("check", fasta, gff)
	require.NoError(t, err)
	run2, err := s.BeginRun("check", fasta, gff)
	require.NoError(t, err)

	require.NoError(t, s.WriteIssues(run1, testIssues()))
	require.NoError(t, s.WriteIssues(run2, testIssues()[:1]))

	got, err := s.LookupIssues(run2)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	counts, err := s.IssueCounts(run2)
	require.NoError(t, err)
	assert.Equal(t, map[issues.Kind]int{issues.NoStopCodon: 1}, counts)
}

func TestWriteIssues_Empty(t *testing.T) {
	s := openInMemory(t)
	fasta, gff := testFingerprints()

	runID, err := s.BeginRun("check", fasta, gff)
	require.NoError(t, err)
	require.NoError(t, s.WriteIssues(runID, nil))

	got, err := s.LookupIssues(runID)
	require.NoError(t, err)
	assert.Empty(t, got)

	counts, err := s.IssueCounts(runID)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestWriteAndLookupCodons(t *testing.T) {
	s := openInMemory(t)
	fasta, gff := testFingerprints()

	runID, err := s.BeginRun("codons", fasta, gff)
	require.NoError(t, err)

	records := codon.Rows([]codon.GeneCodons{
		{Gene: "YAL001C_mRNA", Codons: []string{"ATG", "GCC", "CAC", "TGT", "TAA"}},
		{Gene: "YAL002C_mRNA", Codons: []string{"ATG", "TA"}},
	})
	require.NoError(t, s.WriteCodons(runID, records))

	got, err := s.LookupCodons(runID, "")
	require.NoError(t, err)
	assert.Equal(t, records, got)

	got, err = s.LookupCodons(runID, "YAL002C_mRNA")
	require.NoError(t, err)
	assert.Equal(t, []codon.Record{
		{Gene: "YAL002C_mRNA", Pos: 1, Codon: "ATG"},
		{Gene: "YAL002C_mRNA", Pos: 2, Codon: "TA"},
	}, got)

	got, err = s.LookupCodons(runID, "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.fa")
	require.NoError(t, os.WriteFile(path, []byte(">x\nACGT\n"), 0o644))

	fp, err := StatFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, fp.Path)
	assert.Equal(t, int64(9), fp.Size)
	assert.False(t, fp.ModTime.IsZero())

	_, err = StatFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
