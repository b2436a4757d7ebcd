// Package pipeline ties loading, checking or extraction, and report writing
// together into the file-to-file operations exposed by the CLI.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/inodb/riboqc/internal/check"
	"github.com/inodb/riboqc/internal/codon"
	"github.com/inodb/riboqc/internal/duckdb"
	"github.com/inodb/riboqc/internal/index"
	"github.com/inodb/riboqc/internal/issues"
	"github.com/inodb/riboqc/internal/output"
)

// Command names recorded in the results store.
const (
	CommandCheck  = "check"
	CommandCodons = "codons"
)

// Pipeline runs riboqc operations from input files to reports.
type Pipeline struct {
	version string
	logger  *zap.Logger
	store   *duckdb.Store
	now     func() time.Time
}

// New creates a pipeline that stamps reports with version.
func New(version string) *Pipeline {
	return &Pipeline{
		version: version,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
}

// SetLogger sets the logger for progress and issue counts.
func (p *Pipeline) SetLogger(l *zap.Logger) {
	p.logger = l
}

// SetStore enables recording of runs in a results store. A nil store
// disables recording.
func (p *Pipeline) SetStore(s *duckdb.Store) {
	p.store = s
}

// CheckFASTAGFF checks the CDS features in gffPath against the sequences in
// fastaPath and writes the issue report to outPath. It returns the number of
// issues of each kind. Nothing is written if either input fails to load or,
// with a store set, if the run cannot be recorded.
func (p *Pipeline) CheckFASTAGFF(fastaPath, gffPath, outPath string, opts check.Options) (map[issues.Kind]int, error) {
	checker, err := check.NewChecker(opts)
	if err != nil {
		return nil, fmt.Errorf("check options: %w", err)
	}
	checker.SetLogger(p.logger)

	p.logger.Info("checking CDS features",
		zap.String("fasta", fastaPath),
		zap.String("gff", gffPath))

	list, err := checker.CheckFiles(fastaPath, gffPath)
	if err != nil {
		return nil, err
	}

	if p.store != nil {
		runID, err := p.beginRun(CommandCheck, fastaPath, gffPath)
		if err != nil {
			return nil, err
		}
		if err := p.store.WriteIssues(runID, list); err != nil {
			return nil, fmt.Errorf("record issues: %w", err)
		}
		p.logger.Debug("recorded run", zap.Int64("run_id", runID))
	}

	meta := &output.Metadata{
		Version: p.version,
		Created: p.now(),
		FASTA:   fastaPath,
		GFF:     gffPath,
	}
	if err := output.WriteIssuesFile(outPath, list, meta); err != nil {
		return nil, fmt.Errorf("write issues: %w", err)
	}

	counts := issues.CountByKind(list)
	for _, k := range issues.Kinds {
		if n := counts[k]; n > 0 {
			p.logger.Info("issues found", zap.String("type", string(k)), zap.Int("count", n))
		}
	}
	p.logger.Info("wrote issue report", zap.String("path", outPath), zap.Int("issues", len(list)))

	return counts, nil
}

// ExtractCDSCodons writes the codon table of every transcript with CDS
// features and a sequence to outPath, returning the number of rows. An
// empty FASTA file yields a header-only table.
func (p *Pipeline) ExtractCDSCodons(fastaPath, gffPath, outPath string) (int, error) {
	seqs, err := index.LoadFASTA(fastaPath)
	if errors.Is(err, index.ErrEmptyFASTA) {
		p.logger.Warn("FASTA file has no sequences", zap.String("fasta", fastaPath))
		seqs, err = index.NewSequences(), nil
	}
	if err != nil {
		return 0, fmt.Errorf("load FASTA: %w", err)
	}

	feats, err := index.LoadGFF(gffPath)
	if err != nil {
		return 0, fmt.Errorf("load GFF: %w", err)
	}

	extractor := codon.NewExtractor()
	extractor.SetLogger(p.logger)
	genes := extractor.Extract(seqs, feats)
	rows := codon.Rows(genes)

	if p.store != nil {
		runID, err := p.beginRun(CommandCodons, fastaPath, gffPath)
		if err != nil {
			return 0, err
		}
		if err := p.store.WriteCodons(runID, rows); err != nil {
			return 0, fmt.Errorf("record codons: %w", err)
		}
		p.logger.Debug("recorded run", zap.Int64("run_id", runID))
	}

	if err := output.WriteCodonsFile(outPath, rows); err != nil {
		return 0, fmt.Errorf("write codons: %w", err)
	}
	p.logger.Info("wrote codon table",
		zap.String("path", outPath),
		zap.Int("genes", len(genes)),
		zap.Int("codons", len(rows)))

	return len(rows), nil
}

func (p *Pipeline) beginRun(command, fastaPath, gffPath string) (int64, error) {
	fastaFP, err := duckdb.StatFile(fastaPath)
	if err != nil {
		return 0, fmt.Errorf("stat FASTA: %w", err)
	}
	gffFP, err := duckdb.StatFile(gffPath)
	if err != nil {
		return 0, fmt.Errorf("stat GFF: %w", err)
	}
	runID, err := p.store.BeginRun(command, fastaFP, gffFP)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return runID, nil
}
