// Package check cross-validates FASTA sequences against GFF CDS features
// and reports anomalies as issues.
package check

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/riboqc/internal/codon"
	"github.com/inodb/riboqc/internal/index"
	"github.com/inodb/riboqc/internal/issues"
)

// GFF attribute tags used to name CDS features.
const (
	IDAttribute   = "ID"
	NameAttribute = "Name"
)

// minCDSLength is the shortest complete CDS: a start and a stop codon.
const minCDSLength = 6

// Options configures a Checker.
type Options struct {
	// UseFeatureName prefers the Name attribute over ID when naming features.
	UseFeatureName bool
	// FeatureFormat names features with neither ID nor Name; see Template.
	FeatureFormat string
	// StartCodons lists accepted start codons.
	StartCodons []string
}

// DefaultOptions returns options matching the standard workflow configuration.
func DefaultOptions() Options {
	return Options{
		FeatureFormat: DefaultFeatureFormat,
		StartCodons:   []string{codon.StartCodon},
	}
}

// Checker applies CDS checks to a sequence index and a feature index.
type Checker struct {
	useFeatureName bool
	format         Template
	startCodons    map[string]bool
	logger         *zap.Logger
}

// NewChecker validates opts and creates a checker. An empty FeatureFormat
// or StartCodons falls back to the defaults.
func NewChecker(opts Options) (*Checker, error) {
	tmpl := defaultTemplate
	if opts.FeatureFormat != "" {
		var err error
		if tmpl, err = ParseTemplate(opts.FeatureFormat); err != nil {
			return nil, err
		}
	}

	starts := opts.StartCodons
	if len(starts) == 0 {
		starts = []string{codon.StartCodon}
	}
	startCodons := make(map[string]bool, len(starts))
	for _, s := range starts {
		s = strings.ToUpper(strings.TrimSpace(s))
		if len(s) != 3 {
			return nil, fmt.Errorf("invalid start codon %q: must be 3 bases", s)
		}
		startCodons[s] = true
	}

	return &Checker{
		useFeatureName: opts.UseFeatureName,
		format:         tmpl,
		startCodons:    startCodons,
		logger:         zap.NewNop(),
	}, nil
}

// SetLogger sets the logger for debug messages.
func (c *Checker) SetLogger(l *zap.Logger) {
	c.logger = l
}

// FeatureName returns the name used to report a CDS feature. noIDName is
// true when the feature has neither an ID nor a Name attribute, in which
// case the name is synthesized from the transcript ID.
func (c *Checker) FeatureName(f *index.Feature) (name string, noIDName bool) {
	if c.useFeatureName {
		if name, ok := f.Attributes.Get(NameAttribute); ok {
			return name, false
		}
	}
	if id, ok := f.Attributes.Get(IDAttribute); ok {
		return id, false
	}
	noIDName = !f.Attributes.Has(NameAttribute)
	return c.format.Apply(f.SeqID), noIDName
}

// CheckFiles loads both files and checks them. Load errors are returned
// before any check runs.
func (c *Checker) CheckFiles(fastaPath, gffPath string) ([]issues.Issue, error) {
	seqs, err := index.LoadFASTA(fastaPath)
	if err != nil {
		return nil, fmt.Errorf("load FASTA: %w", err)
	}
	feats, err := index.LoadGFF(gffPath)
	if err != nil {
		return nil, fmt.Errorf("load GFF: %w", err)
	}
	c.logger.Debug("loaded input",
		zap.Int("sequences", seqs.Len()),
		zap.Int("features", feats.Len()))

	return c.Check(seqs, feats), nil
}

// Check cross-references the indexes and returns every issue found.
//
// Transcripts are visited in GFF order. For each one the output holds
// SEQUENCE_NOT_IN_FASTA, then the per-CDS issues, then MULTIPLE_CDS.
// Duplicate feature name groups follow, then sequences missing from the GFF.
func (c *Checker) Check(seqs *index.Sequences, feats *index.Features) []issues.Issue {
	var result []issues.Issue

	owners := make(map[string][]string) // feature name -> owning transcripts
	var names []string                  // feature names in first-seen order

	for _, transcript := range feats.SeqIDs() {
		sequence, inFASTA := seqs.Get(transcript)
		if !inFASTA {
			result = append(result, issues.New(
				issues.ID(transcript), issues.NotApplicable, issues.SequenceNotInFASTA, issues.NoData))
		}

		cds := feats.CDS(transcript)
		for _, f := range cds {
			name, noIDName := c.FeatureName(f)
			if noIDName {
				result = append(result, issues.New(
					issues.ID(transcript), issues.ID(name), issues.NoIDName, issues.NoData))
			}

			if _, seen := owners[name]; !seen {
				names = append(names, name)
			}
			owners[name] = append(owners[name], transcript)

			if inFASTA {
				result = append(result, c.checkCDS(transcript, name, codon.FeatureSequence(sequence, f))...)
			}
		}

		if len(cds) != 1 {
			result = append(result, issues.New(
				issues.ID(transcript), issues.Wildcard, issues.MultipleCDS, issues.Count(len(cds))))
		}
	}

	for _, name := range names {
		transcripts := owners[name]
		if len(transcripts) < 2 {
			continue
		}
		for _, transcript := range transcripts {
			result = append(result, issues.New(
				issues.ID(transcript), issues.ID(name), issues.DuplicateFeatureID, issues.NoData))
		}
		result = append(result, issues.New(
			issues.Wildcard, issues.ID(name), issues.DuplicateFeatureIDs, issues.Count(len(transcripts))))
	}

	for _, id := range seqs.IDs() {
		if !feats.Has(id) {
			result = append(result, issues.New(
				issues.ID(id), issues.NotApplicable, issues.SequenceNotInGFF, issues.NoData))
		}
	}

	c.logger.Debug("checked FASTA and GFF",
		zap.Int("transcripts", len(feats.SeqIDs())),
		zap.Int("issues", len(result)))

	return result
}

// checkCDS checks the length, start, stop and internal codons of one CDS.
func (c *Checker) checkCDS(transcript, feature, sequence string) []issues.Issue {
	seqRef, featRef := issues.ID(transcript), issues.ID(feature)
	sequence = strings.ToUpper(sequence)

	var found []issues.Issue
	if len(sequence)%3 != 0 || len(sequence) < minCDSLength {
		found = append(found, issues.New(seqRef, featRef, issues.IncompleteFeature, issues.NoData))
	}

	codons := codon.SequenceToCodons(sequence)
	if len(codons) == 0 {
		return found
	}

	first, last := codons[0], codons[len(codons)-1]
	if !c.startCodons[first] {
		found = append(found, issues.New(seqRef, featRef, issues.NoStartCodon, issues.Codon(first)))
	}
	if !codon.IsStopCodon(last) {
		found = append(found, issues.New(seqRef, featRef, issues.NoStopCodon, issues.Codon(last)))
	}

	if len(codons) > 2 {
		for _, cd := range codons[1 : len(codons)-1] {
			if codon.IsStopCodon(cd) {
				found = append(found, issues.New(seqRef, featRef, issues.InternalStopCodon, issues.NoData))
				break
			}
		}
	}

	return found
}
