// Package index loads FASTA sequences and GFF features for CDS checks.
package index

import (
	"fmt"
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// Sequences is an in-memory FASTA index with random access by sequence ID.
type Sequences struct {
	ids       []string          // file order
	sequences map[string]string // sequence ID -> raw sequence
}

// NewSequences creates an empty sequence index.
func NewSequences() *Sequences {
	return &Sequences{sequences: make(map[string]string)}
}

// LoadFASTA reads the FASTA file at path. Gzipped files are detected by a
// ".gz" suffix. A file with no sequences yields ErrEmptyFASTA.
func LoadFASTA(path string) (*Sequences, error) {
	f, err := openInput(path, ErrMalformedFASTA)
	if err != nil {
		return nil, fmt.Errorf("open FASTA file: %w", err)
	}
	defer f.Close()

	s, err := ReadFASTA(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ReadFASTA parses FASTA content. The sequence ID is the first word of each
// header line.
func ReadFASTA(r io.Reader) (*Sequences, error) {
	s := NewSequences()

	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNA)))
	for sc.Next() {
		seq, ok := sc.Seq().(*linear.Seq)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected sequence type %T", ErrMalformedFASTA, sc.Seq())
		}
		id := seq.Name()
		if id == "" {
			return nil, fmt.Errorf("%w: sequence without identifier", ErrMalformedFASTA)
		}
		if s.Has(id) {
			return nil, fmt.Errorf("%w: duplicate sequence ID %q", ErrMalformedFASTA, id)
		}
		s.Add(id, string(seq.Seq))
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFASTA, err)
	}

	if s.Len() == 0 {
		return nil, ErrEmptyFASTA
	}
	return s, nil
}

// Add stores a sequence. Adding an existing ID replaces its sequence but
// keeps its original position.
func (s *Sequences) Add(id, sequence string) {
	if _, ok := s.sequences[id]; !ok {
		s.ids = append(s.ids, id)
	}
	s.sequences[id] = sequence
}

// IDs returns sequence IDs in file order.
func (s *Sequences) IDs() []string {
	ids := make([]string, len(s.ids))
	copy(ids, s.ids)
	return ids
}

// Has reports whether a sequence with the given ID was loaded.
func (s *Sequences) Has(id string) bool {
	_, ok := s.sequences[id]
	return ok
}

// Get returns the raw sequence for an ID.
func (s *Sequences) Get(id string) (string, bool) {
	seq, ok := s.sequences[id]
	return seq, ok
}

// Len returns the number of loaded sequences.
func (s *Sequences) Len() int {
	return len(s.ids)
}
