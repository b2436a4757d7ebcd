package index

import (
	"errors"
	"fmt"
)

// ErrMalformedInput is matched by every error caused by an input file that
// exists but cannot be parsed. Use errors.Is(err, fs.ErrNotExist) to tell a
// missing file apart.
var ErrMalformedInput = errors.New("malformed input")

var (
	// ErrMalformedFASTA is returned for FASTA files that cannot be indexed.
	ErrMalformedFASTA = fmt.Errorf("%w: FASTA", ErrMalformedInput)

	// ErrEmptyFASTA is returned when a FASTA file holds no sequences.
	ErrEmptyFASTA = fmt.Errorf("%w: no sequences", ErrMalformedFASTA)

	// ErrMalformedGFF is returned for GFF files that are empty or structurally invalid.
	ErrMalformedGFF = fmt.Errorf("%w: GFF", ErrMalformedInput)
)
