package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/riboqc/internal/codon"
)

// CodonColumns is the header of a codon table.
var CodonColumns = []string{"Gene", "Pos", "Codon"}

// CodonWriter writes codon records as tab-delimited rows.
type CodonWriter struct {
	w *bufio.Writer
}

// NewCodonWriter creates a new codon table writer.
func NewCodonWriter(w io.Writer) *CodonWriter {
	return &CodonWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the column header line.
func (cw *CodonWriter) WriteHeader() error {
	_, err := cw.w.WriteString(strings.Join(CodonColumns, "\t") + "\n")
	return err
}

// Write writes a single codon record.
func (cw *CodonWriter) Write(r codon.Record) error {
	_, err := cw.w.WriteString(r.Gene + "\t" + strconv.Itoa(r.Pos) + "\t" + r.Codon + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (cw *CodonWriter) Flush() error {
	return cw.w.Flush()
}

// WriteCodons writes a header followed by every record. An empty record
// list still produces the header.
func WriteCodons(w io.Writer, records []codon.Record) error {
	cw := NewCodonWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("write codon: %w", err)
		}
	}
	return cw.Flush()
}

// WriteCodonsFile writes a codon table to path through a temporary file.
func WriteCodonsFile(path string, records []codon.Record) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return WriteCodons(w, records)
	})
}

// ReadCodons parses a codon table written by WriteCodons.
func ReadCodons(r io.Reader) ([]codon.Record, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var records []codon.Record
	headerSeen := false
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !headerSeen {
			if line != strings.Join(CodonColumns, "\t") {
				return nil, fmt.Errorf("%w: line %d: unexpected header %q", ErrMalformedReport, lineNum, line)
			}
			headerSeen = true
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != len(CodonColumns) {
			return nil, fmt.Errorf("%w: line %d: expected %d columns, got %d",
				ErrMalformedReport, lineNum, len(CodonColumns), len(fields))
		}
		pos, err := strconv.Atoi(fields[1])
		if err != nil || pos < 1 {
			return nil, fmt.Errorf("%w: line %d: invalid position %q", ErrMalformedReport, lineNum, fields[1])
		}
		records = append(records, codon.Record{Gene: fields[0], Pos: pos, Codon: fields[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read codon table: %w", err)
	}
	if !headerSeen {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedReport)
	}
	return records, nil
}
