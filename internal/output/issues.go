// Package output writes and reads the TSV reports produced by riboqc.
package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/inodb/riboqc/internal/issues"
)

// ErrMalformedReport is returned when an issue or codon report cannot be parsed.
var ErrMalformedReport = errors.New("malformed report")

// IssueColumns is the header of an issue report.
var IssueColumns = []string{"Sequence", "Feature", "IssueType", "IssueData"}

// Metadata describes the run that produced a report.
type Metadata struct {
	Version string
	Created time.Time
	FASTA   string
	GFF     string
}

// Comment returns the metadata comment text, without the leading "# ".
func (m *Metadata) Comment() string {
	return fmt.Sprintf("Created by: riboqc %s (%s) fasta=%s gff=%s",
		m.Version, m.Created.UTC().Format(time.RFC3339), m.FASTA, m.GFF)
}

// IssueWriter writes issues as tab-delimited rows.
type IssueWriter struct {
	w     *bufio.Writer
	count int
}

// NewIssueWriter creates a new issue report writer.
func NewIssueWriter(w io.Writer) *IssueWriter {
	return &IssueWriter{w: bufio.NewWriter(w)}
}

// WriteComment writes a "# " prefixed comment line.
func (iw *IssueWriter) WriteComment(text string) error {
	_, err := iw.w.WriteString("# " + text + "\n")
	return err
}

// WriteHeader writes the column header line.
func (iw *IssueWriter) WriteHeader() error {
	_, err := iw.w.WriteString(strings.Join(IssueColumns, "\t") + "\n")
	return err
}

// Write writes a single issue.
func (iw *IssueWriter) Write(i issues.Issue) error {
	values := []string{
		i.Sequence.String(),
		i.Feature.String(),
		string(i.Kind),
		i.Data.String(),
	}
	iw.count++
	_, err := iw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Count returns the number of issues written.
func (iw *IssueWriter) Count() int {
	return iw.count
}

// Flush flushes any buffered data to the underlying writer.
func (iw *IssueWriter) Flush() error {
	return iw.w.Flush()
}

// WriteIssues writes a complete report: the metadata comment if meta is
// non-nil, the header, and one row per issue.
func WriteIssues(w io.Writer, list []issues.Issue, meta *Metadata) error {
	iw := NewIssueWriter(w)
	if meta != nil {
		if err := iw.WriteComment(meta.Comment()); err != nil {
			return fmt.Errorf("write metadata: %w", err)
		}
	}
	if err := iw.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, i := range list {
		if err := iw.Write(i); err != nil {
			return fmt.Errorf("write issue: %w", err)
		}
	}
	return iw.Flush()
}

// WriteIssuesFile writes a report to path, replacing any existing file only
// once the whole report has been written.
func WriteIssuesFile(path string, list []issues.Issue, meta *Metadata) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return WriteIssues(w, list, meta)
	})
}

// ReadIssues parses a report written by WriteIssues. Comment and blank
// lines are skipped; the first other line must be the header.
func ReadIssues(r io.Reader) ([]issues.Issue, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var result []issues.Issue
	headerSeen := false
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if !headerSeen {
			if strings.Join(fields, "\t") != strings.Join(IssueColumns, "\t") {
				return nil, fmt.Errorf("%w: line %d: unexpected header %q", ErrMalformedReport, lineNum, line)
			}
			headerSeen = true
			continue
		}

		if len(fields) != len(IssueColumns) {
			return nil, fmt.Errorf("%w: line %d: expected %d columns, got %d",
				ErrMalformedReport, lineNum, len(IssueColumns), len(fields))
		}
		kind, err := issues.ParseKind(fields[2])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedReport, lineNum, err)
		}
		data, err := issues.ParseData(kind, fields[3])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedReport, lineNum, err)
		}
		result = append(result, issues.New(issues.ParseRef(fields[0]), issues.ParseRef(fields[1]), kind, data))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	if !headerSeen {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedReport)
	}
	return result, nil
}
