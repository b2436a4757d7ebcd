package index

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/biogo/biogo/seq"
)

// Feature types of interest.
const (
	TypeCDS = "CDS"
)

// Attributes holds the ninth GFF column. GFF3 allows several
// comma-separated values per tag, so each tag maps to a list.
type Attributes map[string][]string

// Get returns the first value of a tag.
func (a Attributes) Get(tag string) (string, bool) {
	values, ok := a[tag]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Has reports whether the tag is present.
func (a Attributes) Has(tag string) bool {
	_, ok := a.Get(tag)
	return ok
}

// Feature is a single GFF record.
type Feature struct {
	SeqID      string     // Landmark (transcript) ID, column 1
	Source     string     // Column 2
	Type       string     // Feature type, e.g. CDS
	Start      int        // 1-based, inclusive
	End        int        // 1-based, inclusive
	Strand     seq.Strand // Plus, Minus or None
	Phase      int        // 0, 1 or 2; -1 if not given
	Attributes Attributes
	Line       int // Line number in the source file
}

// Len returns the number of bases the feature spans.
func (f *Feature) Len() int {
	return f.End - f.Start + 1
}

// Features indexes GFF records by sequence ID.
type Features struct {
	seqIDs []string // order of first appearance
	bySeq  map[string][]*Feature
	count  int
}

// NewFeatures creates an empty feature index.
func NewFeatures() *Features {
	return &Features{bySeq: make(map[string][]*Feature)}
}

// LoadGFF reads the GFF file at path. An empty file, or one containing a
// malformed record, yields ErrMalformedGFF.
func LoadGFF(path string) (*Features, error) {
	f, err := openInput(path, ErrMalformedGFF)
	if err != nil {
		return nil, fmt.Errorf("open GFF file: %w", err)
	}
	defer f.Close()

	feats, err := ReadGFF(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return feats, nil
}

// ReadGFF parses GFF content. Parsing stops at a "##FASTA" directive.
func ReadGFF(reader io.Reader) (*Features, error) {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	feats := NewFeatures()

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")

		if line == "##FASTA" {
			break
		}
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		f, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedGFF, lineNum, err)
		}
		f.Line = lineNum
		feats.Add(f)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan: %v", ErrMalformedGFF, err)
	}

	if feats.Len() == 0 {
		return nil, fmt.Errorf("%w: no features", ErrMalformedGFF)
	}
	return feats, nil
}

// Add appends a feature to the index.
func (fs *Features) Add(f *Feature) {
	if _, ok := fs.bySeq[f.SeqID]; !ok {
		fs.seqIDs = append(fs.seqIDs, f.SeqID)
	}
	fs.bySeq[f.SeqID] = append(fs.bySeq[f.SeqID], f)
	fs.count++
}

// SeqIDs returns the sequence IDs referenced by the file, in order of first
// appearance.
func (fs *Features) SeqIDs() []string {
	ids := make([]string, len(fs.seqIDs))
	copy(ids, fs.seqIDs)
	return ids
}

// Has reports whether any feature references the sequence ID.
func (fs *Features) Has(seqID string) bool {
	_, ok := fs.bySeq[seqID]
	return ok
}

// Features returns all features on a sequence in file order.
func (fs *Features) Features(seqID string) []*Feature {
	return fs.bySeq[seqID]
}

// OfType returns the features of one type on a sequence, in file order.
func (fs *Features) OfType(seqID, featureType string) []*Feature {
	var result []*Feature
	for _, f := range fs.bySeq[seqID] {
		if f.Type == featureType {
			result = append(result, f)
		}
	}
	return result
}

// CDS returns the CDS features on a sequence.
func (fs *Features) CDS(seqID string) []*Feature {
	return fs.OfType(seqID, TypeCDS)
}

// Len returns the total number of features.
func (fs *Features) Len() int {
	return fs.count
}

// parseLine parses a single GFF line.
func parseLine(line string) (*Feature, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 9 {
		return nil, fmt.Errorf("expected 9 fields, got %d", len(fields))
	}
	if fields[0] == "" {
		return nil, fmt.Errorf("empty sequence ID")
	}

	start, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, fmt.Errorf("parse start: %w", err)
	}
	end, err := strconv.Atoi(fields[4])
	if err != nil {
		return nil, fmt.Errorf("parse end: %w", err)
	}
	if start < 1 || end < start {
		return nil, fmt.Errorf("invalid range %d-%d", start, end)
	}

	strand, err := parseStrand(fields[6])
	if err != nil {
		return nil, err
	}
	phase, err := parsePhase(fields[7])
	if err != nil {
		return nil, err
	}

	return &Feature{
		SeqID:      fields[0],
		Source:     fields[1],
		Type:       fields[2],
		Start:      start,
		End:        end,
		Strand:     strand,
		Phase:      phase,
		Attributes: parseAttributes(fields[8]),
	}, nil
}

func parseStrand(s string) (seq.Strand, error) {
	switch s {
	case "+":
		return seq.Plus, nil
	case "-":
		return seq.Minus, nil
	case ".", "?":
		return seq.None, nil
	}
	return seq.None, fmt.Errorf("invalid strand %q", s)
}

func parsePhase(s string) (int, error) {
	switch s {
	case ".":
		return -1, nil
	case "0", "1", "2":
		return int(s[0] - '0'), nil
	}
	return 0, fmt.Errorf("invalid phase %q", s)
}

// parseAttributes parses the attribute column.
// GFF3 format: tag=value1,value2;tag=value (URL-escaped).
// GTF-style pairs (tag "value";) are accepted as well.
func parseAttributes(attrStr string) Attributes {
	attrs := make(Attributes)
	if attrStr == "." {
		return attrs
	}

	for _, part := range strings.Split(attrStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if tag, value, ok := strings.Cut(part, "="); ok {
			tag = unescape(strings.TrimSpace(tag))
			for _, v := range strings.Split(value, ",") {
				attrs[tag] = append(attrs[tag], unescape(strings.TrimSpace(v)))
			}
			continue
		}

		idx := strings.Index(part, " ")
		if idx == -1 {
			continue
		}
		tag := part[:idx]
		value := strings.Trim(strings.TrimSpace(part[idx+1:]), "\"")
		attrs[tag] = append(attrs[tag], value)
	}

	return attrs
}

func unescape(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	u, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return u
}
