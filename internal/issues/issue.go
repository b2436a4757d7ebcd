// Package issues defines the records produced by FASTA/GFF CDS checks.
package issues

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the type of an issue. The spellings are consumed by
// downstream tools and must not change.
type Kind string

// Issue kinds.
const (
	NoIDName            Kind = "NO_ID_NAME"
	DuplicateFeatureID  Kind = "DUPLICATE_FEATURE_ID"
	DuplicateFeatureIDs Kind = "DUPLICATE_FEATURE_IDS"
	MultipleCDS         Kind = "MULTIPLE_CDS"
	SequenceNotInFASTA  Kind = "SEQUENCE_NOT_IN_FASTA"
	SequenceNotInGFF    Kind = "SEQUENCE_NOT_IN_GFF"
	IncompleteFeature   Kind = "INCOMPLETE_FEATURE"
	NoStartCodon        Kind = "NO_START_CODON"
	NoStopCodon         Kind = "NO_STOP_CODON"
	InternalStopCodon   Kind = "INTERNAL_STOP_CODON"
)

// Kinds lists every issue kind.
var Kinds = []Kind{
	NoIDName,
	DuplicateFeatureID,
	DuplicateFeatureIDs,
	MultipleCDS,
	SequenceNotInFASTA,
	SequenceNotInGFF,
	IncompleteFeature,
	NoStartCodon,
	NoStopCodon,
	InternalStopCodon,
}

// ParseKind converts a serialized kind back to a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown issue type %q", s)
}

// Sentinel tokens used in the Sequence and Feature columns.
const (
	WildcardToken      = "*"
	NotApplicableToken = "NotApplicable"
)

type refKind uint8

const (
	refID refKind = iota
	refWildcard
	refNotApplicable
)

// Ref is the sequence or feature column of an issue: either a literal
// identifier or one of two sentinels.
type Ref struct {
	kind refKind
	id   string
}

var (
	// Wildcard marks an issue spanning all features that share an ID.
	Wildcard = Ref{kind: refWildcard}

	// NotApplicable marks a sequence-level issue with no single feature.
	NotApplicable = Ref{kind: refNotApplicable}
)

// ID returns a reference to a literal identifier.
func ID(id string) Ref {
	return Ref{kind: refID, id: id}
}

// IsWildcard reports whether r is the wildcard sentinel.
func (r Ref) IsWildcard() bool { return r.kind == refWildcard }

// IsNotApplicable reports whether r is the not-applicable sentinel.
func (r Ref) IsNotApplicable() bool { return r.kind == refNotApplicable }

// Identifiers are percent-encoded in the report the way GFF3 encodes
// attribute values, so a decoded ID never splits a row.
var (
	idEscaper = strings.NewReplacer(
		"%", "%25",
		"\t", "%09",
		"\n", "%0A",
		"\r", "%0D",
	)
	idUnescaper = strings.NewReplacer(
		"%25", "%",
		"%09", "\t",
		"%0A", "\n",
		"%0D", "\r",
		"%2A", "*",
		"%4E", "N",
	)
)

// String returns the serialized form of the reference. A literal ID that
// spells a sentinel token has its first character encoded.
func (r Ref) String() string {
	switch r.kind {
	case refWildcard:
		return WildcardToken
	case refNotApplicable:
		return NotApplicableToken
	}
	s := idEscaper.Replace(r.id)
	switch s {
	case WildcardToken:
		return "%2A"
	case NotApplicableToken:
		return "%4E" + s[1:]
	}
	return s
}

// ParseRef converts a serialized column value back to a Ref.
func ParseRef(s string) Ref {
	switch s {
	case WildcardToken:
		return Wildcard
	case NotApplicableToken:
		return NotApplicable
	}
	if !strings.Contains(s, "%") {
		return ID(s)
	}
	return ID(idUnescaper.Replace(s))
}

type dataKind uint8

const (
	dataNone dataKind = iota
	dataCodon
	dataCount
)

// Data is the optional payload of an issue: nothing, a codon, or a count.
type Data struct {
	kind  dataKind
	codon string
	count int
}

// NoData is the empty payload.
var NoData = Data{}

// Codon returns a payload carrying a codon.
func Codon(codon string) Data {
	return Data{kind: dataCodon, codon: codon}
}

// Count returns a payload carrying a count.
func Count(n int) Data {
	return Data{kind: dataCount, count: n}
}

// IsEmpty reports whether the payload is absent.
func (d Data) IsEmpty() bool { return d.kind == dataNone }

// Codon returns the codon payload, if any.
func (d Data) Codon() (string, bool) { return d.codon, d.kind == dataCodon }

// Count returns the count payload, if any.
func (d Data) Count() (int, bool) { return d.count, d.kind == dataCount }

// String returns the serialized payload. An absent payload is "".
func (d Data) String() string {
	switch d.kind {
	case dataCodon:
		return d.codon
	case dataCount:
		return strconv.Itoa(d.count)
	}
	return ""
}

// Issue is a single finding: (sequence, feature, kind, data).
type Issue struct {
	Sequence Ref
	Feature  Ref
	Kind     Kind
	Data     Data
}

// New builds an issue.
func New(sequence, feature Ref, kind Kind, data Data) Issue {
	return Issue{Sequence: sequence, Feature: feature, Kind: kind, Data: data}
}

func (i Issue) String() string {
	return fmt.Sprintf("(%s, %s, %s, %s)", i.Sequence, i.Feature, i.Kind, i.Data)
}

// CountByKind reduces issues to the number of occurrences of each kind.
func CountByKind(issues []Issue) map[Kind]int {
	counts := make(map[Kind]int)
	for _, i := range issues {
		counts[i.Kind]++
	}
	return counts
}

// ParseData converts a serialized payload back to Data. The payload type
// is implied by the kind: counts for MULTIPLE_CDS and DUPLICATE_FEATURE_IDS,
// codons for NO_START_CODON and NO_STOP_CODON, nothing otherwise.
func ParseData(kind Kind, s string) (Data, error) {
	switch kind {
	case MultipleCDS, DuplicateFeatureIDs:
		n, err := strconv.Atoi(s)
		if err != nil {
			return NoData, fmt.Errorf("invalid count %q for %s: %w", s, kind, err)
		}
		return Count(n), nil
	case NoStartCodon, NoStopCodon:
		return Codon(s), nil
	}
	if s != "" {
		return NoData, fmt.Errorf("unexpected data %q for %s", s, kind)
	}
	return NoData, nil
}
