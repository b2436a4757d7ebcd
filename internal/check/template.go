package check

import (
	"fmt"
	"strings"
)

// Placeholder is replaced by the transcript ID in a feature name template.
const Placeholder = "{}"

// DefaultFeatureFormat names CDS features that lack both ID and Name.
const DefaultFeatureFormat = Placeholder + "_CDS"

var defaultTemplate = MustParseTemplate(DefaultFeatureFormat)

// Template synthesizes feature names from a transcript ID.
type Template struct {
	prefix, suffix string
}

// ParseTemplate validates a template containing exactly one placeholder.
func ParseTemplate(format string) (Template, error) {
	if n := strings.Count(format, Placeholder); n != 1 {
		return Template{}, fmt.Errorf("feature format %q must contain exactly one %s placeholder, found %d", format, Placeholder, n)
	}
	prefix, suffix, _ := strings.Cut(format, Placeholder)
	return Template{prefix: prefix, suffix: suffix}, nil
}

// MustParseTemplate is like ParseTemplate but panics on an invalid format.
func MustParseTemplate(format string) Template {
	t, err := ParseTemplate(format)
	if err != nil {
		panic(err)
	}
	return t
}

// Apply substitutes id into the template.
func (t Template) Apply(id string) string {
	return t.prefix + id + t.suffix
}

func (t Template) String() string {
	return t.prefix + Placeholder + t.suffix
}
