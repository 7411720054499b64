package posts

import (
	"strconv"
	"strings"
)

// Template selects one of the fixed page templates a post can be rendered with.
type Template int

const (
	TemplatePrimary Template = iota + 1
	TemplateSecondary
	TemplateTertiary
)

// Templates lists every template variant in identifier order.
func Templates() []Template {
	return []Template{TemplatePrimary, TemplateSecondary, TemplateTertiary}
}

// Valid reports whether t names a known variant.
func (t Template) Valid() bool {
	return t >= TemplatePrimary && t <= TemplateTertiary
}

// ID returns the wire identifier of the variant.
func (t Template) ID() int {
	return int(t)
}

func (t Template) String() string {
	switch t {
	case TemplatePrimary:
		return "primary"
	case TemplateSecondary:
		return "secondary"
	case TemplateTertiary:
		return "tertiary"
	default:
		return "template(" + strconv.Itoa(int(t)) + ")"
	}
}

// ResolveTemplate maps a raw identifier such as "2" onto a variant. Missing,
// malformed or unknown identifiers resolve to TemplatePrimary.
func ResolveTemplate(raw string) Template {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return TemplatePrimary
	}
	if t := Template(id); t.Valid() {
		return t
	}
	return TemplatePrimary
}
