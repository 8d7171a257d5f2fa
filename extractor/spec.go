package extractor

import (
	"fmt"

	"github.com/andybalholm/cascadia"
)

// Kind selects how a field value is read from its element.
type Kind string

const (
	KindText     Kind = "text"     // whitespace-normalised text content
	KindAttr     Kind = "attr"     // attribute value, see Field.Attr
	KindHTML     Kind = "html"     // inner HTML
	KindMarkdown Kind = "markdown" // inner HTML rendered as Markdown
	KindList     Kind = "list"     // text of every match, as []string
)

// Field describes one named value inside a repeating item.
type Field struct {
	Name string

	// Selector is relative to the item element. Empty means the item itself.
	Selector string

	// Next reads from the item's next sibling element instead of the item,
	// for layouts that split one logical item across two rows.
	Next bool

	// Attr is the attribute read by KindAttr.
	Attr string

	Kind Kind

	// Required fields make the whole item skipped when they come out empty.
	Required bool

	// Absolute resolves the value against the page URL (links, images).
	Absolute bool

	// Transform converts the extracted string into the stored value,
	// e.g. a number. It is not applied to empty values or lists.
	Transform func(string) any
}

// Spec describes the repeating element group of a page.
type Spec struct {
	ItemSelector string
	Fields       []Field

	// MinItems is the sanity threshold below which a page is treated as
	// changed markup rather than a sparse listing. Zero means 1.
	MinItems int
}

// Compiled is a Spec whose selectors have been parsed. It is immutable and
// safe for concurrent use.
type Compiled struct {
	item     cascadia.Selector
	fields   []compiledField
	minItems int
}

type compiledField struct {
	Field
	sel cascadia.Selector // nil for the item itself
}

// Compile parses every selector in spec once.
func Compile(spec Spec) (*Compiled, error) {
	if spec.ItemSelector == "" {
		return nil, fmt.Errorf("extractor: empty item selector")
	}
	if len(spec.Fields) == 0 {
		return nil, fmt.Errorf("extractor: spec has no fields")
	}
	item, err := cascadia.Compile(spec.ItemSelector)
	if err != nil {
		return nil, fmt.Errorf("extractor: item selector %q: %w", spec.ItemSelector, err)
	}

	c := &Compiled{item: item, minItems: spec.MinItems}
	if c.minItems < 1 {
		c.minItems = 1
	}

	seen := make(map[string]struct{}, len(spec.Fields))
	for _, f := range spec.Fields {
		if f.Name == "" {
			return nil, fmt.Errorf("extractor: field with empty name")
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("extractor: duplicate field %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		if f.Kind == "" {
			f.Kind = KindText
		}
		switch f.Kind {
		case KindText, KindHTML, KindMarkdown, KindList:
		case KindAttr:
			if f.Attr == "" {
				return nil, fmt.Errorf("extractor: field %q: attr kind needs an attribute", f.Name)
			}
		default:
			return nil, fmt.Errorf("extractor: field %q: unknown kind %q", f.Name, f.Kind)
		}

		cf := compiledField{Field: f}
		if f.Selector != "" {
			sel, err := cascadia.Compile(f.Selector)
			if err != nil {
				return nil, fmt.Errorf("extractor: field %q selector %q: %w", f.Name, f.Selector, err)
			}
			cf.sel = sel
		}
		c.fields = append(c.fields, cf)
	}
	return c, nil
}

// MustCompile is like Compile but panics on error. Built-in sources use it
// at construction so a bad selector fails at startup.
func MustCompile(spec Spec) *Compiled {
	c, err := Compile(spec)
	if err != nil {
		panic(err)
	}
	return c
}

// MinItems returns the effective sanity threshold.
func (c *Compiled) MinItems() int { return c.minItems }
