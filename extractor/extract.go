package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/harvest/models"
)

// Extract walks every item matched by c in document order and builds one
// record per item, with fields in spec order. An item whose required field
// is empty is skipped and counted, never treated as a failure.
func Extract(doc *goquery.Document, c *Compiled, baseURL string) (records []models.Record, skipped int) {
	base, _ := url.Parse(baseURL)
	domain := ""
	if base != nil && base.Host != "" {
		domain = base.Scheme + "://" + base.Host
	}

	records = []models.Record{}
	doc.FindMatcher(c.item).Each(func(_ int, item *goquery.Selection) {
		rec := models.NewRecord()
		for _, f := range c.fields {
			v, empty := f.read(item, base, domain)
			if empty && f.Required {
				skipped++
				return
			}
			rec.Set(f.Name, v)
		}
		records = append(records, rec)
	})
	return records, skipped
}

// Run extracts records and applies the sanity threshold: zero usable items,
// or fewer than MinItems, is a ParseError since it means the markup changed.
func Run(doc *goquery.Document, c *Compiled, baseURL string) ([]models.Record, error) {
	records, skipped := Extract(doc, c, baseURL)
	if len(records) == 0 {
		return nil, models.ParseError(
			fmt.Sprintf("no usable items found (%d skipped)", skipped), nil)
	}
	if len(records) < c.minItems {
		return nil, models.ParseError(
			fmt.Sprintf("found %d items, expected at least %d", len(records), c.minItems), nil)
	}
	return records, nil
}

// read returns the field value and whether it is empty.
func (f compiledField) read(item *goquery.Selection, base *url.URL, domain string) (any, bool) {
	target := item
	if f.Next {
		target = item.Next()
	}
	if f.sel != nil {
		target = target.FindMatcher(f.sel)
	}

	if f.Kind == KindList {
		values := []string{}
		target.Each(func(_ int, s *goquery.Selection) {
			if t := NormalizeSpace(s.Text()); t != "" {
				values = append(values, t)
			}
		})
		return values, len(values) == 0
	}

	target = target.First()
	var raw string
	switch f.Kind {
	case KindAttr:
		raw = strings.TrimSpace(target.AttrOr(f.Attr, ""))
	case KindHTML:
		h, _ := target.Html()
		raw = strings.TrimSpace(h)
	case KindMarkdown:
		h, _ := target.Html()
		if md, err := ToMarkdown(h, domain); err == nil {
			raw = md
		}
	default:
		raw = NormalizeSpace(target.Text())
	}

	if raw != "" && f.Absolute {
		raw = resolve(base, raw)
	}
	if raw == "" {
		return "", true
	}
	if f.Transform != nil {
		return f.Transform(raw), false
	}
	return raw, false
}

func resolve(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}
