package extractor

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/use-agent/harvest/models"
)

const listingHTML = `<html><body>
<ul>
  <li class="row">
    <a class="title" href="/item/1">  First
      item </a>
    <span class="score">12 points</span>
    <span class="tag">go</span><span class="tag">web</span>
  </li>
  <li class="row">
    <a class="title" href="https://other.example/2">Second</a>
    <span class="score"></span>
  </li>
  <li class="row">
    <a class="title" href="/item/3"></a>
    <span class="score">3 points</span>
  </li>
  <li class="row">
    <a class="title" href="/item/4">Fourth</a>
    <div class="body"><p>Hello <a href="/x">link</a></p></div>
  </li>
</ul>
</body></html>`

func listingSpec() Spec {
	return Spec{
		ItemSelector: "li.row",
		Fields: []Field{
			{Name: "title", Selector: "a.title", Required: true},
			{Name: "url", Selector: "a.title", Kind: KindAttr, Attr: "href", Absolute: true},
			{Name: "score", Selector: ".score", Transform: func(s string) any {
				n, _ := strconv.Atoi(strings.Fields(s)[0])
				return n
			}},
			{Name: "tags", Selector: ".tag", Kind: KindList},
		},
	}
}

func compileListing(t *testing.T) *Compiled {
	t.Helper()
	c, err := Compile(listingSpec())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return c
}

func TestExtract_SkipsItemsMissingRequiredFields(t *testing.T) {
	doc, err := ParseDocument([]byte(listingHTML), "text/html; charset=utf-8")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c := compileListing(t)

	records, skipped := Extract(doc, c, "https://news.example/front")
	if skipped != 1 {
		t.Errorf("expected 1 skipped item, got %d", skipped)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	first := records[0]
	if got := first.Keys(); !reflect.DeepEqual(got, []string{"title", "url", "score", "tags"}) {
		t.Errorf("keys = %v", got)
	}
	if first.Text("title") != "First item" {
		t.Errorf("title not normalised: %q", first.Text("title"))
	}
	if first.Text("url") != "https://news.example/item/1" {
		t.Errorf("url not resolved: %q", first.Text("url"))
	}
	if first.Value("score") != 12 {
		t.Errorf("score = %v", first.Value("score"))
	}
	if !reflect.DeepEqual(first.Value("tags"), []string{"go", "web"}) {
		t.Errorf("tags = %v", first.Value("tags"))
	}

	second := records[1]
	if second.Text("url") != "https://other.example/2" {
		t.Errorf("absolute url changed: %q", second.Text("url"))
	}
	if second.Value("score") != "" {
		t.Errorf("empty optional field should be empty string, got %v", second.Value("score"))
	}
	if records[2].Text("title") != "Fourth" {
		t.Errorf("document order not kept: %q", records[2].Text("title"))
	}
}

func TestRun_ThresholdViolations(t *testing.T) {
	doc, _ := ParseDocument([]byte(listingHTML), "")

	none := MustCompile(Spec{ItemSelector: "article", Fields: []Field{{Name: "t"}}})
	if _, err := Run(doc, none, ""); !errors.Is(err, models.ErrParse) {
		t.Errorf("expected parse error for zero items, got %v", err)
	}

	spec := listingSpec()
	spec.MinItems = 10
	tooFew := MustCompile(spec)
	if _, err := Run(doc, tooFew, ""); !errors.Is(err, models.ErrParse) {
		t.Errorf("expected parse error below threshold, got %v", err)
	}

	ok := MustCompile(listingSpec())
	records, err := Run(doc, ok, "")
	if err != nil || len(records) != 3 {
		t.Errorf("expected 3 records, got %d (%v)", len(records), err)
	}
}

func TestExtract_MarkdownField(t *testing.T) {
	doc, _ := ParseDocument([]byte(listingHTML), "")
	c := MustCompile(Spec{
		ItemSelector: "li.row",
		Fields: []Field{
			{Name: "body", Selector: ".body", Kind: KindMarkdown, Required: true},
		},
	})
	records, _ := Extract(doc, c, "https://news.example/")
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if got := records[0].Text("body"); got != "Hello [link](https://news.example/x)" {
		t.Errorf("markdown = %q", got)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
	}{
		{"empty item selector", Spec{Fields: []Field{{Name: "a"}}}},
		{"no fields", Spec{ItemSelector: "li"}},
		{"bad item selector", Spec{ItemSelector: "li[", Fields: []Field{{Name: "a"}}}},
		{"bad field selector", Spec{ItemSelector: "li", Fields: []Field{{Name: "a", Selector: ":nope("}}}},
		{"attr without name", Spec{ItemSelector: "li", Fields: []Field{{Name: "a", Kind: KindAttr}}}},
		{"duplicate field", Spec{ItemSelector: "li", Fields: []Field{{Name: "a"}, {Name: "a"}}}},
		{"unknown kind", Spec{ItemSelector: "li", Fields: []Field{{Name: "a", Kind: "blob"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compile(tt.spec); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseDocument_DecodesCharset(t *testing.T) {
	// "café" in ISO-8859-1.
	body := []byte("<html><body><p>caf\xe9</p></body></html>")
	doc, err := ParseDocument(body, "text/html; charset=iso-8859-1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := doc.Find("p").Text(); got != "café" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_NextSiblingFields(t *testing.T) {
	const page = `<table>
<tr class="athing"><td><span class="rank">1.</span></td><td><a class="t" href="/a">A</a></td></tr>
<tr><td><span class="score">42 points</span></td></tr>
<tr class="athing"><td><span class="rank">2.</span></td><td><a class="t" href="/b">B</a></td></tr>
<tr><td></td></tr>
</table>`
	doc, _ := ParseDocument([]byte(page), "")
	c := MustCompile(Spec{
		ItemSelector: "tr.athing",
		Fields: []Field{
			{Name: "title", Selector: "a.t", Required: true},
			{Name: "score", Selector: "span.score", Next: true},
		},
	})
	records, _ := Extract(doc, c, "")
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Text("score") != "42 points" || records[1].Text("score") != "" {
		t.Errorf("scores = %q, %q", records[0].Text("score"), records[1].Text("score"))
	}
}
