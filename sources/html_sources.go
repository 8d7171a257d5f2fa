package sources

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/use-agent/harvest/extractor"
	"github.com/use-agent/harvest/models"
)

// leadingInt reads the first integer in s ("123 points", "1.", "45 comments").
// Text without digits yields 0.
func leadingInt(s string) any {
	start := strings.IndexFunc(s, unicode.IsDigit)
	if start < 0 {
		return 0
	}
	end := start
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == ',') {
		end++
	}
	n, err := strconv.Atoi(strings.ReplaceAll(s[start:end], ",", ""))
	if err != nil {
		return 0
	}
	return n
}

func price(s string) any {
	if f, ok := extractor.ParsePrice(s); ok {
		return f
	}
	return s
}

// starRating maps "star-rating Three" to 3.
func starRating(class string) any {
	words := map[string]int{"one": 1, "two": 2, "three": 3, "four": 4, "five": 5}
	for _, w := range strings.Fields(strings.ToLower(class)) {
		if n, ok := words[w]; ok {
			return n
		}
	}
	return 0
}

// ── hacker-news ────────────────────────────────────────────────────

func hackerNewsDescriptor() models.SourceDescriptor {
	return models.SourceDescriptor{
		ID:                   "hacker-news",
		DisplayName:          "Hacker News",
		Description:          "Front page stories with rank, points, author and comment count.",
		SourceURL:            "https://news.ycombinator.com/",
		Enabled:              true,
		SupportedFormats:     allFormats,
		DefaultFormat:        models.FormatJSON,
		EstimatedRecordCount: 30,
		Timeout:              15 * time.Second,
		DefaultHeaders:       htmlHeaders(),
	}
}

// Each story is a tr.athing followed by a subtext row holding its metadata.
var hackerNewsSpec = extractor.MustCompile(extractor.Spec{
	ItemSelector: "tr.athing",
	MinItems:     5,
	Fields: []extractor.Field{
		{Name: "rank", Selector: "span.rank", Transform: leadingInt},
		{Name: "title", Selector: "span.titleline > a", Required: true},
		{Name: "url", Selector: "span.titleline > a", Kind: extractor.KindAttr, Attr: "href", Absolute: true},
		{Name: "site", Selector: "span.sitestr"},
		{Name: "points", Selector: "span.score", Next: true, Transform: leadingInt},
		{Name: "author", Selector: "a.hnuser", Next: true},
		{Name: "age", Selector: "span.age", Next: true},
		{Name: "comments", Selector: "span.subline > a:last-child", Next: true, Transform: leadingInt},
	},
})

// ── quotes ─────────────────────────────────────────────────────────

func quotesDescriptor() models.SourceDescriptor {
	return models.SourceDescriptor{
		ID:                   "quotes",
		DisplayName:          "Quotes to Scrape",
		Description:          "Quotes with author and tags from the first listing page.",
		SourceURL:            "https://quotes.toscrape.com/",
		Enabled:              true,
		SupportedFormats:     allFormats,
		DefaultFormat:        models.FormatJSON,
		EstimatedRecordCount: 10,
		Timeout:              15 * time.Second,
		DefaultHeaders:       htmlHeaders(),
	}
}

var quotesSpec = extractor.MustCompile(extractor.Spec{
	ItemSelector: "div.quote",
	MinItems:     1,
	Fields: []extractor.Field{
		{Name: "text", Selector: "span.text", Required: true, Transform: func(s string) any {
			return strings.Trim(s, "“”\"")
		}},
		{Name: "author", Selector: "small.author", Required: true},
		{Name: "authorUrl", Selector: "span > a", Kind: extractor.KindAttr, Attr: "href", Absolute: true},
		{Name: "tags", Selector: "div.tags a.tag", Kind: extractor.KindList},
	},
})

// ── books ──────────────────────────────────────────────────────────

func booksDescriptor() models.SourceDescriptor {
	return models.SourceDescriptor{
		ID:                   "books",
		DisplayName:          "Books to Scrape",
		Description:          "Book catalogue entries with price, rating and availability.",
		SourceURL:            "https://books.toscrape.com/",
		Enabled:              true,
		SupportedFormats:     []models.Format{models.FormatJSON, models.FormatCSV},
		DefaultFormat:        models.FormatJSON,
		EstimatedRecordCount: 20,
		Timeout:              15 * time.Second,
		DefaultHeaders:       htmlHeaders(),
	}
}

var booksSpec = extractor.MustCompile(extractor.Spec{
	ItemSelector: "article.product_pod",
	MinItems:     1,
	Fields: []extractor.Field{
		{Name: "title", Selector: "h3 > a", Kind: extractor.KindAttr, Attr: "title", Required: true},
		{Name: "price", Selector: "p.price_color", Transform: price},
		{Name: "rating", Selector: "p.star-rating", Kind: extractor.KindAttr, Attr: "class", Transform: starRating},
		{Name: "availability", Selector: "p.availability"},
		{Name: "url", Selector: "h3 > a", Kind: extractor.KindAttr, Attr: "href", Absolute: true},
		{Name: "image", Selector: "img", Kind: extractor.KindAttr, Attr: "src", Absolute: true},
	},
})

// ── go-blog ────────────────────────────────────────────────────────

func goBlogDescriptor() models.SourceDescriptor {
	return models.SourceDescriptor{
		ID:                   "go-blog",
		DisplayName:          "The Go Blog",
		Description:          "Go blog index with date, authors and a Markdown summary.",
		SourceURL:            "https://go.dev/blog/all",
		Enabled:              true,
		SupportedFormats:     allFormats,
		DefaultFormat:        models.FormatJSON,
		EstimatedRecordCount: 250,
		Timeout:              20 * time.Second,
		DefaultHeaders:       htmlHeaders(),
	}
}

// Each entry is a p.blogtitle immediately followed by its p.blogsummary.
var goBlogSpec = extractor.MustCompile(extractor.Spec{
	ItemSelector: "p.blogtitle",
	MinItems:     10,
	Fields: []extractor.Field{
		{Name: "title", Selector: "a", Required: true},
		{Name: "url", Selector: "a", Kind: extractor.KindAttr, Attr: "href", Absolute: true},
		{Name: "date", Selector: "span.date"},
		{Name: "author", Selector: "span.author"},
		{Name: "summary", Next: true, Kind: extractor.KindMarkdown},
	},
})
