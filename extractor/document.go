// Package extractor turns HTML documents into ordered records using
// declarative selector specs.
package extractor

import (
	"bytes"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// ParseDocument decodes body to UTF-8 using the Content-Type header and any
// <meta charset> hint, then parses it into a goquery document.
func ParseDocument(body []byte, contentType string) (*goquery.Document, error) {
	var r io.Reader = bytes.NewReader(body)
	if decoded, err := charset.NewReader(r, contentType); err == nil {
		r = decoded
	} else {
		r = bytes.NewReader(body)
	}

	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("extractor: parse html: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}
