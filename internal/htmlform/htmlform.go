// Package htmlform scrapes server-generated hidden form fields out of the
// platform's rendered pages. This is the seam most sensitive to the platform
// changing its markup, so it fails closed: a requested field that is not
// present exactly once aborts the stage rather than returning partial data
// that would corrupt every subsequent request in the chain.
package htmlform

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/model"
)

// ExtractFields returns the value attribute of the <input> element matching
// each requested name. Every requested field must appear exactly once;
// absence and duplication both yield model.MissingFieldError for that field.
func ExtractFields(document string, names ...string) (map[string]string, error) {
	doc, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	values := make(map[string]string, len(names))
	counts := make(map[string]int, len(names))

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "input" {
			name, value := inputAttrs(n)
			if wanted[name] {
				counts[name]++
				values[name] = value
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for _, name := range names {
		if counts[name] != 1 {
			return nil, model.MissingFieldError{Field: name}
		}
	}
	return values, nil
}

func inputAttrs(n *html.Node) (name, value string) {
	for _, attr := range n.Attr {
		switch attr.Key {
		case "name":
			name = attr.Val
		case "value":
			value = attr.Val
		}
	}
	return name, value
}
