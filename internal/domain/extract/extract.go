// Package extract locates and parses the statistics table inside a category
// container. The source site ships some tables inside HTML comments, so the
// lookup has two branches: a live table element first, then comment nodes.
package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/okian/fbstats/internal/domain/model"
)

// Extract returns the first table found in markup, either as a live element
// or serialized inside a comment node.
func Extract(markup string) (model.RawTable, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return model.RawTable{}, fmt.Errorf("parse container markup: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		table = findInComments(doc)
	}
	if table == nil || table.Length() == 0 {
		return model.RawTable{}, ErrTableNotFound
	}

	raw := parseTable(table)
	if len(raw.Header) == 0 {
		return model.RawTable{}, ErrNoHeader
	}
	return raw, nil
}

// findInComments re-parses each comment in document order and returns the
// first table it finds, or nil.
func findInComments(doc *goquery.Document) *goquery.Selection {
	for _, root := range doc.Nodes {
		for _, c := range commentNodes(root) {
			inner, err := goquery.NewDocumentFromReader(strings.NewReader(c.Data))
			if err != nil {
				continue
			}
			if t := inner.Find("table").First(); t.Length() > 0 {
				return t
			}
		}
	}
	return nil
}

func commentNodes(root *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.CommentNode {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func parseTable(table *goquery.Selection) model.RawTable {
	headRows := table.ChildrenFiltered("thead").ChildrenFiltered("tr")
	bodyRows := table.ChildrenFiltered("tbody").ChildrenFiltered("tr")

	// Header-less markup: the first row is the header.
	if headRows.Length() == 0 {
		all := table.Find("tr")
		if all.Length() == 0 {
			return model.RawTable{}
		}
		headRows = all.First()
		bodyRows = all.Slice(1, goquery.ToEnd)
	}

	header := parseHeader(headRows)
	raw := model.RawTable{Header: header}
	bodyRows.Each(func(_ int, tr *goquery.Selection) {
		cells := spannedTexts(tr)
		if len(cells) == 0 {
			return
		}
		row := make([]string, len(header))
		copy(row, cells)
		raw.Rows = append(raw.Rows, row)
	})
	return raw
}

// parseHeader takes labels from the last header row and, when there is more
// than one, groups from the row above it.
func parseHeader(rows *goquery.Selection) []model.Column {
	n := rows.Length()
	if n == 0 {
		return nil
	}
	labels := spannedTexts(rows.Eq(n - 1))
	cols := make([]model.Column, len(labels))
	for i, l := range labels {
		cols[i].Label = l
	}
	if n >= 2 {
		groups := spannedTexts(rows.Eq(n - 2))
		for i := range cols {
			if i < len(groups) {
				cols[i].Group = groups[i]
			}
		}
	}
	return cols
}

// spannedTexts returns the row's cell texts with colspan expanded.
func spannedTexts(tr *goquery.Selection) []string {
	var out []string
	tr.ChildrenFiltered("th,td").Each(func(_ int, cell *goquery.Selection) {
		span, err := strconv.Atoi(cell.AttrOr("colspan", "1"))
		if err != nil || span < 1 {
			span = 1
		}
		text := cellText(cell)
		for i := 0; i < span; i++ {
			out = append(out, text)
		}
	})
	return out
}

func cellText(cell *goquery.Selection) string {
	return strings.Join(strings.Fields(cell.Text()), " ")
}
