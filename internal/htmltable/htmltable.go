// Package htmltable extracts structured tables and dropdown options from
// HTML documents. Pure functions: identical markup yields identical output.
package htmltable

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Option is one entry of a <select> dropdown.
type Option struct {
	Text  string
	Value string
}

// Tables returns every <table> of the document in document order, each as
// rows of cell text. Cell text is whitespace-trimmed; <th> and <td> cells
// are treated alike.
func Tables(r io.Reader) ([][][]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var tables [][][]string
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var rows [][]string
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			var cells []string
			tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
		})
		tables = append(tables, rows)
	})
	return tables, nil
}

// SelectOptions returns the options of the first <select> element in
// document order.
func SelectOptions(r io.Reader) ([]Option, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	sel := doc.Find("select").First()
	if sel.Length() == 0 {
		return nil, nil
	}

	var options []Option
	sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
		options = append(options, Option{
			Text:  strings.TrimSpace(opt.Text()),
			Value: opt.AttrOr("value", ""),
		})
	})
	return options, nil
}
