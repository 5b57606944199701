package table

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FromDOM reads the rows of a <table> selection. Header and data cells are
// treated alike; rows without cells are skipped.
func FromDOM(sel *goquery.Selection) [][]string {
	var rows [][]string
	sel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		// Skip rows that belong to a nested table.
		if tr.Closest("table").Get(0) != sel.Get(0) {
			return
		}
		var row []string
		tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, strings.Join(strings.Fields(cell.Text()), " "))
		})
		if len(row) > 0 {
			rows = append(rows, row)
		}
	})
	return rows
}
