// Package join reconciles the per-category tables into one table with a row
// per (Player, Squad).
package join

import (
	"fmt"

	"github.com/okian/fbstats/internal/domain/model"
)

var identity = []string{model.ColPlayer, model.ColSquad}

// Join outer-joins the projected category tables on (Player, Squad) in
// model.Categories order. The first value seen for a column wins, including
// the first row for a key within one table. Columns a player never received
// are defaulted: "0" for numeric fields, "" for descriptive ones.
func Join(tables map[model.Category]model.Table) (model.Table, error) {
	for _, c := range model.Categories {
		t, ok := tables[c]
		if !ok {
			return model.Table{}, fmt.Errorf("%w: no %s table", ErrJoin, c)
		}
		for _, col := range identity {
			if !t.HasColumn(col) {
				return model.Table{}, fmt.Errorf("%w: %s table has no %q column", ErrJoin, c, col)
			}
		}
	}

	columns := append([]string(nil), identity...)
	known := make(map[string]bool)
	numeric := make(map[string]bool)
	index := make(map[model.PlayerKey]int)
	var rows []model.Row

	for _, c := range model.Categories {
		t := tables[c]
		for _, f := range projections[c] {
			if !known[f.Target] {
				known[f.Target] = true
				numeric[f.Target] = f.Numeric
				columns = append(columns, f.Target)
			}
		}

		bindings := bind(projections[c], t)
		taken := make(map[model.PlayerKey]bool, len(t.Rows))
		for _, src := range t.Rows {
			key := model.PlayerKey{Player: src[model.ColPlayer], Squad: src[model.ColSquad]}
			// Spacer rows carry no player.
			if key.Player == "" || taken[key] {
				continue
			}
			taken[key] = true

			i, ok := index[key]
			if !ok {
				i = len(rows)
				index[key] = i
				rows = append(rows, model.Row{model.ColPlayer: key.Player, model.ColSquad: key.Squad})
			}
			dst := rows[i]
			for _, b := range bindings {
				if _, set := dst[b.target]; set {
					continue
				}
				dst[b.target] = src[b.source]
			}
		}
	}

	for _, row := range rows {
		for _, col := range columns[len(identity):] {
			if _, set := row[col]; set {
				continue
			}
			if numeric[col] {
				row[col] = "0"
			} else {
				row[col] = ""
			}
		}
	}

	return rename(model.Table{Columns: columns, Rows: rows}), nil
}

func rename(t model.Table) model.Table {
	for i, col := range t.Columns {
		to, ok := renames[col]
		if !ok {
			continue
		}
		t.Columns[i] = to
		for _, row := range t.Rows {
			row[to] = row[col]
			delete(row, col)
		}
	}
	return t
}
