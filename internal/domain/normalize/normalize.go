// Package normalize flattens extracted table headers into flat column keys
// and strips header rows repeated inside the table body.
package normalize

import (
	"strconv"
	"strings"

	"github.com/okian/fbstats/internal/domain/model"
)

var keyReplacer = strings.NewReplacer(" ", "_", "%", "Pct")

// Normalize converts raw to a table keyed by flat column names. Row order is
// preserved and player rows are not deduplicated here.
func Normalize(raw model.RawTable) model.Table {
	keys := make([]string, len(raw.Header))
	seen := make(map[string]int, len(raw.Header))
	for i, col := range raw.Header {
		key := Key(col)
		// Later duplicates get a numeric suffix so no cell is overwritten.
		if n := seen[key]; n > 0 {
			seen[key] = n + 1
			key = key + "_" + strconv.Itoa(n+1)
		} else {
			seen[key] = 1
		}
		keys[i] = key
	}

	out := model.Table{Columns: keys, Rows: make([]model.Row, 0, len(raw.Rows))}
	for _, cells := range raw.Rows {
		row := make(model.Row, len(keys))
		for i, key := range keys {
			if i < len(cells) {
				row[key] = cells[i]
			} else {
				row[key] = ""
			}
		}
		if isRepeatedHeader(row) {
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// Key flattens one header column: "<group>_<label>" for two-level headers,
// the bare label otherwise, with spaces and percent signs canonicalized.
func Key(col model.Column) string {
	group := strings.TrimSpace(col.Group)
	label := strings.TrimSpace(col.Label)
	key := label
	if group != "" {
		key = group + "_" + label
	}
	return keyReplacer.Replace(key)
}

func isRepeatedHeader(row model.Row) bool {
	v, ok := row[model.ColPlayer]
	return ok && v == model.ColPlayer
}
