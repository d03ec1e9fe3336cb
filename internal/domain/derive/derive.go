// Package derive turns the joined table into typed player records and adds
// per-90-minute rates.
package derive

import (
	"math"
	"strconv"
	"strings"

	"github.com/okian/fbstats/internal/domain/model"
)

// Rate pairs a derived field with the raw count it is computed from. The
// denominator is always the 90s column.
type Rate struct {
	Name string
	Raw  string
	set  func(r *model.Record, v float64)
}

// Rates lists every derived per-90 field in output order.
var Rates = []Rate{
	{Name: "Gls_90", Raw: model.ColGls, set: func(r *model.Record, v float64) { r.Gls90 = v }},
	{Name: "Ast_90", Raw: model.ColAst, set: func(r *model.Record, v float64) { r.Ast90 = v }},
	{Name: "Sh_90", Raw: model.ColSh, set: func(r *model.Record, v float64) { r.Sh90 = v }},
	{Name: "SoT_90", Raw: model.ColSoT, set: func(r *model.Record, v float64) { r.SoT90 = v }},
	{Name: "Pass_Att_90", Raw: model.ColAtt, set: func(r *model.Record, v float64) { r.PassAtt90 = v }},
	{Name: "Fls_90", Raw: model.ColFls, set: func(r *model.Record, v float64) { r.Fls90 = v }},
	{Name: "Fld_90", Raw: model.ColFld, set: func(r *model.Record, v float64) { r.Fld90 = v }},
}

var numberCleaner = strings.NewReplacer(",", "", "\u00a0", "", "\u2009", "")

// Records coerces the joined table into records, drops rows without playing
// time, and fills in the rates. Output order follows the table.
func Records(t model.Table) []model.Record {
	out := make([]model.Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := model.Record{
			Player:   row[model.ColPlayer],
			Squad:    row[model.ColSquad],
			Age:      row[model.ColAge],
			Nation:   row[model.ColNation],
			Pos:      row[model.ColPos],
			Comp:     row[model.ColComp],
			Nineties: Number(row[model.ColNineties]),
			Gls:      Number(row[model.ColGls]),
			Ast:      Number(row[model.ColAst]),
			Sh:       Number(row[model.ColSh]),
			SoT:      Number(row[model.ColSoT]),
			Att:      Number(row[model.ColAtt]),
			Fls:      Number(row[model.ColFls]),
			Fld:      Number(row[model.ColFld]),
		}
		// Rates are undefined without minutes played.
		if !(rec.Nineties > 0) {
			continue
		}
		for _, rate := range Rates {
			rate.set(&rec, Round2(Number(row[rate.Raw])/rec.Nineties))
		}
		out = append(out, rec)
	}
	return out
}

// Number parses a cell permissively. Thousands separators and non-breaking
// spaces are ignored; anything unparseable, NaN or infinite is zero.
func Number(cell string) float64 {
	s := strings.TrimSpace(numberCleaner.Replace(cell))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Round2 rounds to two decimals, halves away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
