package join

import "github.com/okian/fbstats/internal/domain/model"

// field is one projected column. Sources lists the accepted flat keys in
// preference order; the first one present in a table is used.
type field struct {
	Target  string
	Sources []string
	Numeric bool
}

// projections keep only the identity and the category's own raw stats, so
// unrelated columns sharing a name across pages never meet in the join.
var projections = map[model.Category][]field{
	model.Standard: {
		{Target: model.ColAge, Sources: []string{"Age"}},
		{Target: model.ColNation, Sources: []string{"Nation"}},
		{Target: model.ColPos, Sources: []string{"Pos"}},
		{Target: model.ColComp, Sources: []string{"Comp"}},
		{Target: model.ColNineties, Sources: []string{"Playing_Time_90s", "90s"}, Numeric: true},
		{Target: model.ColGls, Sources: []string{"Performance_Gls", "Gls"}, Numeric: true},
		{Target: model.ColAst, Sources: []string{"Performance_Ast", "Ast"}, Numeric: true},
	},
	model.Shooting: {
		{Target: model.ColAge, Sources: []string{"Age"}},
		{Target: model.ColSh, Sources: []string{"Standard_Sh", "Sh"}, Numeric: true},
		{Target: model.ColSoT, Sources: []string{"Standard_SoT", "SoT"}, Numeric: true},
	},
	model.Passing: {
		{Target: model.ColAge, Sources: []string{"Age"}},
		{Target: model.ColTotalAtt, Sources: []string{"Total_Att"}, Numeric: true},
	},
	model.Misc: {
		{Target: model.ColAge, Sources: []string{"Age"}},
		{Target: model.ColFls, Sources: []string{"Performance_Fls", "Fls"}, Numeric: true},
		{Target: model.ColFld, Sources: []string{"Performance_Fld", "Fld"}, Numeric: true},
	},
}

// renames are applied to the joined table.
var renames = map[string]string{
	model.ColTotalAtt: model.ColAtt,
}

type binding struct {
	target string
	source string
}

// bind resolves the category's projection against the columns of t. Fields
// with no matching source column are left unbound and fall back to defaults.
func bind(fields []field, t model.Table) []binding {
	out := make([]binding, 0, len(fields))
	for _, f := range fields {
		for _, src := range f.Sources {
			if t.HasColumn(src) {
				out = append(out, binding{target: f.Target, source: src})
				break
			}
		}
	}
	return out
}
