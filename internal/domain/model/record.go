package model

// Record is one unified player row: identity, playing time, raw counting
// stats from all four categories and the derived per-90 rates. JSON names
// match the column keys served to clients.
type Record struct {
	Player string `json:"Player"`
	Squad  string `json:"Squad"`
	Age    string `json:"Age"`
	Nation string `json:"Nation"`
	Pos    string `json:"Pos"`
	Comp   string `json:"Comp"`

	// Nineties is playing time in 90-minute units.
	Nineties float64 `json:"90s"`

	Gls float64 `json:"Gls"`
	Ast float64 `json:"Ast"`
	Sh  float64 `json:"Sh"`
	SoT float64 `json:"SoT"`
	Att float64 `json:"Att"`
	Fls float64 `json:"Fls"`
	Fld float64 `json:"Fld"`

	Gls90     float64 `json:"Gls_90"`
	Ast90     float64 `json:"Ast_90"`
	Sh90      float64 `json:"Sh_90"`
	SoT90     float64 `json:"SoT_90"`
	PassAtt90 float64 `json:"Pass_Att_90"`
	Fls90     float64 `json:"Fls_90"`
	Fld90     float64 `json:"Fld_90"`
}

// Key returns the record's identity.
func (r Record) Key() PlayerKey {
	return PlayerKey{Player: r.Player, Squad: r.Squad}
}
