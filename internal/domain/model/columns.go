package model

// Flat column keys shared by the join and derive stages.
const (
	ColPlayer   = "Player"
	ColSquad    = "Squad"
	ColAge      = "Age"
	ColNation   = "Nation"
	ColPos      = "Pos"
	ColComp     = "Comp"
	ColNineties = "90s"
	ColGls      = "Gls"
	ColAst      = "Ast"
	ColSh       = "Sh"
	ColSoT      = "SoT"
	ColTotalAtt = "Total_Att"
	ColAtt      = "Att"
	ColFls      = "Fls"
	ColFld      = "Fld"
)
