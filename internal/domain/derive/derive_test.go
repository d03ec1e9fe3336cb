package derive_test

import (
	"testing"

	"github.com/okian/fbstats/internal/domain/derive"
	"github.com/okian/fbstats/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func joinedRow(player, nineties string, stats map[string]string) model.Row {
	row := model.Row{
		"Player": player, "Squad": "X FC", "Age": "25-100",
		"Nation": "eng ENG", "Pos": "FW", "Comp": "eng Premier League",
		"90s": nineties,
		"Gls": "0", "Ast": "0", "Sh": "0", "SoT": "0", "Att": "0", "Fls": "0", "Fld": "0",
	}
	for k, v := range stats {
		row[k] = v
	}
	return row
}

func TestRecords(t *testing.T) {
	convey.Convey("Given the worked example row", t, func() {
		table := model.Table{Rows: []model.Row{
			joinedRow("A. Smith", "10", map[string]string{
				"Gls": "5", "Sh": "20", "SoT": "8", "Att": "300", "Fls": "10", "Fld": "5",
			}),
		}}

		convey.Convey("When deriving records", func() {
			records := derive.Records(table)

			convey.Convey("Then the per-90 rates match", func() {
				convey.So(records, convey.ShouldHaveLength, 1)
				r := records[0]
				convey.So(r.Gls90, convey.ShouldEqual, 0.50)
				convey.So(r.Ast90, convey.ShouldEqual, 0.0)
				convey.So(r.Sh90, convey.ShouldEqual, 2.00)
				convey.So(r.SoT90, convey.ShouldEqual, 0.80)
				convey.So(r.PassAtt90, convey.ShouldEqual, 30.00)
				convey.So(r.Fls90, convey.ShouldEqual, 1.00)
				convey.So(r.Fld90, convey.ShouldEqual, 0.50)
			})

			convey.Convey("And identity and raw counts are carried", func() {
				r := records[0]
				convey.So(r.Key(), convey.ShouldResemble, model.PlayerKey{Player: "A. Smith", Squad: "X FC"})
				convey.So(r.Age, convey.ShouldEqual, "25-100")
				convey.So(r.Nineties, convey.ShouldEqual, 10.0)
				convey.So(r.Att, convey.ShouldEqual, 300.0)
			})
		})
	})

	convey.Convey("Given rows with zero, missing and malformed playing time", t, func() {
		table := model.Table{Rows: []model.Row{
			joinedRow("Zero", "0", nil),
			joinedRow("Blank", "", nil),
			joinedRow("Garbage", "n/a", nil),
			joinedRow("Negative", "-1.5", nil),
			joinedRow("Played", "1.5", map[string]string{"Gls": "1"}),
		}}

		convey.Convey("Then only rows with 90s > 0 survive", func() {
			records := derive.Records(table)
			convey.So(records, convey.ShouldHaveLength, 1)
			convey.So(records[0].Player, convey.ShouldEqual, "Played")
			for _, r := range records {
				convey.So(r.Nineties, convey.ShouldBeGreaterThan, 0)
			}
		})

		convey.Convey("And rates are rounded to two decimals", func() {
			records := derive.Records(table)
			convey.So(records[0].Gls90, convey.ShouldEqual, 0.67)
		})
	})

	convey.Convey("Given malformed counting stats", t, func() {
		table := model.Table{Rows: []model.Row{
			joinedRow("A. Smith", "2", map[string]string{"Gls": "x", "Att": "1,234", "Sh": ""}),
		}}

		convey.Convey("Then they coerce to zero instead of failing", func() {
			records := derive.Records(table)
			convey.So(records, convey.ShouldHaveLength, 1)
			convey.So(records[0].Gls, convey.ShouldEqual, 0.0)
			convey.So(records[0].Gls90, convey.ShouldEqual, 0.0)
			convey.So(records[0].Sh90, convey.ShouldEqual, 0.0)
			convey.So(records[0].PassAtt90, convey.ShouldEqual, 617.0)
		})
	})
}

func TestNumber(t *testing.T) {
	convey.Convey("Given cell values", t, func() {
		convey.So(derive.Number("12"), convey.ShouldEqual, 12.0)
		convey.So(derive.Number(" 3.5 "), convey.ShouldEqual, 3.5)
		convey.So(derive.Number("1,350"), convey.ShouldEqual, 1350.0)
		convey.So(derive.Number("1\u00a0350"), convey.ShouldEqual, 1350.0)
		convey.So(derive.Number(""), convey.ShouldEqual, 0.0)
		convey.So(derive.Number("NaN"), convey.ShouldEqual, 0.0)
		convey.So(derive.Number("Inf"), convey.ShouldEqual, 0.0)
		convey.So(derive.Number("25-100"), convey.ShouldEqual, 0.0)
	})
}

func TestRound2(t *testing.T) {
	convey.Convey("Given values on a rounding boundary", t, func() {
		convey.So(derive.Round2(0.125), convey.ShouldEqual, 0.13)
		convey.So(derive.Round2(-0.125), convey.ShouldEqual, -0.13)
		convey.So(derive.Round2(1.0/3.0), convey.ShouldEqual, 0.33)
	})
}

func TestRatesTable(t *testing.T) {
	convey.Convey("Given the configured rate pairs", t, func() {
		names := make([]string, 0, len(derive.Rates))
		for _, r := range derive.Rates {
			names = append(names, r.Name)
		}

		convey.Convey("Then every derived field is present once", func() {
			convey.So(names, convey.ShouldResemble, []string{"Gls_90", "Ast_90", "Sh_90", "SoT_90", "Pass_Att_90", "Fls_90", "Fld_90"})
		})
	})
}
