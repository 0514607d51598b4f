package series_test

import (
	"testing"
	"time"

	"github.com/runeset/elotrace/internal/domain/model"
	"github.com/runeset/elotrace/internal/domain/series"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuild(t *testing.T) {
	Convey("Given step point lists from several entities", t, func() {
		valerenga := []model.StepPoint{
			{Entity: "valerenga", Date: model.Date(2020, 1, 1), Rating: 1500},
			{Entity: "valerenga", Date: model.Date(2020, 6, 1), Rating: 1500},
			{Entity: "valerenga", Date: model.Date(2020, 6, 1), Rating: 1550},
		}
		brann := []model.StepPoint{
			{Entity: "brann", Date: model.Date(2020, 3, 1), Rating: 1480},
		}

		Convey("When building a table", func() {
			tbl := series.Build(valerenga, brann)

			Convey("Then rows are sorted by entity then date", func() {
				So(tbl.Len(), ShouldEqual, 4)
				So(tbl.Rows[0].Entity, ShouldEqual, "brann")
				So(tbl.Rows[1].Entity, ShouldEqual, "valerenga")
				So(tbl.Entities(), ShouldResemble, []string{"brann", "valerenga"})
			})

			Convey("And a same-date jump pair keeps its emission order", func() {
				So(tbl.Rows[2].Date, ShouldEqual, model.Date(2020, 6, 1))
				So(tbl.Rows[2].Rating, ShouldEqual, 1500)
				So(tbl.Rows[3].Date, ShouldEqual, model.Date(2020, 6, 1))
				So(tbl.Rows[3].Rating, ShouldEqual, 1550)
			})

			Convey("And no derived columns are flagged yet", func() {
				So(tbl.HasSmoothed, ShouldBeFalse)
				So(tbl.HasDelta, ShouldBeFalse)
			})
		})

		Convey("When building from nothing", func() {
			So(series.Build().Empty(), ShouldBeTrue)
			So(series.Build(nil, nil).Empty(), ShouldBeTrue)
		})
	})
}

func TestFilterRange(t *testing.T) {
	Convey("Given an assembled table", t, func() {
		tbl := series.Build([]model.StepPoint{
			{Entity: "valerenga", Date: model.Date(2019, 12, 31), Rating: 1490},
			{Entity: "valerenga", Date: model.Date(2020, 1, 1), Rating: 1500},
			{Entity: "valerenga", Date: model.Date(2020, 6, 1), Rating: 1550},
			{Entity: "valerenga", Date: model.Date(2021, 1, 2), Rating: 1560},
		})

		Convey("When both bounds are zero", func() {
			got := series.FilterRange(tbl, time.Time{}, time.Time{})

			Convey("Then every row survives", func() {
				So(got.Len(), ShouldEqual, tbl.Len())
			})
		})

		Convey("When only a start date is given", func() {
			got := series.FilterRange(tbl, model.Date(2020, 1, 1), time.Time{})

			Convey("Then earlier rows drop and the boundary row stays", func() {
				So(got.Len(), ShouldEqual, 3)
				So(got.Rows[0].Date, ShouldEqual, model.Date(2020, 1, 1))
			})
		})

		Convey("When only an end date is given", func() {
			got := series.FilterRange(tbl, time.Time{}, model.Date(2020, 6, 1))

			Convey("Then the end date's whole day is kept and later rows drop", func() {
				So(got.Len(), ShouldEqual, 3)
				So(got.Rows[got.Len()-1].Date, ShouldEqual, model.Date(2020, 6, 1))
			})
		})

		Convey("When the range excludes every row of the entity", func() {
			got := series.FilterRange(tbl, model.Date(2023, 1, 1), model.Date(2023, 12, 31))

			Convey("Then the entity has no rows and that is not an error", func() {
				So(got.Empty(), ShouldBeTrue)
				So(got.Entities(), ShouldBeEmpty)
			})
		})

		Convey("When filtering", func() {
			got := series.FilterRange(tbl, model.Date(2020, 1, 1), model.Date(2020, 6, 1))
			got.Rows[0].Rating = -1

			Convey("Then the input table is left untouched", func() {
				So(tbl.Rows[1].Rating, ShouldEqual, 1500)
			})
		})
	})
}

func TestSummarize(t *testing.T) {
	Convey("Given a table with only raw ratings", t, func() {
		tbl := series.Build([]model.StepPoint{
			{Entity: "valerenga", Date: model.Date(2020, 1, 1), Rating: 1500},
			{Entity: "valerenga", Date: model.Date(2020, 6, 1), Rating: 1500},
			{Entity: "valerenga", Date: model.Date(2020, 6, 1), Rating: 1550},
		})

		Convey("When summarizing a present entity", func() {
			s, ok := series.Summarize(tbl, "valerenga")

			Convey("Then latest, first and change come from the raw column", func() {
				So(ok, ShouldBeTrue)
				So(s.Basis, ShouldEqual, model.BasisRating)
				So(s.First, ShouldEqual, 1500)
				So(s.Latest, ShouldEqual, 1550)
				So(s.Change, ShouldEqual, 50)
			})
		})

		Convey("When summarizing an absent entity", func() {
			_, ok := series.Summarize(tbl, "brann")

			Convey("Then there is no summary", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})

	Convey("Given a table with a smoothed column", t, func() {
		tbl := model.Table{
			HasSmoothed: true,
			Rows: []model.Row{
				{Entity: "valerenga", Date: model.Date(2020, 1, 1), Rating: 1500, Smoothed: 1500},
				{Entity: "valerenga", Date: model.Date(2020, 6, 1), Rating: 1550, Smoothed: 1525},
			},
		}

		Convey("When summarizing", func() {
			s, ok := series.Summarize(tbl, "valerenga")

			Convey("Then the smoothed column is the basis", func() {
				So(ok, ShouldBeTrue)
				So(s.Basis, ShouldEqual, model.BasisSmoothed)
				So(s.Latest, ShouldEqual, 1525)
				So(s.Change, ShouldEqual, 25)
			})
		})
	})
}
