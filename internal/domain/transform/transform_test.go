package transform_test

import (
	"testing"

	"github.com/runeset/elotrace/internal/domain/model"
	"github.com/runeset/elotrace/internal/domain/series"
	"github.com/runeset/elotrace/internal/domain/transform"
	. "github.com/smartystreets/goconvey/convey"
)

func input() model.Table {
	return series.Build(
		[]model.StepPoint{
			{Entity: "valerenga", Date: model.Date(2020, 1, 1), Rating: 1500},
			{Entity: "valerenga", Date: model.Date(2020, 2, 1), Rating: 1520},
			{Entity: "valerenga", Date: model.Date(2020, 3, 1), Rating: 1480},
			{Entity: "valerenga", Date: model.Date(2020, 4, 1), Rating: 1560},
		},
		[]model.StepPoint{
			{Entity: "brann", Date: model.Date(2020, 1, 1), Rating: 1400},
			{Entity: "brann", Date: model.Date(2020, 2, 1), Rating: 1440},
		},
	)
}

func TestSmoothing(t *testing.T) {
	Convey("Given an assembled table", t, func() {
		tbl := input()

		Convey("When the window is off", func() {
			got := transform.Apply(tbl)

			Convey("Then smoothed mirrors the raw rating on every row", func() {
				So(got.HasSmoothed, ShouldBeFalse)
				for _, r := range got.Rows {
					So(r.Smoothed, ShouldEqual, r.Rating)
				}
			})
		})

		Convey("When the window covers three entries", func() {
			got := transform.Apply(tbl, transform.WithWindow(3))
			rows := got.EntityRows("valerenga")

			Convey("Then the first point is a partial window of one", func() {
				So(got.HasSmoothed, ShouldBeTrue)
				So(rows[0].Smoothed, ShouldEqual, rows[0].Rating)
			})

			Convey("And later points average the trailing entries", func() {
				So(rows[1].Smoothed, ShouldEqual, (1500.0+1520)/2)
				So(rows[2].Smoothed, ShouldEqual, (1500.0+1520+1480)/3)
				So(rows[3].Smoothed, ShouldEqual, (1520.0+1480+1560)/3)
			})

			Convey("And each entity is smoothed independently", func() {
				brann := got.EntityRows("brann")
				So(brann[0].Smoothed, ShouldEqual, 1400)
				So(brann[1].Smoothed, ShouldEqual, 1420)
			})

			Convey("And the raw column is untouched", func() {
				So(rows[2].Rating, ShouldEqual, 1480)
			})
		})

		Convey("When the window is one entry", func() {
			got := transform.Apply(tbl, transform.WithWindow(1))

			Convey("Then smoothing is flagged but equals the raw rating", func() {
				So(got.HasSmoothed, ShouldBeTrue)
				for _, r := range got.Rows {
					So(r.Smoothed, ShouldEqual, r.Rating)
				}
			})
		})

		Convey("When the window is negative", func() {
			got := transform.Apply(tbl, transform.WithWindow(-5))

			Convey("Then it is treated as off", func() {
				So(got.HasSmoothed, ShouldBeFalse)
			})
		})
	})
}

func TestDelta(t *testing.T) {
	Convey("Given an assembled table", t, func() {
		tbl := input()

		Convey("When delta is on without smoothing", func() {
			got := transform.Apply(tbl, transform.WithDelta(true))

			Convey("Then every entity's first delta is exactly zero", func() {
				So(got.HasDelta, ShouldBeTrue)
				So(got.EntityRows("valerenga")[0].Delta, ShouldEqual, 0)
				So(got.EntityRows("brann")[0].Delta, ShouldEqual, 0)
			})

			Convey("And later deltas rebase against the raw first value", func() {
				rows := got.EntityRows("valerenga")
				So(rows[1].Delta, ShouldEqual, 20)
				So(rows[2].Delta, ShouldEqual, -20)
				So(rows[3].Delta, ShouldEqual, 60)
			})
		})

		Convey("When delta is on with smoothing", func() {
			got := transform.Apply(tbl, transform.WithWindow(2), transform.WithDelta(true))
			rows := got.EntityRows("valerenga")

			Convey("Then deltas rebase against the smoothed column", func() {
				So(rows[0].Delta, ShouldEqual, 0)
				So(rows[1].Delta, ShouldEqual, rows[1].Smoothed-rows[0].Smoothed)
			})
		})
	})
}

func TestApplyPurity(t *testing.T) {
	Convey("Given an assembled table", t, func() {
		tbl := input()

		Convey("When applying a transform", func() {
			got := transform.Apply(tbl, transform.WithWindow(3), transform.WithDelta(true))
			got.Rows[0].Rating = -1

			Convey("Then the input table is unchanged", func() {
				So(tbl.Rows[0].Rating, ShouldEqual, 1400)
				So(tbl.HasSmoothed, ShouldBeFalse)
				So(tbl.HasDelta, ShouldBeFalse)
			})
		})

		Convey("When applying the same options twice", func() {
			a := transform.Apply(tbl, transform.WithWindow(3), transform.WithDelta(true))
			b := transform.Apply(tbl, transform.WithWindow(3), transform.WithDelta(true))

			Convey("Then the outputs are identical", func() {
				So(a, ShouldResemble, b)
			})
		})

		Convey("When reapplying to an already transformed table", func() {
			once := transform.Apply(tbl, transform.WithWindow(3), transform.WithDelta(true))
			twice := transform.Apply(once, transform.WithWindow(3), transform.WithDelta(true))

			Convey("Then the result does not drift", func() {
				So(twice, ShouldResemble, once)
			})
		})

		Convey("When no options are given", func() {
			got := transform.Apply(tbl)

			Convey("Then rows and flags carry no derived state", func() {
				So(got.HasSmoothed, ShouldBeFalse)
				So(got.HasDelta, ShouldBeFalse)
				So(got.Len(), ShouldEqual, tbl.Len())
			})
		})
	})
}
