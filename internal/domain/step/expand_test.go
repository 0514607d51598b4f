package step_test

import (
	"math"
	"testing"

	"github.com/runeset/elotrace/internal/domain/model"
	"github.com/runeset/elotrace/internal/domain/step"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFromIntervals(t *testing.T) {
	Convey("Given interval records", t, func() {
		Convey("When a record is closed", func() {
			pts := step.FromIntervals([]model.IntervalRecord{{
				Entity: "valerenga",
				From:   model.Date(2020, 1, 1),
				To:     model.Date(2020, 6, 1),
				Rating: 1500,
			}})

			Convey("Then it expands to a point at each boundary", func() {
				So(pts, ShouldHaveLength, 2)
				So(pts[0].Date, ShouldEqual, model.Date(2020, 1, 1))
				So(pts[0].Rating, ShouldEqual, 1500)
				So(pts[1].Date, ShouldEqual, model.Date(2020, 6, 1))
				So(pts[1].Rating, ShouldEqual, 1500)
			})
		})

		Convey("When a record is open-ended", func() {
			pts := step.FromIntervals([]model.IntervalRecord{{
				Entity: "valerenga",
				From:   model.Date(2020, 6, 1),
				Rating: 1550,
			}})

			Convey("Then it expands to a single point at From", func() {
				So(pts, ShouldHaveLength, 1)
				So(pts[0].Date, ShouldEqual, model.Date(2020, 6, 1))
				So(pts[0].Rating, ShouldEqual, 1550)
			})
		})

		Convey("When a closed record is followed by an open one", func() {
			pts := step.FromIntervals([]model.IntervalRecord{
				{Entity: "valerenga", From: model.Date(2020, 1, 1), To: model.Date(2020, 6, 1), Rating: 1500},
				{Entity: "valerenga", From: model.Date(2020, 6, 1), Rating: 1550},
			})

			Convey("Then the old rating holds up to the boundary and the new one jumps in", func() {
				So(pts, ShouldHaveLength, 3)
				So(pts[0], ShouldResemble, model.StepPoint{Entity: "valerenga", Date: model.Date(2020, 1, 1), Rating: 1500})
				So(pts[1], ShouldResemble, model.StepPoint{Entity: "valerenga", Date: model.Date(2020, 6, 1), Rating: 1500})
				So(pts[2], ShouldResemble, model.StepPoint{Entity: "valerenga", Date: model.Date(2020, 6, 1), Rating: 1550})
			})
		})

		Convey("When records are invalid", func() {
			pts := step.FromIntervals([]model.IntervalRecord{
				{Entity: "a", Rating: 1500},                                                                // no From
				{Entity: "a", From: model.Date(2021, 1, 1), To: model.Date(2020, 1, 1), Rating: 1500},      // To before From
				{Entity: "a", From: model.Date(2020, 1, 1), Rating: math.NaN()},                            // bad rating
				{Entity: "a", From: model.Date(2020, 1, 1), To: model.Date(2020, 2, 1), Rating: 1480},      // valid
			})

			Convey("Then only valid records contribute points", func() {
				So(pts, ShouldHaveLength, 2)
				So(pts[0].Rating, ShouldEqual, 1480)
			})
		})

		Convey("When there are no records", func() {
			So(step.FromIntervals(nil), ShouldBeEmpty)
			So(step.FromIntervals([]model.IntervalRecord{}), ShouldBeEmpty)
		})
	})
}

func TestFromObservations(t *testing.T) {
	Convey("Given an ascending observation sequence", t, func() {
		Convey("When there is a single observation", func() {
			pts := step.FromObservations([]model.Observation{
				{Entity: "Norway", Date: model.Date(2019, 12, 31), Rating: 1700},
			})

			Convey("Then it contributes only its own point", func() {
				So(pts, ShouldHaveLength, 1)
				So(pts[0].Rating, ShouldEqual, 1700)
			})
		})

		Convey("When there are two annual observations", func() {
			pts := step.FromObservations([]model.Observation{
				{Entity: "Norway", Date: model.Date(2019, 12, 31), Rating: 1700},
				{Entity: "Norway", Date: model.Date(2020, 12, 31), Rating: 1750},
			})

			Convey("Then the old rating holds until the next date, then jumps", func() {
				So(pts, ShouldHaveLength, 3)
				So(pts[0], ShouldResemble, model.StepPoint{Entity: "Norway", Date: model.Date(2019, 12, 31), Rating: 1700})
				So(pts[1], ShouldResemble, model.StepPoint{Entity: "Norway", Date: model.Date(2020, 12, 31), Rating: 1700})
				So(pts[2], ShouldResemble, model.StepPoint{Entity: "Norway", Date: model.Date(2020, 12, 31), Rating: 1750})
			})
		})

		Convey("When there are n observations", func() {
			obs := make([]model.Observation, 0, 7)
			for i := 0; i < 7; i++ {
				obs = append(obs, model.Observation{
					Entity: "Norway",
					Date:   model.Date(2014+i, 12, 31),
					Rating: 1700 + float64(i),
				})
			}
			pts := step.FromObservations(obs)

			Convey("Then exactly 2n-1 points come out", func() {
				So(pts, ShouldHaveLength, 13)
			})

			Convey("And dates never decrease", func() {
				for i := 1; i < len(pts); i++ {
					So(pts[i].Date.Before(pts[i-1].Date), ShouldBeFalse)
				}
			})
		})

		Convey("When there are no observations", func() {
			So(step.FromObservations(nil), ShouldBeEmpty)
		})
	})
}

func TestExpand(t *testing.T) {
	Convey("Given a raw series", t, func() {
		Convey("When it carries interval records", func() {
			s := model.RawSeries{
				Entity: "valerenga",
				Kind:   model.SourceClub,
				Intervals: []model.IntervalRecord{
					{Entity: "valerenga", From: model.Date(2020, 1, 1), To: model.Date(2020, 6, 1), Rating: 1500},
				},
			}

			Convey("Then the interval expansion applies", func() {
				So(step.Expand(s), ShouldHaveLength, 2)
			})
		})

		Convey("When it carries observations", func() {
			s := model.RawSeries{
				Entity: "Norway",
				Kind:   model.SourceNational,
				Obs: []model.Observation{
					{Entity: "Norway", Date: model.Date(2019, 12, 31), Rating: 1700},
					{Entity: "Norway", Date: model.Date(2020, 12, 31), Rating: 1750},
				},
			}

			Convey("Then the observation expansion applies", func() {
				So(step.Expand(s), ShouldHaveLength, 3)
			})
		})

		Convey("When it is empty", func() {
			So(step.Expand(model.RawSeries{Entity: "x"}), ShouldBeEmpty)
		})
	})
}
