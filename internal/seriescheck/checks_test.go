package seriescheck

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func fv(v float64) *float64 { return &v }

func validResponse() *SeriesResponse {
	return &SeriesResponse{
		Points: []Point{
			{Date: "2020-01-01", Entity: "Arsenal", Rating: 1500},
			{Date: "2020-06-01", Entity: "Arsenal", Rating: 1500},
			{Date: "2020-06-01", Entity: "Arsenal", Rating: 1550},
			{Date: "2020-02-01", Entity: "Chelsea", Rating: 1480},
			{Date: "2020-07-01", Entity: "Chelsea", Rating: 1490},
		},
		Columns: []string{"date", "entity", "rating"},
		Summary: &Summary{Entity: "Arsenal", Basis: "rating", Latest: 1550, First: 1500, Change: 50},
		Scale:   Scale{Type: "linear", Auto: true},
	}
}

func TestResponseChecks(t *testing.T) {
	convey.Convey("Given a well-formed series response", t, func() {
		config := &Config{Team: "Arsenal"}

		convey.Convey("Then the full battery passes", func() {
			stats := &Stats{}
			err := runChecks(config, validResponse(), stats)

			convey.So(err, convey.ShouldBeNil)
			convey.So(stats.ChecksRun, convey.ShouldEqual, len(responseChecks))
			convey.So(stats.ChecksFailed, convey.ShouldEqual, 0)
		})

		convey.Convey("When dates run backwards within a team", func() {
			res := validResponse()
			res.Points[1].Date = "2019-01-01"

			convey.So(checkOrdering(config, res), convey.ShouldNotBeNil)
		})

		convey.Convey("When a team's rows appear in two blocks", func() {
			res := validResponse()
			res.Points = append(res.Points, Point{Date: "2021-01-01", Entity: "Arsenal", Rating: 1560})

			convey.So(checkOrdering(config, res), convey.ShouldNotBeNil)
		})

		convey.Convey("When jump pairs share a date", func() {
			convey.So(checkOrdering(config, validResponse()), convey.ShouldBeNil)
		})

		convey.Convey("When a point escapes the requested range", func() {
			bounded := &Config{Team: "Arsenal", From: "2020-03-01"}

			convey.So(checkDateBounds(bounded, validResponse()), convey.ShouldNotBeNil)
		})

		convey.Convey("When the smoothed column is missing despite a window", func() {
			smoothed := &Config{Team: "Arsenal", Window: 5}

			convey.So(checkColumns(smoothed, validResponse()), convey.ShouldNotBeNil)
		})

		convey.Convey("When smoothing was requested and delivered", func() {
			smoothed := &Config{Team: "Arsenal", Window: 5}
			res := validResponse()
			res.Columns = append(res.Columns, "smoothed")
			for i := range res.Points {
				res.Points[i].Smoothed = fv(res.Points[i].Rating)
			}
			res.Summary.Basis = "smoothed"

			convey.So(checkColumns(smoothed, res), convey.ShouldBeNil)
			convey.So(checkSummary(smoothed, res), convey.ShouldBeNil)
		})

		convey.Convey("When the summary arithmetic is off", func() {
			res := validResponse()
			res.Summary.Change = 49

			convey.So(checkSummary(config, res), convey.ShouldNotBeNil)
		})

		convey.Convey("When the summary is absent with a matching warning", func() {
			res := validResponse()
			res.Summary = nil
			res.Warnings = []Warning{{Entity: "Arsenal", Kind: "transport", Message: "timeout"}}

			convey.So(checkSummary(config, res), convey.ShouldBeNil)
		})

		convey.Convey("When a rebased series does not start at zero", func() {
			rebased := &Config{Team: "Arsenal", Delta: true}
			res := validResponse()
			res.Columns = append(res.Columns, "delta")
			for i := range res.Points {
				res.Points[i].Delta = fv(5)
			}

			convey.So(checkDeltaBaseline(rebased, res), convey.ShouldNotBeNil)

			convey.Convey("And passes once the baseline is zeroed", func() {
				for i := range res.Points {
					res.Points[i].Delta = fv(0)
				}
				convey.So(checkDeltaBaseline(rebased, res), convey.ShouldBeNil)
			})
		})

		convey.Convey("When a rebased series claims a log axis", func() {
			rebased := &Config{Team: "Arsenal", Delta: true}
			res := validResponse()
			res.Scale = Scale{Type: "log", Min: 100, Max: 2000}

			convey.So(checkScale(rebased, res), convey.ShouldNotBeNil)
		})
	})
}

func TestSeriesQuery(t *testing.T) {
	convey.Convey("Given a full configuration", t, func() {
		config := &Config{
			Team:    "Brazil",
			Compare: "Germany,Italy",
			Source:  "national",
			Window:  5,
			Delta:   true,
			Years:   "1950-2000",
		}

		convey.Convey("When building the query string", func() {
			qs, err := seriesQuery(config)

			convey.Convey("Then every flag is represented", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(qs, convey.ShouldContainSubstring, "team=Brazil")
				convey.So(qs, convey.ShouldContainSubstring, "compare=Germany%2CItaly")
				convey.So(qs, convey.ShouldContainSubstring, "source=national")
				convey.So(qs, convey.ShouldContainSubstring, "window=5")
				convey.So(qs, convey.ShouldContainSubstring, "delta=true")
				convey.So(qs, convey.ShouldContainSubstring, "year_from=1950")
				convey.So(qs, convey.ShouldContainSubstring, "year_to=2000")
			})
		})

		convey.Convey("When the year range is malformed", func() {
			config.Years = "1950"
			_, err := seriesQuery(config)

			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
