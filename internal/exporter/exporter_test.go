package exporter_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"

	"github.com/runeset/elotrace/internal/domain/model"
	"github.com/runeset/elotrace/internal/exporter"
)

func sampleTable(smoothed, delta bool) model.Table {
	return model.Table{
		HasSmoothed: smoothed,
		HasDelta:    delta,
		Rows: []model.Row{
			{Entity: "Arsenal", Date: model.Date(2020, 1, 1), Rating: 1800, Smoothed: 1800, Delta: 0},
			{Entity: "Arsenal", Date: model.Date(2020, 6, 1), Rating: 1850.5, Smoothed: 1825.25, Delta: 50.5},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	convey.Convey("Given a series table", t, func() {
		convey.Convey("When exported without derived columns", func() {
			var buf bytes.Buffer
			err := exporter.WriteCSV(&buf, sampleTable(false, false))

			convey.Convey("Then it should carry the base column set", func() {
				convey.So(err, convey.ShouldBeNil)
				rows, readErr := csv.NewReader(&buf).ReadAll()
				convey.So(readErr, convey.ShouldBeNil)
				convey.So(rows, convey.ShouldHaveLength, 3)
				convey.So(rows[0], convey.ShouldResemble, []string{"date", "entity", "rating"})
				convey.So(rows[1], convey.ShouldResemble, []string{"2020-01-01", "Arsenal", "1800"})
				convey.So(rows[2], convey.ShouldResemble, []string{"2020-06-01", "Arsenal", "1850.5"})
			})
		})

		convey.Convey("When exported with smoothing and delta active", func() {
			var buf bytes.Buffer
			err := exporter.WriteCSV(&buf, sampleTable(true, true))

			convey.Convey("Then both derived columns should appear", func() {
				convey.So(err, convey.ShouldBeNil)
				rows, readErr := csv.NewReader(&buf).ReadAll()
				convey.So(readErr, convey.ShouldBeNil)
				convey.So(rows[0], convey.ShouldResemble, []string{"date", "entity", "rating", "smoothed", "delta"})
				convey.So(rows[2], convey.ShouldResemble, []string{"2020-06-01", "Arsenal", "1850.5", "1825.25", "50.5"})
			})
		})

		convey.Convey("When exported with a BOM", func() {
			var buf bytes.Buffer
			err := exporter.WriteCSV(&buf, sampleTable(false, false), exporter.WithBOM())

			convey.Convey("Then the output should start with the UTF-8 mark", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(buf.Bytes()[:3], convey.ShouldResemble, []byte{0xEF, 0xBB, 0xBF})
			})
		})

		convey.Convey("When the table is empty", func() {
			var buf bytes.Buffer
			err := exporter.WriteCSV(&buf, model.Table{})

			convey.Convey("Then only the header should be written", func() {
				convey.So(err, convey.ShouldBeNil)
				rows, readErr := csv.NewReader(&buf).ReadAll()
				convey.So(readErr, convey.ShouldBeNil)
				convey.So(rows, convey.ShouldHaveLength, 1)
			})
		})
	})
}

func TestWriteXLSX(t *testing.T) {
	convey.Convey("Given a series table", t, func() {
		convey.Convey("When exported as a spreadsheet", func() {
			var buf bytes.Buffer
			err := exporter.WriteXLSX(&buf, sampleTable(true, false))

			convey.Convey("Then the workbook should round-trip with the same cells", func() {
				convey.So(err, convey.ShouldBeNil)

				f, openErr := excelize.OpenReader(&buf)
				convey.So(openErr, convey.ShouldBeNil)
				defer func() { _ = f.Close() }()

				rows, rowsErr := f.GetRows("Series")
				convey.So(rowsErr, convey.ShouldBeNil)
				convey.So(rows, convey.ShouldHaveLength, 3)
				convey.So(rows[0], convey.ShouldResemble, []string{"date", "entity", "rating", "smoothed"})
				convey.So(rows[1][0], convey.ShouldEqual, "2020-01-01")
				convey.So(rows[1][1], convey.ShouldEqual, "Arsenal")
				convey.So(rows[2][2], convey.ShouldEqual, "1850.5")
			})
		})
	})
}
