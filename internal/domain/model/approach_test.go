package model_test

import (
	"testing"
	"time"

	model "github.com/okian/neodb/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestNewCloseApproach(t *testing.T) {
	convey.Convey("Given a raw close-approach record", t, func() {
		convey.Convey("When the time is well formed", func() {
			ca := model.NewCloseApproach(model.ApproachRecord{
				Designation: "433",
				Time:        "2020-Jan-01 00:54",
				Distance:    0.422,
				Velocity:    5.62,
			})

			convey.Convey("Then it is parsed as UTC and formatted without seconds", func() {
				convey.So(ca.Time, convey.ShouldEqual, time.Date(2020, time.January, 1, 0, 54, 0, 0, time.UTC))
				convey.So(ca.TimeStr(), convey.ShouldEqual, "2020-01-01 00:54")
				convey.So(ca.Date(), convey.ShouldEqual, time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC))
				convey.So(ca.NEO, convey.ShouldBeNil)
				convey.So(ca.String(), convey.ShouldContainSubstring, "unknown NEO")
			})
		})

		convey.Convey("When the time cannot be parsed", func() {
			ca := model.NewCloseApproach(model.ApproachRecord{Designation: "433", Time: "yesterday"})

			convey.Convey("Then time_str renders the placeholder", func() {
				convey.So(ca.HasTime(), convey.ShouldBeFalse)
				convey.So(ca.TimeStr(), convey.ShouldEqual, model.UnknownTime)
			})
		})

		convey.Convey("When the approach is linked", func() {
			ca := model.NewCloseApproach(model.ApproachRecord{Designation: "433", Time: "2020-Jan-01 00:54"})
			ca.NEO = model.NewNearEarthObject(model.NEORecord{Designation: "433", Name: "Eros"})

			convey.Convey("Then its description names the NEO", func() {
				convey.So(ca.String(), convey.ShouldContainSubstring, "433 (Eros)")
			})
		})
	})
}

func TestParseDate(t *testing.T) {
	convey.Convey("Given calendar date strings", t, func() {
		d, err := model.ParseDate("2020-01-01")
		convey.So(err, convey.ShouldBeNil)
		convey.So(d, convey.ShouldEqual, time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC))

		_, err = model.ParseDate("01/01/2020")
		convey.So(err, convey.ShouldNotBeNil)
	})
}
