package chart_test

import (
	"testing"

	"github.com/okian/challengeboard/internal/domain/chart"
	"github.com/okian/challengeboard/internal/domain/model"
	"github.com/okian/challengeboard/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestProject(t *testing.T) {
	Convey("Given entries in submission order", t, func() {
		all := []model.Entry{
			{Seq: 0, Name: "Ann", Value: 30},
			{Seq: 1, Name: "Bo", Value: 50},
			{Seq: 2, Name: "Cy", Value: 10},
		}

		Convey("When projecting", func() {
			bars := chart.Project(all)

			Convey("Then bars follow submission order, not rank", func() {
				So(bars, ShouldResemble, []types.Bar{
					{Label: "Ann", Value: 30},
					{Label: "Bo", Value: 50},
					{Label: "Cy", Value: 10},
				})
			})
		})

		Convey("When the store is empty", func() {
			So(chart.Project(nil), ShouldBeEmpty)
			So(chart.Project(nil), ShouldNotBeNil)
		})
	})
}
