package normalize_test

import (
	"testing"

	"github.com/tourstat/compass/internal/domain/model"
	"github.com/tourstat/compass/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

func set(id string, values map[string]model.Scalar) model.IndicatorSet {
	return model.IndicatorSet{EntityID: id, Values: values}
}

func TestNormalize(t *testing.T) {
	Convey("Given a population of four entities", t, func() {
		population := []model.IndicatorSet{
			set("a", map[string]model.Scalar{"x": model.Some(10)}),
			set("b", map[string]model.Scalar{"x": model.Some(20)}),
			set("c", map[string]model.Scalar{"x": model.Some(30)}),
			set("d", map[string]model.Scalar{"x": model.Some(40)}),
		}

		Convey("When normalizing", func() {
			res := normalize.Normalize(population)

			Convey("Then min maps to 0, max to 1, interior proportionally", func() {
				So(res.Sets[0].Get("x").Float64, ShouldAlmostEqual, 0.0)
				So(res.Sets[1].Get("x").Float64, ShouldAlmostEqual, 1.0/3)
				So(res.Sets[2].Get("x").Float64, ShouldAlmostEqual, 2.0/3)
				So(res.Sets[3].Get("x").Float64, ShouldAlmostEqual, 1.0)
			})

			Convey("And every normalized value lies in [0,1]", func() {
				for _, s := range res.Sets {
					v := s.Get("x")
					So(v.Valid, ShouldBeTrue)
					So(v.Float64, ShouldBeBetweenOrEqual, 0, 1)
				}
			})

			Convey("And the stats record the extremes", func() {
				So(res.Stats["x"].Min, ShouldEqual, 10)
				So(res.Stats["x"].Max, ShouldEqual, 40)
				So(res.Stats["x"].Degenerate, ShouldBeFalse)
			})
		})
	})

	Convey("Given every entity shares the same raw value", t, func() {
		population := []model.IndicatorSet{
			set("a", map[string]model.Scalar{"x": model.Some(7)}),
			set("b", map[string]model.Scalar{"x": model.Some(7)}),
			set("c", map[string]model.Scalar{"x": model.Some(7)}),
			set("d", map[string]model.Scalar{"x": model.Some(7)}),
		}

		Convey("When normalizing", func() {
			res := normalize.Normalize(population)

			Convey("Then the value is null for all entities, not 0 or 1", func() {
				for _, s := range res.Sets {
					So(s.Get("x").Valid, ShouldBeFalse)
				}
				So(res.Stats["x"].Degenerate, ShouldBeTrue)
			})
		})
	})

	Convey("Given null raw values in the population", t, func() {
		population := []model.IndicatorSet{
			set("a", map[string]model.Scalar{"x": model.Some(1), "y": model.Null()}),
			set("b", map[string]model.Scalar{"x": model.Some(3), "y": model.Some(5)}),
			set("c", map[string]model.Scalar{"x": model.Null(), "y": model.Some(9)}),
		}

		Convey("When normalizing", func() {
			res := normalize.Normalize(population)

			Convey("Then nulls stay null and are excluded from the scale", func() {
				So(res.Sets[0].Get("y").Valid, ShouldBeFalse)
				So(res.Sets[2].Get("x").Valid, ShouldBeFalse)
				So(res.Sets[1].Get("y").Float64, ShouldAlmostEqual, 0.0)
				So(res.Sets[2].Get("y").Float64, ShouldAlmostEqual, 1.0)
			})
		})
	})

	Convey("Given raw values in a strictly increasing order", t, func() {
		population := []model.IndicatorSet{
			set("low", map[string]model.Scalar{"x": model.Some(2)}),
			set("high", map[string]model.Scalar{"x": model.Some(5)}),
		}

		Convey("When normalizing", func() {
			res := normalize.Normalize(population)

			Convey("Then normalization preserves the order", func() {
				So(res.Sets[1].Get("x").Float64, ShouldBeGreaterThanOrEqualTo,
					res.Sets[0].Get("x").Float64)
			})
		})
	})
}
