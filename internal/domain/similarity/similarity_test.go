package similarity_test

import (
	"testing"

	"github.com/tourstat/compass/internal/domain/model"
	"github.com/tourstat/compass/internal/domain/similarity"
	. "github.com/smartystreets/goconvey/convey"
)

func norm(id string, values map[string]model.Scalar) model.NormalizedSet {
	return model.NormalizedSet{EntityID: id, Values: values}
}

func TestNearest(t *testing.T) {
	Convey("Given three entities on two indicators", t, func() {
		sets := []model.NormalizedSet{
			norm("a", map[string]model.Scalar{"x": model.Some(0), "y": model.Some(0)}),
			norm("b", map[string]model.Scalar{"x": model.Some(0.1), "y": model.Some(0.1)}),
			norm("c", map[string]model.Scalar{"x": model.Some(1), "y": model.Some(1)}),
		}

		Convey("When asking for one nearest peer", func() {
			peers := similarity.Nearest(sets, []string{"x", "y"}, 1)

			Convey("Then each entity gets its closest neighbor", func() {
				So(peers["a"], ShouldHaveLength, 1)
				So(peers["a"][0].EntityID, ShouldEqual, "b")
				So(peers["c"][0].EntityID, ShouldEqual, "b")
			})
		})

		Convey("When asking for more peers than exist", func() {
			peers := similarity.Nearest(sets, []string{"x", "y"}, 10)

			Convey("Then all other entities are returned in distance order", func() {
				So(peers["a"], ShouldHaveLength, 2)
				So(peers["a"][0].EntityID, ShouldEqual, "b")
				So(peers["a"][1].EntityID, ShouldEqual, "c")
			})
		})

		Convey("When an indicator is null on one side", func() {
			sets[1].Values["y"] = model.Null()
			peers := similarity.Nearest(sets, []string{"x", "y"}, 2)

			Convey("Then the pair is compared on the shared subset only", func() {
				So(peers["a"][0].EntityID, ShouldEqual, "b")
				So(peers["a"][0].Distance, ShouldAlmostEqual, 0.1)
			})
		})

		Convey("When a pair shares no indicator", func() {
			sets = []model.NormalizedSet{
				norm("a", map[string]model.Scalar{"x": model.Some(0.5), "y": model.Null()}),
				norm("b", map[string]model.Scalar{"x": model.Null(), "y": model.Some(0.5)}),
			}
			peers := similarity.Nearest(sets, []string{"x", "y"}, 1)

			Convey("Then no peer link is produced", func() {
				So(peers["a"], ShouldBeEmpty)
				So(peers["b"], ShouldBeEmpty)
			})
		})
	})
}
