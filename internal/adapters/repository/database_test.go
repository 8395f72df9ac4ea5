package repository_test

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/okian/neodb/internal/adapters/repository"
	"github.com/okian/neodb/internal/domain/dedupe"
	"github.com/okian/neodb/internal/domain/filter"
	"github.com/okian/neodb/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func newNEO(designation, name, diameter, hazardous string) *model.NearEarthObject {
	return model.NewNearEarthObject(model.NEORecord{
		Designation: designation,
		Name:        name,
		Diameter:    diameter,
		Hazardous:   hazardous,
	})
}

func newApproach(designation, t string, dist, vel float64) *model.CloseApproach {
	return model.NewCloseApproach(model.ApproachRecord{
		Designation: designation,
		Time:        t,
		Distance:    dist,
		Velocity:    vel,
	})
}

func TestDatabase_ErosExample(t *testing.T) {
	Convey("Given a database with Eros and one approach", t, func() {
		ctx := context.Background()
		eros := newNEO("433", "Eros", "16.84", "N")
		ca := newApproach("433", "2020-Jan-01 00:54", 0.422, 5.62)
		db := repository.New(ctx, []*model.NearEarthObject{eros}, []*model.CloseApproach{ca})

		Convey("Then the NEO is found by designation", func() {
			got, ok := db.GetByDesignation("433")
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, eros)
		})

		Convey("Then the approach and the NEO are linked both ways", func() {
			So(ca.NEO, ShouldEqual, eros)
			So(eros.Approaches, ShouldHaveLength, 1)
			So(eros.Approaches[0], ShouldEqual, ca)
		})

		Convey("Then hazardous filters select accordingly", func() {
			hazardous := slices.Collect(db.Query(filter.Create(filter.WithHazardous(true))...))
			safe := slices.Collect(db.Query(filter.Create(filter.WithHazardous(false))...))
			So(hazardous, ShouldBeEmpty)
			So(safe, ShouldHaveLength, 1)
		})

		Convey("Then limiting the unfiltered query with 0 returns everything", func() {
			got := slices.Collect(filter.Limit(db.Query(), 0))
			So(got, ShouldHaveLength, 1)
		})
	})
}

func TestDatabase_Lookup(t *testing.T) {
	Convey("Given a database with named and unnamed NEOs", t, func() {
		ctx := context.Background()
		unnamed := newNEO("2020 AY1", "", "", "N")
		halley := newNEO("1P", "Halley", "11", "N")
		db := repository.New(ctx, []*model.NearEarthObject{unnamed, halley}, nil)

		Convey("When looking up a missing designation", func() {
			got, ok := db.GetByDesignation("nope")

			Convey("Then an absent result is returned", func() {
				So(ok, ShouldBeFalse)
				So(got, ShouldBeNil)
			})
		})

		Convey("When looking up by name", func() {
			got, ok := db.GetByName("Halley")
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, halley)
		})

		Convey("When looking up an empty name", func() {
			_, ok := db.GetByName("")

			Convey("Then unnamed NEOs do not match", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When looking up an unknown name", func() {
			_, ok := db.GetByName("Apophis")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestDatabase_DuplicateDesignations(t *testing.T) {
	Convey("Given two NEOs with the same designation", t, func() {
		ctx := context.Background()
		first := newNEO("433", "Eros", "16.84", "N")
		second := newNEO("433", "Eros II", "17", "Y")
		ca := newApproach("433", "2020-Jan-01 00:54", 0.422, 5.62)
		tracker := dedupe.NewTracker()
		db := repository.New(ctx, []*model.NearEarthObject{first, second}, []*model.CloseApproach{ca},
			repository.WithDuplicateTracker(tracker))

		Convey("Then the last one wins the index", func() {
			got, ok := db.GetByDesignation("433")
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, second)
		})

		Convey("Then approaches link to the winner only", func() {
			So(ca.NEO, ShouldEqual, second)
			So(first.Approaches, ShouldBeEmpty)
			So(second.Approaches, ShouldHaveLength, 1)
		})

		Convey("Then the shadowed record is not found by name", func() {
			_, ok := db.GetByName("Eros")
			So(ok, ShouldBeFalse)
		})

		Convey("Then both remain in the raw collection and the repeat is counted", func() {
			So(db.NEOs(), ShouldHaveLength, 2)
			So(db.Stats().IndexedNEOs, ShouldEqual, 1)
			So(db.Stats().DuplicateDesignations, ShouldEqual, 1)
			So(tracker.Duplicates(), ShouldResemble, []string{"433"})
		})
	})
}

func TestDatabase_NameLookupFollowsFirstSeenOrder(t *testing.T) {
	Convey("Given a repeated designation that sorts before another NEO with the same name", t, func() {
		ctx := context.Background()
		early := newNEO("A", "Foo", "1", "N")
		other := newNEO("B", "Foo", "2", "N")
		late := newNEO("A", "Foo", "3", "N")
		db := repository.New(ctx, []*model.NearEarthObject{early, other, late}, nil)

		Convey("When looking up the shared name", func() {
			got, ok := db.GetByName("Foo")

			Convey("Then the designation seen first wins, holding its latest record", func() {
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, late)
				So(got.Designation, ShouldEqual, "A")
				So(got.Diameter, ShouldEqual, 3)
			})
		})

		Convey("Then the name result agrees with the designation index", func() {
			byName, _ := db.GetByName("Foo")
			byDesignation, _ := db.GetByDesignation("A")
			So(byName, ShouldEqual, byDesignation)
		})
	})
}

func TestDatabase_Linking(t *testing.T) {
	Convey("Given approaches for several NEOs and one orphan", t, func() {
		ctx := context.Background()
		a := newNEO("A", "", "1", "N")
		b := newNEO("B", "", "2", "Y")
		a1 := newApproach("A", "2020-Jan-01 00:00", 0.1, 1)
		b1 := newApproach("B", "2020-Jan-02 00:00", 0.2, 2)
		orphan := newApproach("9999", "2020-Jan-03 00:00", 0.3, 3)
		a2 := newApproach("A", "2020-Jan-04 00:00", 0.4, 4)
		approaches := []*model.CloseApproach{a1, b1, orphan, a2}
		db := repository.New(ctx, []*model.NearEarthObject{a, b}, approaches)

		Convey("Then each NEO's approaches keep input order", func() {
			So(a.Approaches, ShouldResemble, []*model.CloseApproach{a1, a2})
			So(b.Approaches, ShouldResemble, []*model.CloseApproach{b1})
		})

		Convey("Then the orphan stays unlinked and is counted", func() {
			So(orphan.NEO, ShouldBeNil)
			So(orphan.Designation, ShouldEqual, "9999")
			So(db.Stats().Linked, ShouldEqual, 3)
			So(db.Stats().Unlinked, ShouldEqual, 1)
		})

		Convey("Then an unfiltered query yields every approach once in input order", func() {
			So(slices.Collect(db.Query()), ShouldResemble, approaches)
		})

		Convey("Then a diameter filter excludes the orphan but no filter keeps it", func() {
			got := slices.Collect(db.Query(filter.Create(filter.WithDiameterMin(0))...))
			So(got, ShouldResemble, []*model.CloseApproach{a1, b1, a2})
			So(slices.Contains(slices.Collect(db.Query()), orphan), ShouldBeTrue)
		})

		Convey("Then filters are combined with AND regardless of order", func() {
			f1 := filter.Create(filter.WithVelocityMin(2))
			f2 := filter.Create(filter.WithHazardous(false))
			ab := slices.Collect(db.Query(append(slices.Clone(f1), f2...)...))
			ba := slices.Collect(db.Query(append(slices.Clone(f2), f1...)...))
			So(ab, ShouldResemble, []*model.CloseApproach{a2})
			So(ba, ShouldResemble, ab)
		})

		Convey("Then limit over a query returns the leading filtered approaches", func() {
			got := slices.Collect(filter.Limit(db.Query(filter.Create(filter.WithDistanceMin(0.15))...), 2))
			So(got, ShouldResemble, []*model.CloseApproach{b1, orphan})
		})

		Convey("Then a query is evaluated lazily", func() {
			evaluated := 0
			counting := func(*model.CloseApproach) bool {
				evaluated++
				return true
			}
			for range db.Query(counting) {
				break
			}
			So(evaluated, ShouldEqual, 1)
		})

		Convey("Then date filters work against linked data", func() {
			start := time.Date(2020, time.January, 2, 0, 0, 0, 0, time.UTC)
			end := time.Date(2020, time.January, 3, 0, 0, 0, 0, time.UTC)
			got := slices.Collect(db.Query(filter.Create(filter.WithStartDate(start), filter.WithEndDate(end))...))
			So(got, ShouldResemble, []*model.CloseApproach{b1, orphan})
		})
	})
}

func TestDatabase_Empty(t *testing.T) {
	Convey("Given an empty database", t, func() {
		db := repository.New(context.Background(), nil, nil)

		Convey("Then queries and lookups are empty", func() {
			So(slices.Collect(db.Query()), ShouldBeEmpty)
			_, ok := db.GetByDesignation("433")
			So(ok, ShouldBeFalse)
			So(db.Stats(), ShouldResemble, repository.Stats{})
		})
	})
}

func TestDatabase_ConcurrentQueries(t *testing.T) {
	Convey("Given a constructed database", t, func() {
		ctx := context.Background()
		neos := make([]*model.NearEarthObject, 0, 100)
		approaches := make([]*model.CloseApproach, 0, 1000)
		for i := range 100 {
			neos = append(neos, newNEO(fmt.Sprintf("%d", i), "", "1", "N"))
		}
		for i := range 1000 {
			approaches = append(approaches, newApproach(fmt.Sprintf("%d", i%100), "2020-Jan-01 00:00", float64(i), 1))
		}
		db := repository.New(ctx, neos, approaches)

		Convey("When queried from many goroutines", func() {
			var wg sync.WaitGroup
			counts := make([]int, 16)
			for g := range counts {
				wg.Add(1)
				go func(g int) {
					defer wg.Done()
					for range db.Query(filter.Create(filter.WithDistanceMin(500))...) {
						counts[g]++
					}
				}(g)
			}
			wg.Wait()

			Convey("Then every reader sees the same result", func() {
				for _, c := range counts {
					So(c, ShouldEqual, 500)
				}
			})
		})
	})
}

func BenchmarkDatabase_Query(b *testing.B) {
	ctx := context.Background()
	neos := make([]*model.NearEarthObject, 0, 1000)
	approaches := make([]*model.CloseApproach, 0, 100_000)
	for i := range 1000 {
		neos = append(neos, newNEO(fmt.Sprintf("%d", i), "", fmt.Sprintf("%d", i%10), "N"))
	}
	for i := range 100_000 {
		approaches = append(approaches, newApproach(fmt.Sprintf("%d", i%1000), "2020-Jan-01 00:00", float64(i%100)/100, float64(i%30)))
	}
	db := repository.New(ctx, neos, approaches)
	preds := filter.Create(filter.WithDistanceMax(0.5), filter.WithVelocityMin(10), filter.WithDiameterMin(3))

	b.ResetTimer()
	for range b.N {
		n := 0
		for range filter.Limit(db.Query(preds...), 1000) {
			n++
		}
	}
}
