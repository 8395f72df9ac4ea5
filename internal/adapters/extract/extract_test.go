package extract_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/neodb/internal/adapters/extract"
	. "github.com/smartystreets/goconvey/convey"
)

const neoCSV = `id,spkid,full_name,pdes,name,prefix,neo,pha,diameter
a0000433,2000433,"   433 Eros (A898 PA)",433,Eros,,Y,N,16.84
a0000719,2000719,"   719 Albert (A911 TB)",719,Albert,,Y,N,
bK20A01Y,54000000,"       (2020 AY1)",2020 AY1,,,Y,Y,0.5
x,1,"no designation",,Nobody,,Y,N,1
`

const cadJSON = `{
  "signature": {"version": "1.1", "source": "NASA/JPL SBDB Close Approach Data API"},
  "count": "4",
  "fields": ["des", "orbit_id", "jd", "cd", "dist", "dist_min", "dist_max", "v_rel", "v_inf", "t_sigma_f", "h"],
  "data": [
    ["433", "659", "2458849.5", "2020-Jan-01 00:54", "0.422", "0.4", "0.5", "5.62", "5.6", "< 00:01", "10.4"],
    ["2020 AY1", "5", "2458850.5", "2020-Jan-02 12:00", "0.0211", "0.02", "0.022", "12.1", "12", "00:02", "25"],
    ["9999", "1", "2458851.5", "not a time", "0.3", "0.3", "0.3", "3.3", "3", "00:01", "20"],
    ["bad", "1", "2458852.5", "2020-Jan-04 00:00", "far", "0", "0", "1", "1", "00:01", "20"]
  ]
}`

func TestLoader_NEOs(t *testing.T) {
	Convey("Given a NEO CSV", t, func() {
		ctx := context.Background()
		ld := extract.NewLoader()

		Convey("When it is loaded", func() {
			neos, err := ld.NEOs(ctx, strings.NewReader(neoCSV))

			Convey("Then rows are normalised and blank designations are skipped", func() {
				So(err, ShouldBeNil)
				So(neos, ShouldHaveLength, 3)
				So(neos[0].Designation, ShouldEqual, "433")
				So(*neos[0].Name, ShouldEqual, "Eros")
				So(neos[0].Diameter, ShouldEqual, 16.84)
				So(neos[0].Hazardous, ShouldBeFalse)
				So(math.IsNaN(neos[1].Diameter), ShouldBeTrue)
				So(neos[2].Name, ShouldBeNil)
				So(neos[2].Hazardous, ShouldBeTrue)
			})
		})

		Convey("When only the designation column exists", func() {
			neos, err := ld.NEOs(ctx, strings.NewReader("pdes\n433\n"))

			Convey("Then optional fields are unknown", func() {
				So(err, ShouldBeNil)
				So(neos, ShouldHaveLength, 1)
				So(neos[0].Name, ShouldBeNil)
				So(math.IsNaN(neos[0].Diameter), ShouldBeTrue)
			})
		})

		Convey("When the designation column is missing", func() {
			_, err := ld.NEOs(ctx, strings.NewReader("name,diameter\nEros,16\n"))
			So(errors.Is(err, extract.ErrMissingColumn), ShouldBeTrue)
		})

		Convey("When the input is empty", func() {
			_, err := ld.NEOs(ctx, strings.NewReader(""))
			So(errors.Is(err, extract.ErrMissingColumn), ShouldBeTrue)
		})

		Convey("When strict mode meets a bad row", func() {
			strict := extract.NewLoader(extract.WithStrict(true))
			_, err := strict.NEOs(ctx, strings.NewReader(neoCSV))
			So(errors.Is(err, extract.ErrMalformedInput), ShouldBeTrue)
		})
	})
}

func TestLoader_Approaches(t *testing.T) {
	Convey("Given a close-approach JSON document", t, func() {
		ctx := context.Background()
		ld := extract.NewLoader()

		Convey("When it is loaded", func() {
			cas, err := ld.Approaches(ctx, strings.NewReader(cadJSON))

			Convey("Then well-formed rows are decoded and bad numbers are skipped", func() {
				So(err, ShouldBeNil)
				So(cas, ShouldHaveLength, 3)
				So(cas[0].Designation, ShouldEqual, "433")
				So(cas[0].Time.Equal(time.Date(2020, time.January, 1, 0, 54, 0, 0, time.UTC)), ShouldBeTrue)
				So(cas[0].Distance, ShouldEqual, 0.422)
				So(cas[0].Velocity, ShouldEqual, 5.62)
				So(cas[1].Designation, ShouldEqual, "2020 AY1")
			})

			Convey("Then an unparseable time is kept as unknown", func() {
				So(cas[2].Designation, ShouldEqual, "9999")
				So(cas[2].HasTime(), ShouldBeFalse)
				So(cas[2].TimeStr(), ShouldEqual, "unknown")
			})
		})

		Convey("When fields are in a different order", func() {
			doc := `{"fields":["cd","v_rel","dist","des"],"data":[["2020-Jan-01 00:54","5.62","0.422","433"]]}`
			cas, err := ld.Approaches(ctx, strings.NewReader(doc))

			Convey("Then columns are resolved by name", func() {
				So(err, ShouldBeNil)
				So(cas, ShouldHaveLength, 1)
				So(cas[0].Designation, ShouldEqual, "433")
				So(cas[0].Velocity, ShouldEqual, 5.62)
				So(cas[0].Distance, ShouldEqual, 0.422)
			})
		})

		Convey("When numbers are JSON numbers rather than strings", func() {
			doc := `{"data":[["433",null,null,"2020-Jan-01 00:54",0.422,null,null,5.62]]}`
			cas, err := ld.Approaches(ctx, strings.NewReader(doc))
			So(err, ShouldBeNil)
			So(cas, ShouldHaveLength, 1)
			So(cas[0].Distance, ShouldEqual, 0.422)
		})

		Convey("When data is null or empty", func() {
			none, err := ld.Approaches(ctx, strings.NewReader(`{"count":"0","data":null}`))
			So(err, ShouldBeNil)
			So(none, ShouldBeEmpty)
			empty, err := ld.Approaches(ctx, strings.NewReader(`{"data":[]}`))
			So(err, ShouldBeNil)
			So(empty, ShouldBeEmpty)
		})

		Convey("When the document is truncated", func() {
			_, err := ld.Approaches(ctx, strings.NewReader(`{"data":[["433"`))
			So(errors.Is(err, extract.ErrMalformedInput), ShouldBeTrue)
		})

		Convey("When the document is not an object", func() {
			_, err := ld.Approaches(ctx, strings.NewReader(`[]`))
			So(errors.Is(err, extract.ErrMalformedInput), ShouldBeTrue)
		})
	})
}

func TestLoader_Files(t *testing.T) {
	Convey("Given source files on disk", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		neoPath := filepath.Join(dir, "neos.csv")
		cadPath := filepath.Join(dir, "cad.json")
		So(os.WriteFile(neoPath, []byte(neoCSV), 0o600), ShouldBeNil)
		So(os.WriteFile(cadPath, []byte(cadJSON), 0o600), ShouldBeNil)
		ld := extract.NewLoader()

		Convey("Then both load", func() {
			neos, err := ld.NEOFile(ctx, neoPath)
			So(err, ShouldBeNil)
			So(neos, ShouldHaveLength, 3)
			cas, err := ld.ApproachFile(ctx, cadPath)
			So(err, ShouldBeNil)
			So(cas, ShouldHaveLength, 3)
		})

		Convey("Then a missing file is an error", func() {
			_, err := ld.NEOFile(ctx, filepath.Join(dir, "missing.csv"))
			So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
		})
	})
}
