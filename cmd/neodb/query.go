package main

import (
	"fmt"
	"io"
	"iter"
	"strconv"
	"time"

	"github.com/okian/neodb/internal/adapters/export"
	"github.com/okian/neodb/internal/domain/filter"
	"github.com/okian/neodb/internal/domain/model"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// defaultQueryLimit matches the number of results shown when --limit is absent.
const defaultQueryLimit = 10

type queryFlags struct {
	date, startDate, endDate string
	minDistance, maxDistance float64
	minVelocity, maxVelocity float64
	minDiameter, maxDiameter float64
	hazardous, notHazardous  bool
	limit                    int
	outfile                  string
}

func newQueryCmd(c *cli) *cobra.Command {
	f := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Find close approaches matching every given filter",
		Long: `Find close approaches matching every given filter. Results are printed as a
table or, with --outfile, written as CSV, JSON or XLSX by file extension.
A --limit of 0 returns every match.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			criteria, err := f.criteria(cmd)
			if err != nil {
				return err
			}

			svc, err := c.startService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Stop()

			results, err := svc.Query(cmd.Context(), criteria, f.limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if f.outfile != "" {
				n, err := export.WriteFile(cmd.Context(), f.outfile, results)
				if err != nil {
					return err
				}
				fmt.Fprint(out, pterm.Success.Sprintfln("Wrote %d close approaches to %s", n, f.outfile))
				return nil
			}
			return renderTable(out, results)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.date, "date", "d", "", "only approaches on this date (YYYY-MM-DD)")
	fs.StringVarP(&f.startDate, "start-date", "s", "", "only approaches on or after this date (YYYY-MM-DD)")
	fs.StringVarP(&f.endDate, "end-date", "e", "", "only approaches on or before this date (YYYY-MM-DD)")
	fs.Float64Var(&f.minDistance, "min-distance", 0, "minimum approach distance in au")
	fs.Float64Var(&f.maxDistance, "max-distance", 0, "maximum approach distance in au")
	fs.Float64Var(&f.minVelocity, "min-velocity", 0, "minimum relative velocity in km/s")
	fs.Float64Var(&f.maxVelocity, "max-velocity", 0, "maximum relative velocity in km/s")
	fs.Float64Var(&f.minDiameter, "min-diameter", 0, "minimum NEO diameter in km")
	fs.Float64Var(&f.maxDiameter, "max-diameter", 0, "maximum NEO diameter in km")
	fs.BoolVar(&f.hazardous, "hazardous", false, "only potentially hazardous NEOs")
	fs.BoolVar(&f.notHazardous, "not-hazardous", false, "only NEOs that are not potentially hazardous")
	fs.IntVarP(&f.limit, "limit", "l", defaultQueryLimit, "maximum number of results (0 for all)")
	fs.StringVarP(&f.outfile, "outfile", "o", "", "write results to a .csv, .json or .xlsx file")
	cmd.MarkFlagsMutuallyExclusive("hazardous", "not-hazardous")
	return cmd
}

// criteria turns the flags the user actually set into filter criteria.
func (f *queryFlags) criteria(cmd *cobra.Command) (filter.Criteria, error) {
	var c filter.Criteria
	fs := cmd.Flags()

	for _, d := range []struct {
		name string
		raw  string
		dst  **time.Time
	}{
		{"date", f.date, &c.Date},
		{"start-date", f.startDate, &c.StartDate},
		{"end-date", f.endDate, &c.EndDate},
	} {
		if !fs.Changed(d.name) {
			continue
		}
		t, err := model.ParseDate(d.raw)
		if err != nil {
			return c, fmt.Errorf("--%s: %w", d.name, err)
		}
		*d.dst = &t
	}

	for _, v := range []struct {
		name string
		val  float64
		dst  **float64
	}{
		{"min-distance", f.minDistance, &c.DistanceMin},
		{"max-distance", f.maxDistance, &c.DistanceMax},
		{"min-velocity", f.minVelocity, &c.VelocityMin},
		{"max-velocity", f.maxVelocity, &c.VelocityMax},
		{"min-diameter", f.minDiameter, &c.DiameterMin},
		{"max-diameter", f.maxDiameter, &c.DiameterMax},
	} {
		if fs.Changed(v.name) {
			val := v.val
			*v.dst = &val
		}
	}

	switch {
	case f.hazardous:
		yes := true
		c.Hazardous = &yes
	case f.notHazardous:
		no := false
		c.Hazardous = &no
	}
	return c, nil
}

func renderTable(w io.Writer, results iter.Seq[*model.CloseApproach]) error {
	data := pterm.TableData{{"Time (UTC)", "Distance (au)", "Velocity (km/s)", "NEO", "Diameter (km)", "Hazardous"}}
	for ca := range results {
		data = append(data, tableRow(ca))
	}
	if len(data) == 1 {
		fmt.Fprintln(w, "No matching close approaches.")
		return nil
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	fmt.Fprintln(w, table)
	return nil
}

func tableRow(ca *model.CloseApproach) []string {
	neo, diameter, hazardous := ca.Designation+" (unlinked)", "", ""
	if ca.NEO != nil {
		neo = ca.NEO.FullName()
		if ca.NEO.HasDiameter() {
			diameter = strconv.FormatFloat(ca.NEO.Diameter, 'f', 3, 64)
		}
		hazardous = strconv.FormatBool(ca.NEO.Hazardous)
	}
	return []string{
		ca.TimeStr(),
		strconv.FormatFloat(ca.Distance, 'f', 4, 64),
		strconv.FormatFloat(ca.Velocity, 'f', 2, 64),
		neo,
		diameter,
		hazardous,
	}
}
