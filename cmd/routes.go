package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fueleu/compliance/renderer"
	"github.com/fueleu/compliance/route"
	"github.com/google/subcommands"
)

type routesCmd struct {
	file       string
	selector   string
	vesselType string
	fuelType   string
	routeYear  int
	baseline   string
	compare    bool
	seed       bool
}

func (*routesCmd) Name() string     { return "routes" }
func (*routesCmd) Synopsis() string { return "compute compliance balances from route data" }
func (*routesCmd) Usage() string {
	return `cbx routes -file <routes.json> [-selector <jsonpath>] [-vessel <type>] [-fuel <type>] [-route-year <year>] [-baseline <route>] [-compare] [-seed]

  Reads route records from a JSON document and displays them with their
  compliance balance against the configured target intensity.

  -compare compares every route with the baseline route.
  -seed seeds the ledger with one balance per ship and year.

Usage Examples:
$ cbx routes -file routes.json -selector '$.data.routes' -fuel LNG
$ cbx routes -file routes.json -baseline R001 -compare
$ cbx routes -file routes.json -route-year 2025 -seed
`
}

func (c *routesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "JSON document holding the routes")
	f.StringVar(&c.selector, "selector", "", "JSONPath selecting the routes in the document (default from the configuration)")
	f.StringVar(&c.vesselType, "vessel", "", "only routes of this vessel type")
	f.StringVar(&c.fuelType, "fuel", "", "only routes of this fuel type")
	f.IntVar(&c.routeYear, "route-year", 0, "only routes of this year")
	f.StringVar(&c.baseline, "baseline", "", "mark this route as the baseline")
	f.BoolVar(&c.compare, "compare", false, "compare routes with the baseline")
	f.BoolVar(&c.seed, "seed", false, "seed the ledger with the routes' compliance balances")
}

func (c *routesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Fprintln(os.Stderr, "Error: -file is required")
		return subcommands.ExitUsageError
	}
	cfg, err := Settings()
	if err != nil {
		return fail("loading configuration", err)
	}
	selector := c.selector
	if selector == "" {
		selector = cfg.RouteSelector
	}

	in, err := os.Open(c.file)
	if err != nil {
		return fail("opening routes", err)
	}
	routes, err := route.Decode(in, selector)
	in.Close()
	if err != nil {
		return fail("reading routes", err)
	}
	if c.baseline != "" {
		if routes, err = route.SetBaseline(routes, c.baseline); err != nil {
			return fail("setting baseline", err)
		}
	}
	routes = route.Filter{VesselType: c.vesselType, FuelType: c.fuelType, Year: c.routeYear}.Apply(routes)

	if c.compare {
		cs, err := route.Compare(routes, cfg.TargetIntensity)
		if err != nil {
			return fail("comparing routes", err)
		}
		printMarkdown(renderer.CompareMarkdown(cs, cfg.TargetIntensity))
	} else {
		printMarkdown(renderer.RoutesMarkdown(routes, cfg.TargetIntensity))
	}

	if !c.seed {
		return subcommands.ExitSuccess
	}
	j, l, err := openJournal(ctx)
	if err != nil {
		return fail("loading ledger", err)
	}
	defer j.close(l)
	seeded, seedErr := route.Seed(l, routes, cfg.TargetIntensity)
	if len(seeded) > 0 {
		if err := j.save(ctx, l); err != nil {
			return fail("saving ledger", err)
		}
	}
	for _, b := range seeded {
		fmt.Printf("Seeded %s %d with %s\n", b.Ship, b.Year, b.Value.SignedString())
	}
	if seedErr != nil {
		return fail("seeding", seedErr)
	}
	return subcommands.ExitSuccess
}
