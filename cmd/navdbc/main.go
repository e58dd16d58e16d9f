// cmd/navdbc/main.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// navdbc compiles flight simulator scenery and X-Plane navdata into a
// normalized SQLite database.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"

	flag "github.com/spf13/pflag"

	"github.com/fsnav/navdbc/pkg/compile"
	"github.com/fsnav/navdbc/pkg/db"
	"github.com/fsnav/navdbc/pkg/log"
	"github.com/fsnav/navdbc/pkg/scenery"
)

var (
	simName     = flag.String("sim", "", "simulator: fs9, fsx, p3dv4, p3dv5, msfs, msfs24, xp11 or xp12")
	sceneryPath = flag.String("scenery", "", "scenery configuration file (unused for X-Plane)")
	basePath    = flag.String("base", "", "simulator base path or X-Plane root")
	dbPath      = flag.String("db", "", "output database file")
	magdecPath  = flag.String("magdec", "", "magnetic declination grid file")
	addonPaths  = flag.StringSlice("addon-path", nil, "extra P3D add-on.xml discovery directories")

	includeIdents = flag.StringSlice("include-idents", nil, "airport idents to keep exclusively")
	excludeIdents = flag.StringSlice("exclude-idents", nil, "airport idents to drop")
	includeTypes  = flag.StringSlice("include-types", nil, "record types to keep: airport, vor, ndb, ils, marker, waypoint, boundary, tacan")

	verbose        = flag.Bool("verbose", false, "log every parsed record")
	dedupe         = flag.Bool("dedupe", false, "remove duplicate airports and navaids")
	resolveAirways = flag.Bool("resolve-airways", true, "build ordered airway segments")
	routeTables    = flag.Bool("route-tables", true, "build the routing graph tables")
	incomplete     = flag.Bool("incomplete", false, "keep records with unresolved references")
	report         = flag.Bool("report", false, "dump table statistics after the run")

	logLevel = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir   = flag.String("logdir", "", "log file directory")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	lg := log.New(*logLevel, *logDir)

	sim, ok := compile.ParseSimulator(*simName)
	if !ok {
		fmt.Fprintf(os.Stderr, "navdbc: unknown or missing --sim %q\n", *simName)
		flag.Usage()
		return 1
	}
	opts := compile.Options{
		Sim:            sim,
		SceneryPath:    *sceneryPath,
		BasePath:       *basePath,
		DBPath:         *dbPath,
		MagdecPath:     *magdecPath,
		AddOnPaths:     *addonPaths,
		IncludeIdents:  *includeIdents,
		ExcludeIdents:  *excludeIdents,
		IncludeTypes:   *includeTypes,
		Dedupe:         *dedupe,
		ResolveAirways: *resolveAirways,
		RouteTables:    *routeTables,
		Incomplete:     *incomplete,
		Verbose:        *verbose,
	}
	if *report {
		opts.ReportWriter = os.Stdout
	}

	c := compile.New(opts, newConsoleProgress(), lg)
	err := c.Run()

	for _, e := range c.SceneryErrors() {
		fmt.Fprint(os.Stderr, e)
	}

	switch {
	case errors.Is(err, db.ErrAborted):
		fmt.Fprintln(os.Stderr, "navdbc: cancelled")
		return 2
	case err != nil:
		lg.Errorf("compilation failed: %v", err)
		fmt.Fprintf(os.Stderr, "navdbc: %v\n", err)
		return 1
	}
	return 0
}

// consoleProgress prints one line per pipeline step and turns the
// first interrupt signal into a cooperative cancellation.
type consoleProgress struct {
	interrupted atomic.Bool
	total       int
	count       int
	last        string
}

func newConsoleProgress() *consoleProgress {
	p := &consoleProgress{}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		<-ch
		p.interrupted.Store(true)
		fmt.Fprintln(os.Stderr, "navdbc: interrupted, rolling back")
		signal.Stop(ch)
	}()
	return p
}

func (p *consoleProgress) ok() bool { return !p.interrupted.Load() }

func (p *consoleProgress) SetTotal(n int) bool {
	p.total = n
	return p.ok()
}

func (p *consoleProgress) ReportSceneryArea(a *scenery.Area) bool {
	p.count++
	fmt.Printf("[%d/%d] %s\n", p.count, p.total, a)
	return p.ok()
}

func (p *consoleProgress) ReportOther(msg string) bool {
	if msg != p.last {
		p.last = msg
		fmt.Println(msg)
	}
	return p.ok()
}

func (p *consoleProgress) ReportFinish() bool {
	fmt.Println("done")
	return p.ok()
}
