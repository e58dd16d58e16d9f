// pkg/compile/compile.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package compile drives the whole pipeline: it recreates the output
// schema, walks the scenery areas or the X-Plane data directories,
// feeds every file through the matching front-end and runs the
// post-load passes in a fixed order. The run is single-threaded and
// wrapped in long transactions; every progress report is a
// cancellation point, and a cancelled run is rolled back so no partial
// database is ever left behind.
package compile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fsnav/navdbc/pkg/bgl"
	"github.com/fsnav/navdbc/pkg/db"
	"github.com/fsnav/navdbc/pkg/log"
	"github.com/fsnav/navdbc/pkg/magdec"
	"github.com/fsnav/navdbc/pkg/scenery"
	"github.com/fsnav/navdbc/pkg/util"
)

// Version is recorded in the metadata table of every compiled
// database.
const Version = "1.4.0"

// Simulator selects the input flavor: one of the binary scenery
// families or an X-Plane installation.
type Simulator int

const (
	FS9 Simulator = iota
	FSX
	P3DV4
	P3DV5
	MSFS
	MSFS2024
	XP11
	XP12
)

func (s Simulator) String() string {
	return [...]string{"FS9", "FSX", "P3DV4", "P3DV5", "MSFS", "MSFS24",
		"XP11", "XP12"}[s]
}

func ParseSimulator(name string) (Simulator, bool) {
	switch strings.ToLower(name) {
	case "fs9":
		return FS9, true
	case "fsx":
		return FSX, true
	case "p3dv4":
		return P3DV4, true
	case "p3dv5":
		return P3DV5, true
	case "msfs":
		return MSFS, true
	case "msfs24", "msfs2024":
		return MSFS2024, true
	case "xp11":
		return XP11, true
	case "xp12":
		return XP12, true
	}
	return FS9, false
}

func (s Simulator) IsXPlane() bool { return s == XP11 || s == XP12 }

// Variant maps the simulator onto the binary record layout family.
// Meaningless for X-Plane.
func (s Simulator) Variant() bgl.Variant {
	switch s {
	case FS9:
		return bgl.FS9
	case P3DV4:
		return bgl.P3DV4
	case P3DV5:
		return bgl.P3DV5
	case MSFS:
		return bgl.MSFS
	case MSFS2024:
		return bgl.MSFS2024
	}
	return bgl.FSX
}

// ProgressHandler receives pipeline progress. Every method returns
// false to cancel the run; the driver honors cancellation at the next
// step boundary and rolls back.
type ProgressHandler interface {
	SetTotal(numSteps int) bool
	ReportSceneryArea(area *scenery.Area) bool
	ReportOther(msg string) bool
	ReportFinish() bool
}

// NopProgress never cancels.
type NopProgress struct{}

func (NopProgress) SetTotal(int) bool { return true }
func (NopProgress) ReportSceneryArea(*scenery.Area) bool { return true }
func (NopProgress) ReportOther(string) bool { return true }
func (NopProgress) ReportFinish() bool { return true }

// Options configures one compilation run.
type Options struct {
	Sim Simulator

	// Scenery configuration file; ignored for X-Plane
	SceneryPath string
	// Simulator base path (binary families) or X-Plane root
	BasePath string
	// Output database; recreated from scratch
	DBPath string
	// Magnetic declination grid file; empty falls back to the
	// per-record values
	MagdecPath string
	// Extra discovery roots for P3D add-on.xml packages
	AddOnPaths []string

	// Airport ident filters; Include empty keeps everything
	IncludeIdents []string
	ExcludeIdents []string
	// Record type filter ("airport", "vor", "ndb", "ils", "marker",
	// "waypoint", "boundary", "tacan"); empty keeps everything
	IncludeTypes []string

	Dedupe         bool
	ResolveAirways bool
	RouteTables    bool
	Incomplete     bool
	Verbose        bool

	// Diagnostics dump target; nil skips the report pass
	ReportWriter io.Writer
}

// validate checks the option surface before any work happens. All
// problems are reported at once.
func (opts *Options) validate() error {
	var e util.ErrorLogger
	e.Push("options")

	if opts.BasePath == "" {
		e.ErrorString("base path not set")
	} else if _, err := os.Stat(opts.BasePath); err != nil {
		e.Error(err)
	}
	if opts.DBPath == "" {
		e.ErrorString("database path not set")
	}
	if !opts.Sim.IsXPlane() {
		if opts.SceneryPath == "" {
			e.ErrorString("scenery configuration not set")
		} else if _, err := os.Stat(opts.SceneryPath); err != nil {
			e.Error(err)
		}
	}
	for _, t := range opts.IncludeTypes {
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "airport", "vor", "ndb", "ils", "marker", "waypoint",
			"boundary", "tacan":
		default:
			e.ErrorString("unknown record type %q", t)
		}
	}

	e.Pop()
	if e.HaveErrors() {
		return errors.New(e.String())
	}
	return nil
}

// Compiler runs the pipeline once. Not reusable.
type Compiler struct {
	opts     Options
	progress ProgressHandler
	lg       *log.Logger

	d   *db.Database
	w   *db.Writers
	mag *magdec.Grid

	errors []*scenery.Errors

	cycle        string
	validThrough string
	hasSidStar   bool
}

func New(opts Options, progress ProgressHandler, lg *log.Logger) *Compiler {
	if progress == nil {
		progress = NopProgress{}
	}
	return &Compiler{opts: opts, progress: progress, lg: lg}
}

// SceneryErrors returns the per-area error buckets collected during
// the run. Only non-empty buckets are kept.
func (c *Compiler) SceneryErrors() []*scenery.Errors { return c.errors }

// Run executes the whole pipeline. A cancelled run returns
// db.ErrAborted after rolling back.
func (c *Compiler) Run() error {
	if err := c.opts.validate(); err != nil {
		return err
	}

	if c.opts.MagdecPath != "" {
		g, err := magdec.Load(c.opts.MagdecPath)
		if err != nil {
			c.lg.Warnf("magnetic declination grid: %v", err)
		} else {
			c.mag = g
		}
	}

	d, err := db.Open(c.opts.DBPath, c.lg)
	if err != nil {
		return err
	}
	defer d.Close()
	c.d = d

	if err := d.Begin(); err != nil {
		return err
	}
	if err := d.RunScript("drop_schema"); err != nil {
		return c.fail(err)
	}
	if err := d.RunScript("create_schema"); err != nil {
		return c.fail(err)
	}

	c.w = db.NewWriters(d, c.mag, c.lg)
	c.w.IncompleteMode = c.opts.Incomplete
	defer c.w.CloseStatements()

	if c.opts.Sim.IsXPlane() {
		err = c.loadXplane()
	} else {
		err = c.loadScenery()
	}
	if err != nil {
		return c.fail(err)
	}

	if err := d.Commit(); err != nil {
		return err
	}
	if err := d.Analyze(); err != nil {
		c.lg.Warnf("analyze: %v", err)
	}

	if err := c.postLoad(); err != nil {
		return c.fail(err)
	}

	if !c.progress.ReportFinish() {
		return c.fail(db.ErrAborted)
	}

	if c.opts.ReportWriter != nil {
		rep, err := db.CollectReport(d)
		if err != nil {
			return err
		}
		rep.Dump(c.opts.ReportWriter)
	}
	return nil
}

func (c *Compiler) fail(err error) error {
	if rberr := c.d.Rollback(); rberr != nil {
		c.lg.Warnf("rollback: %v", rberr)
	}
	return err
}

// postLoad runs the fixed pass sequence on the loaded tables. All
// passes run in one transaction.
func (c *Compiler) postLoad() error {
	if err := c.d.Begin(); err != nil {
		return err
	}

	xplane := c.opts.Sim.IsXPlane()
	steps := []struct {
		name    string
		enabled bool
		run     func() error
	}{
		{"creating indexes", true,
			func() error { return c.d.RunScript("create_indexes_post_load") }},
		{"removing duplicates", c.opts.Dedupe,
			func() error { return c.d.RunScript("delete_duplicates") }},
		{"resolving airways", c.opts.ResolveAirways, c.resolveAirways},
		{"merging VORTACs", !xplane,
			func() error { return c.d.RunScript("update_vor") }},
		{"updating waypoints", true,
			func() error { return c.d.RunScript("update_wp_ids") }},
		{"updating approaches", true,
			func() error { return c.d.RunScript("update_approaches") }},
		{"updating ILS", !xplane,
			func() error { return c.d.RunScript("update_ils_ids") }},
		{"updating ILS counts", true,
			func() error { return c.d.RunScript("update_num_ils") }},
		{"populating search table", true,
			func() error { return c.d.RunScript("populate_nav_search") }},
		{"creating route network", c.opts.RouteTables, c.writeRouteTables},
		{"creating search indexes", true,
			func() error { return c.d.RunScript("finish_schema") }},
		{"writing metadata", true, c.writeMetadata},
	}

	for _, step := range steps {
		if !step.enabled {
			continue
		}
		if !c.progress.ReportOther(step.name) {
			return db.ErrAborted
		}
		c.lg.Info("post-load pass", "pass", step.name)
		if err := step.run(); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	if err := c.d.Commit(); err != nil {
		return err
	}
	if err := c.d.Analyze(); err != nil {
		c.lg.Warnf("analyze: %v", err)
	}
	return nil
}

func (c *Compiler) resolveAirways() error {
	n, err := db.ResolveAirways(c.d, c.lg)
	if err != nil {
		return err
	}
	c.lg.Info("airways resolved", "segments", n)
	return nil
}

func (c *Compiler) writeRouteTables() error {
	if err := c.d.RunScript("populate_route_node"); err != nil {
		return err
	}
	n, err := db.WriteRouteEdges(c.d, c.lg, func(fraction float64) bool {
		return c.progress.ReportOther(
			fmt.Sprintf("creating route network %d%%", int(fraction*100)))
	})
	if err != nil {
		return err
	}
	c.lg.Info("route edges written", "edges", n)
	return nil
}

func (c *Compiler) writeMetadata() error {
	return c.w.WriteMetadata(db.Metadata{
		HasSidStar:      c.hasSidStar,
		AiracCycle:      c.cycle,
		ValidThrough:    c.validThrough,
		DataSource:      c.opts.Sim.String(),
		CompilerVersion: Version,
	})
}

func identSet(idents []string) map[string]bool {
	if len(idents) == 0 {
		return nil
	}
	m := make(map[string]bool, len(idents))
	for _, id := range idents {
		m[strings.ToUpper(strings.TrimSpace(id))] = true
	}
	return m
}
