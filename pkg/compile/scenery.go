// pkg/compile/scenery.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package compile

import (
	"strings"

	"github.com/fsnav/navdbc/pkg/bgl"
	"github.com/fsnav/navdbc/pkg/db"
	"github.com/fsnav/navdbc/pkg/scenery"
)

// loadScenery walks the active scenery areas in layer order and feeds
// every resolved file through the binary reader. File problems land in
// the per-area error bucket; only database errors stop the run.
func (c *Compiler) loadScenery() error {
	cfg, err := scenery.ParseConfig(c.opts.SceneryPath, c.lg)
	if err != nil {
		return err
	}
	if (c.opts.Sim == P3DV4 || c.opts.Sim == P3DV5) && len(c.opts.AddOnPaths) > 0 {
		cfg.AppendAddOnAreas(scenery.DiscoverAddOns(c.opts.AddOnPaths, c.lg))
	}

	var active []*scenery.Area
	for i := range cfg.Areas {
		if cfg.Areas[i].Active {
			active = append(active, &cfg.Areas[i])
		}
	}
	if !c.progress.SetTotal(len(active)) {
		return db.ErrAborted
	}

	bglOpts := &bgl.Options{
		Variant:       c.opts.Sim.Variant(),
		IncludeIdents: identSet(c.opts.IncludeIdents),
		ExcludeIdents: identSet(c.opts.ExcludeIdents),
		IncludeTypes:  typeSet(c.opts.IncludeTypes),
		Verbose:       c.opts.Verbose,
	}

	for _, area := range active {
		if !c.progress.ReportSceneryArea(area) {
			return db.ErrAborted
		}
		c.lg.Info("scenery area", "title", area.Title, "layer", area.Layer)

		if err := c.w.WriteSceneryArea(area); err != nil {
			return err
		}
		errs := &scenery.Errors{Area: area}

		files, err := scenery.ResolveFiles(c.opts.BasePath, area)
		if err != nil {
			errs.AddMessage(err.Error())
		}
		for _, path := range files {
			if err := c.loadSceneryFile(path, area, bglOpts, errs); err != nil {
				return err
			}
		}
		if !errs.Empty() {
			c.errors = append(c.errors, errs)
		}
	}
	return nil
}

// loadSceneryFile parses and writes one file. Parse failures are
// recorded against the area and skip the file; a returned error is a
// database problem.
func (c *Compiler) loadSceneryFile(path string, area *scenery.Area,
	opts *bgl.Options, errs *scenery.Errors) error {
	flags := bgl.CreateFlags{
		MSFSNavigraphNavdata: area.NavigraphNavdata,
		MSFSDummy:            area.Navdata,
	}

	f, err := bgl.ReadFile(path, opts, flags, c.lg)
	if err != nil {
		errs.AddFileError(path, err)
		return nil
	}
	if !f.HasContent() {
		return nil
	}

	if _, err := c.w.WriteFile(path, f.Header); err != nil {
		return err
	}

	msfs := c.opts.Sim == MSFS || c.opts.Sim == MSFS2024
	for _, a := range f.Airports {
		if err := c.w.WriteAirport(a, area.AddOn, msfs); err != nil {
			errs.AddFileError(path, err)
		}
	}
	for _, nl := range f.Namelists {
		if err := c.w.WriteNamelist(nl); err != nil {
			errs.AddFileError(path, err)
		}
	}
	for _, v := range f.VORs {
		if err := c.w.WriteVOR(v); err != nil {
			errs.AddFileError(path, err)
		}
	}
	for _, t := range f.TACANs {
		if err := c.w.WriteTACAN(t); err != nil {
			errs.AddFileError(path, err)
		}
	}
	for _, n := range f.NDBs {
		if err := c.w.WriteNDB(n); err != nil {
			errs.AddFileError(path, err)
		}
	}
	for _, m := range f.Markers {
		if err := c.w.WriteMarker(m); err != nil {
			errs.AddFileError(path, err)
		}
	}
	for _, ils := range f.ILSs {
		if err := c.w.WriteILS(ils); err != nil {
			errs.AddFileError(path, err)
		}
	}
	for _, wp := range f.Waypoints {
		if err := c.w.WriteWaypoint(wp); err != nil {
			errs.AddFileError(path, err)
		}
	}
	for _, b := range f.Boundaries {
		if err := c.w.WriteBoundary(b); err != nil {
			errs.AddFileError(path, err)
		}
	}
	return nil
}

func typeSet(types []string) map[string]bool {
	if len(types) == 0 {
		return nil
	}
	m := make(map[string]bool, len(types))
	for _, t := range types {
		m[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return m
}
