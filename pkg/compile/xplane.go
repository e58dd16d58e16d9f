// pkg/compile/xplane.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package compile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnav/navdbc/pkg/bgl"
	"github.com/fsnav/navdbc/pkg/db"
	"github.com/fsnav/navdbc/pkg/scenery"
	"github.com/fsnav/navdbc/pkg/xp"
)

// xpPath resolves a navdata file below the X-Plane root. Updated
// navdata in Custom Data shadows the stock files.
func (c *Compiler) xpPath(parts ...string) (string, bool) {
	for _, dir := range []string{"Custom Data", filepath.Join("Resources", "default data")} {
		p := filepath.Join(append([]string{c.opts.BasePath, dir}, parts...)...)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p, true
		}
	}
	return "", false
}

// loadXplane reads the X-Plane text navdata set: fixes, navaids,
// airways, per-airport CIFP procedures and the optional MSA and MORA
// files. Everything hangs off one synthetic scenery area.
func (c *Compiler) loadXplane() error {
	fixPath, ok := c.xpPath("earth_fix.dat")
	if !ok {
		return fmt.Errorf("no earth_fix.dat below %s", c.opts.BasePath)
	}
	navPath, ok := c.xpPath("earth_nav.dat")
	if !ok {
		return fmt.Errorf("no earth_nav.dat below %s", c.opts.BasePath)
	}
	awyPath, hasAwy := c.xpPath("earth_awy.dat")
	msaPath, hasMsa := c.xpPath("earth_msa.dat")
	moraPath, hasMora := c.xpPath("earth_mora.dat")
	userFixPath := filepath.Join(c.opts.BasePath, "Custom Data", "user_fix.dat")
	hasUserFix := false
	if fi, err := os.Stat(userFixPath); err == nil && !fi.IsDir() {
		hasUserFix = true
	}

	cifpFiles := c.cifpFiles()

	numFiles := 2 + len(cifpFiles)
	for _, present := range []bool{hasAwy, hasMsa, hasMora, hasUserFix} {
		if present {
			numFiles++
		}
	}
	if !c.progress.SetTotal(numFiles) {
		return db.ErrAborted
	}

	area := &scenery.Area{
		Number: 1, Title: "X-Plane", LocalPath: c.opts.BasePath,
		Layer: 1, Active: true,
	}
	if !c.progress.ReportSceneryArea(area) {
		return db.ErrAborted
	}
	if err := c.w.WriteSceneryArea(area); err != nil {
		return err
	}
	errs := &scenery.Errors{Area: area}

	fixes := xp.NewFixIndex()
	ids := &xp.Counters{}
	ctx := &xp.Context{Mag: c.mag, Index: c.w.Index}

	fr, err := xp.NewFixReader(c.d, fixes, ids, false, c.lg)
	if err != nil {
		return err
	}
	if err := c.loadXpFile(fixPath, fr, ctx, errs); err != nil {
		return err
	}
	fr.Close()

	if hasUserFix {
		ur, err := xp.NewFixReader(c.d, fixes, ids, true, c.lg)
		if err != nil {
			return err
		}
		if err := c.loadXpFile(userFixPath, ur, ctx, errs); err != nil {
			return err
		}
		ur.Close()
	}

	nr, err := xp.NewNavReader(c.d, fixes, ids, c.lg)
	if err != nil {
		return err
	}
	if err := c.loadXpFile(navPath, nr, ctx, errs); err != nil {
		return err
	}
	nr.Close()

	if hasAwy {
		ar, err := xp.NewAirwayReader(c.d, fixes, ids, c.lg)
		if err != nil {
			return err
		}
		if err := c.loadXpFile(awyPath, ar, ctx, errs); err != nil {
			return err
		}
		ar.Close()
	}

	if len(cifpFiles) > 0 {
		cr, err := xp.NewCifpReader(c.d, ids, c.lg)
		if err != nil {
			return err
		}
		for _, path := range cifpFiles {
			ident := strings.TrimSuffix(filepath.Base(path), ".dat")
			if !c.progress.ReportOther("procedures " + ident) {
				return db.ErrAborted
			}
			if err := c.beginXpFile(path, ctx); err != nil {
				return err
			}
			if err := cr.LoadCifp(path, ident, ctx); err != nil {
				errs.AddFileError(path, err)
			}
		}
		cr.Close()
		c.hasSidStar = cr.HasSidStar
	}

	if hasMsa {
		mr := xp.NewMsaReader(c.w, fixes, c.lg)
		if err := c.loadXpFile(msaPath, mr, ctx, errs); err != nil {
			return err
		}
	}
	if hasMora {
		mr := xp.NewMoraReader(c.w, c.lg)
		if err := c.loadXpFile(moraPath, mr, ctx, errs); err != nil {
			return err
		}
	}

	c.cycle = ctx.Cycle
	c.validThrough = ctx.ValidThrough

	if !errs.Empty() {
		c.errors = append(c.errors, errs)
	}
	return nil
}

// loadXpFile registers the file and runs one reader over it. Read
// failures are per-file errors and do not stop the run.
func (c *Compiler) loadXpFile(path string, reader xp.Reader, ctx *xp.Context,
	errs *scenery.Errors) error {
	if !c.progress.ReportOther(filepath.Base(path)) {
		return db.ErrAborted
	}
	if err := c.beginXpFile(path, ctx); err != nil {
		return err
	}
	if err := xp.LoadFile(path, reader, ctx, c.lg); err != nil {
		errs.AddFileError(path, err)
	}
	return nil
}

func (c *Compiler) beginXpFile(path string, ctx *xp.Context) error {
	id, err := c.w.WriteFile(path, bgl.Header{})
	if err != nil {
		return err
	}
	ctx.FileID = id
	ctx.FileName = filepath.Base(path)
	c.lg.Info("reading", "file", path)
	return nil
}

// cifpFiles lists the per-airport procedure files, filtered by the
// airport ident filters and sorted by ident.
func (c *Compiler) cifpFiles() []string {
	var dir string
	for _, d := range []string{"Custom Data", filepath.Join("Resources", "default data")} {
		p := filepath.Join(c.opts.BasePath, d, "CIFP")
		if fi, err := os.Stat(p); err == nil && fi.IsDir() {
			dir = p
			break
		}
	}
	if dir == "" {
		return nil
	}

	include := identSet(c.opts.IncludeIdents)
	exclude := identSet(c.opts.ExcludeIdents)

	entries, err := os.ReadDir(dir)
	if err != nil {
		c.lg.Warnf("CIFP directory: %v", err)
		return nil
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".dat") {
			continue
		}
		ident := strings.TrimSuffix(name, ".dat")
		if exclude[ident] || (len(include) > 0 && !include[ident]) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files
}
