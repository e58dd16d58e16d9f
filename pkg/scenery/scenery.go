// pkg/scenery/scenery.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package scenery discovers input files: it parses the INI-style
// scenery configuration, P3D add-on.xml packages and resolves scenery
// files on disk in layer order.
package scenery

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fsnav/navdbc/pkg/log"
)

// Area is one ordered entry of the scenery configuration.
type Area struct {
	Number   int
	Title    string
	LocalPath string
	Layer    int
	Active   bool
	Required bool

	// Set for areas discovered through add-on.xml packages
	AddOn bool

	// MSFS: package contains only navdata and stub airports
	Navdata          bool
	NavigraphNavdata bool
}

func (a *Area) String() string {
	return fmt.Sprintf("%q layer %d (%s)", a.Title, a.Layer, a.LocalPath)
}

// Config is the parsed scenery configuration: areas sorted by layer.
type Config struct {
	Areas []Area
}

// ParseConfig reads an INI-style scenery configuration. Unknown keys
// are ignored; boolean fields accept TRUE/FALSE case-insensitively.
func ParseConfig(path string, lg *log.Logger) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scenery config: %w", err)
	}
	defer f.Close()

	cfg := &Config{}
	var cur *Area
	inArea := false

	scan := bufio.NewScanner(f)
	for scan.Scan() {
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			if inArea && cur != nil {
				cfg.Areas = append(cfg.Areas, *cur)
			}
			section := strings.ToLower(line[1 : len(line)-1])
			inArea = strings.HasPrefix(section, "area")
			if inArea {
				cur = &Area{Active: true}
				if n, err := strconv.Atoi(strings.TrimPrefix(section, "area.")); err == nil {
					cur.Number = n
				}
			}
			continue
		}

		if !inArea || cur == nil {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			lg.Warnf("%s: ignoring malformed line %q", path, line)
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch strings.ToLower(key) {
		case "title":
			cur.Title = value
		case "local":
			cur.LocalPath = value
		case "layer":
			if n, err := strconv.Atoi(value); err == nil {
				cur.Layer = n
			} else {
				lg.Warnf("%s: area %q: bad layer %q", path, cur.Title, value)
			}
		case "active":
			cur.Active = strings.EqualFold(value, "true")
		case "required":
			cur.Required = strings.EqualFold(value, "true")
		}
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("scenery config: %w", err)
	}
	if inArea && cur != nil {
		cfg.Areas = append(cfg.Areas, *cur)
	}

	cfg.sortByLayer()
	return cfg, nil
}

func (c *Config) sortByLayer() {
	sort.SliceStable(c.Areas, func(i, j int) bool {
		return c.Areas[i].Layer < c.Areas[j].Layer
	})
}

// MaxLayerAndNumber returns the highest layer and area number in use,
// for assigning synthetic values to appended add-on areas.
func (c *Config) MaxLayerAndNumber() (layer, number int) {
	for i := range c.Areas {
		if c.Areas[i].Layer > layer {
			layer = c.Areas[i].Layer
		}
		if c.Areas[i].Number > number {
			number = c.Areas[i].Number
		}
	}
	return
}

// AppendAddOnAreas merges discovered add-on components into the
// configuration. Components without an explicit layer go last with
// synthetic layers above all existing ones.
func (c *Config) AppendAddOnAreas(areas []Area) {
	maxLayer, maxNumber := c.MaxLayerAndNumber()
	for _, a := range areas {
		maxNumber++
		a.Number = maxNumber
		a.AddOn = true
		if a.Layer <= 0 {
			maxLayer++
			a.Layer = maxLayer
		}
		c.Areas = append(c.Areas, a)
	}
	c.sortByLayer()
}

// sceneryFileExts are the file types handed to the binary front end.
func isSceneryFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".bgl")
}

// ResolveFiles lists the scenery files of one area in file-system
// order. The conventional "scenery" subdirectory is preferred when it
// exists.
func ResolveFiles(basePath string, area *Area) ([]string, error) {
	dir := area.LocalPath
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(basePath, dir)
	}

	if fi, err := os.Stat(filepath.Join(dir, "scenery")); err == nil && fi.IsDir() {
		dir = filepath.Join(dir, "scenery")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && isSceneryFile(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Errors collects the problems of one scenery area: per-file errors
// plus area-scoped messages. Empty buckets are discarded by the caller.
type Errors struct {
	Area       *Area
	FileErrors []FileError
	Messages   []string
}

type FileError struct {
	Path    string
	Message string
}

func (e *Errors) AddFileError(path string, err error) {
	e.FileErrors = append(e.FileErrors, FileError{Path: path, Message: err.Error()})
}

func (e *Errors) AddMessage(msg string) {
	e.Messages = append(e.Messages, msg)
}

func (e *Errors) Empty() bool {
	return len(e.FileErrors) == 0 && len(e.Messages) == 0
}

func (e *Errors) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "scenery area %s:\n", e.Area)
	for _, m := range e.Messages {
		fmt.Fprintf(&sb, "  %s\n", m)
	}
	for _, fe := range e.FileErrors {
		fmt.Fprintf(&sb, "  %s: %s\n", fe.Path, fe.Message)
	}
	return sb.String()
}
