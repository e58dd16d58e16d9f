// pkg/scenery/addon.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scenery

import (
	"encoding/xml"
	"os"
	"path/filepath"

	"github.com/fsnav/navdbc/pkg/log"
)

// add-on.xml package discovery for P3D v3/v4. Each package directory
// carries an add-on.xml listing components; scenery components become
// synthetic scenery areas.

type addOnPackage struct {
	XMLName    xml.Name         `xml:"SimBase.Document"`
	Name       string           `xml:"AddOn.Name"`
	Components []addOnComponent `xml:"AddOn.Component"`
}

type addOnComponent struct {
	Category string `xml:"Category"`
	Path     string `xml:"Path"`
	Name     string `xml:"Name"`
	Layer    int    `xml:"Layer"`
}

// DiscoverAddOns scans the two well-known discovery directories for
// add-on.xml packages and returns their scenery components as areas.
// Missing directories are not an error.
func DiscoverAddOns(discoveryPaths []string, lg *log.Logger) []Area {
	var areas []Area

	for _, root := range discoveryPaths {
		entries, err := os.ReadDir(root)
		if err != nil {
			lg.Debugf("add-on discovery: %v", err)
			continue
		}

		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			xmlPath := filepath.Join(root, e.Name(), "add-on.xml")
			pkgAreas, err := readAddOnPackage(xmlPath, filepath.Join(root, e.Name()))
			if err != nil {
				if !os.IsNotExist(err) {
					lg.Warnf("%s: %v", xmlPath, err)
				}
				continue
			}
			areas = append(areas, pkgAreas...)
		}
	}
	return areas
}

func readAddOnPackage(xmlPath, pkgDir string) ([]Area, error) {
	data, err := os.ReadFile(xmlPath)
	if err != nil {
		return nil, err
	}

	var pkg addOnPackage
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}

	var areas []Area
	for _, comp := range pkg.Components {
		if comp.Category != "Scenery" {
			continue
		}
		path := comp.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(pkgDir, path)
		}
		title := comp.Name
		if title == "" {
			title = pkg.Name
		}
		areas = append(areas, Area{
			Title:     title,
			LocalPath: path,
			Layer:     comp.Layer,
			Active:    true,
		})
	}
	return areas, nil
}
