// pkg/xp/xp.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package xp reads the line-oriented X-Plane navigation data files:
// fixes, navaids, airways, CIFP procedures, MSA sectors, MORA grids and
// user waypoints.
package xp

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/fsnav/navdbc/pkg/db"
	"github.com/fsnav/navdbc/pkg/log"
	"github.com/fsnav/navdbc/pkg/magdec"
	"github.com/fsnav/navdbc/pkg/util"
)

// Context carries the per-file state every line reader needs.
type Context struct {
	FileName string
	FileID   int64
	LineNum  int

	// AIRAC cycle from the file header, empty when absent
	Cycle        string
	ValidThrough string

	Mag   *magdec.Grid
	Index *db.AirportIndex
}

func (c *Context) prefix() string {
	return fmt.Sprintf("%s:%d", c.FileName, c.LineNum)
}

// Reader consumes tokenized lines of one file format.
type Reader interface {
	// Read handles one data line. Malformed lines are logged and
	// skipped, never returned as errors.
	Read(fields []string, ctx *Context) error

	// Finish flushes buffered state after the last line.
	Finish(ctx *Context) error

	// Reset drops buffered state before the next file.
	Reset()

	// MinFields is the shortest data line the format allows; shorter
	// lines are skipped with a warning before Read sees them.
	MinFields() int
}

// header metadata like
//   1100 Version - data cycle 2310, build 20231005, metadata FixXP1101...
var cycleRe = regexp.MustCompile(`data cycle (\d+)`)
var buildRe = regexp.MustCompile(`build (\d+)`)

// LoadFile feeds a whitespace-tokenized file through the reader. The
// two header lines are consumed for the AIRAC cycle; a line holding
// only "99" ends the file.
func LoadFile(path string, reader Reader, ctx *Context, lg *log.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader.Reset()
	ctx.LineNum = 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		ctx.LineNum++
		line := strings.TrimSpace(scanner.Text())

		if ctx.LineNum <= 2 {
			// byte-order marker line, then the version/cycle line
			if m := cycleRe.FindStringSubmatch(line); m != nil {
				ctx.Cycle = m[1]
			}
			if m := buildRe.FindStringSubmatch(line); m != nil {
				ctx.ValidThrough = m[1]
			}
			continue
		}
		if line == "" {
			continue
		}
		if line == "99" {
			break
		}

		fields := strings.Fields(line)
		if len(fields) < reader.MinFields() {
			lg.Warnf("%s: short line (%d fields), skipping", ctx.prefix(), len(fields))
			continue
		}
		if err := reader.Read(fields, ctx); err != nil {
			return fmt.Errorf("%s: %w", ctx.prefix(), err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return reader.Finish(ctx)
}

// at returns field i or "" when the line is short.
func at(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

// rest joins the fields from i on, the usual trailing-name convention.
func rest(fields []string, i int) string {
	if i >= len(fields) {
		return ""
	}
	return strings.Join(fields[i:], " ")
}

func parseFloat(s string) (float64, error) {
	return util.Atof(s)
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// airportOrEmpty maps the "ENRT" placeholder for en-route fixes to "".
func airportOrEmpty(s string) string {
	if s == "ENRT" {
		return ""
	}
	return s
}

// Counters holds the surrogate-id sequences shared by the text readers.
// Fix and navaid readers both create waypoint rows, so the counters
// live outside the individual readers.
type Counters struct {
	Waypoint    int64
	VOR         int64
	NDB         int64
	Marker      int64
	ILS         int64
	AirwayPoint int64
	Approach    int64
	Transition  int64
	ApproachLeg int64
}
