// Package export renders simulation output to standalone SVG documents,
// for reports and for dropping into chart reviews.
package export

import (
	"fmt"
	"strings"

	"github.com/g960059/hemosim/internal/analysis"
	"github.com/g960059/hemosim/internal/circ"
	"github.com/g960059/hemosim/internal/sim"
)

const backgroundFill = "#0a0a0a"

// Monitor-convention trace colors: arterial red, pulmonary yellow,
// venous and atrial blues.
var signalColors = map[string]string{
	"aop": "#ff5f5f",
	"plv": "#ff5f5f",
	"pap": "#ffd75f",
	"prv": "#ffd75f",
	"pla": "#5fd7ff",
	"pra": "#5fafff",
}

const loopColor = "#5fff87"

type xy struct{ x, y float64 }

// WaveformSVG plots one pressure signal against simulated time. Signal
// names match the stored output columns: plv, pla, prv, pra, aop, pap.
func WaveformSVG(records []sim.Record, signal string, width, height int) (string, error) {
	stroke, ok := signalColors[signal]
	if !ok {
		return "", fmt.Errorf("unknown signal %q, want one of plv pla prv pra aop pap", signal)
	}
	if len(records) < 2 {
		return "", fmt.Errorf("need at least 2 records, got %d", len(records))
	}
	points := make([]xy, len(records))
	for i, r := range records {
		points[i] = xy{x: r.T, y: auxValue(r.Aux, signal)}
	}
	return pathSVG(points, width, height, stroke, false), nil
}

// PVLoopSVG plots the left ventricular pressure-volume loop of the last
// full cardiac cycle, closed.
func PVLoopSVG(records []sim.Record, hr float64, width, height int) (string, error) {
	vs, ps, ok := analysis.PVLoop(records, hr)
	if !ok || len(vs) < 3 {
		return "", fmt.Errorf("records do not span a full cardiac cycle")
	}
	points := make([]xy, len(vs))
	for i := range vs {
		points[i] = xy{x: vs[i], y: ps[i]}
	}
	return pathSVG(points, width, height, loopColor, true), nil
}

func auxValue(a circ.Aux, signal string) float64 {
	switch signal {
	case "plv":
		return a.Plv
	case "pla":
		return a.Pla
	case "prv":
		return a.Prv
	case "pra":
		return a.Pra
	case "aop":
		return a.AoP
	case "pap":
		return a.PAP
	}
	return 0
}

// pathSVG scales the points into the viewport with 10% padding on each
// side and draws them as a single stroked path on a dark background.
func pathSVG(points []xy, width, height int, stroke string, closed bool) string {
	minX, maxX := points[0].x, points[0].x
	minY, maxY := points[0].y, points[0].y
	for _, p := range points {
		if p.x < minX {
			minX = p.x
		}
		if p.x > maxX {
			maxX = p.x
		}
		if p.y < minY {
			minY = p.y
		}
		if p.y > maxY {
			maxY = p.y
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, backgroundFill, stroke))

	for i, p := range points {
		x := (p.x - minX) / rangeX * float64(width)
		y := float64(height) - (p.y-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	if closed {
		sb.WriteString(" Z")
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
