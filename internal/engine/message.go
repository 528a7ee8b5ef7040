package engine

import (
	"time"

	"github.com/kestrel-robotics/terrainmap/internal/fusedmap"
	"github.com/kestrel-robotics/terrainmap/internal/grid"
	"github.com/kestrel-robotics/terrainmap/internal/rawmap"
)

// MapMessage is the outbound snapshot format: geometry, the grid's current
// rolling start index, a timestamp, and every layer materialized as a
// dense matrix in logical (not buffer) order so a consumer never needs to
// know about the rolling addressing scheme.
type MapMessage struct {
	Rows, Cols int
	Resolution float64
	Center     grid.Point
	StartIndex grid.Index
	Timestamp  time.Time

	FloatLayers map[grid.Layer][][]float64
	ColorLayers map[grid.Layer][][]uint32
}

func materializeFloat(g *grid.CircularGrid, layer grid.Layer) [][]float64 {
	rows, cols := g.Rows(), g.Cols()
	out := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		out[r] = make([]float64, cols)
		for c := 0; c < cols; c++ {
			out[r][c] = *g.At(layer, grid.Index{R: r, C: c})
		}
	}
	return out
}

func materializeColor(g *grid.CircularGrid, layer grid.Layer) [][]uint32 {
	rows, cols := g.Rows(), g.Cols()
	out := make([][]uint32, rows)
	for r := 0; r < rows; r++ {
		out[r] = make([]uint32, cols)
		for c := 0; c < cols; c++ {
			out[r][c] = *g.AtColor(layer, grid.Index{R: r, C: c})
		}
	}
	return out
}

func messageFromRaw(m *rawmap.RawMap) MapMessage {
	g := m.Grid
	msg := MapMessage{
		Rows: g.Rows(), Cols: g.Cols(), Resolution: g.Resolution(),
		Center: g.Center(), StartIndex: g.StartIndex(), Timestamp: m.Timestamp,
		FloatLayers: map[grid.Layer][][]float64{},
		ColorLayers: map[grid.Layer][][]uint32{},
	}
	for _, layer := range g.FloatLayerNames() {
		msg.FloatLayers[layer] = materializeFloat(g, layer)
	}
	for _, layer := range g.ColorLayerNames() {
		msg.ColorLayers[layer] = materializeColor(g, layer)
	}
	return msg
}

func messageFromFused(m *fusedmap.FusedMap) MapMessage {
	g := m.Grid
	msg := MapMessage{
		Rows: g.Rows(), Cols: g.Cols(), Resolution: g.Resolution(),
		Center: g.Center(), StartIndex: g.StartIndex(), Timestamp: m.Timestamp,
		FloatLayers: map[grid.Layer][][]float64{},
		ColorLayers: map[grid.Layer][][]uint32{},
	}
	for _, layer := range g.FloatLayerNames() {
		msg.FloatLayers[layer] = materializeFloat(g, layer)
	}
	for _, layer := range g.ColorLayerNames() {
		msg.ColorLayers[layer] = materializeColor(g, layer)
	}
	return msg
}
