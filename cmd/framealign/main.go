// framealign is a small CLI that recovers the rigid transform between a
// sensor's reported landmark positions and the same landmarks surveyed in
// the map's parent frame, for one-time extrinsic calibration.
package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/kestrel-robotics/terrainmap/internal/framecalib"
	"github.com/kestrel-robotics/terrainmap/internal/grid"
)

func main() {
	sensorFlag := flag.String("sensor", "", "semicolon-separated x,y sensor-frame landmarks, e.g. 0,0;1,0;0,1")
	parentFlag := flag.String("parent", "", "semicolon-separated x,y parent-frame landmarks, matched pairwise with -sensor")
	flag.Parse()

	sensor, err := parsePoints(*sensorFlag)
	if err != nil {
		log.Fatalf("-sensor: %v", err)
	}
	parent, err := parsePoints(*parentFlag)
	if err != nil {
		log.Fatalf("-parent: %v", err)
	}

	alignment, err := framecalib.Fit(sensor, parent)
	if err != nil {
		log.Fatalf("framealign: %v", err)
	}

	fmt.Printf("scale:       %.6f\n", alignment.Scale)
	fmt.Printf("rotation:    [%.6f %.6f; %.6f %.6f]\n",
		alignment.Rotation[0][0], alignment.Rotation[0][1],
		alignment.Rotation[1][0], alignment.Rotation[1][1])
	fmt.Printf("translation: (%.6f, %.6f)\n", alignment.Translation.X, alignment.Translation.Y)
}

func parsePoints(s string) ([]grid.Point, error) {
	if s == "" {
		return nil, fmt.Errorf("no landmarks given")
	}
	var out []grid.Point
	for _, pair := range strings.Split(s, ";") {
		xy := strings.Split(pair, ",")
		if len(xy) != 2 {
			return nil, fmt.Errorf("malformed landmark %q, want x,y", pair)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(xy[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed x in %q: %w", pair, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(xy[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed y in %q: %w", pair, err)
		}
		out = append(out, grid.Point{X: x, Y: y})
	}
	return out, nil
}
