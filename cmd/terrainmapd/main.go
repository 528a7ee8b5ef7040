package main

import (
	"fmt"
	"log"
	"time"

	"github.com/kestrel-robotics/terrainmap/internal/engine"
	"github.com/kestrel-robotics/terrainmap/internal/grid"
	"github.com/kestrel-robotics/terrainmap/internal/ingest"
	"github.com/kestrel-robotics/terrainmap/internal/model"
	"github.com/kestrel-robotics/terrainmap/internal/params"
	termsync "github.com/kestrel-robotics/terrainmap/internal/sync"
	"github.com/kestrel-robotics/terrainmap/internal/uncertaintymodel"
)

// TODO: wire a real point-cloud transport (ROS2, a depth-camera SDK) in
// place of the simulated producer below.

func main() {
	eng := engine.NewMapEngine(
		params.WithVarianceBounds(1e-4, 10),
		params.WithHorizontalVarianceBounds(1e-4, 1),
	)
	eng.SetGeometry(grid.Extent{X: 10, Y: 10}, 0.05, grid.Point{X: 0, Y: 0})
	eng.SetMotionNoiseModel(uncertaintymodel.NewModel(0.002, 0.0015))

	sync := termsync.NewUpdateSynchronizer()
	source := ingest.NewCloudSource(1, simulatedFeed, sync)
	source.Start()
	defer source.Stop()

	fmt.Println("terrainmapd is running...")
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for i := 0; i < 20; i++ {
		<-ticker.C
		for _, u := range sync.Drain() {
			if u.Kind == termsync.CloudUpdate {
				if err := eng.Integrate(u.Cloud); err != nil {
					log.Fatalf("integrate: %v", err)
				}
			} else if err := eng.Propagate(u.Delta); err != nil {
				log.Fatalf("propagate: %v", err)
			}
		}
		if err := eng.PropagateMotionNoise(0.1, time.Now()); err != nil {
			log.Fatalf("propagate motion noise: %v", err)
		}
		if _, err := eng.ScheduleFuseAll(); err != nil {
			log.Fatalf("schedule fuse: %v", err)
		}
		if _, err := eng.ProcessNextScheduledFusion(); err != nil {
			log.Fatalf("fuse: %v", err)
		}
	}
}

func simulatedFeed(feedID int) (model.PointCloud, bool) {
	return model.PointCloud{
		Points:    []model.CloudPoint{{X: 0, Y: 0, Z: 0.1}},
		Variances: []float32{0.01},
		Timestamp: time.Now(),
	}, true
}
