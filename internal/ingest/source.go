// Package ingest drives one or more point-cloud feeds into a synchronizer.
// Adapted from the teacher's DataAcquisition, which ran one goroutine per
// IMU and pushed simulated samples into a Synchronizer; here each feed
// produces point clouds instead of IMU samples, and delivery goes through
// a caller-supplied producer function instead of a hardcoded simulation.
package ingest

import (
	"sync"

	"github.com/kestrel-robotics/terrainmap/internal/model"
	termsync "github.com/kestrel-robotics/terrainmap/internal/sync"
)

// Producer yields the next point cloud for a feed, blocking until one is
// available. Returning ok=false stops that feed's goroutine.
type Producer func(feedID int) (cloud model.PointCloud, ok bool)

// CloudSource runs feedCount independent goroutines, each pulling clouds
// from produce and forwarding them to dest.AddCloud.
type CloudSource struct {
	produce   Producer
	dest      *termsync.UpdateSynchronizer
	feedCount int
	stopChan  chan struct{}
	stopWg    sync.WaitGroup
}

// NewCloudSource builds a CloudSource with feedCount independent feeds.
func NewCloudSource(feedCount int, produce Producer, dest *termsync.UpdateSynchronizer) *CloudSource {
	return &CloudSource{
		produce:   produce,
		dest:      dest,
		feedCount: feedCount,
		stopChan:  make(chan struct{}),
	}
}

// Start launches one goroutine per feed. Each goroutine loops calling
// produce and forwarding successful results to the synchronizer until
// produce reports ok=false or Stop is called.
func (s *CloudSource) Start() {
	s.stopWg.Add(s.feedCount)
	for i := 0; i < s.feedCount; i++ {
		go func(feedID int) {
			defer s.stopWg.Done()
			for {
				select {
				case <-s.stopChan:
					return
				default:
				}
				cloud, ok := s.produce(feedID)
				if !ok {
					return
				}
				s.dest.AddCloud(cloud)
			}
		}(i)
	}
}

// Stop signals every feed goroutine to exit and waits for them.
func (s *CloudSource) Stop() {
	close(s.stopChan)
	s.stopWg.Wait()
}
