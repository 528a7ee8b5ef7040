package ingest

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/kestrel-robotics/terrainmap/internal/model"
	termsync "github.com/kestrel-robotics/terrainmap/internal/sync"
	"github.com/stretchr/testify/require"
)

func TestCloudSourceForwardsProducedCloudsUntilExhausted(t *testing.T) {
	dest := termsync.NewUpdateSynchronizer()
	var produced int32

	producer := func(feedID int) (model.PointCloud, bool) {
		n := atomic.AddInt32(&produced, 1)
		if n > 5 {
			return model.PointCloud{}, false
		}
		return model.PointCloud{Timestamp: time.Unix(int64(n), 0)}, true
	}

	src := NewCloudSource(1, producer, dest)
	src.Start()
	src.stopWg.Wait() // producer exhausts itself; no Stop() needed

	require.Equal(t, int32(6), atomic.LoadInt32(&produced))
}

func TestCloudSourceStopUnblocksAllFeeds(t *testing.T) {
	dest := termsync.NewUpdateSynchronizer()
	producer := func(feedID int) (model.PointCloud, bool) {
		return model.PointCloud{Timestamp: time.Now()}, true
	}

	src := NewCloudSource(4, producer, dest)
	src.Start()
	done := make(chan struct{})
	go func() {
		src.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return: a feed goroutine leaked")
	}
}
