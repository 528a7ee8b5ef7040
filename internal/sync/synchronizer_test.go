package sync

import (
	"testing"
	"time"

	"github.com/kestrel-robotics/terrainmap/internal/model"
	"github.com/stretchr/testify/require"
)

func ts(sec int) time.Time {
	return time.Unix(int64(sec), 0)
}

func TestDrainWithholdsUntilBothStreamsSeen(t *testing.T) {
	s := NewUpdateSynchronizer()
	s.AddCloud(model.PointCloud{Timestamp: ts(1)})
	require.Empty(t, s.Drain())
}

func TestDrainReleasesUpToLowWatermarkInOrder(t *testing.T) {
	s := NewUpdateSynchronizer()
	s.AddCloud(model.PointCloud{Timestamp: ts(3)})
	s.AddCloud(model.PointCloud{Timestamp: ts(1)})
	s.AddPropagation(model.PropagationDelta{Timestamp: ts(2)})

	out := s.Drain()
	require.Len(t, out, 2)
	require.Equal(t, ts(1), out[0].Timestamp)
	require.Equal(t, ts(2), out[1].Timestamp)

	// The cloud update at t=3 is still withheld: the propagation stream
	// hasn't produced anything past t=2 yet.
	require.Empty(t, s.Drain())
}

func TestDrainAdvancesAsNewWatermarksArrive(t *testing.T) {
	s := NewUpdateSynchronizer()
	s.AddCloud(model.PointCloud{Timestamp: ts(3)})
	s.AddPropagation(model.PropagationDelta{Timestamp: ts(2)})
	first := s.Drain()
	require.Len(t, first, 1)
	require.Equal(t, ts(2), first[0].Timestamp)

	s.AddPropagation(model.PropagationDelta{Timestamp: ts(5)})
	out := s.Drain()
	require.Len(t, out, 1)
	require.Equal(t, ts(3), out[0].Timestamp)
}

func TestResetClearsBufferedState(t *testing.T) {
	s := NewUpdateSynchronizer()
	s.AddCloud(model.PointCloud{Timestamp: ts(1)})
	s.AddPropagation(model.PropagationDelta{Timestamp: ts(1)})
	s.Reset()
	require.Empty(t, s.Drain())
}
