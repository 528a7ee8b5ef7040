// Package sync aligns point-cloud and propagation-delta updates that arrive
// on independent channels with independent timestamps, releasing them to
// the engine in chronological order. Adapted from the teacher's
// Synchronizer, which aligned per-IMU samples into complete frames; here
// there are only two update kinds instead of N identical ones, so
// completeness is replaced by a low-watermark release rule.
package sync

import (
	"sort"
	"sync"
	"time"

	"github.com/kestrel-robotics/terrainmap/internal/model"
)

// Kind distinguishes the two update streams the engine consumes.
type Kind int

const (
	CloudUpdate Kind = iota
	PropagationUpdate
)

// Update is one buffered, timestamped engine input.
type Update struct {
	Kind      Kind
	Timestamp time.Time
	Cloud     model.PointCloud
	Delta     model.PropagationDelta
}

// UpdateSynchronizer buffers cloud and propagation updates and releases
// them in timestamp order once neither stream still has an older update
// pending.
type UpdateSynchronizer struct {
	mu      sync.Mutex
	pending []Update

	lastCloudTS time.Time
	lastPropTS  time.Time
	sawCloud    bool
	sawProp     bool
}

// NewUpdateSynchronizer returns an empty synchronizer.
func NewUpdateSynchronizer() *UpdateSynchronizer {
	return &UpdateSynchronizer{}
}

// AddCloud buffers a point-cloud update.
func (s *UpdateSynchronizer) AddCloud(cloud model.PointCloud) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, Update{Kind: CloudUpdate, Timestamp: cloud.Timestamp, Cloud: cloud})
	if !s.sawCloud || cloud.Timestamp.After(s.lastCloudTS) {
		s.lastCloudTS = cloud.Timestamp
		s.sawCloud = true
	}
}

// AddPropagation buffers a propagation-delta update.
func (s *UpdateSynchronizer) AddPropagation(delta model.PropagationDelta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, Update{Kind: PropagationUpdate, Timestamp: delta.Timestamp, Delta: delta})
	if !s.sawProp || delta.Timestamp.After(s.lastPropTS) {
		s.lastPropTS = delta.Timestamp
		s.sawProp = true
	}
}

// Drain releases every buffered update whose timestamp is at or before the
// low watermark (the older of the two streams' latest-seen timestamps), in
// chronological order. Until both streams have produced at least one
// update, nothing is released: a lone stream's updates could otherwise be
// replayed out of order relative to an update from the other stream that
// hasn't arrived yet.
func (s *UpdateSynchronizer) Drain() []Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sawCloud || !s.sawProp {
		return nil
	}
	watermark := s.lastCloudTS
	if s.lastPropTS.Before(watermark) {
		watermark = s.lastPropTS
	}

	var ready, rest []Update
	for _, u := range s.pending {
		if !u.Timestamp.After(watermark) {
			ready = append(ready, u)
		} else {
			rest = append(rest, u)
		}
	}
	s.pending = rest

	sort.Slice(ready, func(i, j int) bool { return ready[i].Timestamp.Before(ready[j].Timestamp) })
	return ready
}

// Reset clears all buffered state.
func (s *UpdateSynchronizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	s.lastCloudTS, s.lastPropTS = time.Time{}, time.Time{}
	s.sawCloud, s.sawProp = false, false
}
