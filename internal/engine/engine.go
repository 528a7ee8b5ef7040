package engine

import (
	"sync"
	"time"

	"github.com/kestrel-robotics/terrainmap/internal/calib"
	"github.com/kestrel-robotics/terrainmap/internal/fusedmap"
	"github.com/kestrel-robotics/terrainmap/internal/fuser"
	"github.com/kestrel-robotics/terrainmap/internal/grid"
	"github.com/kestrel-robotics/terrainmap/internal/integrator"
	"github.com/kestrel-robotics/terrainmap/internal/model"
	"github.com/kestrel-robotics/terrainmap/internal/params"
	"github.com/kestrel-robotics/terrainmap/internal/pointfilter"
	"github.com/kestrel-robotics/terrainmap/internal/pose"
	"github.com/kestrel-robotics/terrainmap/internal/propagator"
	"github.com/kestrel-robotics/terrainmap/internal/rawmap"
	"github.com/kestrel-robotics/terrainmap/internal/scheduler"
	"github.com/kestrel-robotics/terrainmap/internal/uncertaintymodel"
)

// MapEngine is the single entry point a caller drives: it owns the raw and
// fused maps and enforces the locking discipline that lets integration,
// propagation, and fusion run concurrently without tearing either map.
//
// Two locks guard the two maps. raw_lock covers integrate/propagate/move/
// the raw half of reset; fused_lock covers fuse* for its whole duration,
// taking raw_lock only transiently to snapshot. reset acquires raw_lock
// then fused_lock, in that fixed order, so it can never deadlock against a
// fuse in progress. Neither lock is acquired twice by the same call path,
// so a plain sync.Mutex serves in place of a true re-entrant lock.
type MapEngine struct {
	rawLock   sync.Mutex
	fusedLock sync.Mutex

	raw   *rawmap.RawMap
	fused *fusedmap.FusedMap

	params     params.Parameters
	pose       pose.Pose
	extent     grid.Extent
	resolution float64

	calibration  calib.SensorCalibration
	filterConfig pointfilter.Config
	motionModel  uncertaintymodel.Model
	sched        *scheduler.Scheduler

	timeOfLastUpdate time.Time
	timeOfLastFusion time.Time
}

// NewMapEngine builds an engine with no geometry yet set; SetGeometry must
// be called before any other operation. The sensor calibration starts as
// identity and the point filter at its default configuration, so a caller
// that never touches either gets the same behavior as before they existed.
func NewMapEngine(opts ...params.Option) *MapEngine {
	return &MapEngine{
		params:       params.New(opts...),
		pose:         pose.Identity(),
		calibration:  calib.NewSensorCalibration(),
		filterConfig: pointfilter.DefaultConfig(),
		sched:        scheduler.New(),
	}
}

// SetSensorCalibration replaces the per-sensor extrinsic calibration applied
// to every cloud ahead of the point filter and the integrator.
func (e *MapEngine) SetSensorCalibration(c calib.SensorCalibration) {
	e.rawLock.Lock()
	defer e.rawLock.Unlock()
	e.calibration = c
}

// SetPointFilterConfig replaces the statistical-outlier-removal
// configuration applied to every cloud ahead of the integrator.
func (e *MapEngine) SetPointFilterConfig(cfg pointfilter.Config) {
	e.rawLock.Lock()
	defer e.rawLock.Unlock()
	e.filterConfig = cfg
}

// SetMotionNoiseModel replaces the model PropagateMotionNoise uses to build
// its variance-growth deltas.
func (e *MapEngine) SetMotionNoiseModel(m uncertaintymodel.Model) {
	e.rawLock.Lock()
	defer e.rawLock.Unlock()
	e.motionModel = m
}

// SetGeometry (re)allocates both the raw and fused maps to the given
// extent, resolution, and center. Any prior data is discarded.
func (e *MapEngine) SetGeometry(extent grid.Extent, resolution float64, center grid.Point) {
	e.rawLock.Lock()
	e.fusedLock.Lock()
	defer e.fusedLock.Unlock()
	defer e.rawLock.Unlock()

	e.extent, e.resolution = extent, resolution
	if e.raw == nil {
		e.raw = rawmap.New(extent, resolution, center)
		e.fused = fusedmap.New(extent, resolution, center)
		return
	}
	e.raw.SetGeometry(extent, resolution, center)
	e.fused.SetGeometry(extent, resolution, center)
}

// SetParameters replaces the engine's tunable parameters.
func (e *MapEngine) SetParameters(p params.Parameters) {
	e.rawLock.Lock()
	defer e.rawLock.Unlock()
	e.params = p
}

// SetPose updates the map's pose in its parent frame.
func (e *MapEngine) SetPose(p pose.Pose) {
	e.rawLock.Lock()
	defer e.rawLock.Unlock()
	e.pose = p
}

// Pose returns the map's current pose in its parent frame.
func (e *MapEngine) Pose() pose.Pose {
	e.rawLock.Lock()
	defer e.rawLock.Unlock()
	return e.pose
}

// Integrate merges a point cloud into the raw map under raw_lock. Before
// the integrator ever sees it, the cloud is corrected by the engine's
// sensor calibration and passed through the statistical-outlier-removal
// point filter.
func (e *MapEngine) Integrate(cloud model.PointCloud) error {
	e.rawLock.Lock()
	defer e.rawLock.Unlock()
	if e.raw == nil {
		return ErrNotInitialized
	}
	corrected := calib.ApplyToCloud(e.calibration, cloud)
	filtered := pointfilter.Filter(corrected, e.filterConfig)
	integrator.Integrate(e.raw, filtered, e.params)
	e.timeOfLastUpdate = e.raw.Timestamp
	return nil
}

// Propagate advances the raw map's variance layers under raw_lock.
func (e *MapEngine) Propagate(delta model.PropagationDelta) error {
	e.rawLock.Lock()
	defer e.rawLock.Unlock()
	return e.propagateLocked(delta)
}

// PropagateMotionNoise builds the dense variance-growth deltas for a dt
// window from the engine's motion noise model and propagates them, saving
// the caller from hand-assembling a PropagationDelta for the common case.
func (e *MapEngine) PropagateMotionNoise(dt float64, timestamp time.Time) error {
	e.rawLock.Lock()
	defer e.rawLock.Unlock()
	if e.raw == nil {
		return ErrNotInitialized
	}
	rows, cols := e.raw.Grid.Rows(), e.raw.Grid.Cols()
	deltas := uncertaintymodel.MotionNoiseDeltas(rows, cols, e.motionModel, dt)
	return e.propagateLocked(model.PropagationDelta{
		DVariance: deltas.DVariance,
		DHVarX:    deltas.DHVarX,
		DHVarY:    deltas.DHVarY,
		Timestamp: timestamp,
	})
}

// propagateLocked is Propagate's body, factored out so PropagateMotionNoise
// can build its delta and apply it under a single raw_lock acquisition.
func (e *MapEngine) propagateLocked(delta model.PropagationDelta) error {
	if e.raw == nil {
		return ErrNotInitialized
	}
	if err := propagator.Propagate(e.raw, delta, e.params); err != nil {
		return err
	}
	e.timeOfLastUpdate = e.raw.Timestamp
	return nil
}

// FuseAll fuses the entire grid footprint.
func (e *MapEngine) FuseAll() error {
	if e.raw == nil {
		return ErrNotInitialized
	}
	rows, cols := e.raw.Grid.Rows(), e.raw.Grid.Cols()
	return e.FuseArea(grid.Index{R: 0, C: 0}, grid.Size{Rows: rows, Cols: cols})
}

// FuseArea fuses the submap starting at topLeft with the given logical
// size. fused_lock is held for the whole operation; raw_lock is taken only
// long enough to snapshot the raw map, so integration and propagation can
// keep progressing against the live raw map while fusion computes against
// the snapshot.
func (e *MapEngine) FuseArea(topLeft grid.Index, size grid.Size) error {
	e.fusedLock.Lock()
	defer e.fusedLock.Unlock()
	if e.raw == nil {
		return ErrNotInitialized
	}

	e.rawLock.Lock()
	snapshot := e.raw.Clone()
	e.rawLock.Unlock()

	fuser.FuseArea(snapshot, e.fused, topLeft, size)
	e.timeOfLastFusion = e.fused.Timestamp
	return nil
}

// ScheduleFuseArea enqueues a fusion request on the engine's scheduler
// instead of running it inline, priority-ranked by the fraction of the grid
// it covers, and returns the Job so the caller can wait on its Done
// channel. ProcessNextScheduledFusion drains the queue highest-priority
// first, so a ScheduleFuseAll submitted after a backlog of small
// ScheduleFuseArea requests still runs before them.
func (e *MapEngine) ScheduleFuseArea(topLeft grid.Index, size grid.Size) (*scheduler.Job, error) {
	// raw_lock also guards the scheduler queue.
	e.rawLock.Lock()
	defer e.rawLock.Unlock()
	if e.raw == nil {
		return nil, ErrNotInitialized
	}
	rows, cols := e.raw.Grid.Rows(), e.raw.Grid.Cols()

	job := scheduler.NewJob(topLeft, size)
	e.sched.Submit(job, scheduler.AreaPriority(size, rows, cols))
	return job, nil
}

// ScheduleFuseAll enqueues a full-grid fusion request on the scheduler.
func (e *MapEngine) ScheduleFuseAll() (*scheduler.Job, error) {
	e.rawLock.Lock()
	if e.raw == nil {
		e.rawLock.Unlock()
		return nil, ErrNotInitialized
	}
	rows, cols := e.raw.Grid.Rows(), e.raw.Grid.Cols()
	e.rawLock.Unlock()
	return e.ScheduleFuseArea(grid.Index{R: 0, C: 0}, grid.Size{Rows: rows, Cols: cols})
}

// ProcessNextScheduledFusion runs the highest-priority queued fusion job, if
// any, closing its Done channel when finished. ok is false if the queue was
// empty.
func (e *MapEngine) ProcessNextScheduledFusion() (ok bool, err error) {
	e.rawLock.Lock()
	job, ok := e.sched.Next()
	e.rawLock.Unlock()
	if !ok {
		return false, nil
	}
	err = e.FuseArea(job.TopLeft, job.Size)
	close(job.Done)
	return true, err
}

// Reset clears both maps back to their post-SetGeometry state. raw_lock is
// acquired first, then fused_lock, establishing a fixed lock order with
// FuseArea's transient raw_lock-within-fused_lock acquisition so the two
// can never deadlock against each other.
func (e *MapEngine) Reset() error {
	e.rawLock.Lock()
	defer e.rawLock.Unlock()
	e.fusedLock.Lock()
	defer e.fusedLock.Unlock()
	if e.raw == nil {
		return ErrNotInitialized
	}
	e.raw.ClearAll()
	e.fused.ClearAll()
	e.timeOfLastUpdate = time.Time{}
	e.timeOfLastFusion = time.Time{}
	return nil
}

// Move recenters both maps on newCenter. The raw map is always translated
// under raw_lock. The fused map is only translated if fused_lock can be
// acquired without blocking; if fusion is in progress, the fused map is
// left un-moved. Move itself changes neither map's timestamp: the next
// FuseArea/FuseAll clears the fused map before recomputing only if the raw
// timestamp has changed since the last fusion, per IsStale.
func (e *MapEngine) Move(newCenter grid.Point) error {
	e.rawLock.Lock()
	if e.raw == nil {
		e.rawLock.Unlock()
		return ErrNotInitialized
	}
	e.raw.Move(newCenter)
	e.rawLock.Unlock()

	if e.fusedLock.TryLock() {
		defer e.fusedLock.Unlock()
		e.fused.Move(newCenter)
	}
	return nil
}

// RawSnapshot returns a logical-order dense snapshot of the raw map.
func (e *MapEngine) RawSnapshot() (MapMessage, error) {
	e.rawLock.Lock()
	defer e.rawLock.Unlock()
	if e.raw == nil {
		return MapMessage{}, ErrNotInitialized
	}
	return messageFromRaw(e.raw), nil
}

// FusedSnapshot returns a logical-order dense snapshot of the fused map.
func (e *MapEngine) FusedSnapshot() (MapMessage, error) {
	e.fusedLock.Lock()
	defer e.fusedLock.Unlock()
	if e.fused == nil {
		return MapMessage{}, ErrNotInitialized
	}
	return messageFromFused(e.fused), nil
}

// TimeOfLastUpdate returns the raw map's most recent integrate/propagate
// timestamp.
func (e *MapEngine) TimeOfLastUpdate() time.Time {
	e.rawLock.Lock()
	defer e.rawLock.Unlock()
	return e.timeOfLastUpdate
}

// TimeOfLastFusion returns the raw timestamp reflected by the most recent
// completed fusion.
func (e *MapEngine) TimeOfLastFusion() time.Time {
	e.fusedLock.Lock()
	defer e.fusedLock.Unlock()
	return e.timeOfLastFusion
}
