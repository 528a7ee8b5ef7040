// Package pointfilter pre-filters an incoming point cloud with a
// statistical-outlier-removal pass before it reaches the integrator.
// Adapted from the teacher's PointCloud type: a k-d tree is built over the
// batch the same way the teacher built one over fused 2D positions, now
// over the cloud's raw 3D points, and queried for each point's nearest
// neighbors instead of the teacher's own linear-scan RadiusSearch.
package pointfilter

import (
	"math"

	"github.com/kyroy/kdtree"

	"github.com/kestrel-robotics/terrainmap/internal/model"
)

// kdPoint adapts a CloudPoint to kdtree.Point.
type kdPoint struct {
	model.CloudPoint
	index int
}

func (p kdPoint) Dimensions() int { return 3 }
func (p kdPoint) Dimension(i int) float64 {
	switch i {
	case 0:
		return float64(p.X)
	case 1:
		return float64(p.Y)
	default:
		return float64(p.Z)
	}
}
func (p kdPoint) Distance(q kdtree.Point) float64 {
	o := q.(kdPoint)
	dx := float64(p.X) - float64(o.X)
	dy := float64(p.Y) - float64(o.Y)
	dz := float64(p.Z) - float64(o.Z)
	return dx*dx + dy*dy + dz*dz
}

// Config controls the statistical outlier removal pass.
type Config struct {
	// Neighbors is how many nearest neighbors contribute to a point's mean
	// distance.
	Neighbors int
	// StdDevMultiplier: a point is rejected if its mean neighbor distance
	// exceeds the batch mean by more than this many standard deviations.
	StdDevMultiplier float64
}

// DefaultConfig returns conservative, widely-used SOR defaults.
func DefaultConfig() Config {
	return Config{Neighbors: 8, StdDevMultiplier: 1.0}
}

// Filter removes statistical outliers from cloud and returns the retained
// points with their matching variances. A point cloud too small to have
// Neighbors neighbors is returned unchanged.
func Filter(cloud model.PointCloud, cfg Config) model.PointCloud {
	n := len(cloud.Points)
	if n <= cfg.Neighbors {
		return cloud
	}

	points := make([]kdtree.Point, n)
	for i, p := range cloud.Points {
		points[i] = kdPoint{CloudPoint: p, index: i}
	}
	tree := kdtree.New(points)

	meanDist := make([]float64, n)
	for i := range points {
		// KNN includes the query point itself, so ask for one extra and
		// skip it when it turns up.
		neighbors := tree.KNN(points[i], cfg.Neighbors+1)

		var sum float64
		count := 0
		for _, nb := range neighbors {
			kp := nb.(kdPoint)
			if kp.index == i {
				continue
			}
			sum += math.Sqrt(kp.Distance(points[i]))
			count++
			if count == cfg.Neighbors {
				break
			}
		}
		if count == 0 {
			meanDist[i] = 0
			continue
		}
		meanDist[i] = sum / float64(count)
	}

	mean, stddev := meanAndStdDev(meanDist)
	threshold := mean + cfg.StdDevMultiplier*stddev

	out := model.PointCloud{Timestamp: cloud.Timestamp}
	for i, d := range meanDist {
		if d <= threshold {
			out.Points = append(out.Points, cloud.Points[i])
			out.Variances = append(out.Variances, cloud.Variances[i])
		}
	}
	return out
}

func meanAndStdDev(xs []float64) (mean, stddev float64) {
	n := float64(len(xs))
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean = sum / n
	var variance float64
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	variance /= n
	return mean, math.Sqrt(variance)
}
