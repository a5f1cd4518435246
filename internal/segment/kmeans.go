package segment

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/decisio/retail-dss/internal/models"
)

// DefaultMaxK is the upper end of the elbow sweep.
const DefaultMaxK = 6

// clusterSeed keeps reruns with identical inputs reproducible.
const clusterSeed = 42

// Cluster assigns each RFM record to one of k clusters. Features are
// standardized before clustering so raw monetary values do not dominate
// the distance metric. k is clamped to the customer count; fewer than 2
// customers short-circuits to a single cluster 0, since clustering on
// fewer than 2 points is undefined. The input slice is not mutated.
func Cluster(records []models.RFMRecord, k int) ([]models.RFMRecord, error) {
	if len(records) == 0 {
		return nil, &models.DataError{Reason: "no RFM records to cluster"}
	}
	if k < 2 || k > DefaultMaxK {
		return nil, &models.DataError{Reason: "cluster count k must be between 2 and 6"}
	}

	out := make([]models.RFMRecord, len(records))
	copy(out, records)

	if len(out) < 2 {
		out[0].Cluster = 0
		return out, nil
	}
	if k > len(out) {
		k = len(out)
	}

	points := standardize(out)
	assign, _, _ := kmeans(points, k, clusterSeed)
	for i := range out {
		out[i].Cluster = assign[i]
	}
	return out, nil
}

// Inertia computes the elbow sequence: within-cluster sum of squared
// distances for k=1..maxK. The sweep is capped at the customer count and
// zero-padded back to maxK so callers always get maxK values.
func Inertia(records []models.RFMRecord, maxK int) []float64 {
	if maxK <= 0 {
		maxK = DefaultMaxK
	}
	out := make([]float64, maxK)
	if len(records) == 0 {
		return out
	}
	points := standardize(records)
	limit := maxK
	if limit > len(records) {
		limit = len(records)
	}
	for k := 1; k <= limit; k++ {
		_, _, sse := kmeans(points, k, clusterSeed)
		out[k-1] = sse
	}
	return out
}

// standardize maps the three features to zero mean and unit variance.
// A constant feature keeps its raw deviation (stddev treated as 1).
func standardize(records []models.RFMRecord) [][3]float64 {
	n := len(records)
	cols := [3][]float64{
		make([]float64, n),
		make([]float64, n),
		make([]float64, n),
	}
	for i, r := range records {
		cols[0][i] = float64(r.RecencyDays)
		cols[1][i] = float64(r.Frequency)
		cols[2][i] = r.Monetary
	}

	points := make([][3]float64, n)
	for c := 0; c < 3; c++ {
		mean, std := stat.MeanStdDev(cols[c], nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		for i := 0; i < n; i++ {
			points[i][c] = (cols[c][i] - mean) / std
		}
	}
	return points
}

// kmeans is Lloyd's algorithm with k-means++ seeding and a deterministic
// RNG. Returns assignments, centroids and the final inertia. Empty
// clusters are repaired by reseeding with the point farthest from its
// centroid, so n >= k points always yield k non-empty clusters when the
// points are distinct.
func kmeans(points [][3]float64, k int, seed int64) ([]int, [][3]float64, float64) {
	n := len(points)
	rng := rand.New(rand.NewSource(seed))
	centroids := seedCentroids(points, k, rng)
	assign := make([]int, n)

	for iter := 0; iter < 100; iter++ {
		changed := false
		for i, p := range points {
			best := nearest(p, centroids)
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}

		counts := make([]int, k)
		sums := make([][3]float64, k)
		for i, p := range points {
			c := assign[i]
			counts[c]++
			for d := 0; d < 3; d++ {
				sums[c][d] += p[d]
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				far := farthestPoint(points, centroids, assign)
				centroids[c] = points[far]
				assign[far] = c
				changed = true
				continue
			}
			for d := 0; d < 3; d++ {
				centroids[c][d] = sums[c][d] / float64(counts[c])
			}
		}
		if !changed && iter > 0 {
			break
		}
	}

	sse := 0.0
	for i, p := range points {
		sse += dist2(p, centroids[assign[i]])
	}
	return assign, centroids, sse
}

// seedCentroids is k-means++: the first centroid uniform at random, each
// following one drawn proportionally to squared distance from the
// nearest already-chosen centroid.
func seedCentroids(points [][3]float64, k int, rng *rand.Rand) [][3]float64 {
	centroids := make([][3]float64, 0, k)
	centroids = append(centroids, points[rng.Intn(len(points))])
	d2 := make([]float64, len(points))
	for len(centroids) < k {
		total := 0.0
		for i, p := range points {
			d2[i] = dist2(p, centroids[nearest(p, centroids)])
			total += d2[i]
		}
		if total == 0 {
			// all remaining points coincide with a centroid
			centroids = append(centroids, points[rng.Intn(len(points))])
			continue
		}
		target := rng.Float64() * total
		acc := 0.0
		pick := len(points) - 1
		for i := range points {
			acc += d2[i]
			if acc >= target {
				pick = i
				break
			}
		}
		centroids = append(centroids, points[pick])
	}
	return centroids
}

func nearest(p [3]float64, centroids [][3]float64) int {
	best, bestD := 0, math.Inf(1)
	for c, ctr := range centroids {
		if d := dist2(p, ctr); d < bestD {
			best, bestD = c, d
		}
	}
	return best
}

func farthestPoint(points [][3]float64, centroids [][3]float64, assign []int) int {
	far, farD := 0, -1.0
	for i, p := range points {
		if d := dist2(p, centroids[assign[i]]); d > farD {
			far, farD = i, d
		}
	}
	return far
}

func dist2(a, b [3]float64) float64 {
	var s float64
	for d := 0; d < 3; d++ {
		diff := a[d] - b[d]
		s += diff * diff
	}
	return s
}
