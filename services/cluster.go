package services

import (
	"math"
	"math/rand"

	"product-intel/models"
)

const (
	minClusterItems   = 3
	maxClusters       = 5
	clusterVocabulary = 100
	clusterSeed       = 42
	clusterInits      = 10
	maxIterations     = 300
)

// Cluster answers a clustering request for one category.
func Cluster(req models.ClusterRequest) models.ClusterResponse {
	return models.ClusterResponse{Clusters: ClusterByDescription(req.Items)}
}

// ClusterByDescription groups items whose descriptions share vocabulary.
// It uses k = min(5, n/2) clusters and returns an empty assignment for fewer
// than three items. The seed is fixed, so identical input always produces
// identical groups; cluster ids carry no meaning beyond grouping.
func ClusterByDescription(items []models.ClusterItem) models.ClusterAssignment {
	out := make(models.ClusterAssignment)
	if len(items) < minClusterItems {
		return out
	}
	k := len(items) / 2
	if k > maxClusters {
		k = maxClusters
	}
	if k < 1 {
		return out
	}

	docs := make([]string, len(items))
	for i, it := range items {
		docs[i] = it.Description
	}
	_, rows := Vectorizer{MaxTerms: clusterVocabulary}.FitTransform(docs)

	labels := kMeans(rows, k, rand.New(rand.NewSource(clusterSeed)))

	for c := 0; c < k; c++ {
		out[c] = []models.ClusterMember{}
	}
	for i, it := range items {
		price := 0.0
		if it.Price != nil {
			price = *it.Price
		}
		out[labels[i]] = append(out[labels[i]], models.ClusterMember{ID: it.ID, Name: it.Name, Price: price})
	}
	return out
}

// kMeans runs several k-means++ initialisations and keeps the labelling with
// the lowest inertia. Every cluster in the result is non-empty.
func kMeans(rows [][]float64, k int, rng *rand.Rand) []int {
	var (
		best        []int
		bestInertia = math.Inf(1)
	)
	for run := 0; run < clusterInits; run++ {
		centroids := seedCentroids(rows, k, rng)
		labels := lloyd(rows, centroids)
		fillEmptyClusters(rows, labels, k)
		if in := inertia(rows, labels, k); in < bestInertia {
			best, bestInertia = labels, in
		}
	}
	return best
}

// seedCentroids picks initial centroids with k-means++ weighting.
func seedCentroids(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(rows[rng.Intn(len(rows))]))

	dist := make([]float64, len(rows))
	for len(centroids) < k {
		var total float64
		for i, r := range rows {
			dist[i] = math.Inf(1)
			for _, c := range centroids {
				dist[i] = math.Min(dist[i], sqDist(r, c))
			}
			total += dist[i]
		}

		pick := rng.Intn(len(rows))
		if total > 0 {
			target := rng.Float64() * total
			for i, d := range dist {
				target -= d
				if target <= 0 && d > 0 {
					pick = i
					break
				}
			}
		}
		centroids = append(centroids, clone(rows[pick]))
	}
	return centroids
}

func lloyd(rows, centroids [][]float64) []int {
	labels := make([]int, len(rows))
	for iter := 0; iter < maxIterations; iter++ {
		changed := iter == 0
		for i, r := range rows {
			if c := nearest(r, centroids); c != labels[i] {
				labels[i] = c
				changed = true
			}
		}
		if !changed {
			break
		}
		centroids = recompute(rows, labels, centroids)
	}
	return labels
}

func nearest(r []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := sqDist(r, centroid); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// recompute moves each centroid to the mean of its members; a centroid with
// no members keeps its previous position.
func recompute(rows [][]float64, labels []int, prev [][]float64) [][]float64 {
	dim := len(rows[0])
	sums := make([][]float64, len(prev))
	sizes := make([]int, len(prev))
	for c := range sums {
		sums[c] = make([]float64, dim)
	}
	for i, r := range rows {
		sizes[labels[i]]++
		for j, v := range r {
			sums[labels[i]][j] += v
		}
	}
	for c := range sums {
		if sizes[c] == 0 {
			sums[c] = prev[c]
			continue
		}
		for j := range sums[c] {
			sums[c][j] /= float64(sizes[c])
		}
	}
	return sums
}

// fillEmptyClusters moves the member farthest from the centroid of the
// largest cluster into each empty cluster until all k are populated.
func fillEmptyClusters(rows [][]float64, labels []int, k int) {
	for {
		sizes := make([]int, k)
		for _, l := range labels {
			sizes[l]++
		}
		empty, largest := -1, 0
		for c, n := range sizes {
			if n == 0 && empty < 0 {
				empty = c
			}
			if n > sizes[largest] {
				largest = c
			}
		}
		if empty < 0 || sizes[largest] < 2 {
			return
		}

		centroid := recompute(rows, labels, make([][]float64, k))[largest]
		far, farDist := -1, -1.0
		for i, r := range rows {
			if labels[i] != largest {
				continue
			}
			if d := sqDist(r, centroid); d > farDist {
				far, farDist = i, d
			}
		}
		labels[far] = empty
	}
}

func inertia(rows [][]float64, labels []int, k int) float64 {
	centroids := recompute(rows, labels, make([][]float64, k))
	var sum float64
	for i, r := range rows {
		sum += sqDist(r, centroids[labels[i]])
	}
	return sum
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}
