package detection

import (
	"context"
	"fmt"

	"go-aduan/types"
)

// Noise labels a point that belongs to no cluster.
const Noise = -1

// Density groups points of a similarity matrix DBSCAN-style. Point q is a
// neighbour of p when matrix[p][q] >= threshold, so every point neighbours
// itself. Points are visited in index order and neighbours are expanded
// breadth-first in ascending index, which makes the labelling deterministic.
// Clusters left with fewer than minPts members, because their border points
// were claimed earlier, are dissolved. Labels are renumbered 0..k-1 in
// discovery order.
func Density(ctx context.Context, matrix [][]float64, threshold float64, minPts int) ([]int, error) {
	n := len(matrix)
	for i, row := range matrix {
		if len(row) != n {
			return nil, fmt.Errorf("similarity matrix row %d has %d columns, want %d: %w", i, len(row), n, types.ErrInvalidReports)
		}
	}
	if minPts < 1 {
		minPts = 1
	}

	neighbors := func(p int) []int {
		var out []int
		for q := 0; q < n; q++ {
			if q == p || matrix[p][q] >= threshold {
				out = append(out, q)
			}
		}
		return out
	}

	labels := make([]int, n)
	for i := range labels {
		labels[i] = Noise
	}

	next := 0
	for p := 0; p < n; p++ {
		if labels[p] != Noise {
			continue
		}
		seeds := neighbors(p)
		if len(seeds) < minPts {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		id := next
		next++
		labels[p] = id

		queued := make([]bool, n)
		queued[p] = true
		queue := make([]int, 0, len(seeds))
		for _, q := range seeds {
			if !queued[q] {
				queued[q] = true
				queue = append(queue, q)
			}
		}

		for len(queue) > 0 {
			q := queue[0]
			queue = queue[1:]
			if labels[q] != Noise {
				continue
			}
			labels[q] = id

			expanded := neighbors(q)
			if len(expanded) < minPts {
				continue
			}
			for _, r := range expanded {
				if labels[r] == Noise && !queued[r] {
					queued[r] = true
					queue = append(queue, r)
				}
			}
		}
	}

	return dissolveSmall(labels, next, minPts), nil
}

func dissolveSmall(labels []int, clusters, minPts int) []int {
	sizes := make([]int, clusters)
	for _, l := range labels {
		if l != Noise {
			sizes[l]++
		}
	}
	remap := make([]int, clusters)
	kept := 0
	for id, size := range sizes {
		if size < minPts {
			remap[id] = Noise
			continue
		}
		remap[id] = kept
		kept++
	}
	for i, l := range labels {
		if l != Noise {
			labels[i] = remap[l]
		}
	}
	return labels
}
