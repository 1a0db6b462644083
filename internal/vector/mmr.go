package vector

import "math"

// MaxMarginalRelevance greedily picks up to k candidate indices. The first
// pick is the candidate most similar to query; each later pick maximizes
//
//	lambda*sim(query, c) - (1-lambda)*max(sim(c, s) for s already picked)
//
// so lambda=1 is pure relevance and lambda=0 is pure novelty. Picks are
// returned in selection order.
func MaxMarginalRelevance(query []float32, candidates [][]float32, k int, lambda float64) []int {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	relevance := make([]float64, len(candidates))
	first := 0
	for i, c := range candidates {
		relevance[i] = Cosine(query, c)
		if relevance[i] > relevance[first] {
			first = i
		}
	}

	selected := []int{first}
	picked := make([]bool, len(candidates))
	picked[first] = true
	// redundancy[i] is the highest similarity of candidate i to any pick so far.
	redundancy := make([]float64, len(candidates))
	for i, c := range candidates {
		redundancy[i] = Cosine(c, candidates[first])
	}

	for len(selected) < k {
		best, bestScore := -1, math.Inf(-1)
		for i := range candidates {
			if picked[i] {
				continue
			}
			score := lambda*relevance[i] - (1-lambda)*redundancy[i]
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		selected = append(selected, best)
		picked[best] = true
		for i, c := range candidates {
			if !picked[i] {
				if s := Cosine(c, candidates[best]); s > redundancy[i] {
					redundancy[i] = s
				}
			}
		}
	}
	return selected
}
