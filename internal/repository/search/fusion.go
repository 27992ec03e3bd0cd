package search

import (
	"sort"

	"github.com/kontur-labs/ticketsearch/internal/domain/search/result"
	"github.com/kontur-labs/ticketsearch/internal/domain/search/score"
)

// fuseRelative merges vector and keyword rankings via relative-score fusion:
// each leg's scores are min-max normalized to [0,1], then blended as
// alpha*vector + (1-alpha)*keyword. A document missing from one leg
// contributes zero for that leg, so fused scores stay in [0,1] and remain
// comparable across queries.
func fuseRelative(knn, keyword []result.Result, alpha float64, limit int) []result.Result {
	type scored struct {
		res    result.Result
		vec    float64
		kw     float64
		hasVec bool
	}

	merged := make(map[string]*scored, len(knn)+len(keyword))

	vecScores := make([]float64, len(knn))
	for i, r := range knn {
		vecScores[i] = score.FromDistance(r.Score())
	}
	for i, norm := range normalize(vecScores) {
		r := knn[i]
		merged[r.ID()] = &scored{res: r, vec: norm, hasVec: true}
	}

	kwScores := make([]float64, len(keyword))
	for i, r := range keyword {
		kwScores[i] = r.Score()
	}
	for i, norm := range normalize(kwScores) {
		r := keyword[i]
		if existing, ok := merged[r.ID()]; ok {
			existing.kw = norm
		} else {
			merged[r.ID()] = &scored{res: r, kw: norm}
		}
	}

	fused := make([]result.Result, 0, len(merged))
	for id, s := range merged {
		blended := alpha*s.vec + (1-alpha)*s.kw
		fused = append(fused, result.New(id, blended, s.res.Fields()))
	}

	sort.Slice(fused, func(i, j int) bool {
		return fused[i].Score() > fused[j].Score()
	})

	if len(fused) > limit {
		fused = fused[:limit]
	}
	return fused
}

// normalize min-max scales scores to [0,1]. A constant list maps to all
// ones: every hit matched equally well within its leg.
func normalize(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}

	lo, hi := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}

	out := make([]float64, len(scores))
	if hi == lo {
		for i := range out {
			out[i] = 1
		}
		return out
	}
	for i, s := range scores {
		out[i] = (s - lo) / (hi - lo)
	}
	return out
}

// similaritiesOf converts a distance-scored result list onto the similarity
// scale, preserving order.
func similaritiesOf(knn []result.Result) []result.Result {
	out := make([]result.Result, 0, len(knn))
	for _, r := range knn {
		out = append(out, result.New(r.ID(), score.FromDistance(r.Score()), r.Fields()))
	}
	return out
}
