package search

import (
	"math"
	"testing"

	"github.com/kontur-labs/ticketsearch/internal/domain/search/result"
)

func distances(pairs ...any) []result.Result {
	var out []result.Result
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, result.NewDistance(pairs[i].(string), pairs[i+1].(float64), nil))
	}
	return out
}

func scoresList(pairs ...any) []result.Result {
	var out []result.Result
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, result.New(pairs[i].(string), pairs[i+1].(float64), nil))
	}
	return out
}

func TestFuseRelative_OrderedByBlendedScore(t *testing.T) {
	knn := distances("a", 0.1, "b", 0.8) // a is much closer
	kw := scoresList("b", 12.0, "c", 3.0)

	fused := fuseRelative(knn, kw, 0.5, 10)
	if len(fused) != 3 {
		t.Fatalf("got %d results, want 3", len(fused))
	}
	for i := 1; i < len(fused); i++ {
		if fused[i].Score() > fused[i-1].Score() {
			t.Fatalf("results not sorted descending at %d", i)
		}
	}
}

func TestFuseRelative_ScoresWithinUnitInterval(t *testing.T) {
	knn := distances("a", 0.0, "b", 1.0, "c", 2.0)
	kw := scoresList("a", 9.0, "d", 1.0)

	for _, alpha := range []float64{0.1, 0.5, 0.9} {
		for _, r := range fuseRelative(knn, kw, alpha, 10) {
			if r.Score() < 0 || r.Score() > 1 {
				t.Errorf("alpha=%f: score %f out of [0,1]", alpha, r.Score())
			}
		}
	}
}

func TestFuseRelative_DocInBothLegsWins(t *testing.T) {
	// "both" is top of each leg; it must outrank single-leg docs.
	knn := distances("both", 0.1, "veconly", 0.5)
	kw := scoresList("both", 10.0, "kwonly", 8.0)

	fused := fuseRelative(knn, kw, 0.5, 10)
	if fused[0].ID() != "both" {
		t.Fatalf("top result = %q, want \"both\"", fused[0].ID())
	}
	if fused[0].Score() != 1 {
		t.Errorf("top-of-both-legs score = %f, want 1", fused[0].Score())
	}
}

func TestFuseRelative_AlphaWeighting(t *testing.T) {
	knn := distances("vec", 0.0)
	kw := scoresList("kw", 5.0)

	fused := fuseRelative(knn, kw, 0.9, 10)
	if fused[0].ID() != "vec" {
		t.Fatalf("alpha=0.9 top = %q, want vector-leg doc", fused[0].ID())
	}

	fused = fuseRelative(knn, kw, 0.1, 10)
	if fused[0].ID() != "kw" {
		t.Fatalf("alpha=0.1 top = %q, want keyword-leg doc", fused[0].ID())
	}
}

func TestFuseRelative_Limit(t *testing.T) {
	knn := distances("a", 0.1, "b", 0.2, "c", 0.3)
	kw := scoresList("d", 4.0, "e", 2.0)

	fused := fuseRelative(knn, kw, 0.5, 2)
	if len(fused) != 2 {
		t.Fatalf("got %d results, want 2", len(fused))
	}
}

func TestNormalize(t *testing.T) {
	got := normalize([]float64{2, 6, 4})
	want := []float64{0, 1, 0.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("normalize[%d] = %f, want %f", i, got[i], want[i])
		}
	}

	for _, v := range normalize([]float64{3, 3, 3}) {
		if v != 1 {
			t.Fatalf("constant list should normalize to 1, got %f", v)
		}
	}

	if normalize(nil) != nil {
		t.Fatal("normalize(nil) should be nil")
	}
}
