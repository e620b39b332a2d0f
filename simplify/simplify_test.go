package simplify

import (
	"math"
	"math/rand"
	"testing"

	"github.com/inkwell-board/inkwell/geom"
)

func noisyPath(n int, seed int64) []geom.Sample {
	r := rand.New(rand.NewSource(seed))
	pts := make([]geom.Sample, n)
	for i := range pts {
		x := float64(i) * 3
		pts[i] = geom.Sample{X: x, Y: 40*math.Sin(x/50) + r.Float64()*6 - 3, Size: 4}
	}
	return pts
}

func TestShortPathsUnchanged(t *testing.T) {
	for n := 0; n <= 2; n++ {
		pts := noisyPath(n, 1)
		if got := Path(pts, 10); len(got) != n {
			t.Errorf("len(Path(%d points)) = %d", n, len(got))
		}
	}
}

func TestCollinearCollapses(t *testing.T) {
	pts := []geom.Sample{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}, {X: 10, Y: 10}}
	got := Path(pts, DefaultTolerance)
	if len(got) != 2 || got[0] != pts[0] || got[1] != pts[4] {
		t.Errorf("Path(collinear) = %v", got)
	}
}

func TestKeepsCorner(t *testing.T) {
	pts := []geom.Sample{{X: 0, Y: 0}, {X: 50, Y: 1}, {X: 100, Y: 0}, {X: 100, Y: 50}, {X: 100, Y: 100}}
	got := Path(pts, DefaultTolerance)
	want := []geom.Sample{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}}
	if len(got) != len(want) {
		t.Fatalf("Path = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Path[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDegenerateChord(t *testing.T) {
	// Closed loop: first == last, interior distance falls back to point distance.
	pts := []geom.Sample{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 0}}
	got := Path(pts, DefaultTolerance)
	if len(got) < 3 {
		t.Errorf("closed loop collapsed to %v", got)
	}
}

func TestMonotonicInTolerance(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		pts := noisyPath(300, seed)
		prev := len(pts) + 1
		for _, eps := range []float64{0, 0.5, 1, 1.5, 3, 6, 12, 25, 50, 100} {
			got := Path(pts, eps)
			if len(got) > prev {
				t.Errorf("seed %d: eps=%v gave %d points, more than %d at a smaller eps", seed, eps, len(got), prev)
			}
			if got[0] != pts[0] || got[len(got)-1] != pts[len(pts)-1] {
				t.Errorf("seed %d: eps=%v dropped an endpoint", seed, eps)
			}
			prev = len(got)
		}
	}
}

func TestInputNotModified(t *testing.T) {
	pts := noisyPath(50, 9)
	orig := append([]geom.Sample(nil), pts...)
	Path(pts, 5)
	for i := range pts {
		if pts[i] != orig[i] {
			t.Fatalf("input modified at %d", i)
		}
	}
}
