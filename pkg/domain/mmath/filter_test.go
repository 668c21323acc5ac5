// 指示: miu200521358
package mmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func assertSlice(t *testing.T, label string, got []float64, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s length mismatch: got=%v want=%v", label, got, want)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("%s[%d] mismatch: got=%v want=%v", label, i, got, want)
		}
	}
}

func TestUnwrapAnglesRemovesJumps(t *testing.T) {
	got := UnwrapAngles([]float64{170, -175, -170, 175})
	assertSlice(t, "unwrap", got, []float64{170, 185, 190, 175})
}

func TestClampAngleDeltasUsesOutputPrevious(t *testing.T) {
	got := ClampAngleDeltas([]float64{0, 100, 100, -50}, 70)
	assertSlice(t, "clamp", got, []float64{0, 70, 100, 30})
	for i := 1; i < len(got); i++ {
		if math.Abs(got[i]-got[i-1]) > 70+1e-9 {
			t.Fatalf("delta exceeds limit at %d: %v", i, got)
		}
	}
}

func TestApplyDeadbandHoldsPrevious(t *testing.T) {
	got := ApplyDeadband([]float64{1, 1.005, 1.02, 1.021}, 0.01)
	assertSlice(t, "deadband", got, []float64{1, 1, 1.02, 1.02})
	assertSlice(t, "deadband-disabled", ApplyDeadband([]float64{1, 2}, 0), []float64{1, 2})
}

func TestSmoothAlphaOneIsIdentity(t *testing.T) {
	values := []float64{0, 10, 0}
	assertSlice(t, "smooth", Smooth(values, 1), values)
	assertSlice(t, "smooth-half", Smooth(values, 0.5), []float64{0, 5, 2.5})
}

func TestSmoothBidirectionalIsSymmetric(t *testing.T) {
	got := SmoothBidirectional([]float64{0, 0, 10, 0, 0}, 0.5, 1)
	if math.Abs(got[1]-got[3]) > 1 {
		t.Fatalf("bidirectional smoothing should be roughly symmetric: %v", got)
	}
	if got[2] >= 10 || got[2] <= 0 {
		t.Fatalf("peak should be attenuated: %v", got)
	}
}

func TestMedianFilterClampsEdges(t *testing.T) {
	got := MedianFilter([]float64{0, 100, 0, 0, 50, 0}, 3)
	assertSlice(t, "median", got, []float64{0, 0, 0, 0, 0, 0})
	assertSlice(t, "median-short", MedianFilter([]float64{1, 9}, 5), []float64{1, 9})
	if ToWindowSize(4) != 5 || ToWindowSize(2) != 1 || ToWindowSize(7) != 7 {
		t.Fatalf("window size normalization mismatch")
	}
}

func TestMedianEvenCountAverages(t *testing.T) {
	got, ok := Median([]float64{4, 1, 3, 2})
	if !ok || got != 2.5 {
		t.Fatalf("median mismatch: got=%v ok=%v", got, ok)
	}
	if _, ok := Median([]float64{math.NaN()}); ok {
		t.Fatalf("median of no finite values should fail")
	}
}

func TestMeanOfLeadingSkipsNonFinite(t *testing.T) {
	got, ok := MeanOfLeading([]float64{2, math.NaN(), 4, 100}, 3)
	if !ok || got != 3 {
		t.Fatalf("mean mismatch: got=%v ok=%v", got, ok)
	}
}

func TestRoundToHalfUp(t *testing.T) {
	if RoundTo(1.23455, 4) != 1.2346 && RoundTo(1.23455, 4) != 1.2345 {
		t.Fatalf("unexpected rounding: %v", RoundTo(1.23455, 4))
	}
	if got := RoundTo(-0.00001, 4); got != 0 || math.Signbit(got) {
		t.Fatalf("negative zero should collapse: %v", got)
	}
	if got := RoundTo(-2.5, 0); got != -2 {
		t.Fatalf("half should round up: got=%v", got)
	}
}

func TestDominantAxisExcludes(t *testing.T) {
	v := Vec3{X: 0.2, Y: -3, Z: 1}
	if got := DominantAxis(v); got != AxisY {
		t.Fatalf("dominant mismatch: got=%s", got)
	}
	if got := DominantAxis(v, AxisY); got != AxisZ {
		t.Fatalf("dominant excluding y mismatch: got=%s", got)
	}
	if got := RemainingAxis(AxisZ, AxisX); got != AxisY {
		t.Fatalf("remaining axis mismatch: got=%s", got)
	}
}

func TestComposeAndWorldToLocalRoundTrip(t *testing.T) {
	parent := BoneTransform{X: 10, Y: 5, Rotation: 90, ScaleX: 2, ScaleY: 1}
	world := Compose(BoneTransform{X: 3, Y: 1, ScaleX: 1, ScaleY: 1}, &parent)
	if math.Abs(world.X-9) > 1e-9 || math.Abs(world.Y-11) > 1e-9 {
		t.Fatalf("compose mismatch: %+v", world)
	}
	local := parent.WorldToLocal(mgl64.Vec2{world.X, world.Y})
	if math.Abs(local.X()-3) > 1e-9 || math.Abs(local.Y()-1) > 1e-9 {
		t.Fatalf("world to local mismatch: %v", local)
	}
}

func TestSimilarityApply(t *testing.T) {
	s := Similarity2D{
		SourceOrigin: mgl64.Vec2{1, 1},
		TargetOrigin: mgl64.Vec2{10, 0},
		RotationRad:  math.Pi / 2,
		Scale:        2,
	}
	got := s.Apply(mgl64.Vec2{2, 1})
	if math.Abs(got.X()-10) > 1e-9 || math.Abs(got.Y()-2) > 1e-9 {
		t.Fatalf("similarity mismatch: %v", got)
	}
}
