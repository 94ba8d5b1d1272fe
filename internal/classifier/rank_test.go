package classifier

import (
	"math"
	"testing"
)

func TestSoftmax(t *testing.T) {
	p := Softmax([]float32{1, 2, 3})
	var sum float64
	for _, v := range p {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("sum=%v", sum)
	}
	if !(p[2] > p[1] && p[1] > p[0]) {
		t.Fatalf("order: %v", p)
	}
	big := Softmax([]float32{1000, 1000})
	if math.Abs(big[0]-0.5) > 1e-9 {
		t.Fatalf("overflow handling: %v", big)
	}
	if len(Softmax(nil)) != 0 {
		t.Fatal("nil input")
	}
}

func TestRank(t *testing.T) {
	classes := []string{"a", "b", "c", "d"}
	got := Rank([]float64{0.1, 0.4, 0.4, 0.1}, classes, 3)
	if len(got) != 3 {
		t.Fatalf("len=%d", len(got))
	}
	if got[0].Label != "b" || got[1].Label != "c" || got[2].Label != "a" {
		t.Fatalf("order: %+v", got)
	}
	if got[0].Index != 1 {
		t.Fatalf("index: %d", got[0].Index)
	}
}

func TestRankClampK(t *testing.T) {
	classes := []string{"a", "b"}
	if got := Rank([]float64{0.3, 0.7}, classes, 0); len(got) != 1 || got[0].Label != "b" {
		t.Fatalf("k=0: %+v", got)
	}
	if got := Rank([]float64{0.3, 0.7}, classes, 10); len(got) != 2 {
		t.Fatalf("k=10: %+v", got)
	}
	if got := Rank(nil, classes, 1); got != nil {
		t.Fatalf("empty probs: %+v", got)
	}
}

func TestRankClampsConfidence(t *testing.T) {
	got := Rank([]float64{1.5, math.NaN(), -0.2}, []string{"a", "b", "c"}, 3)
	for _, p := range got {
		if p.Confidence < 0 || p.Confidence > 1 {
			t.Fatalf("confidence out of range: %+v", p)
		}
	}
	if got[0].Label != "a" || got[0].Confidence != 1 {
		t.Fatalf("top: %+v", got[0])
	}
}
