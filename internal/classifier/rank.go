package classifier

import (
	"math"
	"sort"

	"grove/pkg/types"
)

// Softmax converts logits into probabilities.
func Softmax(logits []float32) []float64 {
	out := make([]float64, len(logits))
	if len(logits) == 0 {
		return out
	}
	maxV := math.Inf(-1)
	for _, v := range logits {
		if f := float64(v); f > maxV {
			maxV = f
		}
	}
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v) - maxV)
		out[i] = e
		sum += e
	}
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Rank returns the k best classes by probability, highest first. Ties keep
// class order. k is clamped to [1, len(classes)].
func Rank(probs []float64, classes []string, k int) []types.Prediction {
	n := len(classes)
	if len(probs) < n {
		n = len(probs)
	}
	if n == 0 {
		return nil
	}
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	preds := make([]types.Prediction, n)
	for i := 0; i < n; i++ {
		preds[i] = types.Prediction{Label: classes[i], Confidence: clamp01(probs[i]), Index: i}
	}
	sort.SliceStable(preds, func(a, b int) bool { return preds[a].Confidence > preds[b].Confidence })
	return preds[:k]
}
