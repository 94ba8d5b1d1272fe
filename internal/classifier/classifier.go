package classifier

import (
	"context"
	"fmt"
	"image"

	"grove/internal/imageproc"
	"grove/pkg/types"
)

// Classifier pairs a loaded model with its labels file.
type Classifier struct {
	md     Metadata
	spec   imageproc.Spec
	runner Runner
}

// New wraps runner. md should already be validated.
func New(md Metadata, runner Runner) *Classifier {
	return &Classifier{md: md, spec: md.Spec(), runner: runner}
}

// Metadata returns the labels file the classifier was built with.
func (c *Classifier) Metadata() Metadata { return c.md }

// Classify runs the model on img and returns the topK best classes.
func (c *Classifier) Classify(ctx context.Context, img image.Image, topK int) ([]types.Prediction, error) {
	input := imageproc.ToTensor(img, c.spec)
	out, err := c.runner.Run(ctx, input)
	if err != nil {
		return nil, err
	}
	n := len(c.md.Classes)
	if len(out) < n {
		return nil, fmt.Errorf("model returned %d scores for %d classes", len(out), n)
	}
	out = out[:n]

	var probs []float64
	if c.md.Output == OutputProbabilities {
		probs = make([]float64, n)
		for i, v := range out {
			probs[i] = float64(v)
		}
	} else {
		probs = Softmax(out)
	}
	return Rank(probs, c.md.Classes, topK), nil
}

// Close releases the runner.
func (c *Classifier) Close() error {
	if c.runner == nil {
		return nil
	}
	return c.runner.Close()
}
