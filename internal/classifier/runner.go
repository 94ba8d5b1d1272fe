// Package classifier turns a decoded image into ranked class predictions. The
// numeric model is opaque: a Runner maps an input tensor to one score per
// class, and this package handles preprocessing, softmax and ranking around it.
package classifier

import (
	"context"
	"errors"
)

// ErrRuntimeUnavailable is returned by Open when the binary was built
// without the ONNX runtime.
var ErrRuntimeUnavailable = errors.New("onnx runtime not built (missing 'onnx' build tag)")

// Runner executes the model on one input tensor. Implementations must be safe
// for concurrent use.
type Runner interface {
	Run(ctx context.Context, input []float32) ([]float32, error)
	Close() error
}

// Options tune how a model is opened.
type Options struct {
	// Sessions is the number of runtime sessions kept for concurrent calls.
	Sessions int
	// LibraryPath overrides the onnxruntime shared library location.
	LibraryPath string
}

// Opener loads a model file into a Runner.
type Opener func(modelPath string, md Metadata, opts Options) (Runner, error)

// MetadataReader extracts the labels document stored inside a model file.
type MetadataReader func(modelPath string, opts Options) (Metadata, error)
