//go:build !onnx

package classifier

// RuntimeAvailable reports whether this build can open ONNX models.
const RuntimeAvailable = false

// Open always fails without the 'onnx' build tag, keeping default builds
// CGO-free.
func Open(modelPath string, md Metadata, opts Options) (Runner, error) {
	return nil, ErrRuntimeUnavailable
}

// ReadEmbeddedMetadata needs the runtime to parse the model file.
func ReadEmbeddedMetadata(modelPath string, opts Options) (Metadata, error) {
	return Metadata{}, ErrRuntimeUnavailable
}
