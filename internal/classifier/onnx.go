//go:build onnx

package classifier

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// RuntimeAvailable reports whether this build can open ONNX models.
const RuntimeAvailable = true

var (
	envMu   sync.Mutex
	envRefs int
)

func acquireEnv(libPath string) error {
	envMu.Lock()
	defer envMu.Unlock()
	if envRefs == 0 {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("initialize onnx environment: %w", err)
		}
	}
	envRefs++
	return nil
}

func releaseEnv() {
	envMu.Lock()
	defer envMu.Unlock()
	envRefs--
	if envRefs == 0 {
		_ = ort.DestroyEnvironment()
	}
}

type onnxSession struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

func (s *onnxSession) destroy() {
	if s.session != nil {
		_ = s.session.Destroy()
	}
	if s.input != nil {
		_ = s.input.Destroy()
	}
	if s.output != nil {
		_ = s.output.Destroy()
	}
}

// onnxRunner holds a fixed pool of sessions. A session binds its input and
// output tensors, so each is used by one call at a time.
type onnxRunner struct {
	pool     chan *onnxSession
	sessions []*onnxSession
	once     sync.Once
}

// Open creates opts.Sessions ONNX sessions for modelPath.
func Open(modelPath string, md Metadata, opts Options) (Runner, error) {
	n := opts.Sessions
	if n <= 0 {
		n = 1
	}
	if err := acquireEnv(opts.LibraryPath); err != nil {
		return nil, err
	}
	r := &onnxRunner{pool: make(chan *onnxSession, n)}
	for i := 0; i < n; i++ {
		s, err := newSession(modelPath, md)
		if err != nil {
			for _, prev := range r.sessions {
				prev.destroy()
			}
			releaseEnv()
			return nil, err
		}
		r.sessions = append(r.sessions, s)
		r.pool <- s
	}
	return r, nil
}

// ReadEmbeddedMetadata loads the labels document stored in the model's custom
// metadata under EmbeddedMetadataKey.
func ReadEmbeddedMetadata(modelPath string, opts Options) (Metadata, error) {
	if err := acquireEnv(opts.LibraryPath); err != nil {
		return Metadata{}, err
	}
	defer releaseEnv()
	meta, err := ort.GetModelMetadata(modelPath)
	if err != nil {
		return Metadata{}, fmt.Errorf("read model metadata: %w", err)
	}
	defer meta.Destroy()
	v, ok, err := meta.LookupCustomMetadataMap(EmbeddedMetadataKey)
	if err != nil {
		return Metadata{}, fmt.Errorf("read model metadata: %w", err)
	}
	if !ok {
		return Metadata{}, fmt.Errorf("model has no %q metadata entry and no labels file", EmbeddedMetadataKey)
	}
	md, err := ParseMetadata([]byte(v))
	if err != nil {
		return md, fmt.Errorf("embedded labels: %w", err)
	}
	return md, nil
}

func newSession(modelPath string, md Metadata) (*onnxSession, error) {
	s := &onnxSession{}
	var err error
	s.input, err = ort.NewEmptyTensor[float32](ort.NewShape(md.InputShape...))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	s.output, err = ort.NewEmptyTensor[float32](ort.NewShape(md.OutputShape...))
	if err != nil {
		s.destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	s.session, err = ort.NewAdvancedSession(modelPath,
		[]string{md.InputName}, []string{md.OutputName},
		[]ort.ArbitraryTensor{s.input}, []ort.ArbitraryTensor{s.output},
		nil)
	if err != nil {
		s.destroy()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}
	return s, nil
}

func (r *onnxRunner) Run(ctx context.Context, input []float32) ([]float32, error) {
	var s *onnxSession
	select {
	case s = <-r.pool:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { r.pool <- s }()

	in := s.input.GetData()
	if len(input) != len(in) {
		return nil, fmt.Errorf("input has %d values, model expects %d", len(input), len(in))
	}
	copy(in, input)
	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}
	out := make([]float32, len(s.output.GetData()))
	copy(out, s.output.GetData())
	return out, nil
}

// Close waits for every session to be returned, then frees them.
func (r *onnxRunner) Close() error {
	r.once.Do(func() {
		for range r.sessions {
			<-r.pool
		}
		for _, s := range r.sessions {
			s.destroy()
		}
		releaseEnv()
	})
	return nil
}
