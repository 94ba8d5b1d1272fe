package classifier

import (
	"encoding/json"
	"fmt"
	"os"

	"grove/internal/imageproc"
	"grove/pkg/types"
)

// Output kinds of the model's final layer.
const (
	OutputLogits        = "logits"
	OutputProbabilities = "probabilities"
)

const (
	defaultInputName = "input"
	defaultOutput    = "output"
	defaultImageSize = 224
)

// ImageNet statistics, used when the labels file does not carry its own.
var (
	imagenetMean = []float32{0.485, 0.456, 0.406}
	imagenetStd  = []float32{0.229, 0.224, 0.225}
)

// Metadata describes how to feed a model and how to read its output. It is
// stored as JSON next to the model file.
type Metadata struct {
	InputName    string            `json:"input_name,omitempty"`
	OutputName   string            `json:"output_name,omitempty"`
	InputShape   []int64           `json:"input_shape,omitempty"`
	OutputShape  []int64           `json:"output_shape,omitempty"`
	Classes      []string          `json:"classes"`
	Descriptions map[string]string `json:"descriptions,omitempty"`
	ImageSize    int               `json:"image_size,omitempty"`
	Mean         []float32         `json:"mean,omitempty"`
	Std          []float32         `json:"std,omitempty"`
	Layout       string            `json:"layout,omitempty"`
	Output       string            `json:"output,omitempty"`
	CenterCrop   bool              `json:"center_crop,omitempty"`
}

// EmbeddedMetadataKey is the model custom-metadata entry that may carry the
// labels document when no labels file is provisioned.
const EmbeddedMetadataKey = "grove.labels"

// LoadMetadata reads, defaults and validates a labels file.
func LoadMetadata(path string) (Metadata, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("read labels: %w", err)
	}
	md, err := ParseMetadata(b)
	if err != nil {
		return md, fmt.Errorf("labels %s: %w", path, err)
	}
	return md, nil
}

// ParseMetadata decodes, defaults and validates a labels document.
func ParseMetadata(b []byte) (Metadata, error) {
	var md Metadata
	if err := json.Unmarshal(b, &md); err != nil {
		return md, fmt.Errorf("parse: %w", err)
	}
	md.ApplyDefaults()
	if err := md.Validate(); err != nil {
		return md, err
	}
	return md, nil
}

// ApplyDefaults fills unset fields.
func (m *Metadata) ApplyDefaults() {
	if m.InputName == "" {
		m.InputName = defaultInputName
	}
	if m.OutputName == "" {
		m.OutputName = defaultOutput
	}
	if m.ImageSize == 0 {
		m.ImageSize = defaultImageSize
	}
	if m.Layout == "" {
		m.Layout = string(imageproc.LayoutCHW)
	}
	if m.Output == "" {
		m.Output = OutputLogits
	}
	if len(m.Mean) == 0 {
		m.Mean = append([]float32(nil), imagenetMean...)
	}
	if len(m.Std) == 0 {
		m.Std = append([]float32(nil), imagenetStd...)
	}
	s := int64(m.ImageSize)
	if len(m.InputShape) == 0 {
		if m.Layout == string(imageproc.LayoutHWC) {
			m.InputShape = []int64{1, s, s, 3}
		} else {
			m.InputShape = []int64{1, 3, s, s}
		}
	}
	if len(m.OutputShape) == 0 {
		m.OutputShape = []int64{1, int64(len(m.Classes))}
	}
}

// Validate checks the labels and shapes are consistent with each other.
func (m Metadata) Validate() error {
	if len(m.Classes) == 0 {
		return fmt.Errorf("no classes")
	}
	seen := make(map[string]struct{}, len(m.Classes))
	for i, c := range m.Classes {
		if c == "" {
			return fmt.Errorf("class %d has an empty name", i)
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("duplicate class %q", c)
		}
		seen[c] = struct{}{}
	}
	if m.ImageSize <= 0 {
		return fmt.Errorf("image_size must be positive")
	}
	switch imageproc.Layout(m.Layout) {
	case imageproc.LayoutCHW, imageproc.LayoutHWC:
	default:
		return fmt.Errorf("unknown layout %q", m.Layout)
	}
	switch m.Output {
	case OutputLogits, OutputProbabilities:
	default:
		return fmt.Errorf("unknown output kind %q", m.Output)
	}
	if len(m.Mean) != 3 || len(m.Std) != 3 {
		return fmt.Errorf("mean and std need 3 channels")
	}
	for _, v := range m.Std {
		if v == 0 {
			return fmt.Errorf("std must be non-zero")
		}
	}
	if got, want := product(m.InputShape), int64(3*m.ImageSize*m.ImageSize); got != want {
		return fmt.Errorf("input_shape %v holds %d values, want %d", m.InputShape, got, want)
	}
	if got := product(m.OutputShape); got < int64(len(m.Classes)) {
		return fmt.Errorf("output_shape %v holds %d values for %d classes", m.OutputShape, got, len(m.Classes))
	}
	return nil
}

func product(shape []int64) int64 {
	if len(shape) == 0 {
		return 0
	}
	n := int64(1)
	for _, d := range shape {
		n *= d
	}
	return n
}

// Spec returns the preprocessing spec for this model.
func (m Metadata) Spec() imageproc.Spec {
	s := imageproc.Spec{Size: m.ImageSize, Layout: imageproc.Layout(m.Layout), Crop: m.CenterCrop}
	copy(s.Mean[:], m.Mean)
	copy(s.Std[:], m.Std)
	return s
}

// Description returns the description of a class, or "".
func (m Metadata) Description(class string) string {
	return m.Descriptions[class]
}

// Labels lists the classes in output order.
func (m Metadata) Labels() []types.Label {
	out := make([]types.Label, len(m.Classes))
	for i, c := range m.Classes {
		out[i] = types.Label{Index: i, Name: c, Description: m.Descriptions[c]}
	}
	return out
}
