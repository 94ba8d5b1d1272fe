package types

import "io"

// Label is one class the loaded model can predict.
type Label struct {
	// Index of the class in the model output vector.
	// example: 3
	Index int `json:"index" example:"3"`
	// Class name as exported with the model.
	// example: Tomato___Late_blight
	Name string `json:"name" example:"Tomato___Late_blight"`
	// Optional human-readable description.
	// example: Late blight, caused by Phytophthora infestans.
	Description string `json:"description,omitempty" example:"Late blight, caused by Phytophthora infestans."`
}

// Prediction is a single scored class.
type Prediction struct {
	// Predicted class name.
	// example: Tomato___Late_blight
	Label string `json:"label" example:"Tomato___Late_blight"`
	// Probability assigned to the class, in [0,1].
	// example: 0.93
	Confidence float64 `json:"confidence" example:"0.93"`
	// Index of the class in the model output vector.
	Index int `json:"-"`
}

// ClassifyInput is a transient inference request: raw image bytes plus the
// content type declared by the client.
type ClassifyInput struct {
	Filename    string
	ContentType string
	Body        io.Reader
	// TopK requests the k best classes in addition to the winner. Values
	// below 2 return only the winner.
	TopK int
}

// Artifact describes a provisioned file on disk.
type Artifact struct {
	// Logical artifact name (model or labels).
	// example: model
	Name string `json:"name" example:"model"`
	// Remote source URL, if any.
	// example: https://example.com/plant-resnet18.onnx
	URL string `json:"url,omitempty" example:"https://example.com/plant-resnet18.onnx"`
	// Absolute local path.
	// example: /var/lib/grove/plant-resnet18.onnx
	Path string `json:"path" example:"/var/lib/grove/plant-resnet18.onnx"`
	// Size on disk in bytes (0 until provisioned).
	// example: 46827520
	SizeBytes int64 `json:"size_bytes" example:"46827520"`
	// Whether this process downloaded the file (false when it already existed).
	Downloaded bool `json:"downloaded"`
}
