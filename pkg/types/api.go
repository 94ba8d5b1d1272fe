package types

// PredictResponse is returned by POST /predict.
type PredictResponse struct {
	// Unique id of this prediction, for log correlation.
	// example: 6f1c3f0e-5b7a-4c59-9b71-9a0c3c1f8a2d
	ID string `json:"id" example:"6f1c3f0e-5b7a-4c59-9b71-9a0c3c1f8a2d"`
	// Highest-probability class.
	// example: Tomato___Late_blight
	Label string `json:"label" example:"Tomato___Late_blight"`
	// Probability of Label, in [0,1].
	// example: 0.93
	Confidence float64 `json:"confidence" example:"0.93"`
	// Optional description of Label from the labels file.
	Description string `json:"description,omitempty"`
	// Top-k classes, present only when top_k > 1 was requested.
	Predictions []Prediction `json:"predictions,omitempty"`
	// File name of the model that produced the result.
	// example: plant-resnet18.onnx
	Model string `json:"model" example:"plant-resnet18.onnx"`
	// Media type detected from the uploaded bytes.
	// example: image/jpeg
	MediaType string `json:"media_type" example:"image/jpeg"`
	// Server-side processing time in milliseconds.
	// example: 42
	DurationMS int64 `json:"duration_ms" example:"42"`
}

// LabelsResponse wraps the class list returned by GET /labels.
type LabelsResponse struct {
	Labels []Label `json:"labels"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: unsupported media type: text/plain
	Error string `json:"error" example:"unsupported media type: text/plain"`
	// HTTP status code.
	// example: 415
	Code int `json:"code" example:"415"`
	// Machine-readable error kind (not_ready, unsupported_media_type, invalid_image,
	// payload_too_large, too_busy, inference, internal).
	// example: unsupported_media_type
	Kind string `json:"kind,omitempty" example:"unsupported_media_type"`
}

// StatusResponse is returned by GET / and GET /status.
type StatusResponse struct {
	// Lifecycle state: downloading, loading, ready, error, draining, closed.
	// example: ready
	State string `json:"state" example:"ready"`
	// True once the model is loaded and classify calls are served.
	// example: true
	Ready bool `json:"ready" example:"true"`
	// Last error observed while provisioning or loading, if any.
	LastError string `json:"last_error,omitempty"`
	// Provisioned artifacts (model and labels).
	Artifacts []Artifact `json:"artifacts"`
	// Number of classes the model predicts.
	// example: 38
	NumClasses int `json:"num_classes" example:"38"`
	// Requests waiting for an inference slot.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// Requests currently running inference.
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// Maximum queued requests before backpressure.
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
	// Total classify calls that returned a result.
	// example: 120
	PredictionsTotal uint64 `json:"predictions_total" example:"120"`
	// Seconds since the model became ready (0 when not ready).
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
