package manager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"grove/internal/common/fsutil"
	"grove/internal/imageproc"
	"grove/pkg/types"
)

// Classify reads one uploaded image and returns the model's best class.
//
// The body is spooled to a request-private file under TmpDir that is removed
// before Classify returns, on success and on every error path.
func (m *Manager) Classify(ctx context.Context, in types.ClassifyInput) (resp types.PredictResponse, err error) {
	start := time.Now()
	id := uuid.NewString()
	defer func() {
		classifyDuration.Observe(time.Since(start).Seconds())
		classifyTotal.WithLabelValues(resultLabel(err)).Inc()
		if err != nil && IsInference(err) {
			m.publish(EventClassifyError, map[string]any{"id": id, "error": err.Error()})
		}
	}()

	if st := m.State(); st != StateReady {
		return resp, notReadyError{state: st}
	}
	if err := imageproc.CheckDeclared(in.ContentType); err != nil {
		return resp, unsupportedMediaTypeError{err: err}
	}
	if in.Body == nil {
		return resp, invalidImageError{err: errors.New("empty upload")}
	}

	spool, err := fsutil.SpoolToTemp(m.tmpDir, "upload-"+id+"-*", in.Body, m.maxUpload)
	if err != nil {
		if errors.Is(err, fsutil.ErrSpoolLimit) {
			return resp, payloadTooLargeError{limit: m.maxUpload}
		}
		return resp, err
	}
	defer spool.Remove()
	if spool.Size() == 0 {
		return resp, invalidImageError{err: errors.New("empty upload")}
	}

	mediaType, err := imageproc.Sniff(spool.File(), in.ContentType)
	if err != nil {
		if errors.Is(err, imageproc.ErrUnsupportedMediaType) {
			return resp, unsupportedMediaTypeError{err: err}
		}
		return resp, err
	}
	// Only the header is read before admission; the bitmap is decoded while
	// holding an inference slot so queued requests stay small.
	if _, err := imageproc.Inspect(spool.File(), m.maxPixels); err != nil {
		if errors.Is(err, imageproc.ErrDecode) {
			return resp, invalidImageError{err: err}
		}
		return resp, err
	}

	waitStart := time.Now()
	clf, release, err := m.beginClassify(ctx)
	if err != nil {
		return resp, err
	}
	defer release()
	queueWait.Observe(time.Since(waitStart).Seconds())

	img, err := m.decode(spool.File(), m.maxPixels)
	if err != nil {
		if errors.Is(err, imageproc.ErrDecode) {
			return resp, invalidImageError{err: err}
		}
		return resp, err
	}

	topK := in.TopK
	preds, err := clf.Classify(ctx, img, topK)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return resp, ctxErr
		}
		m.log.Error().Err(err).Str("id", id).Msg("inference failed")
		return resp, inferenceError{err: err}
	}
	if len(preds) == 0 {
		return resp, inferenceError{err: fmt.Errorf("no predictions")}
	}
	m.predictions.Add(1)

	best := preds[0]
	resp = types.PredictResponse{
		ID:          id,
		Label:       best.Label,
		Confidence:  best.Confidence,
		Description: clf.Metadata().Description(best.Label),
		Model:       m.ModelName(),
		MediaType:   mediaType,
		DurationMS:  time.Since(start).Milliseconds(),
	}
	if topK > 1 {
		resp.Predictions = preds
	}
	m.log.Debug().Str("id", id).Str("label", best.Label).Float64("confidence", best.Confidence).
		Str("filename", in.Filename).Str("media_type", mediaType).Int64("bytes", spool.Size()).Msg("classified")
	return resp, nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsNotReady(err):
		return "not_ready"
	case IsUnsupportedMediaType(err):
		return "unsupported_media_type"
	case IsInvalidImage(err):
		return "invalid_image"
	case IsPayloadTooLarge(err):
		return "payload_too_large"
	case IsTooBusy(err):
		return "too_busy"
	case IsInference(err):
		return "inference"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
