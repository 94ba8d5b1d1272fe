package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"grove/pkg/types"
)

// form fields accepted for the uploaded image
var uploadFields = []string{"file", "image"}

const maxTopK = 100

var errMissingFile = errors.New("multipart upload has no file or image field")

// handlePredict godoc
// @Summary      Classify an image
// @Description  Accepts a multipart upload (field "file" or "image") or a raw image body
// @Description  and returns the most likely class with its confidence.
// @Tags         predict
// @Accept       multipart/form-data
// @Accept       image/jpeg
// @Accept       image/png
// @Produce      json
// @Param        file   formData  file  false  "Image file (jpeg, png, gif, webp, bmp)"
// @Param        top_k  query     int   false  "Also return the k best classes"
// @Success      200  {object}  types.PredictResponse
// @Failure      400  {object}  types.ErrorResponse
// @Failure      413  {object}  types.ErrorResponse
// @Failure      415  {object}  types.ErrorResponse
// @Failure      429  {object}  types.ErrorResponse
// @Failure      500  {object}  types.ErrorResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /predict [post]
func handlePredict(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lvl := requestLogLevel(r)
		logPredictStart(r, lvl)

		observeUpload(r)

		fail := func(status int, kind string, err error) {
			countPredict(kind)
			writeJSONError(w, status, kind, err.Error())
			logPredictEnd(r, lvl, status, time.Since(start), "", err)
		}

		topK, err := parseTopK(r.URL.Query().Get("top_k"))
		if err != nil {
			fail(http.StatusBadRequest, KindBadRequest, err)
			return
		}
		// Reject non-ready early so clients don't upload for nothing
		if !svc.Ready() {
			fail(http.StatusServiceUnavailable, KindNotReady, errors.New("model not ready: "+svc.Status().State))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+multipartOverhead)
		in, err := readUpload(r)
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				fail(http.StatusRequestEntityTooLarge, KindPayloadTooLarge, err)
				return
			}
			fail(http.StatusBadRequest, KindBadRequest, err)
			return
		}
		in.TopK = topK

		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if predictTimeout > 0 {
			var tcancel context.CancelFunc
			ctx, tcancel = context.WithTimeout(ctx, predictTimeout)
			defer tcancel()
		}

		resp, err := svc.Classify(ctx, in)
		if err != nil {
			// If the client went away there is nobody to answer.
			if r.Context().Err() != nil {
				countPredict(outcomeClientClosed)
				return
			}
			if serverBaseCtx.Err() != nil {
				fail(http.StatusServiceUnavailable, KindNotReady, errors.New("server shutting down"))
				return
			}
			status, kind := mapError(err)
			fail(status, kind, err)
			return
		}
		countPredict(outcomeOK)
		writeJSON(w, http.StatusOK, resp)
		logPredictEnd(r, lvl, http.StatusOK, time.Since(start), resp.Label, nil)
	}
}

func parseTopK(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	k, err := strconv.Atoi(v)
	if err != nil || k < 0 || k > maxTopK {
		return 0, fmt.Errorf("top_k must be an integer between 0 and %d", maxTopK)
	}
	return k, nil
}

// readUpload extracts the image stream from a multipart form or a raw body.
// Multipart bodies are streamed part by part so nothing is buffered to disk
// outside the service's own temp directory.
func readUpload(r *http.Request) (types.ClassifyInput, error) {
	ct := r.Header.Get("Content-Type")
	mt, _, _ := mime.ParseMediaType(ct)
	if mt != "multipart/form-data" {
		return types.ClassifyInput{
			Filename:    r.Header.Get("X-Filename"),
			ContentType: ct,
			Body:        r.Body,
		}, nil
	}
	mr, err := r.MultipartReader()
	if err != nil {
		return types.ClassifyInput{}, fmt.Errorf("invalid multipart body: %w", err)
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return types.ClassifyInput{}, errMissingFile
		}
		if err != nil {
			return types.ClassifyInput{}, fmt.Errorf("invalid multipart body: %w", err)
		}
		if isUploadField(part.FormName()) {
			return types.ClassifyInput{
				Filename:    part.FileName(),
				ContentType: part.Header.Get("Content-Type"),
				Body:        part,
			}, nil
		}
	}
}

func isUploadField(name string) bool {
	for _, f := range uploadFields {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}
