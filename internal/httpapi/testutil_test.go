package httpapi

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"

	"grove/pkg/types"
)

type mockService struct {
	mu          sync.Mutex
	ready       bool
	status      types.StatusResponse
	labels      []types.Label
	resp        types.PredictResponse
	classifyErr error
	// readBody makes Classify consume the upload like the real service does.
	readBody bool

	calls   int
	got     types.ClassifyInput
	gotBody []byte
	readErr error
}

func (m *mockService) Ready() bool                  { return m.ready }
func (m *mockService) Status() types.StatusResponse { return m.status }
func (m *mockService) Labels() []types.Label        { return m.labels }

func (m *mockService) Classify(ctx context.Context, in types.ClassifyInput) (types.PredictResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.got = in
	if m.readBody && in.Body != nil {
		b, err := io.ReadAll(in.Body)
		m.gotBody = b
		if err != nil {
			m.readErr = err
			return types.PredictResponse{}, err
		}
	}
	if m.classifyErr != nil {
		return types.PredictResponse{}, m.classifyErr
	}
	return m.resp, nil
}

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

// multipartBody builds a multipart form with one file part.
func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("note", "leaf from greenhouse 3"); err != nil {
		t.Fatal(err)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	pw, err := mw.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func readyService() *mockService {
	return &mockService{
		ready:  true,
		status: types.StatusResponse{State: "ready", Ready: true, NumClasses: 3},
		labels: []types.Label{{Index: 0, Name: "healthy"}, {Index: 1, Name: "rust"}},
		resp:   types.PredictResponse{ID: "id-1", Label: "rust", Confidence: 0.9, Model: "plant.onnx"},
	}
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
