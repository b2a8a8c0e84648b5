package middleware

import (
	"bytes"
	"net/http"
)

// statusClientClosed is logged when the caller disconnected before any
// response was written.
const statusClientClosed = 499

// responseRecorder wraps http.ResponseWriter to capture status and body
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func newResponseRecorder(w http.ResponseWriter, captureBody bool) *responseRecorder {
	rec := &responseRecorder{ResponseWriter: w}
	if captureBody {
		rec.body = &bytes.Buffer{}
	}
	return rec
}

func (rw *responseRecorder) WriteHeader(code int) {
	if rw.statusCode == 0 {
		rw.statusCode = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseRecorder) Write(b []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	if rw.body != nil {
		rw.body.Write(b)
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *responseRecorder) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// status reports what the client saw, or 499 when nothing was written
// because the request context was cancelled.
func (rw *responseRecorder) status(r *http.Request) int {
	if rw.statusCode != 0 {
		return rw.statusCode
	}
	if r.Context().Err() != nil {
		return statusClientClosed
	}
	return http.StatusOK
}
