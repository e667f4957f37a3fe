package middleware

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
)

// CacheControl returns middleware that sets the Cache-Control header on
// successful GET responses.
func CacheControl(maxAge int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// etagRecorder buffers the response body so a content hash can be computed
// before anything is written to the client.
type etagRecorder struct {
	http.ResponseWriter
	statusCode int
	buf        bytes.Buffer
}

func (rec *etagRecorder) WriteHeader(code int) {
	rec.statusCode = code
}

func (rec *etagRecorder) Write(b []byte) (int, error) {
	return rec.buf.Write(b)
}

// ETag returns middleware that computes a strong ETag over the response body
// of GET requests and answers 304 Not Modified when the client's
// If-None-Match header matches. Non-GET requests and non-2xx responses pass
// through unchanged.
func ETag() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			rec := &etagRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			body := rec.buf.Bytes()

			if rec.statusCode < 200 || rec.statusCode >= 300 || len(body) == 0 {
				w.WriteHeader(rec.statusCode)
				_, _ = w.Write(body)
				return
			}

			sum := sha1.Sum(body)
			tag := `"` + hex.EncodeToString(sum[:]) + `"`
			w.Header().Set("ETag", tag)

			if r.Header.Get("If-None-Match") == tag {
				w.WriteHeader(http.StatusNotModified)
				return
			}

			w.WriteHeader(rec.statusCode)
			_, _ = w.Write(body)
		})
	}
}
