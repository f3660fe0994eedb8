package middleware

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
)

// Timeout answers 408 once the request has run longer than timeout. The
// handler chain runs against a buffered writer; its output is discarded if
// the deadline wins. The middleware still waits for the chain to return
// before handing the context back to gin.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		original := c.Writer
		tw := newTimeoutWriter(original)
		c.Writer = tw

		done := make(chan struct{})
		var panicked interface{}
		go func() {
			defer close(done)
			defer func() { panicked = recover() }()
			c.Next()
		}()

		select {
		case <-done:
			tw.flush()
		case <-ctx.Done():
			tw.timeout()
			<-done
		}

		c.Writer = original
		if panicked != nil {
			panic(panicked)
		}
	}
}

// timeoutWriter buffers the response until the handler finishes. The
// handler owns header; the underlying writer is only touched under mu.
type timeoutWriter struct {
	gin.ResponseWriter

	mu       sync.Mutex
	header   http.Header
	body     bytes.Buffer
	status   int
	written  bool
	timedOut bool
}

func newTimeoutWriter(w gin.ResponseWriter) *timeoutWriter {
	return &timeoutWriter{
		ResponseWriter: w,
		header:         w.Header().Clone(),
		status:         http.StatusOK,
	}
}

func (w *timeoutWriter) Header() http.Header {
	return w.header
}

func (w *timeoutWriter) WriteHeader(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.written && code > 0 {
		w.status = code
	}
}

func (w *timeoutWriter) WriteHeaderNow() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.written = true
}

func (w *timeoutWriter) Write(data []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	w.written = true
	return w.body.Write(data)
}

func (w *timeoutWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *timeoutWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return http.StatusRequestTimeout
	}
	return w.status
}

func (w *timeoutWriter) Size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.written {
		return -1
	}
	return w.body.Len()
}

func (w *timeoutWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Flush is a no-op while buffering
func (w *timeoutWriter) Flush() {}

func (w *timeoutWriter) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	dst := w.ResponseWriter.Header()
	for k, v := range w.header {
		dst[k] = v
	}
	w.ResponseWriter.WriteHeader(w.status)
	if w.written {
		w.ResponseWriter.WriteHeaderNow()
	}
	if w.body.Len() > 0 {
		_, _ = w.ResponseWriter.Write(w.body.Bytes())
	}
}

func (w *timeoutWriter) timeout() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.timedOut = true
	w.ResponseWriter.WriteHeader(http.StatusRequestTimeout)
	_ = render.JSON{Data: gin.H{
		"success": false,
		"error":   "Request timeout",
	}}.Render(w.ResponseWriter)
	w.ResponseWriter.Flush()
}
