package middleware

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
)

// gzipMinSize skips compression for tiny payloads where the gzip
// header alone would eat the savings.
const gzipMinSize = 512

var gzipWriterPool = sync.Pool{
	New: func() any {
		w, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
		return w
	},
}

// Gzip compresses JSON responses for clients that accept it. Report
// endpoints return month series and breakdowns that compress well.
func Gzip() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
			c.Next()
			return
		}

		gw := &gzipResponseWriter{ResponseWriter: c.Writer}
		c.Writer = gw
		defer gw.Close()

		c.Next()
	}
}

// gzipResponseWriter buffers the first write to decide whether the
// response is worth compressing, then streams through a pooled writer.
type gzipResponseWriter struct {
	gin.ResponseWriter

	gz      *gzip.Writer
	decided bool
	skip    bool
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	if !w.decided {
		w.decided = true
		if len(data) < gzipMinSize || w.Header().Get("Content-Encoding") != "" {
			w.skip = true
		} else {
			w.Header().Set("Content-Encoding", "gzip")
			w.Header().Set("Vary", "Accept-Encoding")
			w.Header().Del("Content-Length")

			w.gz = gzipWriterPool.Get().(*gzip.Writer)
			w.gz.Reset(w.ResponseWriter)
		}
	}

	if w.skip {
		return w.ResponseWriter.Write(data)
	}

	n, err := w.gz.Write(data)
	if err != nil {
		return n, err
	}
	// Report the uncompressed size so gin's written-bytes accounting
	// stays consistent with what the handler produced.
	return len(data), nil
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Close flushes the compressor and returns it to the pool.
func (w *gzipResponseWriter) Close() {
	if w.gz == nil {
		return
	}
	_ = w.gz.Close()
	gzipWriterPool.Put(w.gz)
	w.gz = nil
}
