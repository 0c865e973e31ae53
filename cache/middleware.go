package cache

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"procurely/metrics"
)

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Middleware serves GET responses for entity from q and stores successful
// misses. The filter part of the key is the request path plus its raw query.
func Middleware(q *QueryCache, entity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if q == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		filter := c.Request.URL.Path + "?" + c.Request.URL.RawQuery

		if cached, found := q.Get(entity, filter); found {
			metrics.CacheLookups.WithLabelValues(entity, "hit").Inc()
			c.Header("X-Cache", "HIT")
			c.Data(cached.Status, cached.ContentType, cached.Body)
			c.Abort()
			return
		}

		metrics.CacheLookups.WithLabelValues(entity, "miss").Inc()
		c.Header("X-Cache", "MISS")

		gen := q.Generation(entity)
		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBuffer(nil),
		}
		c.Writer = writer

		c.Next()

		if c.Writer.Status() == http.StatusOK {
			q.Set(entity, filter, gen, Entry{
				Status:      http.StatusOK,
				ContentType: c.Writer.Header().Get("Content-Type"),
				Body:        writer.body.Bytes(),
			})
		}
	}
}
