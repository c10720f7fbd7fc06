package cache

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
)

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Middleware serves GET responses from the store when a fresh entry
// exists, and captures successful responses for later hits.
func (s *Store) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := Key(c.Request.URL.Path, c.Request.URL.RawQuery)

		if body, contentType, found := s.Get(key); found {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, contentType, body)
			c.Abort()
			return
		}

		c.Header("X-Cache", "MISS")

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBuffer(nil),
		}
		c.Writer = writer

		c.Next()

		if c.Writer.Status() == http.StatusOK {
			s.Set(key, writer.body.Bytes(), c.Writer.Header().Get("Content-Type"))
		}
	}
}
