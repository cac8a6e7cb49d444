package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey = "response_meta"
	requestStartKey = "request_start"
)

// ResponseMeta initialises per-request response metadata and stamps the start time.
func ResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
	}
}

// SetMeta records a metadata value for the current response.
func SetMeta(c *gin.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	meta, ok := c.Value(responseMetaKey).(map[string]interface{})
	if !ok {
		meta = map[string]interface{}{}
		c.Set(responseMetaKey, meta)
	}
	meta[key] = value
}

// Meta returns a copy of the recorded metadata with processing_time_ms filled in
// when ResponseMeta ran. It never returns nil.
func Meta(c *gin.Context) map[string]interface{} {
	out := map[string]interface{}{}
	if c == nil {
		return out
	}
	if meta, ok := c.Value(responseMetaKey).(map[string]interface{}); ok {
		for k, v := range meta {
			out[k] = v
		}
	}
	if start, ok := c.Value(requestStartKey).(time.Time); ok {
		out["processing_time_ms"] = time.Since(start).Milliseconds()
	}
	return out
}
