package ctxmanage

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type key string

// TraceIdKey is the context key under which the per-request trace id is stored.
const TraceIdKey key = "1"

// GetTraceIdOfRequest returns the trace id set by the Logger middleware.
// Falls back to a fresh uuid if the middleware did not run.
func GetTraceIdOfRequest(c *gin.Context) string {
	ctx := c.Request.Context()
	traceId, ok := ctx.Value(TraceIdKey).(string)
	if !ok {
		traceId = uuid.NewString()
	}
	return traceId
}
