package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apimw "github.com/suncrest/suncrest-backend/internal/api/http/middleware"
	"github.com/suncrest/suncrest-backend/internal/audit/domain"
)

// Recorder is the write slice of the audit repository.
type Recorder interface {
	Insert(ctx context.Context, entry *domain.Entry) error
}

// AuditMiddleware records every mutating request after the handler has
// run. Reads are not audited. Recording happens off the request path so
// audit storage latency never adds to response time.
func AuditMiddleware(recorder Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			return
		}

		entry := &domain.Entry{
			TenantID:  c.GetString("tenant_id"),
			APIKeyID:  c.GetString("api_key_id"),
			Method:    c.Request.Method,
			Path:      c.FullPath(),
			Status:    c.Writer.Status(),
			RequestID: apimw.GetRequestID(c),
		}
		if entry.Path == "" {
			entry.Path = c.Request.URL.Path
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := recorder.Insert(ctx, entry); err != nil {
				log.Printf("[audit] failed to record %s %s: %v", entry.Method, entry.Path, err)
			}
		}()
	}
}
