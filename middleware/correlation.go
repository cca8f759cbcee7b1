package middleware

import (
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CorrelationIDHeader = "X-Correlation-ID"
	CorrelationIDKey    = "correlationID"
)

// TraceData is the record logged for each request.
type TraceData struct {
	Service       string    `json:"service"`
	Method        string    `json:"method"`
	Path          string    `json:"path"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id"`
	DurationMS    float64   `json:"duration_ms,omitempty"`
	Status        int       `json:"status,omitempty"`
	Error         string    `json:"error,omitempty"`
}

var validIDRegex = regexp.MustCompile(`^[\w\-]+$`)

// CorrelationID tags every request with an ID, echoes it back in the
// X-Correlation-ID header and logs a trace line once the handler returns.
func CorrelationID(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := extractOrGenerateCorrelationID(c.Request)
		c.Set(CorrelationIDKey, correlationID)
		c.Header(CorrelationIDHeader, correlationID)

		startTime := time.Now()
		c.Next()

		trace := TraceData{
			Service:       service,
			Method:        c.Request.Method,
			Path:          c.Request.URL.Path,
			Timestamp:     startTime,
			CorrelationID: correlationID,
			DurationMS:    float64(time.Since(startTime).Microseconds()) / 1000,
			Status:        c.Writer.Status(),
			Error:         c.Errors.String(),
		}
		logTrace(trace)
	}
}

// GetCorrelationID returns the ID assigned by CorrelationID, if any.
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(CorrelationIDKey)
}

func extractOrGenerateCorrelationID(r *http.Request) string {
	existingID := r.Header.Get(CorrelationIDHeader)
	if existingID != "" && isValidCorrelationID(existingID) {
		return existingID
	}
	return generateCorrelationID()
}

func generateCorrelationID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

func isValidCorrelationID(id string) bool {
	if len(id) < 10 || len(id) > 100 {
		return false
	}
	return validIDRegex.MatchString(id)
}

func logTrace(trace TraceData) {
	if trace.Error != "" {
		log.Printf("[%s] %s %s %d %.2fms id=%s error=%q", trace.Service, trace.Method, trace.Path,
			trace.Status, trace.DurationMS, trace.CorrelationID, trace.Error)
		return
	}
	log.Printf("[%s] %s %s %d %.2fms id=%s", trace.Service, trace.Method, trace.Path,
		trace.Status, trace.DurationMS, trace.CorrelationID)
}
