package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/mealcycle-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

// AttachTraceContext stores trace and request ids plus the meal the request
// addresses, so logs and spans for one meal can be found together.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.New().String()
		}
		span := trace.SpanFromContext(c.Request.Context())
		traceID := strings.TrimSpace(c.GetHeader(headerTraceID))
		if traceID == "" && span.SpanContext().HasTraceID() {
			traceID = span.SpanContext().TraceID().String()
		}
		if traceID == "" {
			traceID = uuid.New().String()
		}

		td := &ctxutil.TraceData{
			TraceID:    traceID,
			RequestID:  reqID,
			MealKey:    mealKeyOf(c),
			MealID:     strings.TrimSpace(c.Param("mealId")),
			WeekNumber: strings.TrimSpace(c.Query("week-number")),
		}
		span.SetAttributes(spanAttributes(td)...)

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Set("trace_id", traceID)
		c.Set("request_id", reqID)
		c.Writer.Header().Set(headerTraceID, traceID)
		c.Writer.Header().Set(headerRequestID, reqID)
		c.Next()
	}
}

// mealKeyOf renders date/meal_type/participants from the query string, or ""
// when the request does not name a complete key.
func mealKeyOf(c *gin.Context) string {
	date := strings.TrimSpace(c.Query("date"))
	mealType := strings.TrimSpace(c.Query("meal_type"))
	participants := strings.TrimSpace(c.Query("participants"))
	if date == "" || mealType == "" || participants == "" {
		return ""
	}
	return date + "/" + mealType + "/" + participants
}

func spanAttributes(td *ctxutil.TraceData) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String("http.request_id", td.RequestID)}
	if td.MealKey != "" {
		attrs = append(attrs, attribute.String("meal.key", td.MealKey))
	}
	if td.MealID != "" {
		attrs = append(attrs, attribute.String("meal.id", td.MealID))
	}
	if td.WeekNumber != "" {
		attrs = append(attrs, attribute.String("cycle.week_number", td.WeekNumber))
	}
	return attrs
}
