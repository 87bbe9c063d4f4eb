package ctxutil

import "context"

type traceDataKey struct{}

// TraceData follows a request through services and logs. The meal fields are
// set only when the request names them.
type TraceData struct {
	TraceID   string
	RequestID string

	MealKey    string
	MealID     string
	WeekNumber string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	val := ctx.Value(traceDataKey{})
	if td, ok := val.(*TraceData); ok {
		return td
	}
	return nil
}

// LogFields returns the populated trace data as logger key-value pairs.
func LogFields(ctx context.Context) []interface{} {
	td := GetTraceData(ctx)
	if td == nil {
		return nil
	}
	out := make([]interface{}, 0, 10)
	if td.TraceID != "" {
		out = append(out, "trace_id", td.TraceID)
	}
	if td.RequestID != "" {
		out = append(out, "request_id", td.RequestID)
	}
	if td.MealKey != "" {
		out = append(out, "meal_key", td.MealKey)
	}
	if td.MealID != "" {
		out = append(out, "meal_id", td.MealID)
	}
	if td.WeekNumber != "" {
		out = append(out, "week_number", td.WeekNumber)
	}
	return out
}
