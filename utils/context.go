package utils

import (
	"context"
	"time"
)

// GetContext returns a context for a single database operation.
func GetContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// GetLongContext returns a context for slower operations such as outbound
// provider calls.
func GetLongContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}
