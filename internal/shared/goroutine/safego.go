// Package goroutine provides panic-safe goroutine helpers.
package goroutine

import (
	"runtime/debug"

	"custodia/internal/shared/logger"
)

// SafeGo runs fn in a new goroutine and recovers panics, logging the stack
// instead of crashing the process.
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("goroutine panic recovered",
					"goroutine", name,
					"panic", r,
					"stack", string(debug.Stack()),
				)
			}
		}()
		fn()
	}()
}
