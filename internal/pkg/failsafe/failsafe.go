// Package failsafe implements the pipeline's fail-open policy as a reusable
// guard. Suppression checks and reputation reads must never become an
// availability risk for the sending path: when the store or provider is
// unreachable, callers get a safe default value and the failure is logged,
// not propagated.
package failsafe

import (
	"github.com/homegate/notify-pipeline/internal/pkg/logger"
)

// Fetch runs fn and returns its value. If fn fails, the failure is logged
// with operation context and the fallback is returned instead.
func Fetch[T any](op string, fallback T, fn func() (T, error)) T {
	v, err := fn()
	if err != nil {
		logger.Error("operation failed, using safe default", "op", op, "error", err.Error())
		return fallback
	}
	return v
}

// Run executes fn and logs a failure instead of returning it. Used for
// best-effort writes on paths that must not surface storage errors.
func Run(op string, fn func() error) bool {
	if err := fn(); err != nil {
		logger.Error("operation failed, continuing", "op", op, "error", err.Error())
		return false
	}
	return true
}
