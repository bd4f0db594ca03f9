// Package utils provides small runtime helpers shared across services.
package utils

import (
	"go.uber.org/zap"

	"github.com/tlstats/tlstats/pkg/logger"
)

// WithRecovery wraps a goroutine body with forced recovery. It dumps the
// goroutine stack into the log if it catches any recover result.
//   exec:      execute logic function.
//   recoverFn: handler called after recover and before the stack dump;
//              passing nil means noop.
func WithRecovery(exec func(), recoverFn func(r interface{})) {
	defer func() {
		r := recover()
		if recoverFn != nil {
			recoverFn(r)
		}
		if r != nil {
			logger.BgLogger().Error("panic in the recoverable goroutine",
				zap.Reflect("r", r),
				zap.Stack("stack_trace"))
		}
	}()
	exec()
}
