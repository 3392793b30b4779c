package Logger

import (
	"go.uber.org/zap"
)

// Named returns a child of the process logger carrying fields, the run id in
// practice.
func Named(name string, fields ...zap.Field) *zap.Logger {
	return GetLogger().Named(name).With(fields...)
}

// SetLevelText changes the level of the running logger in place.
func SetLevelText(level string) error {
	mu.Lock()
	defer mu.Unlock()
	if !logger.inited {
		return nil
	}
	return logger.level.UnmarshalText([]byte(level))
}
