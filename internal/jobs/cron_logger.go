package jobs

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cronLogger adapts zap.Logger to cron.Logger.
type cronLogger struct {
	zl *zap.Logger
}

func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

// Info logs routine scheduler messages at debug level; cron is chatty.
func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.zl.Debug(msg, fields(keysAndValues)...)
}

func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	cl.zl.Error(msg, append(fields(keysAndValues), zap.Error(err))...)
}

func fields(keysAndValues []interface{}) []zap.Field {
	out := make([]zap.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprintf("%v", keysAndValues[i])
		if i+1 < len(keysAndValues) {
			out = append(out, zap.Any(key, keysAndValues[i+1]))
		} else {
			out = append(out, zap.String(key, "MISSING_VALUE"))
		}
	}
	return out
}
