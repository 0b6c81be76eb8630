package reddit

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrNilLogger is returned when a nil logger is provided.
var ErrNilLogger = errors.New("logger cannot be nil")

// ZapAdapter adapts a *zap.Logger to the Logger interface.
type ZapAdapter struct {
	logger *zap.Logger
}

// NewZapAdapter wraps an existing zap.Logger.
func NewZapAdapter(logger *zap.Logger) (*ZapAdapter, error) {
	if logger == nil {
		return nil, ErrNilLogger
	}
	return &ZapAdapter{logger: logger}, nil
}

func (z *ZapAdapter) Debug(msg string, fields ...Field) {
	if ce := z.logger.Check(zapcore.DebugLevel, msg); ce != nil {
		ce.Write(convertFields(fields)...)
	}
}

func (z *ZapAdapter) Info(msg string, fields ...Field) {
	if ce := z.logger.Check(zapcore.InfoLevel, msg); ce != nil {
		ce.Write(convertFields(fields)...)
	}
}

func (z *ZapAdapter) Warn(msg string, fields ...Field) {
	if ce := z.logger.Check(zapcore.WarnLevel, msg); ce != nil {
		ce.Write(convertFields(fields)...)
	}
}

func (z *ZapAdapter) Error(msg string, fields ...Field) {
	if ce := z.logger.Check(zapcore.ErrorLevel, msg); ce != nil {
		ce.Write(convertFields(fields)...)
	}
}

func (z *ZapAdapter) Named(name string) Logger {
	return &ZapAdapter{logger: z.logger.Named(name)}
}

// convertFields maps the package's typed fields onto zap fields.
func convertFields(fields []Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	zapFields := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		switch f.typ {
		case fieldString:
			if v, ok := f.val.(string); ok {
				zapFields = append(zapFields, zap.String(f.key, v))
			}
		case fieldInt:
			if v, ok := f.val.(int); ok {
				zapFields = append(zapFields, zap.Int(f.key, v))
			}
		case fieldInt64:
			if v, ok := f.val.(int64); ok {
				zapFields = append(zapFields, zap.Int64(f.key, v))
			}
		case fieldDuration:
			if v, ok := f.val.(time.Duration); ok {
				zapFields = append(zapFields, zap.Duration(f.key, v))
			}
		case fieldError:
			if err, ok := f.val.(error); ok && err != nil {
				zapFields = append(zapFields, zap.Error(err))
			}
		default:
			zapFields = append(zapFields, zap.Any(f.key, f.val))
		}
	}

	return zapFields
}

// NewProductionLogger creates a JSON-structured logger for production use.
func NewProductionLogger() Logger {
	zapLogger, _ := zap.NewProduction()
	adapter, _ := NewZapAdapter(zapLogger)
	return adapter
}

// NewDevelopmentLogger creates a human-readable logger for development.
func NewDevelopmentLogger() Logger {
	zapLogger, _ := zap.NewDevelopment()
	adapter, _ := NewZapAdapter(zapLogger)
	return adapter
}
