package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldEndpoint is the structured log field key for the remote service endpoint.
	FieldEndpoint = "endpoint"
	// FieldFilename is the structured log field key for a candidate filename.
	FieldFilename = "filename"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// RequestFields describes a call to the remote service.
func RequestFields(endpoint, filename string) []zap.Field {
	return StringFields(
		StringField{Key: FieldEndpoint, Value: endpoint},
		StringField{Key: FieldFilename, Value: filename},
	)
}

// WithRequestFields attaches the request fields to the provided logger.
func WithRequestFields(logger *zap.Logger, endpoint, filename string) *zap.Logger {
	return WithFields(logger, RequestFields(endpoint, filename)...)
}
