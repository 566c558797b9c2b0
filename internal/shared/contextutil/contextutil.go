package contextutil

import (
	"context"

	"go.uber.org/zap"
)

// contextKey es un tipo privado para no chocar con keys de otras librerías
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	actorKey     contextKey = "actor"
	loggerKey    contextKey = "logger"
)

// --- Request ID Helpers ---

// WithRequestID mete el Request ID en el context
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

// GetRequestID saca el Request ID del context
func GetRequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey).(string); ok {
		return rid
	}
	return ""
}

// --- Actor Helpers ---

// WithActor mete la identidad de la sesión del supervisor en el context
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActor saca la identidad de la sesión del context
func GetActor(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey).(string); ok {
		return actor
	}
	return ""
}

// --- Logger Helpers ---

// WithLogger mete el zap logger (normalmente ya decorado) en el context
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLogger saca el logger del context.
// Si no hay ninguno devuelve el fallback (defaultLogger) para no entrar en pánico.
func GetLogger(ctx context.Context, defaultLogger *zap.Logger) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
			return l
		}
	}

	if defaultLogger != nil {
		return defaultLogger
	}

	// fallback de seguridad, nunca devolver nil
	return zap.NewNop()
}

// Metadata agrupa la info básica de tracing
type Metadata struct {
	RequestID string
	Actor     string
}

// ExtractMetadata junta toda la info de tracing para logging manual
func ExtractMetadata(ctx context.Context) Metadata {
	return Metadata{
		RequestID: GetRequestID(ctx),
		Actor:     GetActor(ctx),
	}
}
