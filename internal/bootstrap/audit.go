package bootstrap

import "context"

// AuditLog is one operational audit entry. This is separate from the
// request logging pipeline; it records coarse lifecycle actions such
// as startup and shutdown.
type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
