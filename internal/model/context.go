package model

import "context"

// ContextManager attaches the resolved session to a request context.
type ContextManager interface {
	SetSessionToContext(ctx context.Context, sess Session) context.Context
	GetSessionFromContext(ctx context.Context) (Session, bool)
}
