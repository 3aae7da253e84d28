// Package constant holds names shared across layers: context keys, roles,
// request parameters, headers, cache keys and span scopes.
package constant

import "time"

type contextKey string

// Values put into the request context by the auth middleware.
const (
	ContextKeyUserID    contextKey = "user_id"
	ContextKeyUserEmail contextKey = "user_email"
	ContextKeyUserRole  contextKey = "user_role"
	ContextKeyTokenID   contextKey = "token_id"
)

const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleUser       = "user"

	// ContextGuest is the role of a caller without one.
	ContextGuest = "guest"
)

const DateFormat = time.RFC3339

const ServerEnvDevelopment = "development"

const Asterix = "*"
