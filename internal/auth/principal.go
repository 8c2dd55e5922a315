package auth

import (
	"context"
	"strings"
)

// Role is the caller's role on the platform.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
	RoleGuest   Role = "GUEST"
)

// ParseRole maps a role claim to a Role. "user" is accepted as an alias of
// student; anything unknown is a guest.
func ParseRole(s string) Role {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "STUDENT", "USER":
		return RoleStudent
	case "TEACHER":
		return RoleTeacher
	case "ADMIN":
		return RoleAdmin
	}
	return RoleGuest
}

// Principal identifies the caller of an operation.
type Principal struct {
	ID   string
	Role Role
}

// Guest returns the principal used when no credentials were presented.
func Guest() Principal {
	return Principal{Role: RoleGuest}
}

// Authenticated reports whether the principal is a signed-in user.
func (p Principal) Authenticated() bool {
	return p.ID != "" && p.Role != RoleGuest && p.Role != ""
}

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal attaches the principal to the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom extracts the principal from the context, or a guest.
func PrincipalFrom(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey).(Principal); ok {
		return p
	}
	return Guest()
}
