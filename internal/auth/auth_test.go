package auth

import (
	"context"
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"student", RoleStudent},
		{"USER", RoleStudent},
		{"teacher", RoleTeacher},
		{"Admin", RoleAdmin},
		{"", RoleGuest},
		{"owner", RoleGuest},
	}
	for _, tt := range tests {
		if got := ParseRole(tt.in); got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrincipalAuthenticated(t *testing.T) {
	if Guest().Authenticated() {
		t.Error("guest must not be authenticated")
	}
	if (Principal{Role: RoleStudent}).Authenticated() {
		t.Error("principal without ID must not be authenticated")
	}
	if !(Principal{ID: "u1", Role: RoleStudent}).Authenticated() {
		t.Error("student with ID must be authenticated")
	}
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()
	if got := PrincipalFrom(ctx); got.Role != RoleGuest {
		t.Fatalf("empty context principal = %+v", got)
	}
	p := Principal{ID: "u1", Role: RoleTeacher}
	if got := PrincipalFrom(WithPrincipal(ctx, p)); got != p {
		t.Fatalf("PrincipalFrom = %+v, want %+v", got, p)
	}
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	raw, err := tokens.Issue(Principal{ID: "student-1", Role: RoleStudent})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	p, err := tokens.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.ID != "student-1" || p.Role != RoleStudent {
		t.Fatalf("principal = %+v", p)
	}
}

func TestTokensRejectsForeignSecret(t *testing.T) {
	raw, err := NewTokens("one", time.Hour).Issue(Principal{ID: "u", Role: RoleStudent})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	p, err := NewTokens("two", time.Hour).Parse(raw)
	if err == nil {
		t.Fatal("expected error for token signed with another secret")
	}
	if p.Role != RoleGuest {
		t.Fatalf("principal on failure = %+v, want guest", p)
	}
}

func TestTokensWithoutSecret(t *testing.T) {
	if _, err := NewTokens("", 0).Issue(Principal{ID: "u"}); err != ErrNoSecret {
		t.Fatalf("Issue err = %v, want ErrNoSecret", err)
	}
}
