package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"peoplework/internal/domain"
)

func TestGuard_LoadingDefersDecision(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	session := NewSession(NewClient(server.URL), nil)
	guard := NewGuard(session)

	decision := guard.Check("/dashboard", domain.RoleAdmin)
	if decision.State != StateLoading {
		t.Fatalf("expected loading state before restore, got %s", decision.State)
	}
}

func TestGuard_UnauthenticatedKeepsReturnPath(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	session := NewSession(NewClient(server.URL), nil)
	if err := session.Restore(context.Background()); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	guard := NewGuard(session)

	decision := guard.Check("/appointments")
	if decision.State != StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", decision.State)
	}
	if decision.ReturnTo != "/appointments" {
		t.Fatalf("expected return path preserved, got %s", decision.ReturnTo)
	}
}

func TestGuard_RoleChecks(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	session := NewSession(NewClient(server.URL), nil)
	if err := session.Restore(context.Background()); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if _, err := session.Login(context.Background(), "jane@example.com", "secret123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	guard := NewGuard(session)

	if d := guard.Check("/dashboard"); d.State != StateAllowed {
		t.Fatalf("expected allowed without role requirement, got %s", d.State)
	}
	if d := guard.Check("/seller/panel", domain.RoleSeller); d.State != StateAllowed {
		t.Fatalf("expected allowed for matching role, got %s", d.State)
	}
	if d := guard.Check("/admin", domain.RoleAdmin); d.State != StateForbidden {
		t.Fatalf("expected forbidden for admin route, got %s", d.State)
	}
}

func TestGuard_LogoutRevokesAccess(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	session := NewSession(NewClient(server.URL), nil)
	if err := session.Restore(context.Background()); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if _, err := session.Login(context.Background(), "jane@example.com", "secret123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	guard := NewGuard(session)

	if d := guard.Check("/seller/panel", domain.RoleSeller); d.State != StateAllowed {
		t.Fatalf("expected allowed before logout, got %s", d.State)
	}
	if err := session.Logout(); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if d := guard.Check("/seller/panel", domain.RoleSeller); d.State != StateUnauthenticated {
		t.Fatalf("expected unauthenticated after logout, got %s", d.State)
	}
}
