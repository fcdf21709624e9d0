package gate

import (
	"testing"
	"time"

	"tukangin-platform/internal/auth"
	"tukangin-platform/internal/config"
	"tukangin-platform/internal/policy"
)

var testNow = time.Unix(1700000000, 0).UTC()

func token(t *testing.T, role string, partial bool, ttl time.Duration) string {
	t.Helper()
	m, err := auth.NewManager(config.AuthConfig{
		JWTSecret:  "secret",
		SessionTTL: ttl,
		PartialTTL: ttl / 2,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	var tok string
	if partial {
		tok, err = m.IssuePartial(testNow, "user-1", role)
	} else {
		tok, err = m.IssueSession(testNow, "user-1", role)
	}
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return tok
}

func TestEvaluate_APIPathsPass(t *testing.T) {
	g := New(nil)
	res := g.Evaluate(Input{Path: "/api/orders", Now: testNow})
	if res.Outcome != Pass {
		t.Fatalf("expected pass, got %v", res.Outcome)
	}
}

func TestEvaluate_PublicPathUnauthenticatedPasses(t *testing.T) {
	g := New(nil)
	for _, p := range []string{"/", "/login", "/faq", "/services/plumbing"} {
		res := g.Evaluate(Input{Path: p, Now: testNow})
		if res.Outcome != Pass {
			t.Fatalf("expected pass on %q, got %v", p, res.Outcome)
		}
	}
}

func TestEvaluate_AuthenticatedOnLoginGoesHome(t *testing.T) {
	g := New(nil)

	cases := map[string]string{
		"CUSTOMER": "/dashboard",
		"PROVIDER": "/provider/dashboard",
		"ADMIN":    "/admin/dashboard",
	}
	for role, home := range cases {
		res := g.Evaluate(Input{Path: "/login", Token: token(t, role, false, time.Hour), Now: testNow})
		if res.Outcome != RedirectRoleHome || res.Location != home {
			t.Fatalf("role %s on /login: got %v -> %q, want role home %q", role, res.Outcome, res.Location, home)
		}
	}
}

func TestEvaluate_ExpiredTokenOnLoginPasses(t *testing.T) {
	g := New(nil)
	tok := token(t, "CUSTOMER", false, time.Hour)

	res := g.Evaluate(Input{Path: "/login", Token: tok, Now: testNow.Add(2 * time.Hour)})
	if res.Outcome != Pass {
		t.Fatalf("expired visitor must see the login page, got %v", res.Outcome)
	}
}

func TestEvaluate_NoTokenRedirectsLoginWithRedirectTo(t *testing.T) {
	g := New(nil)

	res := g.Evaluate(Input{Path: "/dashboard/orders", Now: testNow})
	if res.Outcome != RedirectLogin {
		t.Fatalf("expected login redirect, got %v", res.Outcome)
	}
	if res.Location != "/login?redirectTo=%2Fdashboard%2Forders" {
		t.Fatalf("unexpected location %q", res.Location)
	}
	if res.ClearCookie {
		t.Fatalf("nothing to clear without a token")
	}
}

func TestEvaluate_InvalidTokenClearsCookie(t *testing.T) {
	g := New(nil)

	for _, tok := range []string{
		"garbage",
		token(t, "CUSTOMER", true, time.Hour), // partial
	} {
		res := g.Evaluate(Input{Path: "/dashboard", Token: tok, Now: testNow})
		if res.Outcome != RedirectLogin || !res.ClearCookie {
			t.Fatalf("expected login redirect with cookie clear, got %+v", res)
		}
	}

	// Expired full token behaves the same.
	res := g.Evaluate(Input{Path: "/dashboard", Token: token(t, "CUSTOMER", false, time.Hour), Now: testNow.Add(2 * time.Hour)})
	if res.Outcome != RedirectLogin || !res.ClearCookie {
		t.Fatalf("expected login redirect with cookie clear for expired token, got %+v", res)
	}
}

func TestEvaluate_WrongRoleGoesToOwnHome(t *testing.T) {
	g := New(nil)

	res := g.Evaluate(Input{Path: "/admin/users", Token: token(t, "CUSTOMER", false, time.Hour), Now: testNow})
	if res.Outcome != RedirectRoleHome {
		t.Fatalf("expected role-home redirect, got %v", res.Outcome)
	}
	if res.Location != "/dashboard" {
		t.Fatalf("customer must land on /dashboard, got %q", res.Location)
	}
}

func TestEvaluate_RightRolePasses(t *testing.T) {
	g := New(nil)

	cases := map[string]string{
		"/admin/users":        "ADMIN",
		"/provider/dashboard": "PROVIDER",
		"/dashboard/orders":   "CUSTOMER",
		"/orders/42":          "PROVIDER",
		"/profile":            "CUSTOMER", // unrestricted
	}
	for path, role := range cases {
		res := g.Evaluate(Input{Path: path, Token: token(t, role, false, time.Hour), Now: testNow})
		if res.Outcome != Pass {
			t.Fatalf("role %s on %q: expected pass, got %v -> %q", role, path, res.Outcome, res.Location)
		}
	}
}

func TestEvaluate_CustomTableLongestPrefix(t *testing.T) {
	tab := policy.New(nil, []policy.Entry{
		{Prefix: "/provider", Roles: []policy.Role{policy.RoleProvider}},
		{Prefix: "/provider/moderation", Roles: []policy.Role{policy.RoleAdmin}},
	})
	g := New(tab)

	res := g.Evaluate(Input{Path: "/provider/moderation/7", Token: token(t, "PROVIDER", false, time.Hour), Now: testNow})
	if res.Outcome != RedirectRoleHome || res.Location != "/provider/dashboard" {
		t.Fatalf("nested admin-only entry must win: %+v", res)
	}
}
