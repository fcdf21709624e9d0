package gate

import (
	"net/url"
	"strings"
	"time"

	"tukangin-platform/internal/auth"
	"tukangin-platform/internal/policy"
)

// Outcome is the terminal state of one gate evaluation.
type Outcome int

const (
	Pass Outcome = iota
	RedirectLogin
	RedirectRoleHome
)

func (o Outcome) String() string {
	switch o {
	case Pass:
		return "pass"
	case RedirectLogin:
		return "redirect_login"
	case RedirectRoleHome:
		return "redirect_role_home"
	default:
		return "unknown"
	}
}

// Input is everything one evaluation may look at. Token extraction and
// clock capture happen in the middleware so Evaluate stays pure.
type Input struct {
	Path  string
	Token string
	Now   time.Time
}

// Result tells the middleware what to do with the request. Location is
// set for both redirect outcomes; ClearCookie is set when a stored token
// turned out to be stale or malformed.
type Result struct {
	Outcome     Outcome
	Location    string
	ClearCookie bool
}

// Gate decides, per request, whether to pass, bounce to login, or bounce
// to the caller's role home. It holds no mutable state; evaluations are
// independent and safe to run concurrently.
type Gate struct {
	table *policy.Table
}

func New(table *policy.Table) *Gate {
	if table == nil {
		table = policy.Default()
	}
	return &Gate{table: table}
}

// Evaluate runs the per-request state machine. No I/O, no side effects;
// every failure path resolves to a redirect, never an error.
func (g *Gate) Evaluate(in Input) Result {
	// API routes authorize themselves.
	if in.Path == "/api" || strings.HasPrefix(in.Path, "/api/") {
		return Result{Outcome: Pass}
	}

	tokenValid := in.Token != "" && auth.IsValid(in.Token, in.Now)

	if g.table.IsPublic(in.Path) {
		// A signed-in visitor on the login or registration page belongs
		// on their role home instead.
		if tokenValid && (in.Path == policy.LoginPath || in.Path == policy.RegisterPath) {
			return Result{Outcome: RedirectRoleHome, Location: g.roleHome(in.Token)}
		}
		return Result{Outcome: Pass}
	}

	if in.Token == "" {
		return Result{
			Outcome:  RedirectLogin,
			Location: policy.LoginPath + "?redirectTo=" + url.QueryEscape(in.Path),
		}
	}

	if !tokenValid {
		return Result{Outcome: RedirectLogin, Location: policy.LoginPath, ClearCookie: true}
	}

	claims, err := auth.Decode(in.Token)
	if err != nil {
		// Unreachable after IsValid, but fail closed anyway.
		return Result{Outcome: RedirectLogin, Location: policy.LoginPath, ClearCookie: true}
	}
	if !g.table.Allows(in.Path, policy.Role(claims.Role)) {
		return Result{Outcome: RedirectRoleHome, Location: policy.HomePath(policy.Role(claims.Role))}
	}
	return Result{Outcome: Pass}
}

func (g *Gate) roleHome(token string) string {
	claims, err := auth.Decode(token)
	if err != nil {
		return policy.LoginPath
	}
	return policy.HomePath(policy.Role(claims.Role))
}
