package policy

// Role names. Keep these stable; they are part of the token contract.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleProvider Role = "PROVIDER"
	RoleAdmin    Role = "ADMIN"
)

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/login"

// RegisterPath is the sign-up page; like LoginPath it bounces
// already-authenticated visitors to their role home.
const RegisterPath = "/register"

func Valid(r Role) bool {
	switch r {
	case RoleCustomer, RoleProvider, RoleAdmin:
		return true
	default:
		return false
	}
}

// HomePath is the default landing route for a role after authentication.
// Unknown roles land on the login page.
func HomePath(r Role) string {
	switch r {
	case RoleCustomer:
		return "/dashboard"
	case RoleProvider:
		return "/provider/dashboard"
	case RoleAdmin:
		return "/admin/dashboard"
	default:
		return LoginPath
	}
}
