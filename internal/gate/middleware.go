package gate

import (
	"net/http"
	"strings"
	"time"

	"tukangin-platform/internal/auth"
	"tukangin-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Paths the gate never evaluates: build artifacts and static assets.
var skipPrefixes = []string{
	"/_next/static",
	"/_next/image",
	"/favicon.ico",
	"/images",
	"/assets",
}

func isAsset(path string) bool {
	for _, p := range skipPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return strings.HasSuffix(path, ".png")
}

// cookieToken reads the session cookie, falling back to the
// Authorization header when the cookie is absent.
func cookieToken(r *http.Request) string {
	if c, err := r.Cookie(auth.SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(raw, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	}
	return ""
}

// Middleware runs the gate ahead of every page route. Its only side
// effects are the redirect response and, for stale tokens, deleting the
// session cookie.
func (g *Gate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if isAsset(path) {
			c.Next()
			return
		}

		res := g.Evaluate(Input{
			Path:  path,
			Token: cookieToken(c.Request),
			Now:   time.Now(),
		})

		if res.ClearCookie {
			c.SetCookie(auth.SessionCookie, "", -1, "/", "", false, true)
		}

		switch res.Outcome {
		case Pass:
			c.Next()
		case RedirectLogin, RedirectRoleHome:
			logger.FromGin(c).Debug("gate redirect",
				"path", path,
				"outcome", res.Outcome.String(),
				"location", res.Location,
			)
			c.Redirect(http.StatusTemporaryRedirect, res.Location)
			c.Abort()
		}
	}
}
