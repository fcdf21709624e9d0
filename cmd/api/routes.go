package main

import (
	"tukangin-platform/internal/auth"
	"tukangin-platform/internal/gate"
	"tukangin-platform/internal/httpapi"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, manager *auth.Manager, h httpapi.Handlers) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// AUTH routes. Login, registration and the recovery flows are public;
	// the endpoints that act on "the current account" require a session.
	ag := r.Group("/auth")
	{
		ag.POST("/login", h.Login)
		ag.POST("/register", h.Register)
		ag.POST("/verify-otp", h.VerifyOTP)
		ag.POST("/verify-email", h.VerifyEmail)
		ag.POST("/resend-verification", h.ResendVerification)
		ag.POST("/forgot-password", h.ForgotPassword)
		ag.POST("/verify-reset-otp", h.VerifyResetOTP)
		ag.POST("/reset-password", h.ResetPassword)

		protected := ag.Group("")
		protected.Use(auth.RequireSession(manager))
		{
			protected.POST("/toggle-two-factor", h.ToggleTwoFactor)
			protected.POST("/logout", h.Logout)
			protected.GET("/me", h.Me)
		}
	}

	// Page routes go through the access gate: public pages pass, protected
	// prefixes demand a valid session with the right role, everything else
	// redirects. NoRoute keeps the gate in front of paths Gin doesn't know.
	pageGate := gate.New(nil).Middleware()
	r.NoRoute(pageGate, func(c *gin.Context) {
		c.JSON(404, gin.H{"status": "not found"})
	})
}
