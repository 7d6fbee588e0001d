package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // Echo web framework for routing

    "github.com/stepperslife/ticketing/internal/handler"
    "github.com/stepperslife/ticketing/internal/middleware"
    "github.com/stepperslife/ticketing/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    // Load balancers and monitoring systems use this to verify that the
    // service is up.
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware.  Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    // Rotates the refresh token alongside the access token.
    g.POST("/refresh", a.Refresh)
    // Logout accepts a refresh_token body and does not require a JWT.
    g.POST("/logout", a.Logout)

    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.Use(middleware.RequireRole(model.RoleOrganizer, model.RoleAttendee, model.RoleStaff))
    auth.GET("/me", a.Me)
    // Authenticated logout without a body revokes every session.
    auth.POST("/logout", a.Logout)
}

// RegisterPublic registers unauthenticated endpoints.  Claim previews
// are public because seat recipients open their claim link before they
// have an account; the preview mutates nothing.
func RegisterPublic(e *echo.Echo, claims *handler.ClaimHandler) {
    e.GET("/v1/claims/:token", claims.Preview)
}
