package router

import (
    "github.com/labstack/echo/v4"

    "github.com/stepperslife/ticketing/internal/handler"
    "github.com/stepperslife/ticketing/internal/middleware"
    "github.com/stepperslife/ticketing/internal/model"
)

// RegisterTickets registers the ticket wallet endpoints under /v1.
// Every authenticated role can hold tickets (organizers and staff
// attend events too), so the group accepts all three roles.
func RegisterTickets(e *echo.Echo, tickets *handler.TicketHandler, claims *handler.ClaimHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(model.RoleOrganizer, model.RoleAttendee, model.RoleStaff),
    )
    g.GET("/tickets", tickets.List)
    g.GET("/tickets/:id", tickets.Get)
    g.GET("/tickets/:id/qr", tickets.QR)

    // Redeeming a claim link requires an account; the preview route is
    // public and registered separately.
    g.POST("/claims/:token", claims.Redeem)
}
