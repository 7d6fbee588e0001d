package router

import (
    "github.com/labstack/echo/v4"

    "github.com/stepperslife/ticketing/internal/handler"
    "github.com/stepperslife/ticketing/internal/middleware"
    "github.com/stepperslife/ticketing/internal/model"
)

// RegisterCheckin registers the door operation endpoints under /v1.
// Staff run the door at any event; organizers only at their own — the
// handlers re-check event scope after loading the ticket or event.
// Per-event admission views live here too because staff need them.
func RegisterCheckin(e *echo.Echo, checkin *handler.CheckinHandler, events *handler.EventHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(model.RoleStaff, model.RoleOrganizer),
    )
    g.POST("/checkin/ticket", checkin.CheckInTicket)
    g.POST("/checkin/backup-code", checkin.CheckInBackupCode)

    g.GET("/events/:id/checkin-stats", events.CheckinStats)
    g.GET("/events/:id/tables", events.Tables)
    g.GET("/events/:id/table-stats", events.TableStats)
}
