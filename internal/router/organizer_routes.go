package router

import (
    "github.com/labstack/echo/v4"

    "github.com/stepperslife/ticketing/internal/handler"
    "github.com/stepperslife/ticketing/internal/middleware"
    "github.com/stepperslife/ticketing/internal/model"
)

// RegisterOrganizer registers ORGANIZER-scoped endpoints under /v1:
// event management, table sales and everything money-related.  All
// routes require a valid JWT and the ORGANIZER role.
func RegisterOrganizer(e *echo.Echo, events *handler.EventHandler, sales *handler.SaleHandler, txs *handler.TransactionHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(model.RoleOrganizer),
    )

    // Event lifecycle.
    g.POST("/events", events.Create)
    g.GET("/events", events.List)
    g.GET("/events/:id", events.Get)
    g.POST("/events/:id/cancel", events.Cancel)

    // Table sales: the bulk issuance entry point.
    g.POST("/events/:id/tables/sell", sales.SellTable)

    // Money: record payments, move their status, view the ledger.
    g.POST("/transactions", txs.Record)
    g.POST("/transactions/:paymentId/status", txs.UpdateStatus)
    g.GET("/sellers/me/transactions", txs.ListMine)
    g.GET("/sellers/me/balance", txs.Balance)
    g.GET("/sellers/me/analytics", txs.Analytics)
    g.POST("/payouts", txs.RequestPayout)
    g.GET("/payouts", txs.ListPayouts)
}
