package handler

import (
    "database/sql"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/stepperslife/ticketing/internal/model"
    "github.com/stepperslife/ticketing/internal/repository"
)

// EventHandler bundles repositories for organizers to manage their
// events and watch admission progress.  JWT authentication and role
// validation happen in middleware; handlers only re-check ownership.
type EventHandler struct {
    EventRepo  *repository.EventRepo
    TicketRepo *repository.TicketRepo
}

// NewEventHandler constructs a new EventHandler with the provided
// repositories.  All dependencies must be non-nil.
func NewEventHandler(eventRepo *repository.EventRepo, ticketRepo *repository.TicketRepo) *EventHandler {
    if eventRepo == nil || ticketRepo == nil {
        panic("nil repository passed to NewEventHandler")
    }
    return &EventHandler{EventRepo: eventRepo, TicketRepo: ticketRepo}
}

type createEventReq struct {
    Name         string    `json:"name"`
    Description  string    `json:"description"`
    Location     string    `json:"location"`
    EventDate    time.Time `json:"event_date"`
    PriceCents   int64     `json:"price_cents"`
    TotalTickets int       `json:"total_tickets"`
}

type eventResp struct {
    ID           uint64    `json:"id"`
    OrganizerID  uint64    `json:"organizer_id"`
    Name         string    `json:"name"`
    Description  string    `json:"description"`
    Location     string    `json:"location"`
    EventDate    time.Time `json:"event_date"`
    PriceCents   int64     `json:"price_cents"`
    TotalTickets int       `json:"total_tickets"`
    IsCancelled  bool      `json:"is_cancelled"`
}

func toEventResp(e model.Event) eventResp {
    return eventResp{
        ID:           e.ID,
        OrganizerID:  e.OrganizerID,
        Name:         e.Name,
        Description:  e.Description,
        Location:     e.Location,
        EventDate:    e.EventDate,
        PriceCents:   e.PriceCents,
        TotalTickets: e.TotalTickets,
        IsCancelled:  e.IsCancelled,
    }
}

// Create handles POST /v1/events.  Organizer only.
func (h *EventHandler) Create(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createEventReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    if req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
    }
    if req.EventDate.IsZero() {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_date is required"})
    }
    if req.PriceCents < 0 || req.TotalTickets < 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "price and ticket count must be non-negative"})
    }
    e := model.Event{
        OrganizerID:  userID,
        Name:         req.Name,
        Description:  req.Description,
        Location:     req.Location,
        EventDate:    req.EventDate.UTC(),
        PriceCents:   req.PriceCents,
        TotalTickets: req.TotalTickets,
    }
    if err := h.EventRepo.Create(c.Request().Context(), &e); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
    }
    return c.JSON(http.StatusCreated, toEventResp(e))
}

// List handles GET /v1/events and returns the organizer's own events.
func (h *EventHandler) List(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    events, err := h.EventRepo.ListByOrganizer(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list events failed"})
    }
    out := make([]eventResp, 0, len(events))
    for _, e := range events {
        out = append(out, toEventResp(e))
    }
    return c.JSON(http.StatusOK, echo.Map{"events": out})
}

// Get handles GET /v1/events/:id.
func (h *EventHandler) Get(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    e, err := h.EventRepo.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, toEventResp(e))
}

// Cancel handles POST /v1/events/:id/cancel.  Only the owning organizer
// may cancel; cancellation is what makes every ticket unusable at the
// door.
func (h *EventHandler) Cancel(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    if err := h.EventRepo.Cancel(c.Request().Context(), id, userID); err != nil {
        switch {
        case errors.Is(err, sql.ErrNoRows):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
        case errors.Is(err, repository.ErrForbidden):
            return c.JSON(http.StatusForbidden, echo.Map{"error": "not your event"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
        }
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "event cancelled"})
}

// loadOwnedOrStaffed returns the event if the caller may view its
// admission data: the owning organizer, or any staff account.
func (h *EventHandler) loadOwnedOrStaffed(c echo.Context) (model.Event, error) {
    userID, err := getUserID(c)
    if err != nil {
        return model.Event{}, echo.ErrUnauthorized
    }
    id, err := pathID(c, "id")
    if err != nil {
        return model.Event{}, echo.ErrBadRequest
    }
    e, err := h.EventRepo.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return model.Event{}, echo.ErrNotFound
        }
        return model.Event{}, err
    }
    if e.OrganizerID != userID && getRole(c) != model.RoleStaff {
        return model.Event{}, echo.ErrForbidden
    }
    return e, nil
}

// CheckinStats handles GET /v1/events/:id/checkin-stats for organizers
// and staff watching the door.
func (h *EventHandler) CheckinStats(c echo.Context) error {
    e, err := h.loadOwnedOrStaffed(c)
    if err != nil {
        return eventAccessError(c, err)
    }
    total, checkedIn, byType, recent, err := h.TicketRepo.CheckinStats(c.Request().Context(), e.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "event_id":      e.ID,
        "event_name":    e.Name,
        "total_tickets": total,
        "checked_in":    checkedIn,
        "remaining":     total - checkedIn,
        "by_type":       byType,
        "recent":        recent,
    })
}

// Tables handles GET /v1/events/:id/tables: the organizer's roster of
// sold tables with distribution and admission counts.
func (h *EventHandler) Tables(c echo.Context) error {
    e, err := h.loadOwnedOrStaffed(c)
    if err != nil {
        return eventAccessError(c, err)
    }
    tables, err := h.TicketRepo.ListTablesByEvent(c.Request().Context(), e.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tables query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"event_id": e.ID, "tables": tables})
}

// TableStats handles GET /v1/events/:id/table-stats: aggregate totals
// over the event's table sales.
func (h *EventHandler) TableStats(c echo.Context) error {
    e, err := h.loadOwnedOrStaffed(c)
    if err != nil {
        return eventAccessError(c, err)
    }
    tables, err := h.TicketRepo.ListTablesByEvent(c.Request().Context(), e.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tables query failed"})
    }
    var seats, distributed, checkedIn int
    for _, t := range tables {
        seats += t.Seats
        distributed += t.Distributed
        checkedIn += t.CheckedIn
    }
    return c.JSON(http.StatusOK, echo.Map{
        "event_id":    e.ID,
        "tables":      len(tables),
        "seats":       seats,
        "distributed": distributed,
        "checked_in":  checkedIn,
    })
}

func eventAccessError(c echo.Context, err error) error {
    switch err {
    case echo.ErrUnauthorized:
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    case echo.ErrBadRequest:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    case echo.ErrNotFound:
        return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
    case echo.ErrForbidden:
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not your event"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
}
