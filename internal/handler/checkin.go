package handler

import (
    "context"
    "database/sql"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/stepperslife/ticketing/internal/model"
    "github.com/stepperslife/ticketing/internal/queue"
    "github.com/stepperslife/ticketing/internal/repository"
    queue_publisher "github.com/stepperslife/ticketing/internal/service"
    "github.com/stepperslife/ticketing/internal/utils"
)

// checkInWindow is how long before the event start the door opens.
const checkInWindow = 4 * time.Hour

// Check-in failure reasons returned in gateResult.Reason.
const (
    checkinReasonNotFound       = "ticket_not_found"
    checkinReasonAlreadyChecked = "already_checked_in"
    checkinReasonNotValid       = "ticket_not_valid"
    checkinReasonEventCancelled = "event_cancelled"
    checkinReasonTooEarly       = "too_early"
)

// CheckinHandler admits tickets at the door, by scanned ticket id or by
// typed backup code.  Both entry points share one decision path so the
// rules can never drift apart.
type CheckinHandler struct {
    DB         *sql.DB
    TicketRepo *repository.TicketRepo
    EventRepo  *repository.EventRepo
}

// NewCheckinHandler constructs a CheckinHandler.  All dependencies must
// be non-nil.
func NewCheckinHandler(db *sql.DB, ticketRepo *repository.TicketRepo, eventRepo *repository.EventRepo) *CheckinHandler {
    if db == nil || ticketRepo == nil || eventRepo == nil {
        panic("nil dependency passed to NewCheckinHandler")
    }
    return &CheckinHandler{DB: db, TicketRepo: ticketRepo, EventRepo: eventRepo}
}

// checkinVerdict decides whether a ticket may be admitted now.  It
// returns an empty reason when check-in may proceed.  The door opens
// exactly checkInWindow before the event date; the boundary instant is
// allowed.
func checkinVerdict(t model.Ticket, e model.Event, now time.Time) (reason, message string) {
    if t.CheckedInAt != nil {
        return checkinReasonAlreadyChecked, "ticket was already checked in"
    }
    if t.Status != model.TicketStatusValid {
        return checkinReasonNotValid, "ticket is " + t.Status
    }
    if e.IsCancelled {
        return checkinReasonEventCancelled, "this event has been cancelled"
    }
    if now.Before(e.EventDate.Add(-checkInWindow)) {
        return checkinReasonTooEarly, "check-in opens 4 hours before the event"
    }
    return "", ""
}

// admitAccess reports whether the caller may run the door for the
// event: staff admit anywhere, organizers only at their own events.
func admitAccess(role string, e model.Event, userID uint64) bool {
    return role == model.RoleStaff || e.OrganizerID == userID
}

type checkinTicketReq struct {
    TicketID uint64 `json:"ticket_id"`
    Method   string `json:"method"`
}

type backupCodeReq struct {
    Code string `json:"code"`
}

type checkinPart struct {
    TicketID    uint64     `json:"ticket_id"`
    EventID     uint64     `json:"event_id"`
    EventName   string     `json:"event_name"`
    TableName   string     `json:"table_name,omitempty"`
    SeatLabel   string     `json:"seat_label,omitempty"`
    TicketType  string     `json:"ticket_type"`
    CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
    CheckedInBy uint64     `json:"checked_in_by,omitempty"`
    Method      string     `json:"method,omitempty"`
}

// checkinSnapshot renders the ticket state reported to the scanner.
// For a ticket that was already admitted it carries the prior
// checked_in_at/by/method unchanged, so door staff can see when and by
// whom it entered.
func checkinSnapshot(t model.Ticket, e model.Event) checkinPart {
    return checkinPart{
        TicketID:    t.ID,
        EventID:     e.ID,
        EventName:   e.Name,
        TableName:   t.TableName,
        SeatLabel:   t.SeatLabel,
        TicketType:  t.TicketType,
        CheckedInAt: t.CheckedInAt,
        CheckedInBy: t.CheckedInBy,
        Method:      t.CheckInMethod,
    }
}

// CheckInTicket handles POST /v1/checkin/ticket for scanned QR codes
// and manual id entry.
func (h *CheckinHandler) CheckInTicket(c echo.Context) error {
    var req checkinTicketReq
    if err := c.Bind(&req); err != nil || req.TicketID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket_id is required"})
    }
    method := strings.ToLower(strings.TrimSpace(req.Method))
    switch method {
    case model.CheckInMethodQR, model.CheckInMethodManual:
    case "":
        method = model.CheckInMethodQR
    default:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown check-in method"})
    }
    return h.admit(c, method, func(ctx context.Context, tx *sql.Tx) (model.Ticket, error) {
        return h.TicketRepo.GetByIDTx(ctx, tx, req.TicketID)
    })
}

// CheckInBackupCode handles POST /v1/checkin/backup-code.  The typed
// code is normalized so case, spacing and hyphens never matter at the
// door.
func (h *CheckinHandler) CheckInBackupCode(c echo.Context) error {
    var req backupCodeReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Code) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
    }
    code := utils.NormalizeBackupCode(req.Code)
    return h.admit(c, model.CheckInMethodBackup, func(ctx context.Context, tx *sql.Tx) (model.Ticket, error) {
        return h.TicketRepo.GetByBackupCodeTx(ctx, tx, code)
    })
}

// admit runs the shared check-in path: lock the ticket, evaluate the
// verdict, record the admission.  Rejections never mutate anything; an
// already-checked-in ticket reports its prior admission so door staff
// can see when and by whom it entered.
func (h *CheckinHandler) admit(c echo.Context, method string, lookup func(context.Context, *sql.Tx) (model.Ticket, error)) error {
    staffID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx := c.Request().Context()
    tx, err := h.DB.BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    t, err := lookup(ctx, tx)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return gateFail(c, checkinReasonNotFound, "ticket not found", nil)
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    e, err := h.EventRepo.GetByIDTx(ctx, tx, t.EventID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if !admitAccess(getRole(c), e, staffID) {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not your event"})
    }

    part := checkinSnapshot(t, e)
    now := time.Now().UTC()
    if reason, message := checkinVerdict(t, e, now); reason != "" {
        return gateFail(c, reason, message, part)
    }

    if err := h.TicketRepo.CheckInTx(ctx, tx, t.ID, staffID, method, now); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check-in failed"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    part.CheckedInAt = &now
    part.CheckedInBy = staffID
    part.Method = method

    _ = queue_publisher.PublishTicketCheckedIn(ctx, queue.TicketCheckedInEvent{
        TicketID:    t.ID,
        EventID:     e.ID,
        EventName:   e.Name,
        SeatLabel:   t.SeatLabel,
        TicketType:  t.TicketType,
        Method:      method,
        StaffID:     staffID,
        CheckedInAt: now.Format(time.RFC3339),
    })

    return gateOK(c, part)
}
