package handler

import (
    "database/sql"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/stepperslife/ticketing/internal/config"
    "github.com/stepperslife/ticketing/internal/model"
    "github.com/stepperslife/ticketing/internal/repository"
    "github.com/stepperslife/ticketing/internal/utils"
)

// qrPixelSize is the width/height of the generated ticket QR PNG.
const qrPixelSize = 512

// TicketHandler serves attendees their own tickets: the wallet list,
// single ticket detail and the scannable QR image.
type TicketHandler struct {
    Cfg        config.Config
    TicketRepo *repository.TicketRepo
    EventRepo  *repository.EventRepo
    ClaimRepo  *repository.ClaimRepo
}

// NewTicketHandler constructs a TicketHandler.  All dependencies must
// be non-nil.
func NewTicketHandler(cfg config.Config, ticketRepo *repository.TicketRepo, eventRepo *repository.EventRepo, claimRepo *repository.ClaimRepo) *TicketHandler {
    if ticketRepo == nil || eventRepo == nil || claimRepo == nil {
        panic("nil repository passed to NewTicketHandler")
    }
    return &TicketHandler{Cfg: cfg, TicketRepo: ticketRepo, EventRepo: eventRepo, ClaimRepo: claimRepo}
}

type ticketResp struct {
    ID          uint64     `json:"id"`
    EventID     uint64     `json:"event_id"`
    EventName   string     `json:"event_name"`
    Location    string     `json:"location"`
    EventDate   time.Time  `json:"event_date"`
    IsCancelled bool       `json:"event_cancelled"`
    TableName   string     `json:"table_name,omitempty"`
    SeatLabel   string     `json:"seat_label,omitempty"`
    TicketType  string     `json:"ticket_type"`
    Status      string     `json:"status"`
    BackupCode  string     `json:"backup_code,omitempty"`
    ClaimLink   string     `json:"claim_link,omitempty"`
    ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
    CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
    PurchasedAt time.Time  `json:"purchased_at"`
}

// claimLinkFor mints the shareable claim URL for a seat the purchaser
// still holds.  Only claimable seats owned by their original purchaser
// get a link; everyone else sees nothing.
func (h *TicketHandler) claimLinkFor(t model.Ticket, viewer uint64) string {
    if !t.IsClaimable || t.OwnerID != t.OriginalPurchaserID || viewer != t.OriginalPurchaserID {
        return ""
    }
    token, err := utils.NewClaimToken(h.Cfg.JWTSecret, t.ID, t.ClaimCode, h.Cfg.ClaimTTLDays)
    if err != nil {
        return ""
    }
    return fmt.Sprintf("%s/claim/%s", strings.TrimRight(h.Cfg.PublicBaseURL, "/"), token)
}

// List handles GET /v1/tickets: every ticket the caller currently owns,
// with claim links for seats they can still hand out.
func (h *TicketHandler) List(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    items, err := h.TicketRepo.ListByOwner(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list tickets failed"})
    }
    out := make([]ticketResp, 0, len(items))
    for _, it := range items {
        t := it.Ticket
        out = append(out, ticketResp{
            ID:          t.ID,
            EventID:     t.EventID,
            EventName:   it.EventName,
            Location:    it.EventLocation,
            EventDate:   it.EventDate,
            IsCancelled: it.EventIsCancelled,
            TableName:   t.TableName,
            SeatLabel:   t.SeatLabel,
            TicketType:  t.TicketType,
            Status:      t.Status,
            BackupCode:  utils.FormatBackupCode(t.BackupCode),
            ClaimLink:   h.claimLinkFor(t, userID),
            ClaimedAt:   t.ClaimedAt,
            CheckedInAt: t.CheckedInAt,
            PurchasedAt: t.PurchasedAt,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"tickets": out})
}

// loadVisible fetches a ticket the caller may see: the current owner or
// the event's organizer.
func (h *TicketHandler) loadVisible(c echo.Context) (model.Ticket, model.Event, uint64, error) {
    userID, err := getUserID(c)
    if err != nil {
        return model.Ticket{}, model.Event{}, 0, echo.ErrUnauthorized
    }
    id, err := pathID(c, "id")
    if err != nil {
        return model.Ticket{}, model.Event{}, 0, echo.ErrBadRequest
    }
    ctx := c.Request().Context()
    t, err := h.TicketRepo.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return model.Ticket{}, model.Event{}, 0, echo.ErrNotFound
        }
        return model.Ticket{}, model.Event{}, 0, err
    }
    e, err := h.EventRepo.GetByID(ctx, t.EventID)
    if err != nil {
        return model.Ticket{}, model.Event{}, 0, err
    }
    if t.OwnerID != userID && e.OrganizerID != userID {
        return model.Ticket{}, model.Event{}, 0, echo.ErrForbidden
    }
    return t, e, userID, nil
}

// groupSeat is one row of a purchaser's table overview.  Distributed
// seats have left the purchaser's wallet via a claim link.
type groupSeat struct {
    TicketID    uint64 `json:"ticket_id"`
    SeatLabel   string `json:"seat_label"`
    Status      string `json:"status"`
    Distributed bool   `json:"distributed"`
    Claimable   bool   `json:"claimable"`
}

// claimEntry is one row of a ticket's transfer history.
type claimEntry struct {
    FromUserID uint64    `json:"from_user_id"`
    ToUserID   uint64    `json:"to_user_id"`
    Status     string    `json:"status"`
    ClaimedAt  time.Time `json:"claimed_at"`
}

// Get handles GET /v1/tickets/:id.  For the original purchaser of a
// table, the response includes the whole group so they can track which
// seats have been handed out; owners and organizers also see the
// ticket's transfer history.
func (h *TicketHandler) Get(c echo.Context) error {
    t, e, userID, err := h.loadVisible(c)
    if err != nil {
        return ticketAccessError(c, err)
    }
    resp := ticketResp{
        ID:          t.ID,
        EventID:     e.ID,
        EventName:   e.Name,
        Location:    e.Location,
        EventDate:   e.EventDate,
        IsCancelled: e.IsCancelled,
        TableName:   t.TableName,
        SeatLabel:   t.SeatLabel,
        TicketType:  t.TicketType,
        Status:      t.Status,
        ClaimLink:   h.claimLinkFor(t, userID),
        ClaimedAt:   t.ClaimedAt,
        CheckedInAt: t.CheckedInAt,
        PurchasedAt: t.PurchasedAt,
    }
    // The backup code is for the person holding the ticket, not the
    // organizer.
    if t.OwnerID == userID {
        resp.BackupCode = utils.FormatBackupCode(t.BackupCode)
    }

    ctx := c.Request().Context()
    out := echo.Map{"ticket": resp}

    if t.GroupPurchaseID != "" && userID == t.OriginalPurchaserID {
        group, err := h.TicketRepo.ListByGroup(ctx, t.GroupPurchaseID)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load table failed"})
        }
        seats := make([]groupSeat, 0, len(group))
        for _, g := range group {
            seats = append(seats, groupSeat{
                TicketID:    g.ID,
                SeatLabel:   g.SeatLabel,
                Status:      g.Status,
                Distributed: g.OwnerID != g.OriginalPurchaserID,
                Claimable:   g.IsClaimable,
            })
        }
        out["table_seats"] = seats
    }

    history, err := h.ClaimRepo.ListByTicket(ctx, t.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load claim history failed"})
    }
    if len(history) > 0 {
        entries := make([]claimEntry, 0, len(history))
        for _, cl := range history {
            entries = append(entries, claimEntry{
                FromUserID: cl.FromUserID,
                ToUserID:   cl.ToUserID,
                Status:     cl.Status,
                ClaimedAt:  cl.ClaimedAt,
            })
        }
        out["claim_history"] = entries
    }
    return c.JSON(http.StatusOK, out)
}

// qrPayload is the JSON encoded into the ticket QR image.  The door
// scanner posts ticket_id to the check-in endpoint; the remaining
// fields let the scanner render the ticket offline.
type qrPayload struct {
    TicketID    uint64 `json:"ticket_id"`
    EventID     uint64 `json:"event_id"`
    UserID      uint64 `json:"user_id"`
    TicketType  string `json:"ticket_type"`
    BackupHint  string `json:"backup_hint"`
    PurchasedAt string `json:"purchased_at"`
}

// QR handles GET /v1/tickets/:id/qr and responds with a PNG image.
// Owner only: the QR is the admission credential.
func (h *TicketHandler) QR(c echo.Context) error {
    t, _, userID, err := h.loadVisible(c)
    if err != nil {
        return ticketAccessError(c, err)
    }
    if t.OwnerID != userID {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not your ticket"})
    }
    hint := t.BackupCode
    if len(hint) > 4 {
        hint = hint[:4]
    }
    payload, err := json.Marshal(qrPayload{
        TicketID:    t.ID,
        EventID:     t.EventID,
        UserID:      t.OwnerID,
        TicketType:  t.TicketType,
        BackupHint:  hint,
        PurchasedAt: t.PurchasedAt.Format(time.RFC3339),
    })
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "encode payload failed"})
    }
    png, err := utils.QRCodePNG(string(payload), qrPixelSize)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "render qr failed"})
    }
    return c.Blob(http.StatusOK, "image/png", png)
}

func ticketAccessError(c echo.Context, err error) error {
    switch err {
    case echo.ErrUnauthorized:
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    case echo.ErrBadRequest:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
    case echo.ErrNotFound:
        return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
    case echo.ErrForbidden:
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not your ticket"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
}
