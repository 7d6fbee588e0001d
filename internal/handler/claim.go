package handler

import (
    "database/sql"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/stepperslife/ticketing/internal/config"
    "github.com/stepperslife/ticketing/internal/model"
    "github.com/stepperslife/ticketing/internal/queue"
    "github.com/stepperslife/ticketing/internal/repository"
    queue_publisher "github.com/stepperslife/ticketing/internal/service"
    "github.com/stepperslife/ticketing/internal/utils"
)

// Claim failure reasons returned in gateResult.Reason.
const (
    claimReasonInvalidToken   = "invalid_token"
    claimReasonExpiredToken   = "expired_token"
    claimReasonAlreadyOwned   = "already_owned"
    claimReasonAlreadyClaimed = "already_claimed"
    claimReasonNotClaimable   = "not_claimable"
    claimReasonSelfClaim      = "self_claim_forbidden"
)

// ClaimHandler redeems claim links: it previews what a link unlocks and
// transfers seat ownership when an authenticated user redeems one.
type ClaimHandler struct {
    DB         *sql.DB
    Cfg        config.Config
    TicketRepo *repository.TicketRepo
    EventRepo  *repository.EventRepo
    ClaimRepo  *repository.ClaimRepo
}

// NewClaimHandler constructs a ClaimHandler.  All dependencies must be
// non-nil.
func NewClaimHandler(db *sql.DB, cfg config.Config, ticketRepo *repository.TicketRepo, eventRepo *repository.EventRepo, claimRepo *repository.ClaimRepo) *ClaimHandler {
    if db == nil || ticketRepo == nil || eventRepo == nil || claimRepo == nil {
        panic("nil dependency passed to NewClaimHandler")
    }
    return &ClaimHandler{DB: db, Cfg: cfg, TicketRepo: ticketRepo, EventRepo: eventRepo, ClaimRepo: claimRepo}
}

// claimVerdict decides whether redeemer may take over the ticket.  It
// returns an empty reason when the claim may proceed.  The order
// matters: a mismatched code means the link was revoked or forged, an
// owner retrying their own link gets told they already have the seat,
// and only then do we report the generic closed/claimed states.
func claimVerdict(t model.Ticket, claimCode string, redeemer uint64) (reason, message string) {
    if t.ClaimCode == "" || t.ClaimCode != claimCode {
        return claimReasonInvalidToken, "this claim link is not valid"
    }
    if redeemer != 0 && redeemer == t.OwnerID {
        return claimReasonAlreadyOwned, "you already own this ticket"
    }
    if !t.IsClaimable {
        if t.ClaimedAt != nil {
            return claimReasonAlreadyClaimed, "this seat has already been claimed"
        }
        return claimReasonNotClaimable, "this seat can no longer be claimed"
    }
    if redeemer != 0 && redeemer == t.OriginalPurchaserID {
        return claimReasonSelfClaim, "the purchaser cannot claim their own seat"
    }
    if t.Status != model.TicketStatusValid {
        return claimReasonNotClaimable, "this seat can no longer be claimed"
    }
    return "", ""
}

type claimTicketPart struct {
    TicketID   uint64    `json:"ticket_id"`
    EventID    uint64    `json:"event_id"`
    EventName  string    `json:"event_name"`
    Location   string    `json:"location"`
    EventDate  time.Time `json:"event_date"`
    TableName  string    `json:"table_name"`
    SeatLabel  string    `json:"seat_label"`
    TicketType string    `json:"ticket_type"`
}

func (h *ClaimHandler) ticketPart(t model.Ticket, e model.Event) claimTicketPart {
    return claimTicketPart{
        TicketID:   t.ID,
        EventID:    e.ID,
        EventName:  e.Name,
        Location:   e.Location,
        EventDate:  e.EventDate,
        TableName:  t.TableName,
        SeatLabel:  t.SeatLabel,
        TicketType: t.TicketType,
    }
}

// Preview handles GET /v1/claims/:token.  No authentication: recipients
// open claim links before they have an account.  Nothing is mutated.
func (h *ClaimHandler) Preview(c echo.Context) error {
    claim, err := utils.ParseClaimToken(h.Cfg.JWTSecret, c.Param("token"))
    if err != nil {
        if errors.Is(err, utils.ErrClaimTokenExpired) {
            return gateFail(c, claimReasonExpiredToken, "this claim link has expired", nil)
        }
        return gateFail(c, claimReasonInvalidToken, "this claim link is not valid", nil)
    }
    ctx := c.Request().Context()
    t, err := h.TicketRepo.GetByID(ctx, claim.TicketID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return gateFail(c, claimReasonInvalidToken, "this claim link is not valid", nil)
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if reason, message := claimVerdict(t, claim.ClaimCode, 0); reason != "" {
        return gateFail(c, reason, message, nil)
    }
    e, err := h.EventRepo.GetByID(ctx, t.EventID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return gateOK(c, h.ticketPart(t, e))
}

// Redeem handles POST /v1/claims/:token.  The authenticated caller
// becomes the ticket's owner; the transfer and its audit row commit
// atomically and the claim link is dead afterwards.
func (h *ClaimHandler) Redeem(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    claim, err := utils.ParseClaimToken(h.Cfg.JWTSecret, c.Param("token"))
    if err != nil {
        if errors.Is(err, utils.ErrClaimTokenExpired) {
            return gateFail(c, claimReasonExpiredToken, "this claim link has expired", nil)
        }
        return gateFail(c, claimReasonInvalidToken, "this claim link is not valid", nil)
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

    t, err := h.TicketRepo.GetByIDTx(ctx, tx, claim.TicketID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return gateFail(c, claimReasonInvalidToken, "this claim link is not valid", nil)
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if reason, message := claimVerdict(t, claim.ClaimCode, userID); reason != "" {
        return gateFail(c, reason, message, nil)
    }
    e, err := h.EventRepo.GetByIDTx(ctx, tx, t.EventID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    now := time.Now().UTC()
    audit := model.TicketClaim{
        TicketID:   t.ID,
        FromUserID: t.OwnerID,
        ToUserID:   userID,
        Status:     "claimed",
        ClaimedAt:  now,
        ExpiresAt:  claim.Exp,
    }
    if err := h.ClaimRepo.CreateTx(ctx, tx, &audit); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record claim failed"})
    }
    if err := h.TicketRepo.TransferTx(ctx, tx, t.ID, userID, now); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transfer failed"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    _ = queue_publisher.PublishTicketClaimed(ctx, queue.TicketClaimedEvent{
        TicketID:   t.ID,
        EventID:    e.ID,
        EventName:  e.Name,
        SeatLabel:  t.SeatLabel,
        FromUserID: t.OwnerID,
        ToUserID:   userID,
        ClaimedAt:  now.Format(time.RFC3339),
    })

    return gateOK(c, h.ticketPart(t, e))
}
