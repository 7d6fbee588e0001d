package handler

import (
    "database/sql"
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/stepperslife/ticketing/internal/config"
    "github.com/stepperslife/ticketing/internal/ledger"
    "github.com/stepperslife/ticketing/internal/model"
    "github.com/stepperslife/ticketing/internal/queue"
    "github.com/stepperslife/ticketing/internal/repository"
    queue_publisher "github.com/stepperslife/ticketing/internal/service"
    "github.com/stepperslife/ticketing/internal/utils"
)

// maxTableSeats bounds one sale; larger parties buy multiple tables.
const maxTableSeats = 20

// backupCodeRetries is how many times a seat insert is retried when its
// random backup code collides with the unique index.
const backupCodeRetries = 3

// SaleHandler issues blocks of tickets for table purchases.  The whole
// sale runs in one transaction: every seat row, the platform
// transaction and the seller balance update commit together or not at
// all.
type SaleHandler struct {
    DB              *sql.DB
    Cfg             config.Config
    EventRepo       *repository.EventRepo
    TicketRepo      *repository.TicketRepo
    TransactionRepo *repository.TransactionRepo
    BalanceRepo     *repository.BalanceRepo
    UserRepo        *repository.UserRepo
}

// NewSaleHandler constructs a SaleHandler.  All dependencies must be
// non-nil.
func NewSaleHandler(db *sql.DB, cfg config.Config, eventRepo *repository.EventRepo, ticketRepo *repository.TicketRepo, txRepo *repository.TransactionRepo, balanceRepo *repository.BalanceRepo, userRepo *repository.UserRepo) *SaleHandler {
    if db == nil || eventRepo == nil || ticketRepo == nil || txRepo == nil || balanceRepo == nil || userRepo == nil {
        panic("nil dependency passed to NewSaleHandler")
    }
    return &SaleHandler{DB: db, Cfg: cfg, EventRepo: eventRepo, TicketRepo: ticketRepo, TransactionRepo: txRepo, BalanceRepo: balanceRepo, UserRepo: userRepo}
}

type sellTableReq struct {
    BuyerEmail        string `json:"buyer_email"`
    TableName         string `json:"table_name"`
    SeatCount         int    `json:"seat_count"`
    PricePerSeatCents int64  `json:"price_per_seat_cents"`
    TicketType        string `json:"ticket_type"`
    PaymentProvider   string `json:"payment_provider"`
    PaymentID         string `json:"payment_id"`
}

type soldSeat struct {
    TicketID   uint64 `json:"ticket_id"`
    SeatLabel  string `json:"seat_label"`
    ClaimLink  string `json:"claim_link"`
    BackupCode string `json:"backup_code"`
}

// newTableSeats builds the ticket rows of one table sale: exactly
// seat_count seats sharing the group purchase id, each labelled in
// order and carrying its own claim code.  Backup codes are assigned at
// insert time where a unique-index collision can be retried.
func newTableSeats(eventID, buyerID uint64, req sellTableReq, groupID, ticketType, paymentID string, now time.Time) ([]model.Ticket, error) {
    tickets := make([]model.Ticket, 0, req.SeatCount)
    for i := 1; i <= req.SeatCount; i++ {
        claimCode, err := utils.NewClaimCode()
        if err != nil {
            return nil, err
        }
        tickets = append(tickets, model.Ticket{
            EventID:             eventID,
            OwnerID:             buyerID,
            OriginalPurchaserID: buyerID,
            GroupPurchaseID:     groupID,
            GroupType:           "table",
            TableName:           req.TableName,
            SeatLabel:           fmt.Sprintf("Seat %d", i),
            TicketType:          ticketType,
            Status:              model.TicketStatusValid,
            AmountCents:         req.PricePerSeatCents,
            PaymentMethod:       strings.ToLower(req.PaymentProvider),
            PaymentReference:    paymentID,
            ClaimCode:           claimCode,
            IsClaimable:         true,
            PurchasedAt:         now,
        })
    }
    return tickets, nil
}

// SellTable handles POST /v1/events/:id/tables/sell.  Organizer only;
// the event must belong to the caller and not be cancelled.  Creates
// seat_count tickets sharing one group purchase id, each with its own
// claim link and backup code, records the platform transaction and
// credits the seller's pending balance.
func (h *SaleHandler) SellTable(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    eventID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    var req sellTableReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.TableName = strings.TrimSpace(req.TableName)
    req.BuyerEmail = strings.ToLower(strings.TrimSpace(req.BuyerEmail))
    switch {
    case req.BuyerEmail == "":
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "buyer_email is required"})
    case req.TableName == "":
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_name is required"})
    case req.SeatCount < 1 || req.SeatCount > maxTableSeats:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("seat_count must be between 1 and %d", maxTableSeats)})
    case req.PricePerSeatCents < 0:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_per_seat_cents must be non-negative"})
    case !ledger.KnownProvider(req.PaymentProvider):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown payment provider"})
    }
    ticketType := strings.ToUpper(strings.TrimSpace(req.TicketType))
    switch ticketType {
    case model.TicketTypeGA, model.TicketTypeVIP, model.TicketTypeEarlyBird:
    case "":
        ticketType = model.TicketTypeGA
    default:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown ticket type"})
    }

    ctx := c.Request().Context()

    event, err := h.EventRepo.GetByID(ctx, eventID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if event.OrganizerID != userID {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not your event"})
    }
    if event.IsCancelled {
        return c.JSON(http.StatusConflict, echo.Map{"error": "event is cancelled"})
    }

    buyer, err := h.UserRepo.GetByEmail(ctx, req.BuyerEmail)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "buyer not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    totalCents := req.PricePerSeatCents * int64(req.SeatCount)
    fees, err := ledger.Calculate(totalCents, req.SeatCount, req.PaymentProvider)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown payment provider"})
    }
    paymentID := strings.TrimSpace(req.PaymentID)
    if paymentID == "" {
        paymentID = uuid.NewString()
    }
    groupID, err := utils.NewGroupPurchaseID()
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "id generation failed"})
    }

    now := time.Now().UTC()
    tickets, err := newTableSeats(event.ID, buyer.ID, req, groupID, ticketType, paymentID, now)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "code generation failed"})
    }

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

    for i := range tickets {
        t := &tickets[i]
        // Backup codes are random; on the rare unique-index collision we
        // regenerate and retry instead of failing the whole sale.
        for attempt := 0; ; attempt++ {
            t.BackupCode, err = utils.NewBackupCode()
            if err != nil {
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "code generation failed"})
            }
            t.BackupCode = utils.NormalizeBackupCode(t.BackupCode)
            err = h.TicketRepo.CreateTx(ctx, tx, t)
            if err == nil {
                break
            }
            if !errors.Is(err, repository.ErrDuplicate) || attempt >= backupCodeRetries {
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create ticket failed"})
            }
        }
    }

    ptx := model.PlatformTransaction{
        EventID:           event.ID,
        EventName:         event.Name,
        TicketID:          tickets[0].ID,
        SellerID:          userID,
        BuyerID:           buyer.ID,
        BuyerEmail:        buyer.Email,
        AmountCents:       totalCents,
        TicketCount:       req.SeatCount,
        PlatformFeeCents:  fees.PlatformFeeCents,
        SellerPayoutCents: fees.SellerPayoutCents,
        Status:            model.TxStatusPending,
        PaymentProvider:   strings.ToLower(req.PaymentProvider),
        PaymentID:         paymentID,
    }
    if err := h.TransactionRepo.CreateTx(ctx, tx, &ptx); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "payment already recorded"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record transaction failed"})
    }

    balance, err := h.BalanceRepo.GetForUpdateTx(ctx, tx, userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load balance failed"})
    }
    ledger.ApplyRecorded(&balance, fees.SellerPayoutCents)
    if err := h.BalanceRepo.SaveTx(ctx, tx, &balance); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save balance failed"})
    }

    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    seats := make([]soldSeat, 0, len(tickets))
    for _, t := range tickets {
        token, err := utils.NewClaimToken(h.Cfg.JWTSecret, t.ID, t.ClaimCode, h.Cfg.ClaimTTLDays)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "claim link generation failed"})
        }
        seats = append(seats, soldSeat{
            TicketID:   t.ID,
            SeatLabel:  t.SeatLabel,
            ClaimLink:  fmt.Sprintf("%s/claim/%s", strings.TrimRight(h.Cfg.PublicBaseURL, "/"), token),
            BackupCode: utils.FormatBackupCode(t.BackupCode),
        })
    }

    // Events are best-effort; the sale already committed.
    _ = queue_publisher.PublishTicketsIssued(ctx, queue.TicketsIssuedEvent{
        GroupPurchaseID:  groupID,
        EventID:          event.ID,
        EventName:        event.Name,
        TableName:        req.TableName,
        SeatCount:        req.SeatCount,
        BuyerID:          buyer.ID,
        SellerID:         userID,
        TotalAmountCents: totalCents,
        Provider:         ptx.PaymentProvider,
        IssuedAt:         now.Format(time.RFC3339),
    })
    _ = queue_publisher.PublishTransactionRecorded(ctx, queue.TransactionRecordedEvent{
        PaymentID:         paymentID,
        EventID:           event.ID,
        EventName:         event.Name,
        SellerID:          userID,
        AmountCents:       totalCents,
        TicketCount:       req.SeatCount,
        PlatformFeeCents:  fees.PlatformFeeCents,
        SellerPayoutCents: fees.SellerPayoutCents,
        Provider:          ptx.PaymentProvider,
        Status:            ptx.Status,
        RecordedAt:        now.Format(time.RFC3339),
    })

    return c.JSON(http.StatusCreated, echo.Map{
        "group_purchase_id":   groupID,
        "payment_id":          paymentID,
        "seats":               seats,
        "total_amount_cents":  totalCents,
        "platform_fee_cents":  fees.PlatformFeeCents,
        "provider_fee_cents":  fees.ProviderFeeCents,
        "seller_payout_cents": fees.SellerPayoutCents,
    })
}
