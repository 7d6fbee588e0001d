package handler

import (
    "database/sql"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/stepperslife/ticketing/internal/ledger"
    "github.com/stepperslife/ticketing/internal/model"
    "github.com/stepperslife/ticketing/internal/queue"
    "github.com/stepperslife/ticketing/internal/repository"
    queue_publisher "github.com/stepperslife/ticketing/internal/service"
)

// TransactionHandler records payments, applies status transitions from
// payment providers, and serves the seller's money views: transaction
// history, balance, analytics and payout requests.
type TransactionHandler struct {
    DB              *sql.DB
    EventRepo       *repository.EventRepo
    UserRepo        *repository.UserRepo
    TransactionRepo *repository.TransactionRepo
    BalanceRepo     *repository.BalanceRepo
}

// NewTransactionHandler constructs a TransactionHandler.  All
// dependencies must be non-nil.
func NewTransactionHandler(db *sql.DB, eventRepo *repository.EventRepo, userRepo *repository.UserRepo, txRepo *repository.TransactionRepo, balanceRepo *repository.BalanceRepo) *TransactionHandler {
    if db == nil || eventRepo == nil || userRepo == nil || txRepo == nil || balanceRepo == nil {
        panic("nil dependency passed to NewTransactionHandler")
    }
    return &TransactionHandler{DB: db, EventRepo: eventRepo, UserRepo: userRepo, TransactionRepo: txRepo, BalanceRepo: balanceRepo}
}

type recordTxReq struct {
    EventID         uint64 `json:"event_id"`
    TicketID        uint64 `json:"ticket_id"`
    BuyerEmail      string `json:"buyer_email"`
    AmountCents     int64  `json:"amount_cents"`
    TicketCount     int    `json:"ticket_count"`
    PaymentProvider string `json:"payment_provider"`
    PaymentID       string `json:"payment_id"`
}

type txResp struct {
    ID                uint64     `json:"id"`
    EventID           uint64     `json:"event_id"`
    EventName         string     `json:"event_name"`
    AmountCents       int64      `json:"amount_cents"`
    TicketCount       int        `json:"ticket_count"`
    PlatformFeeCents  int64      `json:"platform_fee_cents"`
    SellerPayoutCents int64      `json:"seller_payout_cents"`
    Status            string     `json:"status"`
    PaymentProvider   string     `json:"payment_provider"`
    PaymentID         string     `json:"payment_id"`
    RefundAmountCents int64      `json:"refund_amount_cents,omitempty"`
    RefundedAt        *time.Time `json:"refunded_at,omitempty"`
    CreatedAt         time.Time  `json:"created_at"`
}

func toTxResp(t model.PlatformTransaction) txResp {
    return txResp{
        ID:                t.ID,
        EventID:           t.EventID,
        EventName:         t.EventName,
        AmountCents:       t.AmountCents,
        TicketCount:       t.TicketCount,
        PlatformFeeCents:  t.PlatformFeeCents,
        SellerPayoutCents: t.SellerPayoutCents,
        Status:            t.Status,
        PaymentProvider:   t.PaymentProvider,
        PaymentID:         t.PaymentID,
        RefundAmountCents: t.RefundAmountCents,
        RefundedAt:        t.RefundedAt,
        CreatedAt:         t.CreatedAt,
    }
}

// Record handles POST /v1/transactions.  The authenticated organizer
// records a payment for their own event; fees are computed here, once,
// and the payout lands on the pending balance.
func (h *TransactionHandler) Record(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req recordTxReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.BuyerEmail = strings.ToLower(strings.TrimSpace(req.BuyerEmail))
    switch {
    case req.EventID == 0:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id is required"})
    case req.AmountCents <= 0:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount_cents must be positive"})
    case req.TicketCount < 1:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket_count must be at least 1"})
    case !ledger.KnownProvider(req.PaymentProvider):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown payment provider"})
    }

    ctx := c.Request().Context()
    event, err := h.EventRepo.GetByID(ctx, req.EventID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if event.OrganizerID != userID {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not your event"})
    }

    var buyerID uint64
    if req.BuyerEmail != "" {
        buyer, err := h.UserRepo.GetByEmail(ctx, req.BuyerEmail)
        if err != nil && !errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
        }
        buyerID = buyer.ID
    }

    fees, err := ledger.Calculate(req.AmountCents, req.TicketCount, req.PaymentProvider)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown payment provider"})
    }
    paymentID := strings.TrimSpace(req.PaymentID)
    if paymentID == "" {
        paymentID = uuid.NewString()
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

    ptx := model.PlatformTransaction{
        EventID:           event.ID,
        EventName:         event.Name,
        TicketID:          req.TicketID,
        SellerID:          userID,
        BuyerID:           buyerID,
        BuyerEmail:        req.BuyerEmail,
        AmountCents:       req.AmountCents,
        TicketCount:       req.TicketCount,
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

    _ = queue_publisher.PublishTransactionRecorded(ctx, queue.TransactionRecordedEvent{
        PaymentID:         paymentID,
        EventID:           event.ID,
        EventName:         event.Name,
        SellerID:          userID,
        AmountCents:       req.AmountCents,
        TicketCount:       req.TicketCount,
        PlatformFeeCents:  fees.PlatformFeeCents,
        SellerPayoutCents: fees.SellerPayoutCents,
        Provider:          ptx.PaymentProvider,
        Status:            ptx.Status,
        RecordedAt:        time.Now().UTC().Format(time.RFC3339),
    })

    resp := toTxResp(ptx)
    resp.CreatedAt = time.Now().UTC()
    return c.JSON(http.StatusCreated, resp)
}

type txStatusReq struct {
    Status string `json:"status"`
}

// UpdateStatus handles POST /v1/transactions/:paymentId/status.
// pending may complete or refund; completed may refund; nothing else
// moves.  The matching balance shift commits with the status change.
func (h *TransactionHandler) UpdateStatus(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    paymentID := strings.TrimSpace(c.Param("paymentId"))
    if paymentID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment id is required"})
    }
    var req txStatusReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    status := strings.ToLower(strings.TrimSpace(req.Status))
    if status != model.TxStatusCompleted && status != model.TxStatusRefunded {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be completed or refunded"})
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

    ptx, err := h.TransactionRepo.GetByPaymentIDTx(ctx, tx, paymentID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "transaction not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if ptx.SellerID != userID {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not your transaction"})
    }

    valid := (ptx.Status == model.TxStatusPending && status == model.TxStatusCompleted) ||
        (ptx.Status == model.TxStatusPending && status == model.TxStatusRefunded) ||
        (ptx.Status == model.TxStatusCompleted && status == model.TxStatusRefunded)
    if !valid {
        return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
    }

    balance, err := h.BalanceRepo.GetForUpdateTx(ctx, tx, ptx.SellerID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load balance failed"})
    }
    now := time.Now().UTC()
    if status == model.TxStatusCompleted {
        ledger.ApplyCompleted(&balance, ptx.SellerPayoutCents)
        if err := h.TransactionRepo.UpdateStatusTx(ctx, tx, ptx.ID, status, 0, nil); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
        }
    } else {
        ledger.ApplyRefunded(&balance, ptx.SellerPayoutCents, ptx.Status == model.TxStatusPending)
        if err := h.TransactionRepo.UpdateStatusTx(ctx, tx, ptx.ID, status, ptx.AmountCents, &now); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
        }
    }
    if err := h.BalanceRepo.SaveTx(ctx, tx, &balance); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save balance failed"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    _ = queue_publisher.PublishTransactionRecorded(ctx, queue.TransactionRecordedEvent{
        PaymentID:         ptx.PaymentID,
        EventID:           ptx.EventID,
        EventName:         ptx.EventName,
        SellerID:          ptx.SellerID,
        AmountCents:       ptx.AmountCents,
        TicketCount:       ptx.TicketCount,
        PlatformFeeCents:  ptx.PlatformFeeCents,
        SellerPayoutCents: ptx.SellerPayoutCents,
        Provider:          ptx.PaymentProvider,
        Status:            status,
        RecordedAt:        now.Format(time.RFC3339),
    })

    return c.JSON(http.StatusOK, echo.Map{"payment_id": paymentID, "status": status})
}

// ListMine handles GET /v1/sellers/me/transactions with optional
// ?status= and ?limit= query filters.
func (h *TransactionHandler) ListMine(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    status := strings.ToLower(strings.TrimSpace(c.QueryParam("status")))
    switch status {
    case "", model.TxStatusPending, model.TxStatusCompleted, model.TxStatusRefunded:
    default:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status filter"})
    }
    limit := 0
    if raw := c.QueryParam("limit"); raw != "" {
        n, err := strconv.Atoi(raw)
        if err != nil || n < 1 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
        }
        limit = n
    }
    txs, err := h.TransactionRepo.ListBySeller(c.Request().Context(), userID, status, limit)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list transactions failed"})
    }
    out := make([]txResp, 0, len(txs))
    for _, t := range txs {
        out = append(out, toTxResp(t))
    }
    return c.JSON(http.StatusOK, echo.Map{"transactions": out})
}

// Balance handles GET /v1/sellers/me/balance.
func (h *TransactionHandler) Balance(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    b, err := h.BalanceRepo.Get(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load balance failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "available_cents":      b.AvailableCents,
        "pending_cents":        b.PendingCents,
        "total_earnings_cents": b.TotalEarningsCents,
        "total_payouts_cents":  b.TotalPayoutsCents,
        "last_payout_at":       b.LastPayoutAt,
    })
}

// Analytics handles GET /v1/sellers/me/analytics.
func (h *TransactionHandler) Analytics(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    a, err := h.TransactionRepo.AnalyticsBySeller(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "analytics query failed"})
    }
    return c.JSON(http.StatusOK, a)
}

type payoutReq struct {
    AmountCents   int64  `json:"amount_cents"`
    AccountName   string `json:"account_name"`
    AccountNumber string `json:"account_number"`
    SortCode      string `json:"sort_code"`
}

// RequestPayout handles POST /v1/payouts.  The amount leaves the
// available balance the moment the request is accepted.
func (h *TransactionHandler) RequestPayout(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req payoutReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.AccountName = strings.TrimSpace(req.AccountName)
    req.AccountNumber = strings.TrimSpace(req.AccountNumber)
    req.SortCode = strings.TrimSpace(req.SortCode)
    if req.AmountCents <= 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount_cents must be positive"})
    }
    if req.AccountName == "" || req.AccountNumber == "" || req.SortCode == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "bank details required"})
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

    balance, err := h.BalanceRepo.GetForUpdateTx(ctx, tx, userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load balance failed"})
    }
    now := time.Now().UTC()
    if err := ledger.ApplyPayout(&balance, req.AmountCents, now); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "insufficient available balance"})
    }
    p := model.PayoutRequest{
        ID:            uuid.NewString(),
        SellerID:      userID,
        AmountCents:   req.AmountCents,
        Status:        model.PayoutStatusPending,
        AccountName:   req.AccountName,
        AccountNumber: req.AccountNumber,
        SortCode:      req.SortCode,
        RequestedAt:   now,
    }
    if err := h.BalanceRepo.CreatePayoutTx(ctx, tx, &p); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create payout failed"})
    }
    if err := h.BalanceRepo.SaveTx(ctx, tx, &balance); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save balance failed"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    return c.JSON(http.StatusCreated, echo.Map{
        "payout_id":       p.ID,
        "amount_cents":    p.AmountCents,
        "status":          p.Status,
        "requested_at":    p.RequestedAt,
        "available_cents": balance.AvailableCents,
    })
}

// ListPayouts handles GET /v1/payouts and returns the caller's payout
// requests.
func (h *TransactionHandler) ListPayouts(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    payouts, err := h.BalanceRepo.ListPayoutsBySeller(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list payouts failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"payouts": payouts})
}
