package handler

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"

    "github.com/stepperslife/ticketing/internal/model"
)

func claimableTicket() model.Ticket {
    return model.Ticket{
        ID:                  10,
        OwnerID:             3,
        OriginalPurchaserID: 3,
        ClaimCode:           "code-1",
        IsClaimable:         true,
        Status:              model.TicketStatusValid,
    }
}

func TestClaimVerdictAllows(t *testing.T) {
    reason, _ := claimVerdict(claimableTicket(), "code-1", 9)
    assert.Empty(t, reason)
}

func TestClaimVerdictCodeMismatch(t *testing.T) {
    reason, _ := claimVerdict(claimableTicket(), "forged", 9)
    assert.Equal(t, claimReasonInvalidToken, reason)

    tk := claimableTicket()
    tk.ClaimCode = ""
    reason, _ = claimVerdict(tk, "", 9)
    assert.Equal(t, claimReasonInvalidToken, reason)
}

func TestClaimVerdictAlreadyOwned(t *testing.T) {
    tk := claimableTicket()
    tk.OwnerID = 9
    tk.OriginalPurchaserID = 3

    reason, message := claimVerdict(tk, "code-1", 9)
    assert.Equal(t, claimReasonAlreadyOwned, reason)
    assert.Equal(t, "you already own this ticket", message)
}

func TestClaimVerdictSingleUse(t *testing.T) {
    // After a successful claim the row is no longer claimable; a second
    // redeemer gets already_claimed.
    when := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
    tk := claimableTicket()
    tk.OwnerID = 9
    tk.IsClaimable = false
    tk.ClaimedAt = &when

    reason, _ := claimVerdict(tk, "code-1", 11)
    assert.Equal(t, claimReasonAlreadyClaimed, reason)
}

func TestClaimVerdictNotClaimable(t *testing.T) {
    tk := claimableTicket()
    tk.IsClaimable = false

    reason, _ := claimVerdict(tk, "code-1", 9)
    assert.Equal(t, claimReasonNotClaimable, reason)
}

func TestClaimVerdictSelfClaimForbidden(t *testing.T) {
    tk := claimableTicket()
    tk.OwnerID = 5 // seat moved once already, purchaser tries to grab it back

    reason, _ := claimVerdict(tk, "code-1", 3)
    assert.Equal(t, claimReasonSelfClaim, reason)
}

func TestClaimVerdictRefundedTicket(t *testing.T) {
    tk := claimableTicket()
    tk.Status = model.TicketStatusRefunded

    reason, _ := claimVerdict(tk, "code-1", 9)
    assert.Equal(t, claimReasonNotClaimable, reason)
}

func TestClaimVerdictPreviewSkipsOwnerChecks(t *testing.T) {
    // Preview passes redeemer 0: ownership checks are skipped but state
    // checks still apply.
    reason, _ := claimVerdict(claimableTicket(), "code-1", 0)
    assert.Empty(t, reason)
}
