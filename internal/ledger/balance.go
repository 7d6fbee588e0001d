package ledger

import (
    "errors"
    "time"

    "github.com/stepperslife/ticketing/internal/model"
)

// ErrInsufficientAvailable is returned when a payout request exceeds the
// seller's available balance.
var ErrInsufficientAvailable = errors.New("insufficient available balance")

// The Apply* functions below mutate a SellerBalance in memory; the
// repository layer persists the result in the same database transaction
// that records the triggering event.  Balances are clamped at zero rather
// than allowed to go negative, matching how the ledger treats a refund of
// funds that were already withdrawn.

// ApplyRecorded credits a freshly recorded (still pending) payment: the
// seller payout lands on the pending balance and counts toward lifetime
// earnings immediately.
func ApplyRecorded(b *model.SellerBalance, payoutCents int64) {
    b.PendingCents += payoutCents
    b.TotalEarningsCents += payoutCents
}

// ApplyCompleted settles a previously pending payment, moving its payout
// from pending to available.  Lifetime earnings are untouched; they were
// counted when the payment was recorded.
func ApplyCompleted(b *model.SellerBalance, payoutCents int64) {
    b.PendingCents = clampZero(b.PendingCents - payoutCents)
    b.AvailableCents += payoutCents
}

// ApplyRefunded reverses a payment's payout.  Funds come off pending when
// the payment never settled, off available otherwise.  Lifetime earnings
// are preserved so reporting still reflects gross history.
func ApplyRefunded(b *model.SellerBalance, payoutCents int64, wasPending bool) {
    if wasPending {
        b.PendingCents = clampZero(b.PendingCents - payoutCents)
        return
    }
    b.AvailableCents = clampZero(b.AvailableCents - payoutCents)
}

// ApplyPayout deducts a requested withdrawal from the available balance
// and records it against lifetime payouts.  It fails without mutating the
// balance when the available funds do not cover the request.
func ApplyPayout(b *model.SellerBalance, amountCents int64, now time.Time) error {
    if amountCents <= 0 || amountCents > b.AvailableCents {
        return ErrInsufficientAvailable
    }
    b.AvailableCents -= amountCents
    b.TotalPayoutsCents += amountCents
    t := now.UTC()
    b.LastPayoutAt = &t
    return nil
}

func clampZero(v int64) int64 {
    if v < 0 {
        return 0
    }
    return v
}
