package ledger

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/stepperslife/ticketing/internal/model"
)

func TestRecordedThenCompleted(t *testing.T) {
    b := &model.SellerBalance{}

    ApplyRecorded(b, 9380)
    assert.Equal(t, int64(9380), b.PendingCents)
    assert.Equal(t, int64(0), b.AvailableCents)
    assert.Equal(t, int64(9380), b.TotalEarningsCents)

    ApplyCompleted(b, 9380)
    assert.Equal(t, int64(0), b.PendingCents)
    assert.Equal(t, int64(9380), b.AvailableCents)
    // Earnings were counted at record time and must not double.
    assert.Equal(t, int64(9380), b.TotalEarningsCents)
}

func TestRefundFromAvailable(t *testing.T) {
    b := &model.SellerBalance{AvailableCents: 5000, TotalEarningsCents: 5000}

    ApplyRefunded(b, 2000, false)
    assert.Equal(t, int64(3000), b.AvailableCents)
    assert.Equal(t, int64(5000), b.TotalEarningsCents)
}

func TestRefundFromPending(t *testing.T) {
    b := &model.SellerBalance{PendingCents: 2000, TotalEarningsCents: 2000}

    ApplyRefunded(b, 2000, true)
    assert.Equal(t, int64(0), b.PendingCents)
}

func TestRefundClampsAtZero(t *testing.T) {
    // Refund of funds already withdrawn: the balance floors at zero
    // instead of going negative.
    b := &model.SellerBalance{AvailableCents: 500}

    ApplyRefunded(b, 2000, false)
    assert.Equal(t, int64(0), b.AvailableCents)
}

func TestPayoutDeductsAvailable(t *testing.T) {
    now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
    b := &model.SellerBalance{AvailableCents: 9380}

    err := ApplyPayout(b, 9000, now)
    require.NoError(t, err)
    assert.Equal(t, int64(380), b.AvailableCents)
    assert.Equal(t, int64(9000), b.TotalPayoutsCents)
    require.NotNil(t, b.LastPayoutAt)
    assert.Equal(t, now, *b.LastPayoutAt)
}

func TestPayoutInsufficientFunds(t *testing.T) {
    b := &model.SellerBalance{AvailableCents: 100}

    err := ApplyPayout(b, 200, time.Now())
    assert.ErrorIs(t, err, ErrInsufficientAvailable)
    // Balance is untouched on failure.
    assert.Equal(t, int64(100), b.AvailableCents)
    assert.Equal(t, int64(0), b.TotalPayoutsCents)
}

func TestPayoutRejectsNonPositiveAmount(t *testing.T) {
    b := &model.SellerBalance{AvailableCents: 100}

    assert.ErrorIs(t, ApplyPayout(b, 0, time.Now()), ErrInsufficientAvailable)
    assert.ErrorIs(t, ApplyPayout(b, -5, time.Now()), ErrInsufficientAvailable)
}
