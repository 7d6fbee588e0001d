package ledger

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/stepperslife/ticketing/internal/model"
)

func TestCalculateStripeTwoTickets(t *testing.T) {
    // $100.00 for 2 tickets via stripe: platform 2 × $1.50 = $3.00,
    // provider 2.9% + $0.30 = $3.20, payout $93.80.
    fees, err := Calculate(10000, 2, model.ProviderStripe)
    require.NoError(t, err)

    assert.Equal(t, int64(300), fees.PlatformFeeCents)
    assert.Equal(t, int64(320), fees.ProviderFeeCents)
    assert.Equal(t, int64(9380), fees.SellerPayoutCents)
}

func TestCalculatePerProvider(t *testing.T) {
    cases := []struct {
        provider string
        fee      int64
    }{
        {model.ProviderStripe, 320}, // 2.9% of $100 + $0.30
        {model.ProviderSquare, 270}, // 2.6% of $100 + $0.10
        {model.ProviderPayPal, 338}, // 2.89% of $100 + $0.49
        {model.ProviderZelle, 0},
    }
    for _, tc := range cases {
        fees, err := Calculate(10000, 1, tc.provider)
        require.NoError(t, err, tc.provider)
        assert.Equal(t, tc.fee, fees.ProviderFeeCents, tc.provider)
        assert.Equal(t, int64(150), fees.PlatformFeeCents, tc.provider)
        assert.Equal(t, 10000-150-tc.fee, fees.SellerPayoutCents, tc.provider)
    }
}

func TestCalculateProviderCaseInsensitive(t *testing.T) {
    a, err := Calculate(5000, 1, "Stripe")
    require.NoError(t, err)
    b, err := Calculate(5000, 1, "stripe")
    require.NoError(t, err)
    assert.Equal(t, b, a)
}

func TestCalculateUnknownProvider(t *testing.T) {
    _, err := Calculate(10000, 1, "venmo")
    assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestCalculateRoundsProviderFee(t *testing.T) {
    // 2.9% of $3.33 is 9.657¢; rounds to 10¢ + 30¢ fixed.
    fees, err := Calculate(333, 1, model.ProviderStripe)
    require.NoError(t, err)
    assert.Equal(t, int64(40), fees.ProviderFeeCents)
}

func TestCalculatePayoutNeverNegative(t *testing.T) {
    // $1.00 for one ticket via stripe: fees exceed the amount.
    fees, err := Calculate(100, 1, model.ProviderStripe)
    require.NoError(t, err)
    assert.Equal(t, int64(0), fees.SellerPayoutCents)
}

func TestKnownProvider(t *testing.T) {
    assert.True(t, KnownProvider("zelle"))
    assert.True(t, KnownProvider("PAYPAL"))
    assert.False(t, KnownProvider("cash"))
}
