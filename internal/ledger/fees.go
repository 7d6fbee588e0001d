package ledger // package ledger implements the platform fee schedule and seller balance math

import (
    "errors"
    "strings"

    "github.com/shopspring/decimal"

    "github.com/stepperslife/ticketing/internal/model"
)

// PlatformFeePerTicketCents is the flat platform fee charged per admitted
// ticket, independent of ticket price or payment provider.
const PlatformFeePerTicketCents int64 = 150

// ErrUnknownProvider is returned when a transaction names a payment
// provider the fee schedule does not cover.
var ErrUnknownProvider = errors.New("unknown payment provider")

// providerRate holds the percentage and fixed components of a provider's
// processing fee.  Percent is expressed as a decimal fraction (0.029 for
// 2.9%) so the arithmetic stays exact until the final rounding.
type providerRate struct {
    percent    decimal.Decimal
    fixedCents decimal.Decimal
}

// Provider fee schedule.  Zelle transfers cost nothing because they move
// money directly between bank accounts.
var providerRates = map[string]providerRate{
    model.ProviderStripe: {decimal.NewFromFloat(0.029), decimal.NewFromInt(30)},
    model.ProviderSquare: {decimal.NewFromFloat(0.026), decimal.NewFromInt(10)},
    model.ProviderPayPal: {decimal.NewFromFloat(0.0289), decimal.NewFromInt(49)},
    model.ProviderZelle:  {decimal.Zero, decimal.Zero},
}

// Fees is the outcome of running one payment through the fee schedule.
// All amounts are in cents.  SellerPayout is what lands on the seller's
// balance: gross amount minus both fee components.
type Fees struct {
    PlatformFeeCents  int64
    ProviderFeeCents  int64
    SellerPayoutCents int64
}

// Calculate computes the platform fee, provider fee and seller payout for
// a payment of amountCents covering ticketCount tickets through the named
// provider.  The provider fee rounds half up to the nearest cent.  A
// payout can never go below zero even when fees exceed a tiny amount.
func Calculate(amountCents int64, ticketCount int, provider string) (Fees, error) {
    rate, ok := providerRates[strings.ToLower(provider)]
    if !ok {
        return Fees{}, ErrUnknownProvider
    }
    platform := PlatformFeePerTicketCents * int64(ticketCount)
    amount := decimal.NewFromInt(amountCents)
    providerFee := amount.Mul(rate.percent).Add(rate.fixedCents).Round(0).IntPart()
    payout := amountCents - platform - providerFee
    if payout < 0 {
        payout = 0
    }
    return Fees{
        PlatformFeeCents:  platform,
        ProviderFeeCents:  providerFee,
        SellerPayoutCents: payout,
    }, nil
}

// KnownProvider reports whether the fee schedule covers the given
// provider name (case‑insensitive).
func KnownProvider(provider string) bool {
    _, ok := providerRates[strings.ToLower(provider)]
    return ok
}
