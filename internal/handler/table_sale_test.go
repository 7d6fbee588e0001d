package handler

import (
    "fmt"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/stepperslife/ticketing/internal/model"
)

func TestNewTableSeatsIssuesRequestedSeats(t *testing.T) {
    req := sellTableReq{
        TableName:         "VIP Table 1",
        SeatCount:         8,
        PricePerSeatCents: 5000,
        PaymentProvider:   "Stripe",
    }
    now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

    tickets, err := newTableSeats(2, 3, req, "TBL-1748779200000-AB2CD", model.TicketTypeVIP, "pay-123", now)
    require.NoError(t, err)
    require.Len(t, tickets, 8)

    codes := make(map[string]struct{}, len(tickets))
    for i, tk := range tickets {
        assert.Equal(t, uint64(2), tk.EventID)
        assert.Equal(t, uint64(3), tk.OwnerID)
        assert.Equal(t, uint64(3), tk.OriginalPurchaserID)
        assert.Equal(t, "TBL-1748779200000-AB2CD", tk.GroupPurchaseID)
        assert.Equal(t, "table", tk.GroupType)
        assert.Equal(t, "VIP Table 1", tk.TableName)
        assert.Equal(t, fmt.Sprintf("Seat %d", i+1), tk.SeatLabel)
        assert.Equal(t, model.TicketTypeVIP, tk.TicketType)
        assert.Equal(t, model.TicketStatusValid, tk.Status)
        assert.Equal(t, int64(5000), tk.AmountCents)
        assert.Equal(t, "stripe", tk.PaymentMethod)
        assert.Equal(t, "pay-123", tk.PaymentReference)
        assert.True(t, tk.IsClaimable)
        assert.Equal(t, now, tk.PurchasedAt)
        assert.NotEmpty(t, tk.ClaimCode)
        codes[tk.ClaimCode] = struct{}{}
    }
    assert.Len(t, codes, 8, "every seat carries its own claim code")
}

func TestNewTableSeatsSingleSeat(t *testing.T) {
    req := sellTableReq{
        TableName:         "Table 9",
        SeatCount:         1,
        PricePerSeatCents: 2500,
        PaymentProvider:   "zelle",
    }

    tickets, err := newTableSeats(5, 7, req, "TBL-1-AB2CD", model.TicketTypeGA, "pay-9", time.Now().UTC())
    require.NoError(t, err)
    require.Len(t, tickets, 1)
    assert.Equal(t, "Seat 1", tickets[0].SeatLabel)
}
