package handler

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/stepperslife/ticketing/internal/model"
)

func validTicket() model.Ticket {
    return model.Ticket{ID: 1, EventID: 2, OwnerID: 3, Status: model.TicketStatusValid}
}

func upcomingEvent(start time.Time) model.Event {
    return model.Event{ID: 2, Name: "Saturday Social", EventDate: start}
}

func TestCheckinVerdictAllowsInsideWindow(t *testing.T) {
    start := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
    reason, _ := checkinVerdict(validTicket(), upcomingEvent(start), start.Add(-time.Hour))
    assert.Empty(t, reason)
}

func TestCheckinVerdictWindowBoundaryInclusive(t *testing.T) {
    start := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
    e := upcomingEvent(start)

    // Exactly 4 hours before the event is allowed.
    reason, _ := checkinVerdict(validTicket(), e, start.Add(-checkInWindow))
    assert.Empty(t, reason)

    // One second earlier is not.
    reason, _ = checkinVerdict(validTicket(), e, start.Add(-checkInWindow).Add(-time.Second))
    assert.Equal(t, checkinReasonTooEarly, reason)
}

func TestCheckinVerdictAfterEventStart(t *testing.T) {
    start := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
    reason, _ := checkinVerdict(validTicket(), upcomingEvent(start), start.Add(2*time.Hour))
    assert.Empty(t, reason)
}

func TestCheckinVerdictAlreadyCheckedIn(t *testing.T) {
    start := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
    when := start.Add(-time.Hour)
    tk := validTicket()
    tk.CheckedInAt = &when
    tk.Status = model.TicketStatusUsed

    reason, _ := checkinVerdict(tk, upcomingEvent(start), start)
    assert.Equal(t, checkinReasonAlreadyChecked, reason)
}

func TestCheckinVerdictRefundedTicket(t *testing.T) {
    start := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
    tk := validTicket()
    tk.Status = model.TicketStatusRefunded

    reason, message := checkinVerdict(tk, upcomingEvent(start), start)
    assert.Equal(t, checkinReasonNotValid, reason)
    assert.Contains(t, message, "refunded")
}

func TestCheckinVerdictCancelledEvent(t *testing.T) {
    start := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
    e := upcomingEvent(start)
    e.IsCancelled = true

    reason, _ := checkinVerdict(validTicket(), e, start)
    assert.Equal(t, checkinReasonEventCancelled, reason)
}

func TestCheckinVerdictOrderAlreadyCheckedBeforeCancelled(t *testing.T) {
    // A checked-in ticket at a later-cancelled event still reports the
    // prior admission, because that answer carries the useful metadata.
    start := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
    when := start.Add(-time.Hour)
    tk := validTicket()
    tk.CheckedInAt = &when
    tk.Status = model.TicketStatusUsed
    e := upcomingEvent(start)
    e.IsCancelled = true

    reason, _ := checkinVerdict(tk, e, start)
    assert.Equal(t, checkinReasonAlreadyChecked, reason)
}

func TestCheckinSnapshotReportsPriorAdmission(t *testing.T) {
    start := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
    when := start.Add(-time.Hour)
    tk := validTicket()
    tk.TableName = "Table 3"
    tk.SeatLabel = "Seat 4"
    tk.TicketType = model.TicketTypeVIP
    tk.CheckedInAt = &when
    tk.CheckedInBy = 99
    tk.CheckInMethod = model.CheckInMethodManual

    part := checkinSnapshot(tk, upcomingEvent(start))
    assert.Equal(t, tk.ID, part.TicketID)
    assert.Equal(t, "Saturday Social", part.EventName)
    assert.Equal(t, "Table 3", part.TableName)
    assert.Equal(t, "Seat 4", part.SeatLabel)
    require.NotNil(t, part.CheckedInAt)
    assert.Equal(t, when, *part.CheckedInAt)
    assert.Equal(t, uint64(99), part.CheckedInBy)
    assert.Equal(t, model.CheckInMethodManual, part.Method)
}

func TestAdmitAccess(t *testing.T) {
    e := model.Event{ID: 2, OrganizerID: 10}

    // Staff run the door anywhere; organizers only at their own events.
    assert.True(t, admitAccess(model.RoleStaff, e, 55))
    assert.True(t, admitAccess(model.RoleOrganizer, e, 10))
    assert.False(t, admitAccess(model.RoleOrganizer, e, 11))
}
