package model

import "time"

// Event represents a row in the `events` table.  An event is created
// and owned by an organizer; tickets and tables are always sold
// against a specific event.  All monetary values are stored in cents
// and all timestamps in UTC.
//
// Fields:
//  ID           – primary key identifier.
//  OrganizerID  – user who created the event and may sell tables for it.
//  Name         – display name of the event.
//  Description  – free-form description.
//  Location     – venue or address string.
//  EventDate    – scheduled start of the event.
//  PriceCents   – default single-ticket price in cents.
//  TotalTickets – capacity advertised for the event.
//  IsCancelled  – true once the organizer cancels; blocks check-ins.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Event struct {
    ID           uint64    // events.id
    OrganizerID  uint64    // events.organizer_id
    Name         string    // events.name
    Description  string    // events.description
    Location     string    // events.location
    EventDate    time.Time // events.event_date
    PriceCents   int64     // events.price_cents
    TotalTickets int       // events.total_tickets
    IsCancelled  bool      // events.is_cancelled
    CreatedAt    time.Time // events.created_at
    UpdatedAt    time.Time // events.updated_at
}
