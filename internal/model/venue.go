package model

import "time"

// Venue is a bookable resource managed by admins.  Price is charged
// once per booking regardless of the slot length.
type Venue struct {
    ID        uint64    `json:"id"`         // venues.id
    Name      string    `json:"name"`       // venues.name
    Location  string    `json:"location"`   // venues.location
    Capacity  int       `json:"capacity"`   // venues.capacity
    Price     float64   `json:"price"`      // venues.price (DECIMAL(10,2))
    CreatedAt time.Time `json:"created_at"` // venues.created_at
}
