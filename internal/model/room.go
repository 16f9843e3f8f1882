package model

// Room describes a single guest room of the hotel.  Identity fields never
// change after the topology is built; only Occupied moves between true
// and false as bookings are made, cancelled or the hotel is reset.
//
// Fields:
//  Number   – unique room number (floor*100+position, 1000+position on floor 10).
//  Floor    – floor the room is on (1..10).
//  Position – position on the floor counted from the lift/stairs (1-based).
//  Occupied – whether the room is currently booked.
type Room struct {
    Number   int  `json:"number"`
    Floor    int  `json:"floor"`
    Position int  `json:"position"`
    Occupied bool `json:"occupied"`
}

// Placement tells whether an allocation came from one floor or several.
type Placement string

const (
    PlacementSingleFloor Placement = "single-floor"
    PlacementCrossFloor  Placement = "cross-floor"
)

// FloorStats summarises the free capacity of one floor.
type FloorStats struct {
    Floor int `json:"floor"`
    Total int `json:"total"`
    Free  int `json:"free"`
}

// OccupancyStats summarises the whole hotel.
type OccupancyStats struct {
    Total    int          `json:"total"`
    Occupied int          `json:"occupied"`
    Free     int          `json:"free"`
    Floors   []FloorStats `json:"floors"`
}
