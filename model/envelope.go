package model

// Envelope is the response body every endpoint writes.
// List endpoints also set Total.
type Envelope[T any] struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
	Total   *int   `json:"total,omitempty"`
}

type Stats struct {
	Users         int64   `json:"users"`
	Events        int64   `json:"events"`
	Registrations int64   `json:"registrations"`
	Subscribers   int64   `json:"subscribers"`
	TicketsSold   int64   `json:"ticketsSold"`
	Revenue       float64 `json:"revenue"`
}
