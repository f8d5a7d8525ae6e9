package model

import "time"

type Organizer struct {
	Name   string `json:"name" bson:"name"`
	Email  string `json:"email" bson:"email"`
	Avatar string `json:"avatar,omitempty" bson:"avatar,omitempty"`
}

type Event struct {
	Id          string    `json:"_id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Category    string    `json:"category" bson:"category"`
	Type        string    `json:"type" bson:"type"`
	Date        string    `json:"date" bson:"date"`
	Time        string    `json:"time" bson:"time"`
	Location    string    `json:"location" bson:"location"`
	Venue       string    `json:"venue" bson:"venue"`
	Price       float64   `json:"price" bson:"price"`
	Capacity    int       `json:"capacity" bson:"capacity"`
	Attendees   int       `json:"attendees" bson:"attendees"`
	Tags        []string  `json:"tags" bson:"tags"`
	Organizer   Organizer `json:"organizer" bson:"organizer"`
	OrganizerId string    `json:"organizerId" bson:"organizer_id"`
	Rating      float64   `json:"rating" bson:"rating"`
	Reviews     int       `json:"reviews" bson:"reviews"`
	Image       string    `json:"image" bson:"image"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

// Remaining returns the number of tickets still available.
func (e Event) Remaining() int {
	return e.Capacity - e.Attendees
}

// EventQuery narrows an event listing. Zero values mean "no constraint".
type EventQuery struct {
	Search   string
	Category string
	Type     string
	Page     int
	Limit    int
}
