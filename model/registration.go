package model

import "time"

const (
	RegistrationConfirmed = "confirmed"
	RegistrationCancelled = "cancelled"
)

type Attendee struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
	Phone string `json:"phone" bson:"phone"`
}

type Registration struct {
	Id               string    `json:"_id" bson:"_id"`
	EventId          string    `json:"eventId" bson:"event_id"`
	UserId           string    `json:"userId" bson:"user_id"`
	Attendee         Attendee  `json:"attendee" bson:"attendee"`
	NumberOfTickets  int       `json:"numberOfTickets" bson:"number_of_tickets"`
	TotalPrice       float64   `json:"totalPrice" bson:"total_price"`
	TicketType       string    `json:"ticketType" bson:"ticket_type"`
	PaymentMethod    string    `json:"paymentMethod" bson:"payment_method"`
	PaymentReference string    `json:"paymentReference,omitempty" bson:"payment_reference,omitempty"`
	PaymentSignature string    `json:"paymentSignature,omitempty" bson:"payment_signature,omitempty"`
	Status           string    `json:"status" bson:"status"`
	CreatedAt        time.Time `json:"createdAt" bson:"created_at"`
}

// RegistrationRequest is the body of POST /registrations/register.
type RegistrationRequest struct {
	EventId         string   `json:"eventId"`
	Attendee        Attendee `json:"attendee"`
	NumberOfTickets int      `json:"numberOfTickets"`
	TicketType      string   `json:"ticketType"`
	PaymentMethod   string   `json:"paymentMethod"`
}

// RegistrationWithEvent is a registration joined with its event for the
// "my registrations" listing. Event is nil when the event no longer exists.
type RegistrationWithEvent struct {
	Registration
	Event      *Event `json:"event"`
	EventTitle string `json:"eventTitle"`
}

// RegistrationCheck answers "is this user registered for the event?".
type RegistrationCheck struct {
	IsRegistered bool          `json:"isRegistered"`
	Registration *Registration `json:"registration,omitempty"`
}
