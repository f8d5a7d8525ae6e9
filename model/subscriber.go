package model

import "time"

type Preferences struct {
	EventUpdates bool `json:"eventUpdates" bson:"event_updates"`
	NewEvents    bool `json:"newEvents" bson:"new_events"`
	Promotions   bool `json:"promotions" bson:"promotions"`
}

type Subscriber struct {
	Id           string      `json:"_id" bson:"_id"`
	Email        string      `json:"email" bson:"email"`
	IsActive     bool        `json:"isActive" bson:"is_active"`
	Preferences  Preferences `json:"preferences" bson:"preferences"`
	SubscribedAt time.Time   `json:"subscribedAt" bson:"subscribed_at"`
}
