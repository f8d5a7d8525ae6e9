package model

import "time"

const (
	RoleUser      = "user"
	RoleOrganizer = "organizer"
	RoleAdmin     = "admin"
)

type UserData struct {
	Id             string    `json:"_id" bson:"_id"`
	Name           string    `json:"name" bson:"name"`
	Email          string    `json:"email" bson:"email"`
	HashedPassword string    `json:"-" bson:"password_hash"`
	Role           string    `json:"role" bson:"role"`
	CreatedAt      time.Time `json:"createdAt" bson:"created_at"`
}

func IsValidRole(role string) bool {
	switch role {
	case RoleUser, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}
