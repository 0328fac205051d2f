package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID               bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name             string          `bson:"name" json:"name"`
	Email            string          `bson:"email" json:"email"`
	PasswordHash     string          `bson:"password" json:"-"` // never expose
	Role             Role            `bson:"role" json:"role"`
	PurchasedCourses []bson.ObjectID `bson:"purchasedCourses" json:"purchasedCourses"`
	RefreshTokens    []RefreshToken  `bson:"refreshTokens,omitempty" json:"-"`
	CreatedAt        time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time       `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Owns reports whether courseID is in the denormalized owned-course set.
func (u *User) Owns(courseID bson.ObjectID) bool {
	for _, id := range u.PurchasedCourses {
		if id == courseID {
			return true
		}
	}
	return false
}

// RefreshToken is an active session, stored by fingerprint only.
type RefreshToken struct {
	Fingerprint string    `bson:"fingerprint"`
	ExpiresAt   time.Time `bson:"expiresAt"`
	CreatedAt   time.Time `bson:"createdAt"`
}

// UserSummary is the user slice embedded in purchase views.
type UserSummary struct {
	ID    bson.ObjectID `bson:"_id" json:"id"`
	Name  string        `bson:"name" json:"name"`
	Email string        `bson:"email" json:"email"`
}

// UserDetail is the admin view of a user with owned courses resolved.
type UserDetail struct {
	ID               bson.ObjectID   `bson:"_id" json:"id"`
	Name             string          `bson:"name" json:"name"`
	Email            string          `bson:"email" json:"email"`
	Role             Role            `bson:"role" json:"role"`
	PurchasedCourses []CourseSummary `bson:"purchasedCourses" json:"purchasedCourses"`
	CreatedAt        time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time       `bson:"updatedAt" json:"updatedAt"`
}
