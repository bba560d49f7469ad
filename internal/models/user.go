package models

import "time"

type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	FullName     string    `db:"full_name" json:"fullName"`
	PasswordHash string    `db:"password_hash" json:"-"`
	ProfilePic   *string   `db:"profile_pic" json:"profilePic"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

type SignupRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserSummary is the login response body.
type UserSummary struct {
	ID         string  `json:"id"`
	FullName   string  `json:"fullName"`
	Email      string  `json:"email"`
	ProfilePic *string `json:"profilePic"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, FullName: u.FullName, Email: u.Email, ProfilePic: u.ProfilePic}
}
