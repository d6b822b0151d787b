package domain

import "time"

// User holds the subset of the user record this service touches. The push
// token is a single mutable attribute, last-write-wins: concurrent
// registration from two devices leaves only the most recent token reachable.
type User struct {
	UserID            string     `json:"id" dynamodbav:"user_id"`
	Email             string     `json:"email,omitempty" dynamodbav:"email"`
	FCMToken          string     `json:"-" dynamodbav:"fcm_token"`
	FCMTokenUpdatedAt *time.Time `json:"-" dynamodbav:"fcm_token_updated_at"`
	CreatedAt         time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt         time.Time  `json:"updated" dynamodbav:"updated_at"`
}
