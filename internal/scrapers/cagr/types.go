package cagr

import "errors"

type RoomId = string
type StudentId = string

// Room is a course room listed in the forum's room search.
type Room struct {
	Id   RoomId
	Name string
}

// ErrAuth is returned when the single sign-on portal rejects the credentials.
// It deliberately carries no detail about which field was wrong.
var ErrAuth = errors.New("cagr: authentication failed")

// ErrSessionExpired is returned when a page that should be behind the login
// comes back as the single sign-on login form instead.
var ErrSessionExpired = errors.New("cagr: session expired")
