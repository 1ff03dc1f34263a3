// Package directory looks up and registers callers by phone number.
// The backing table is the registration form the web signup flow writes to,
// so a caller may exist with an incomplete profile (phone captured during a
// call, email and name filled in later).
package directory

import (
	"context"
	"errors"
)

// Sentinel errors for the directory package.
var (
	// ErrNotConfigured indicates no backing database was provided.
	ErrNotConfigured = errors.New("directory: not configured")
)

// Lookup statuses for Details.
const (
	StatusNotFound   = "not_found"
	StatusIncomplete = "incomplete"
	StatusSuccess    = "success"
	StatusError      = "error"
)

// Registration statuses for Register.
const (
	StatusExists  = "exists"
	StatusCreated = "created"
)

// User is one row of the registration form.
type User struct {
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Role        string `json:"role"`
}

// Details is the result of a profile lookup.
type Details struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    *User  `json:"data"`
}

// RegisterResult is the result of a role registration.
type RegisterResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Service is the caller directory.
type Service interface {
	// Exists reports whether the phone number has a registration row.
	Exists(ctx context.Context, phone string) (bool, error)

	// Details returns the caller's profile with a lookup status.
	// A row without a usable email is reported as incomplete.
	Details(ctx context.Context, phone string) (*Details, error)

	// Register creates a registration row holding only phone and role.
	// Registering an already known number reports StatusExists.
	Register(ctx context.Context, phone, role string) (*RegisterResult, error)
}
