package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres implements Service against the registration_form table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a directory service backed by the given pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Exists implements Service.
func (p *Postgres) Exists(ctx context.Context, phone string) (bool, error) {
	if p.pool == nil {
		return false, ErrNotConfigured
	}

	var found int
	err := p.pool.QueryRow(ctx,
		`SELECT 1 FROM registration_form WHERE phone_number = $1`, phone).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("directory: exists query: %w", err)
	}
	return true, nil
}

// Details implements Service.
func (p *Postgres) Details(ctx context.Context, phone string) (*Details, error) {
	if p.pool == nil {
		return &Details{Status: StatusError, Message: ErrNotConfigured.Error()}, ErrNotConfigured
	}

	var u User
	err := p.pool.QueryRow(ctx,
		`SELECT phone_number,
		        COALESCE(email, ''),
		        COALESCE(name, ''),
		        COALESCE(location, ''),
		        COALESCE(role, '')
		 FROM registration_form WHERE phone_number = $1`, phone).
		Scan(&u.PhoneNumber, &u.Email, &u.Name, &u.Location, &u.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return &Details{Status: StatusNotFound, Message: "Number is not registered"}, nil
	}
	if err != nil {
		return &Details{Status: StatusError, Message: err.Error()},
			fmt.Errorf("directory: details query: %w", err)
	}

	// A pending_ email means the web form was never completed.
	if u.Email == "" || strings.HasPrefix(u.Email, "pending_") {
		return &Details{
			Status:  StatusIncomplete,
			Message: "Registration incomplete. Please fill up the registration form.",
			Data:    &u,
		}, nil
	}

	return &Details{Status: StatusSuccess, Message: "User found", Data: &u}, nil
}

// Register implements Service.
func (p *Postgres) Register(ctx context.Context, phone, role string) (*RegisterResult, error) {
	if p.pool == nil {
		return &RegisterResult{Status: StatusError, Message: ErrNotConfigured.Error()}, ErrNotConfigured
	}

	exists, err := p.Exists(ctx, phone)
	if err != nil {
		return &RegisterResult{Status: StatusError, Message: err.Error()}, err
	}
	if exists {
		return &RegisterResult{Status: StatusExists, Message: "Phone number already exists"}, nil
	}

	// Profile fields stay null until the caller completes the web form.
	_, err = p.pool.Exec(ctx,
		`INSERT INTO registration_form (phone_number, role) VALUES ($1, $2)`, phone, role)
	if err != nil {
		return &RegisterResult{Status: StatusError, Message: err.Error()},
			fmt.Errorf("directory: register insert: %w", err)
	}

	return &RegisterResult{Status: StatusCreated, Message: "New phone number entry created"}, nil
}
