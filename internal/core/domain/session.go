package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

type User struct {
	ID        int64
	Name      string
	Lastname  string
	Email     string
	Telephone string
}

func (u User) FullName() string {
	return strings.TrimSpace(u.Name + " " + u.Lastname)
}

// A Session pairs the bearer token with the user it was issued for.
type Session struct {
	Token string
	User  User
}

type Credentials struct {
	Email    string
	Password string
}

func (c Credentials) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Email) == "" {
		problems = append(problems, "email is required")
	}
	if c.Password == "" {
		problems = append(problems, "password is required")
	}
	if len(problems) != 0 {
		return NewValidationError(problems...)
	}
	return nil
}

type Registration struct {
	Name            string
	Lastname        string
	Email           string
	Telephone       string
	Password        string
	ConfirmPassword string
}

func (r Registration) Validate() error {
	var problems []string

	required := []struct{ field, value string }{
		{"name", r.Name},
		{"lastname", r.Lastname},
		{"email", r.Email},
		{"telephone", r.Telephone},
		{"password", r.Password},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			problems = append(problems, f.field+" is required")
		}
	}

	if r.Email != "" {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			problems = append(problems, fmt.Sprintf("email %q is malformed", r.Email))
		}
	}

	if r.Password != r.ConfirmPassword {
		problems = append(problems, "passwords do not match")
	}

	if len(problems) != 0 {
		return NewValidationError(problems...)
	}
	return nil
}

type Dashboard struct {
	User  User
	Cart  Totals
	Lines []CartLine
}

type ActivityType string

const (
	ActivityLineAdded      ActivityType = "line_added"
	ActivityQuantitySet    ActivityType = "quantity_set"
	ActivityLineRemoved    ActivityType = "line_removed"
	ActivityCartCleared    ActivityType = "cart_cleared"
	ActivitySessionStarted ActivityType = "session_started"
	ActivitySessionEnded   ActivityType = "session_ended"
)

// An ActivityEvent describes one cart or session change of the local client.
type ActivityEvent struct {
	Type        ActivityType
	Username    string
	ProductID   int64
	ProductName string
	Quantity    int
	OccurredAt  time.Time
}
