package models

import (
	"fmt"
	"strings"
	"time"
)

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     Phone     `json:"phone"`
	Email     Email     `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate normalizes and checks all fields. Phone and email go through
// the typed constructors so malformed values fail before any write.
func (c *Customer) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return NewValidationError("name", "name is required")
	}
	if len(c.Name) > MaxCustomerNameLength {
		return NewValidationError("name",
			fmt.Sprintf("name cannot exceed %d characters", MaxCustomerNameLength))
	}

	phone, err := ParsePhone(string(c.Phone))
	if err != nil {
		return err
	}
	c.Phone = phone

	email, err := ParseEmail(string(c.Email))
	if err != nil {
		return err
	}
	c.Email = email

	return nil
}
