package models

import (
	"errors"
	"time"
)

// User identifies a person as the Google APIs report them.
type User struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

const UnknownUser = "Unknown User"

// Key returns the identity used to group statistics. Display names are
// preferred since comment authors rarely carry an email address.
func (u User) Key() string {
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return UnknownUser
}

// Document holds the metadata of the analyzed Google Doc
type Document struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	CreatedTime  time.Time `json:"created_time" yaml:"created_time"`
	ModifiedTime time.Time `json:"modified_time" yaml:"modified_time"`
	Owner        User      `json:"owner" yaml:"owner"`
	LastModifier User      `json:"last_modifier" yaml:"last_modifier"`
}

// Validate validates the Document fields
func (d *Document) Validate() error {
	if d.ID == "" {
		return errors.New("document ID is required")
	}
	if !d.ModifiedTime.IsZero() && !d.CreatedTime.IsZero() && d.ModifiedTime.Before(d.CreatedTime) {
		return errors.New("modified time cannot be before created time")
	}
	return nil
}
