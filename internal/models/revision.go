package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Revision is a saved historical version of a document
type Revision struct {
	ID           string    `json:"id" db:"id"`
	DocumentID   string    `json:"document_id" db:"document_id"`
	RevisionID   string    `json:"revision_id" db:"revision_id"`
	ModifiedTime time.Time `json:"modified_time" db:"modified_time"`
	Author       User      `json:"author"`
	WordCount    int       `json:"word_count" db:"word_count"`
	HasContent   bool      `json:"has_content" db:"has_content"`
	ExportURL    string    `json:"-"`
	Text         string    `json:"-"`
}

// NewRevision creates a new Revision with a generated UUID
func NewRevision(documentID, revisionID string, modifiedTime time.Time, author User) *Revision {
	return &Revision{
		ID:           uuid.New().String(),
		DocumentID:   documentID,
		RevisionID:   revisionID,
		ModifiedTime: modifiedTime,
		Author:       author,
	}
}

// Validate validates the Revision fields
func (r *Revision) Validate() error {
	if r.DocumentID == "" {
		return errors.New("document ID is required")
	}
	if r.RevisionID == "" {
		return errors.New("revision ID is required")
	}
	if r.ModifiedTime.IsZero() {
		return errors.New("modified time is required")
	}
	if r.WordCount < 0 {
		return errors.New("word count cannot be negative")
	}
	return nil
}
