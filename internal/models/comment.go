package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	ReplyActionResolve = "resolve"
	ReplyActionReopen  = "reopen"
)

// Reply is an answer inside a comment thread. Action is set when the reply
// resolved or reopened the thread.
type Reply struct {
	Author      User      `json:"author"`
	CreatedTime time.Time `json:"created_time"`
	Action      string    `json:"action,omitempty"`
}

// Comment is a comment thread anchored in the document
type Comment struct {
	ID           string    `json:"id" db:"id"`
	DocumentID   string    `json:"document_id" db:"document_id"`
	CommentID    string    `json:"comment_id" db:"comment_id"`
	Author       User      `json:"author"`
	CreatedTime  time.Time `json:"created_time" db:"created_time"`
	ModifiedTime time.Time `json:"modified_time" db:"modified_time"`
	Resolved     bool      `json:"resolved" db:"resolved"`
	Replies      []Reply   `json:"replies"`
}

// NewComment creates a new Comment with a generated UUID
func NewComment(documentID, commentID string, author User, createdTime time.Time) *Comment {
	return &Comment{
		ID:          uuid.New().String(),
		DocumentID:  documentID,
		CommentID:   commentID,
		Author:      author,
		CreatedTime: createdTime,
	}
}

// ReplyCount returns the number of replies in the thread
func (c *Comment) ReplyCount() int {
	return len(c.Replies)
}

// Resolver returns who closed the thread: the author of the last reply that
// resolved it, or the comment author when the API recorded no such reply.
func (c *Comment) Resolver() User {
	for i := len(c.Replies) - 1; i >= 0; i-- {
		if c.Replies[i].Action == ReplyActionResolve {
			return c.Replies[i].Author
		}
	}
	return c.Author
}

// ResolvedTime returns when the thread was resolved, falling back to the last
// modification time.
func (c *Comment) ResolvedTime() time.Time {
	for i := len(c.Replies) - 1; i >= 0; i-- {
		if c.Replies[i].Action == ReplyActionResolve && !c.Replies[i].CreatedTime.IsZero() {
			return c.Replies[i].CreatedTime
		}
	}
	if !c.ModifiedTime.IsZero() {
		return c.ModifiedTime
	}
	return c.CreatedTime
}

// Validate validates the Comment fields
func (c *Comment) Validate() error {
	if c.DocumentID == "" {
		return errors.New("document ID is required")
	}
	if c.CommentID == "" {
		return errors.New("comment ID is required")
	}
	if c.CreatedTime.IsZero() {
		return errors.New("created time is required")
	}
	return nil
}
