package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// UserStat represents the aggregated contribution of one user to a document
type UserStat struct {
	ID               string     `json:"id" db:"id" yaml:"-"`
	DocumentID       string     `json:"document_id" db:"document_id" yaml:"-"`
	User             User       `json:"user" yaml:"user"`
	Revisions        int        `json:"revisions" db:"revisions" yaml:"revisions"`
	ContentRevisions int        `json:"content_revisions" db:"content_revisions" yaml:"content_revisions"`
	WordsAdded       int        `json:"words_added" db:"words_added" yaml:"words_added"`
	WordsRemoved     int        `json:"words_removed" db:"words_removed" yaml:"words_removed"`
	NetWords         int        `json:"net_words" db:"net_words" yaml:"net_words"`
	Comments         int        `json:"comments" db:"comments" yaml:"comments"`
	Replies          int        `json:"replies" db:"replies" yaml:"replies"`
	ResolvedComments int        `json:"resolved_comments" db:"resolved_comments" yaml:"resolved_comments"`
	Resolutions      int        `json:"resolutions" db:"resolutions" yaml:"resolutions"`
	FirstModified    *time.Time `json:"first_modified,omitempty" db:"first_modified" yaml:"first_modified,omitempty"`
	LastModified     *time.Time `json:"last_modified,omitempty" db:"last_modified" yaml:"last_modified,omitempty"`
}

// NewUserStat creates a new zeroed UserStat with a generated UUID
func NewUserStat(documentID string, user User) *UserStat {
	return &UserStat{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		User:       user,
	}
}

// AvgWordsPerEdit is the number of words touched (added plus removed) per
// revision whose text was exported
func (s *UserStat) AvgWordsPerEdit() float64 {
	if s.ContentRevisions == 0 {
		return 0
	}
	return float64(s.WordsAdded+s.WordsRemoved) / float64(s.ContentRevisions)
}

// TouchRevision widens the first/last modification window with t
func (s *UserStat) TouchRevision(t time.Time) {
	if s.FirstModified == nil || t.Before(*s.FirstModified) {
		first := t
		s.FirstModified = &first
	}
	if s.LastModified == nil || t.After(*s.LastModified) {
		last := t
		s.LastModified = &last
	}
}

// Validate validates the UserStat fields
func (s *UserStat) Validate() error {
	if s.DocumentID == "" {
		return errors.New("document ID is required")
	}
	if s.User.Key() == "" {
		return errors.New("user is required")
	}
	if s.Revisions < 0 || s.Comments < 0 || s.Replies < 0 || s.Resolutions < 0 {
		return errors.New("counters cannot be negative")
	}
	if s.ContentRevisions < 0 || s.ContentRevisions > s.Revisions {
		return errors.New("content revisions must be between 0 and revisions")
	}
	if s.WordsAdded < 0 || s.WordsRemoved < 0 {
		return errors.New("word counters cannot be negative")
	}
	if s.ResolvedComments < 0 {
		return errors.New("resolved comments cannot be negative")
	}
	if s.ResolvedComments > s.Comments {
		return errors.New("resolved comments cannot exceed comments")
	}
	return nil
}

// Absorb adds the counters of another stat of the same person to s
func (s *UserStat) Absorb(other *UserStat) {
	s.Revisions += other.Revisions
	s.ContentRevisions += other.ContentRevisions
	s.WordsAdded += other.WordsAdded
	s.WordsRemoved += other.WordsRemoved
	s.NetWords += other.NetWords
	s.Comments += other.Comments
	s.Replies += other.Replies
	s.ResolvedComments += other.ResolvedComments
	s.Resolutions += other.Resolutions
	if other.FirstModified != nil {
		s.TouchRevision(*other.FirstModified)
	}
	if other.LastModified != nil {
		s.TouchRevision(*other.LastModified)
	}
	if s.User.Email == "" {
		s.User.Email = other.User.Email
	}
}
