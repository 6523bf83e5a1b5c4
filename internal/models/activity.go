package models

import "time"

type ActivityKind string

const (
	ActivityKindEdit       ActivityKind = "edit"
	ActivityKindCreate     ActivityKind = "create"
	ActivityKindDelete     ActivityKind = "delete"
	ActivityKindComment    ActivityKind = "comment"
	ActivityKindSuggestion ActivityKind = "suggestion"
	ActivityKindOther      ActivityKind = "other"
)

// Activity is one entry of the Drive Activity stream for the document
type Activity struct {
	Timestamp time.Time    `json:"timestamp"`
	Actor     string       `json:"actor"`
	Kind      ActivityKind `json:"kind"`
	// OnDocument is false when the activity targets something other than a
	// drive item, such as a shared drive
	OnDocument bool `json:"on_document"`
}

// ChangesContent reports whether the activity changed the document body
func (a Activity) ChangesContent() bool {
	switch a.Kind {
	case ActivityKindEdit, ActivityKindCreate, ActivityKindDelete:
		return true
	}
	return false
}

// ActivityContribution is the activity-stream view of one actor. It needs no
// revision exports, so it is available even with content export disabled.
type ActivityContribution struct {
	Actor           string `json:"actor" yaml:"actor"`
	DocumentChanges int    `json:"document_changes" yaml:"document_changes"`
	Edits           int    `json:"edits" yaml:"edits"`
	Deletions       int    `json:"deletions" yaml:"deletions"`
	EstimatedWords  int    `json:"estimated_words" yaml:"estimated_words"`
}
