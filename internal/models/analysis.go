package models

import "time"

// WordPoint is one sample of the cumulative word count history
type WordPoint struct {
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	TotalWords int       `json:"total_words" yaml:"total_words"`
	WordChange int       `json:"word_change" yaml:"word_change"`
	User       User      `json:"user" yaml:"user"`
}

// DailyMetric counts document activity on a single UTC day
type DailyMetric struct {
	Date     time.Time `json:"date" yaml:"date"`
	Edits    int       `json:"edits" yaml:"edits"`
	Comments int       `json:"comments" yaml:"comments"`
	Replies  int       `json:"replies" yaml:"replies"`
	Resolved int       `json:"resolved" yaml:"resolved"`
}

// Summary holds document-wide totals
type Summary struct {
	TotalRevisions   int     `json:"total_revisions" yaml:"total_revisions"`
	TotalEdits       int     `json:"total_edits" yaml:"total_edits"`
	TotalComments    int     `json:"total_comments" yaml:"total_comments"`
	TotalReplies     int     `json:"total_replies" yaml:"total_replies"`
	TotalResolved    int     `json:"total_resolved" yaml:"total_resolved"`
	ResolutionRate   float64 `json:"resolution_rate" yaml:"resolution_rate"`
	HasWordData      bool    `json:"has_word_data" yaml:"has_word_data"`
	CurrentWordCount int     `json:"current_word_count" yaml:"current_word_count"`
	TotalWordChanges int     `json:"total_word_changes" yaml:"total_word_changes"`
	AvgWordsPerEdit  float64 `json:"avg_words_per_edit" yaml:"avg_words_per_edit"`
}

// Analysis is everything the reporters render for one document
type Analysis struct {
	Document *Document `json:"document" yaml:"document"`
	// Users is ranked by net words; ByRevisions and ByComments hold the
	// same statistics in the other report orders.
	Users       []*UserStat   `json:"users" yaml:"users"`
	ByRevisions []*UserStat   `json:"-" yaml:"-"`
	ByComments  []*UserStat   `json:"-" yaml:"-"`
	History     []WordPoint   `json:"history" yaml:"history"`
	Daily       []DailyMetric `json:"daily" yaml:"daily"`
	// Contributions is empty when the activity stream was not available
	Contributions []ActivityContribution `json:"activity_contributions" yaml:"activity_contributions"`
	Summary       Summary                `json:"summary" yaml:"summary"`
}
