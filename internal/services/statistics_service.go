package services

import (
	"math"
	"sort"

	"github.com/alimgiray/gdocscope/internal/models"
	"github.com/alimgiray/gdocscope/internal/repositories"
)

type StatisticsService struct {
	userStatRepo        *repositories.UserStatRepository
	identities          *IdentityService
	wordChangeThreshold int
}

func NewStatisticsService(userStatRepo *repositories.UserStatRepository, wordChangeThreshold int) *StatisticsService {
	return &StatisticsService{
		userStatRepo:        userStatRepo,
		identities:          NewIdentityService(),
		wordChangeThreshold: wordChangeThreshold,
	}
}

// Aggregation is the result of one pass over revisions and comments
type Aggregation struct {
	Users   []*models.UserStat
	History []models.WordPoint
}

// Aggregate walks revisions in time order and then comments, attributing
// word changes and comment activity to users. Users known only by email
// address are merged into their named counterpart.
func (s *StatisticsService) Aggregate(documentID string, revisions []*models.Revision, comments []*models.Comment) *Aggregation {
	aggregator := NewAggregator(documentID, s.wordChangeThreshold)

	ordered := make([]*models.Revision, len(revisions))
	copy(ordered, revisions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ModifiedTime.Before(ordered[j].ModifiedTime)
	})

	for _, revision := range ordered {
		aggregator.AddRevision(revision)
	}
	for _, comment := range comments {
		aggregator.AddComment(comment)
	}

	return s.identities.Merge(aggregator.Finish())
}

// Store replaces the run-scoped statistics of a document
func (s *StatisticsService) Store(documentID string, stats []*models.UserStat) error {
	return s.userStatRepo.ReplaceForDocument(documentID, stats)
}

// Ranked returns the stored statistics of a document in the given order
func (s *StatisticsService) Ranked(documentID string, order repositories.UserStatOrder) ([]*models.UserStat, error) {
	return s.userStatRepo.GetByDocumentID(documentID, order)
}

// Summarize computes document-wide totals
func (s *StatisticsService) Summarize(revisionCount int, comments []*models.Comment, history []models.WordPoint, daily []models.DailyMetric) models.Summary {
	summary := models.Summary{TotalRevisions: revisionCount}

	for _, day := range daily {
		summary.TotalEdits += day.Edits
	}

	for _, comment := range comments {
		summary.TotalComments++
		summary.TotalReplies += comment.ReplyCount()
		if comment.Resolved {
			summary.TotalResolved++
		}
	}
	if summary.TotalComments > 0 {
		summary.ResolutionRate = float64(summary.TotalResolved) / float64(summary.TotalComments) * 100
	}

	if len(history) > 0 {
		summary.HasWordData = true
		summary.CurrentWordCount = history[len(history)-1].TotalWords
		for _, point := range history {
			summary.TotalWordChanges += int(math.Abs(float64(point.WordChange)))
		}
		summary.AvgWordsPerEdit = float64(summary.TotalWordChanges) / float64(len(history))
	}

	return summary
}

// Aggregator accumulates per-user counters one revision or comment at a
// time. Revisions must be added in time order.
type Aggregator struct {
	documentID string
	threshold  int

	users map[string]*models.UserStat
	order []string

	prevWords   []string
	prevCount   int
	seenContent bool

	history      []models.WordPoint
	lastRecorded int
	pending      *models.WordPoint
}

func NewAggregator(documentID string, wordChangeThreshold int) *Aggregator {
	return &Aggregator{
		documentID: documentID,
		threshold:  wordChangeThreshold,
		users:      make(map[string]*models.UserStat),
	}
}

func (a *Aggregator) user(u models.User) *models.UserStat {
	key := u.Key()
	stat, ok := a.users[key]
	if !ok {
		if u.Name == "" {
			u.Name = key
		}
		stat = models.NewUserStat(a.documentID, u)
		a.users[key] = stat
		a.order = append(a.order, key)
	}
	if stat.User.Email == "" && u.Email != "" {
		stat.User.Email = u.Email
	}
	return stat
}

// AddRevision attributes a revision and its word delta to its author.
// Revisions without exported text only count as revisions.
func (a *Aggregator) AddRevision(revision *models.Revision) {
	stat := a.user(revision.Author)
	stat.Revisions++
	stat.TouchRevision(revision.ModifiedTime)

	if !revision.HasContent {
		return
	}
	stat.ContentRevisions++

	words := Words(revision.Text)
	count := len(words)

	delta := DiffWords(a.prevWords, words)
	stat.WordsAdded += delta.Added
	stat.WordsRemoved += delta.Removed
	stat.NetWords += count - a.prevCount

	point := models.WordPoint{
		Timestamp:  revision.ModifiedTime,
		TotalWords: count,
		User:       revision.Author,
	}

	change := count - a.lastRecorded
	if !a.seenContent || abs(change) >= a.threshold {
		point.WordChange = change
		a.history = append(a.history, point)
		a.lastRecorded = count
		a.pending = nil
	} else {
		a.pending = &point
	}

	a.seenContent = true
	a.prevWords = words
	a.prevCount = count
}

// AddComment counts a comment thread for its author, its repliers and,
// when resolved, its resolver.
func (a *Aggregator) AddComment(comment *models.Comment) {
	author := a.user(comment.Author)
	author.Comments++

	if comment.Resolved {
		author.ResolvedComments++
		a.user(comment.Resolver()).Resolutions++
	}

	for _, reply := range comment.Replies {
		a.user(reply.Author).Replies++
	}
}

// Finish returns the accumulated statistics. The last content revision is
// always part of the history even when its change was below the threshold.
func (a *Aggregator) Finish() *Aggregation {
	history := a.history
	if a.pending != nil {
		last := *a.pending
		last.WordChange = last.TotalWords - a.lastRecorded
		history = append(history, last)
	}

	users := make([]*models.UserStat, 0, len(a.order))
	for _, key := range a.order {
		users = append(users, a.users[key])
	}

	return &Aggregation{
		Users:   users,
		History: history,
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
