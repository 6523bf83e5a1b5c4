package services

import (
	"testing"
	"time"

	"github.com/alimgiray/gdocscope/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = models.User{Name: "Alice", Email: "alice@example.com"}
	bob   = models.User{Name: "Bob", Email: "bob@example.com"}
	carol = models.User{Name: "Carol"}

	baseTime = time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
)

func contentRevision(id string, offset time.Duration, author models.User, text string) *models.Revision {
	revision := models.NewRevision("doc-1", id, baseTime.Add(offset), author)
	revision.Text = text
	revision.WordCount = CountWords(text)
	revision.HasContent = true
	return revision
}

func emptyRevision(id string, offset time.Duration, author models.User) *models.Revision {
	return models.NewRevision("doc-1", id, baseTime.Add(offset), author)
}

func testRevisions() []*models.Revision {
	return []*models.Revision{
		contentRevision("1", 0, alice, "one two three"),
		contentRevision("2", time.Hour, bob, "one two three four five"),
		contentRevision("3", 2*time.Hour, alice, "one two five"),
		emptyRevision("4", 3*time.Hour, bob),
	}
}

func testComments() []*models.Comment {
	resolvedByBob := models.NewComment("doc-1", "c1", alice, baseTime)
	resolvedByBob.Resolved = true
	resolvedByBob.Replies = []models.Reply{
		{Author: bob, CreatedTime: baseTime.Add(time.Hour), Action: models.ReplyActionResolve},
	}

	open := models.NewComment("doc-1", "c2", bob, baseTime.Add(time.Hour))
	open.Replies = []models.Reply{
		{Author: alice, CreatedTime: baseTime.Add(2 * time.Hour)},
	}

	selfResolved := models.NewComment("doc-1", "c3", carol, baseTime.Add(2*time.Hour))
	selfResolved.Resolved = true

	return []*models.Comment{resolvedByBob, open, selfResolved}
}

func statsByName(stats []*models.UserStat) map[string]*models.UserStat {
	byName := make(map[string]*models.UserStat, len(stats))
	for _, stat := range stats {
		byName[stat.User.Name] = stat
	}
	return byName
}

func TestAggregateAttribution(t *testing.T) {
	service := NewStatisticsService(nil, 2)

	aggregation := service.Aggregate("doc-1", testRevisions(), testComments())
	require.Len(t, aggregation.Users, 3)

	// first-seen order
	assert.Equal(t, "Alice", aggregation.Users[0].User.Name)
	assert.Equal(t, "Bob", aggregation.Users[1].User.Name)
	assert.Equal(t, "Carol", aggregation.Users[2].User.Name)

	users := statsByName(aggregation.Users)

	testCases := []struct {
		name     string
		expected models.UserStat
	}{
		{
			name: "Alice",
			expected: models.UserStat{
				Revisions: 2, ContentRevisions: 2, WordsAdded: 3, WordsRemoved: 2, NetWords: 1,
				Comments: 1, Replies: 1, ResolvedComments: 1,
			},
		},
		{
			name: "Bob",
			expected: models.UserStat{
				Revisions: 2, ContentRevisions: 1, WordsAdded: 2, NetWords: 2,
				Comments: 1, Replies: 1, Resolutions: 1,
			},
		},
		{
			name: "Carol",
			expected: models.UserStat{
				Comments: 1, ResolvedComments: 1, Resolutions: 1,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stat := users[tc.name]
			require.NotNil(t, stat)
			assert.Equal(t, tc.expected.Revisions, stat.Revisions)
			assert.Equal(t, tc.expected.ContentRevisions, stat.ContentRevisions)
			assert.Equal(t, tc.expected.WordsAdded, stat.WordsAdded)
			assert.Equal(t, tc.expected.WordsRemoved, stat.WordsRemoved)
			assert.Equal(t, tc.expected.NetWords, stat.NetWords)
			assert.Equal(t, tc.expected.Comments, stat.Comments)
			assert.Equal(t, tc.expected.Replies, stat.Replies)
			assert.Equal(t, tc.expected.ResolvedComments, stat.ResolvedComments)
			assert.Equal(t, tc.expected.Resolutions, stat.Resolutions)
		})
	}

	t.Run("modification window", func(t *testing.T) {
		bobStat := users["Bob"]
		require.NotNil(t, bobStat.FirstModified)
		require.NotNil(t, bobStat.LastModified)
		assert.Equal(t, baseTime.Add(time.Hour), *bobStat.FirstModified)
		assert.Equal(t, baseTime.Add(3*time.Hour), *bobStat.LastModified)

		assert.Nil(t, users["Carol"].FirstModified, "comment-only users have no revision window")
	})
}

func TestAggregateTotalsMatch(t *testing.T) {
	service := NewStatisticsService(nil, 2)
	revisions := testRevisions()
	comments := testComments()

	aggregation := service.Aggregate("doc-1", revisions, comments)

	var revisionSum, commentSum, replySum, resolutionSum, netSum int
	for _, stat := range aggregation.Users {
		revisionSum += stat.Revisions
		commentSum += stat.Comments
		replySum += stat.Replies
		resolutionSum += stat.Resolutions
		netSum += stat.NetWords

		assert.LessOrEqual(t, stat.ResolvedComments, stat.Comments)
		assert.NoError(t, stat.Validate())
	}

	assert.Equal(t, len(revisions), revisionSum)
	assert.Equal(t, len(comments), commentSum)
	assert.Equal(t, 2, replySum)
	assert.Equal(t, 2, resolutionSum)
	assert.Equal(t, aggregation.History[len(aggregation.History)-1].TotalWords, netSum,
		"net words sum to the final word count")
}

func TestAggregateUnsortedInput(t *testing.T) {
	service := NewStatisticsService(nil, 2)

	revisions := testRevisions()
	reversed := []*models.Revision{revisions[3], revisions[2], revisions[1], revisions[0]}

	sorted := service.Aggregate("doc-1", revisions, nil)
	unsorted := service.Aggregate("doc-1", reversed, nil)

	assert.Equal(t, sorted.History, unsorted.History)
	assert.Equal(t, "4", reversed[0].RevisionID, "the caller's slice is not reordered")
}

func TestAggregateEmpty(t *testing.T) {
	service := NewStatisticsService(nil, 2)

	aggregation := service.Aggregate("doc-1", nil, nil)
	assert.Empty(t, aggregation.Users)
	assert.Empty(t, aggregation.History)

	summary := service.Summarize(0, nil, aggregation.History, nil)
	assert.Equal(t, models.Summary{}, summary)
}

func TestAggregateWithoutContent(t *testing.T) {
	service := NewStatisticsService(nil, 2)

	revisions := []*models.Revision{
		emptyRevision("1", 0, alice),
		emptyRevision("2", time.Hour, alice),
		emptyRevision("3", 2*time.Hour, models.User{}),
	}

	aggregation := service.Aggregate("doc-1", revisions, nil)
	assert.Empty(t, aggregation.History)
	require.Len(t, aggregation.Users, 2)

	users := statsByName(aggregation.Users)
	assert.Equal(t, 2, users["Alice"].Revisions)
	assert.Zero(t, users["Alice"].WordsAdded)
	assert.Equal(t, 1, users[models.UnknownUser].Revisions)
}

func TestWordHistory(t *testing.T) {
	testCases := []struct {
		name      string
		threshold int
		revisions []*models.Revision
		expected  []models.WordPoint
	}{
		{
			name:      "changes at the threshold are recorded and may decrease",
			threshold: 2,
			revisions: testRevisions(),
			expected: []models.WordPoint{
				{Timestamp: baseTime, TotalWords: 3, WordChange: 3, User: alice},
				{Timestamp: baseTime.Add(time.Hour), TotalWords: 5, WordChange: 2, User: bob},
				{Timestamp: baseTime.Add(2 * time.Hour), TotalWords: 3, WordChange: -2, User: alice},
			},
		},
		{
			name:      "small changes are skipped but the last revision is kept",
			threshold: 3,
			revisions: []*models.Revision{
				contentRevision("1", 0, alice, "a b c d e"),
				contentRevision("2", time.Hour, bob, "a b c d e f"),
				contentRevision("3", 2*time.Hour, bob, "a b c d e f g"),
			},
			expected: []models.WordPoint{
				{Timestamp: baseTime, TotalWords: 5, WordChange: 5, User: alice},
				{Timestamp: baseTime.Add(2 * time.Hour), TotalWords: 7, WordChange: 2, User: bob},
			},
		},
		{
			name:      "small changes accumulate against the last recorded point",
			threshold: 2,
			revisions: []*models.Revision{
				contentRevision("1", 0, alice, "a b c"),
				contentRevision("2", time.Hour, bob, "a b c d"),
				contentRevision("3", 2*time.Hour, bob, "a b c d e"),
				contentRevision("4", 3*time.Hour, alice, "a b c d e"),
			},
			expected: []models.WordPoint{
				{Timestamp: baseTime, TotalWords: 3, WordChange: 3, User: alice},
				{Timestamp: baseTime.Add(2 * time.Hour), TotalWords: 5, WordChange: 2, User: bob},
				{Timestamp: baseTime.Add(3 * time.Hour), TotalWords: 5, WordChange: 0, User: alice},
			},
		},
		{
			name:      "revisions without content are not sampled",
			threshold: 2,
			revisions: []*models.Revision{
				emptyRevision("1", 0, alice),
				contentRevision("2", time.Hour, bob, "a b"),
			},
			expected: []models.WordPoint{
				{Timestamp: baseTime.Add(time.Hour), TotalWords: 2, WordChange: 2, User: bob},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			service := NewStatisticsService(nil, tc.threshold)
			aggregation := service.Aggregate("doc-1", tc.revisions, nil)

			if diff := cmp.Diff(tc.expected, aggregation.History); diff != "" {
				t.Errorf("history mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	service := NewStatisticsService(nil, 2)

	revisions := testRevisions()
	comments := testComments()
	aggregation := service.Aggregate("doc-1", revisions, comments)

	daily := []models.DailyMetric{
		{Date: baseTime, Edits: 3},
		{Date: baseTime.AddDate(0, 0, 1), Edits: 1},
	}

	summary := service.Summarize(len(revisions), comments, aggregation.History, daily)

	expected := models.Summary{
		TotalRevisions:   4,
		TotalEdits:       4,
		TotalComments:    3,
		TotalReplies:     2,
		TotalResolved:    2,
		ResolutionRate:   float64(2) / 3 * 100,
		HasWordData:      true,
		CurrentWordCount: 3,
		TotalWordChanges: 7,
		AvgWordsPerEdit:  float64(7) / 3,
	}
	if diff := cmp.Diff(expected, summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}
