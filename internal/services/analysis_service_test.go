package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alimgiray/gdocscope/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	document    *models.Document
	documentErr error
	revisions   []*models.Revision
	comments    []*models.Comment
	activities  []models.Activity
	activityErr error

	activitySince time.Time
	activityCalls int
}

func (f *fakeFetcher) GetDocument(ctx context.Context, documentID string) (*models.Document, error) {
	if f.documentErr != nil {
		return nil, f.documentErr
	}
	return f.document, nil
}

func (f *fakeFetcher) ListRevisions(ctx context.Context, documentID string) ([]*models.Revision, error) {
	return f.revisions, nil
}

func (f *fakeFetcher) ListComments(ctx context.Context, documentID string) ([]*models.Comment, error) {
	return f.comments, nil
}

func (f *fakeFetcher) ListActivities(ctx context.Context, documentID string, since time.Time) ([]models.Activity, error) {
	f.activityCalls++
	f.activitySince = since
	return f.activities, f.activityErr
}

func newFetcherFixture() (*fakeFetcher, *fakeExporter) {
	revisions := []*models.Revision{
		exportable("1", "u1"),
		exportable("2", "u2"),
		exportable("3", "u3"),
	}
	revisions[0].ModifiedTime = baseTime
	revisions[1].ModifiedTime = baseTime.Add(time.Hour)
	revisions[1].Author = bob
	revisions[2].ModifiedTime = baseTime.AddDate(0, 0, 1)

	fetcher := &fakeFetcher{
		document: &models.Document{
			ID:    "doc-1",
			Title: "Design Doc",
			Owner: alice,
		},
		revisions: revisions,
		comments:  testComments(),
	}
	exporter := &fakeExporter{texts: map[string]string{
		"u1": "one two three",
		"u2": "one two three four five six seven eight",
		"u3": "one two three four five six seven eight nine",
	}}
	return fetcher, exporter
}

func newTestAnalysisService(t *testing.T, fetcher DocumentFetcher, exporter RevisionExporter, lookbackDays int) *AnalysisService {
	t.Helper()
	revisionRepo, userStatRepo := newTestRepositories(t)

	var content *ContentService
	if exporter != nil {
		content = NewContentService(exporter, 1000, nil)
	}

	service := NewAnalysisService(
		fetcher,
		content,
		revisionRepo,
		NewStatisticsService(userStatRepo, 2),
		NewHistoryService(revisionRepo),
		lookbackDays,
	)
	service.now = func() time.Time { return baseTime.AddDate(0, 0, 10) }
	return service
}

func names(stats []*models.UserStat) []string {
	result := make([]string, 0, len(stats))
	for _, stat := range stats {
		result = append(result, stat.User.Name)
	}
	return result
}

func TestAnalyze(t *testing.T) {
	fetcher, exporter := newFetcherFixture()
	service := newTestAnalysisService(t, fetcher, exporter, 30)

	analysis, err := service.Analyze(context.Background(), "doc-1")
	require.NoError(t, err)

	assert.Equal(t, "Design Doc", analysis.Document.Title)

	t.Run("rankings", func(t *testing.T) {
		assert.Equal(t, []string{"Bob", "Alice", "Carol"}, names(analysis.Users))
		assert.Equal(t, []string{"Alice", "Bob", "Carol"}, names(analysis.ByRevisions))
		require.Len(t, analysis.ByComments, 3)
		for _, stat := range analysis.ByComments {
			assert.Equal(t, 1, stat.Comments)
		}
	})

	t.Run("word history", func(t *testing.T) {
		require.Len(t, analysis.History, 3)
		assert.Equal(t, 3, analysis.History[0].TotalWords)
		assert.Equal(t, 8, analysis.History[1].TotalWords)
		assert.Equal(t, 9, analysis.History[2].TotalWords, "the last revision is always sampled")
		assert.Equal(t, 1, analysis.History[2].WordChange)
	})

	t.Run("summary", func(t *testing.T) {
		assert.Equal(t, 3, analysis.Summary.TotalRevisions)
		assert.Equal(t, 3, analysis.Summary.TotalComments)
		assert.Equal(t, 2, analysis.Summary.TotalResolved)
		assert.True(t, analysis.Summary.HasWordData)
		assert.Equal(t, 9, analysis.Summary.CurrentWordCount)
		assert.Equal(t, 3, analysis.Summary.TotalEdits, "edits fall back to revisions without activity")
	})

	t.Run("daily metrics", func(t *testing.T) {
		require.Len(t, analysis.Daily, 2)
		assert.Equal(t, 2, analysis.Daily[0].Edits)
		assert.Equal(t, 1, analysis.Daily[1].Edits)
	})

	t.Run("text released after aggregation", func(t *testing.T) {
		for _, revision := range fetcher.revisions {
			assert.Empty(t, revision.Text)
			assert.True(t, revision.HasContent)
		}
	})

	assert.Equal(t, 1, fetcher.activityCalls)
	assert.Equal(t, baseTime.AddDate(0, 0, -20), fetcher.activitySince)
}

func TestAnalyzeActivityFailureIsNotFatal(t *testing.T) {
	fetcher, exporter := newFetcherFixture()
	fetcher.activityErr = errors.New("Drive Activity API has not been used in project")
	service := newTestAnalysisService(t, fetcher, exporter, 30)

	analysis, err := service.Analyze(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 3, analysis.Summary.TotalEdits)
}

func TestAnalyzeUsesActivityForEdits(t *testing.T) {
	fetcher, exporter := newFetcherFixture()
	fetcher.activities = []models.Activity{
		{Timestamp: baseTime, Actor: "Alice", Kind: models.ActivityKindEdit},
		{Timestamp: baseTime.Add(time.Minute), Actor: "Alice", Kind: models.ActivityKindEdit},
		{Timestamp: baseTime.Add(2 * time.Minute), Actor: "Alice", Kind: models.ActivityKindEdit},
		{Timestamp: baseTime.Add(3 * time.Minute), Actor: "Alice", Kind: models.ActivityKindEdit},
	}
	service := newTestAnalysisService(t, fetcher, exporter, 30)

	analysis, err := service.Analyze(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 4, analysis.Summary.TotalEdits)
}

func TestAnalyzeReportsActivityContributions(t *testing.T) {
	fetcher, exporter := newFetcherFixture()
	fetcher.activities = []models.Activity{
		{Timestamp: baseTime, Actor: "Dave Activity", Kind: models.ActivityKindEdit, OnDocument: true},
		{Timestamp: baseTime.Add(time.Minute), Actor: "Dave Activity", Kind: models.ActivityKindEdit, OnDocument: true},
	}
	service := newTestAnalysisService(t, fetcher, exporter, 30)

	analysis, err := service.Analyze(context.Background(), "doc-1")
	require.NoError(t, err)

	assert.Equal(t, 2, analysis.Summary.TotalEdits)
	assert.Equal(t, []models.ActivityContribution{
		{Actor: "Dave Activity", Edits: 2, EstimatedWords: 10},
	}, analysis.Contributions)
}

func TestAnalyzeSkipsContentAndActivity(t *testing.T) {
	fetcher, _ := newFetcherFixture()
	service := newTestAnalysisService(t, fetcher, nil, 0)

	analysis, err := service.Analyze(context.Background(), "doc-1")
	require.NoError(t, err)

	assert.Empty(t, analysis.History)
	assert.False(t, analysis.Summary.HasWordData)
	assert.Equal(t, 3, analysis.Summary.TotalRevisions)
	assert.Zero(t, fetcher.activityCalls)

	for _, stat := range analysis.Users {
		assert.Zero(t, stat.WordsAdded)
		assert.Zero(t, stat.NetWords)
	}
}

func TestAnalyzeDocumentErrors(t *testing.T) {
	fetcher, exporter := newFetcherFixture()
	fetcher.documentErr = classifyAPIError(errors.New("boom"), "failed to get file")
	service := newTestAnalysisService(t, fetcher, exporter, 30)

	_, err := service.Analyze(context.Background(), "doc-1")
	assert.Error(t, err)
	assert.Empty(t, exporter.calls, "nothing is exported when the document cannot be read")
}

func TestParseDocumentID(t *testing.T) {
	testCases := []struct {
		name     string
		arg      string
		expected string
		wantErr  bool
	}{
		{name: "bare id", arg: "1AbC_d-EfG", expected: "1AbC_d-EfG"},
		{name: "edit url", arg: "https://docs.google.com/document/d/1AbC_d-EfG/edit#heading=h.1", expected: "1AbC_d-EfG"},
		{name: "multi account url", arg: "https://docs.google.com/document/u/1/d/1AbC_d-EfG/view", expected: "1AbC_d-EfG"},
		{name: "surrounding space", arg: "  1AbC  ", expected: "1AbC"},
		{name: "empty", arg: "  ", wantErr: true},
		{name: "not an id", arg: "https://example.com/somewhere", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := ParseDocumentID(tc.arg)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, id)
		})
	}
}
