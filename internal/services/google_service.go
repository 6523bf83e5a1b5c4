package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/alimgiray/gdocscope/internal/models"
	"github.com/alimgiray/gdocscope/pkg/logger"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/driveactivity/v2"
	"google.golang.org/api/option"
)

const (
	pageSize       = 100
	plainTextMIME  = "text/plain"
	maxExportBytes = 64 << 20
)

// Scopes are the read-only OAuth scopes the analyzer needs
var Scopes = []string{
	drive.DriveReadonlyScope,
	docs.DocumentsReadonlyScope,
	driveactivity.DriveActivityReadonlyScope,
}

// GoogleService reads a document through the Drive, Docs and Drive Activity APIs
type GoogleService struct {
	drive      *drive.Service
	docs       *docs.Service
	activity   *driveactivity.Service
	httpClient *http.Client
	// exportLimit caps the size of a single revision export
	exportLimit int64
}

// NewGoogleService builds the API clients on top of an authenticated HTTP client
func NewGoogleService(ctx context.Context, httpClient *http.Client) (*GoogleService, error) {
	driveService, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive client: %w", err)
	}

	docsService, err := docs.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create docs client: %w", err)
	}

	activityService, err := driveactivity.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive activity client: %w", err)
	}

	return NewGoogleServiceFromClients(driveService, docsService, activityService, httpClient), nil
}

// NewGoogleServiceFromClients wires already constructed API clients
func NewGoogleServiceFromClients(driveService *drive.Service, docsService *docs.Service, activityService *driveactivity.Service, httpClient *http.Client) *GoogleService {
	return &GoogleService{
		drive:       driveService,
		docs:        docsService,
		activity:    activityService,
		httpClient:  httpClient,
		exportLimit: maxExportBytes,
	}
}

// AuthenticatedEmail returns the email address of the authorized account
func (s *GoogleService) AuthenticatedEmail(ctx context.Context) (string, error) {
	about, err := s.drive.About.Get().Fields("user").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuth, classifyAPIError(err, "failed to verify authentication"))
	}
	if about.User == nil {
		return "", nil
	}
	return about.User.EmailAddress, nil
}

// GetDocument retrieves document metadata from Drive and the title from Docs
func (s *GoogleService) GetDocument(ctx context.Context, documentID string) (*models.Document, error) {
	file, err := s.drive.Files.Get(documentID).
		Fields("id,name,createdTime,modifiedTime,owners,lastModifyingUser").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifyAPIError(err, fmt.Sprintf("failed to get file %s", documentID))
	}

	document := &models.Document{
		ID:           documentID,
		Title:        file.Name,
		CreatedTime:  parseTime(file.CreatedTime),
		ModifiedTime: parseTime(file.ModifiedTime),
		LastModifier: driveUser(file.LastModifyingUser),
	}
	if len(file.Owners) > 0 {
		document.Owner = driveUser(file.Owners[0])
	}

	doc, err := s.docs.Documents.Get(documentID).Fields("documentId,title").Context(ctx).Do()
	if err != nil {
		return nil, classifyAPIError(err, fmt.Sprintf("failed to get document %s", documentID))
	}
	if doc.Title != "" {
		document.Title = doc.Title
	}
	if document.Title == "" {
		document.Title = "Untitled"
	}

	if err := document.Validate(); err != nil {
		return nil, fmt.Errorf("invalid metadata for %s: %w", documentID, err)
	}

	return document, nil
}

// ListRevisions retrieves every revision of a document ordered by time
func (s *GoogleService) ListRevisions(ctx context.Context, documentID string) ([]*models.Revision, error) {
	var revisions []*models.Revision

	call := s.drive.Revisions.List(documentID).
		PageSize(pageSize).
		Fields("nextPageToken,revisions(id,modifiedTime,lastModifyingUser,exportLinks)")

	err := call.Pages(ctx, func(page *drive.RevisionList) error {
		for _, r := range page.Revisions {
			modified := parseTime(r.ModifiedTime)
			if r.Id == "" || modified.IsZero() {
				logger.WithField("revision_id", r.Id).Debugf("Skipping revision without id or time")
				continue
			}
			revision := models.NewRevision(documentID, r.Id, modified, driveUser(r.LastModifyingUser))
			revision.ExportURL = r.ExportLinks[plainTextMIME]
			revisions = append(revisions, revision)
		}
		return nil
	})
	if err != nil {
		return nil, classifyAPIError(err, fmt.Sprintf("failed to list revisions of %s", documentID))
	}

	sort.SliceStable(revisions, func(i, j int) bool {
		return revisions[i].ModifiedTime.Before(revisions[j].ModifiedTime)
	})

	logger.WithField("document_id", documentID).Infof("Retrieved %d revisions", len(revisions))
	return revisions, nil
}

// ListComments retrieves every non-deleted comment thread of a document
func (s *GoogleService) ListComments(ctx context.Context, documentID string) ([]*models.Comment, error) {
	var comments []*models.Comment

	call := s.drive.Comments.List(documentID).
		PageSize(pageSize).
		IncludeDeleted(false).
		Fields("nextPageToken,comments(id,author,createdTime,modifiedTime,resolved,deleted,replies(author,createdTime,action,deleted))")

	err := call.Pages(ctx, func(page *drive.CommentList) error {
		for _, c := range page.Comments {
			if c.Deleted {
				continue
			}
			comment := models.NewComment(documentID, c.Id, driveUser(c.Author), parseTime(c.CreatedTime))
			comment.ModifiedTime = parseTime(c.ModifiedTime)
			comment.Resolved = c.Resolved
			for _, r := range c.Replies {
				if r.Deleted {
					continue
				}
				comment.Replies = append(comment.Replies, models.Reply{
					Author:      driveUser(r.Author),
					CreatedTime: parseTime(r.CreatedTime),
					Action:      r.Action,
				})
			}
			comments = append(comments, comment)
		}
		return nil
	})
	if err != nil {
		return nil, classifyAPIError(err, fmt.Sprintf("failed to list comments of %s", documentID))
	}

	logger.WithField("document_id", documentID).Infof("Retrieved %d comments", len(comments))
	return comments, nil
}

// ListActivities queries the Drive Activity stream of a document since the given time
func (s *GoogleService) ListActivities(ctx context.Context, documentID string, since time.Time) ([]models.Activity, error) {
	request := &driveactivity.QueryDriveActivityRequest{
		ItemName: "items/" + documentID,
		PageSize: pageSize,
		Filter:   fmt.Sprintf("time >= \"%s\"", since.UTC().Format(time.RFC3339)),
	}

	var activities []models.Activity
	err := s.activity.Activity.Query(request).Pages(ctx, func(page *driveactivity.QueryDriveActivityResponse) error {
		for _, a := range page.Activities {
			activities = append(activities, convertActivity(a))
		}
		return nil
	})
	if err != nil {
		return nil, classifyAPIError(err, fmt.Sprintf("failed to query activity of %s", documentID))
	}

	return activities, nil
}

// ExportRevisionText downloads the plain text export of a revision
func (s *GoogleService) ExportRevisionText(ctx context.Context, exportURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to export revision: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp.StatusCode, "failed to export revision")
	}

	// one extra byte tells a truncated export from one that fits exactly
	body, err := io.ReadAll(io.LimitReader(resp.Body, s.exportLimit+1))
	if err != nil {
		return "", fmt.Errorf("failed to read revision export: %w", err)
	}
	if int64(len(body)) > s.exportLimit {
		return "", fmt.Errorf("revision export is larger than %d bytes", s.exportLimit)
	}

	return string(body), nil
}

func convertActivity(a *driveactivity.DriveActivity) models.Activity {
	activity := models.Activity{
		Actor: models.UnknownUser,
		Kind:  models.ActivityKindOther,
	}

	timestamp := a.Timestamp
	if timestamp == "" && a.TimeRange != nil {
		timestamp = a.TimeRange.EndTime
	}
	activity.Timestamp = parseTime(timestamp)

	if len(a.Actors) > 0 && a.Actors[0].User != nil && a.Actors[0].User.KnownUser != nil {
		known := a.Actors[0].User.KnownUser
		switch {
		case known.IsCurrentUser:
			activity.Actor = "me"
		case known.PersonName != "":
			activity.Actor = known.PersonName
		}
	}

	activity.Kind = activityKind(a.PrimaryActionDetail)
	activity.OnDocument = len(a.Targets) > 0 && a.Targets[0].DriveItem != nil

	return activity
}

// activityKind classifies the primary action. Creating or restoring the file
// replaces the whole body and counts as a document change.
func activityKind(detail *driveactivity.ActionDetail) models.ActivityKind {
	switch {
	case detail == nil:
		return models.ActivityKindOther
	case detail.Edit != nil:
		return models.ActivityKindEdit
	case detail.Create != nil, detail.Restore != nil:
		return models.ActivityKindCreate
	case detail.Delete != nil:
		return models.ActivityKindDelete
	case detail.Comment != nil && detail.Comment.Suggestion != nil:
		return models.ActivityKindSuggestion
	case detail.Comment != nil:
		return models.ActivityKindComment
	}
	return models.ActivityKindOther
}

func driveUser(u *drive.User) models.User {
	if u == nil {
		return models.User{}
	}
	return models.User{Name: u.DisplayName, Email: u.EmailAddress}
}

// parseTime parses an RFC 3339 API timestamp, returning the zero time when
// the value is missing or malformed
func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
