package repositories

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/alimgiray/gdocscope/internal/models"
)

// DailyCount is the number of rows that fall on one UTC day
type DailyCount struct {
	Date  time.Time
	Count int
}

type RevisionRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

func NewRevisionRepository(db *sql.DB) *RevisionRepository {
	return &RevisionRepository{db: db}
}

// Create stores a revision snapshot
func (r *RevisionRepository) Create(revision *models.Revision) error {
	if err := revision.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO revisions (
			id, document_id, revision_id, modified_time,
			author_name, author_email, word_count, has_content
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		revision.ID, revision.DocumentID, revision.RevisionID, revision.ModifiedTime.UTC(),
		revision.Author.Key(), revision.Author.Email, revision.WordCount, revision.HasContent,
	)
	if err != nil {
		return fmt.Errorf("failed to store revision %s: %w", revision.RevisionID, err)
	}

	return nil
}

// CreateBatch stores all revisions in a single transaction
func (r *RevisionRepository) CreateBatch(revisions []*models.Revision) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO revisions (
			id, document_id, revision_id, modified_time,
			author_name, author_email, word_count, has_content
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, revision := range revisions {
		if err := revision.Validate(); err != nil {
			return fmt.Errorf("invalid revision %s: %w", revision.RevisionID, err)
		}
		if _, err := stmt.Exec(
			revision.ID, revision.DocumentID, revision.RevisionID, revision.ModifiedTime.UTC(),
			revision.Author.Key(), revision.Author.Email, revision.WordCount, revision.HasContent,
		); err != nil {
			return fmt.Errorf("failed to store revision %s: %w", revision.RevisionID, err)
		}
	}

	return tx.Commit()
}

// GetByDocumentID retrieves all revisions of a document in time order
func (r *RevisionRepository) GetByDocumentID(documentID string) ([]*models.Revision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT id, document_id, revision_id, modified_time,
		       author_name, author_email, word_count, has_content
		FROM revisions WHERE document_id = ?
		ORDER BY modified_time ASC, revision_id ASC
	`

	rows, err := r.db.Query(query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revisions []*models.Revision
	for rows.Next() {
		var revision models.Revision
		err := rows.Scan(
			&revision.ID, &revision.DocumentID, &revision.RevisionID, &revision.ModifiedTime,
			&revision.Author.Name, &revision.Author.Email, &revision.WordCount, &revision.HasContent,
		)
		if err != nil {
			return nil, err
		}
		revisions = append(revisions, &revision)
	}

	return revisions, rows.Err()
}

// CountByDocumentID returns the number of stored revisions of a document
func (r *RevisionRepository) CountByDocumentID(documentID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM revisions WHERE document_id = ?", documentID).Scan(&count)
	return count, err
}

// GetDailyCounts groups revisions of a document by UTC day
func (r *RevisionRepository) GetDailyCounts(documentID string) ([]DailyCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// modified_time is stored in UTC, so its first ten characters are the day
	query := `
		SELECT substr(modified_time, 1, 10) AS day, COUNT(*)
		FROM revisions WHERE document_id = ?
		GROUP BY day
		ORDER BY day ASC
	`

	rows, err := r.db.Query(query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []DailyCount
	for rows.Next() {
		var day string
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		date, err := time.Parse("2006-01-02", day)
		if err != nil {
			return nil, fmt.Errorf("unexpected day value %q: %w", day, err)
		}
		counts = append(counts, DailyCount{Date: date, Count: count})
	}

	return counts, rows.Err()
}
