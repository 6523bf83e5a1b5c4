package repositories

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/alimgiray/gdocscope/internal/models"
)

// UserStatOrder selects the ranking used when listing user statistics
type UserStatOrder string

const (
	OrderByNetWords  UserStatOrder = "net_words"
	OrderByRevisions UserStatOrder = "revisions"
	OrderByComments  UserStatOrder = "comments"
)

var userStatOrderClauses = map[UserStatOrder]string{
	OrderByNetWords:  "net_words DESC, revisions DESC, user_name ASC",
	OrderByRevisions: "revisions DESC, net_words DESC, user_name ASC",
	OrderByComments:  "comments DESC, replies DESC, user_name ASC",
}

type UserStatRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

func NewUserStatRepository(db *sql.DB) *UserStatRepository {
	return &UserStatRepository{db: db}
}

// ReplaceForDocument drops the stored statistics of a document and stores stats instead
func (r *UserStatRepository) ReplaceForDocument(documentID string, stats []*models.UserStat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM user_stats WHERE document_id = ?", documentID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO user_stats (
			id, document_id, user_name, user_email,
			revisions, content_revisions, words_added, words_removed, net_words,
			comments, replies, resolved_comments, resolutions,
			first_modified, last_modified
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, stat := range stats {
		if stat.DocumentID != documentID {
			return fmt.Errorf("statistics for %s belong to document %s, not %s", stat.User.Key(), stat.DocumentID, documentID)
		}
		if err := stat.Validate(); err != nil {
			return fmt.Errorf("invalid statistics for %s: %w", stat.User.Key(), err)
		}

		var first, last sql.NullTime
		if stat.FirstModified != nil {
			first = sql.NullTime{Time: stat.FirstModified.UTC(), Valid: true}
		}
		if stat.LastModified != nil {
			last = sql.NullTime{Time: stat.LastModified.UTC(), Valid: true}
		}

		if _, err := stmt.Exec(
			stat.ID, stat.DocumentID, stat.User.Key(), stat.User.Email,
			stat.Revisions, stat.ContentRevisions, stat.WordsAdded, stat.WordsRemoved, stat.NetWords,
			stat.Comments, stat.Replies, stat.ResolvedComments, stat.Resolutions,
			first, last,
		); err != nil {
			return fmt.Errorf("failed to store statistics for %s: %w", stat.User.Key(), err)
		}
	}

	return tx.Commit()
}

// GetByDocumentID retrieves the statistics of a document ranked by order
func (r *UserStatRepository) GetByDocumentID(documentID string, order UserStatOrder) ([]*models.UserStat, error) {
	clause, ok := userStatOrderClauses[order]
	if !ok {
		return nil, fmt.Errorf("unknown user stat order %q", order)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT id, document_id, user_name, user_email,
		       revisions, content_revisions, words_added, words_removed, net_words,
		       comments, replies, resolved_comments, resolutions,
		       first_modified, last_modified
		FROM user_stats WHERE document_id = ?
		ORDER BY ` + clause

	rows, err := r.db.Query(query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []*models.UserStat
	for rows.Next() {
		var stat models.UserStat
		var first, last sql.NullTime
		err := rows.Scan(
			&stat.ID, &stat.DocumentID, &stat.User.Name, &stat.User.Email,
			&stat.Revisions, &stat.ContentRevisions, &stat.WordsAdded, &stat.WordsRemoved, &stat.NetWords,
			&stat.Comments, &stat.Replies, &stat.ResolvedComments, &stat.Resolutions,
			&first, &last,
		)
		if err != nil {
			return nil, err
		}
		if first.Valid {
			stat.FirstModified = &first.Time
		}
		if last.Valid {
			stat.LastModified = &last.Time
		}
		stats = append(stats, &stat)
	}

	return stats, rows.Err()
}
