package reports

import (
	"fmt"
	"time"

	"github.com/alimgiray/gdocscope/internal/models"
)

// Reporter renders a finished analysis to its destination
type Reporter interface {
	Report(analysis *models.Analysis) error
}

const timestampLayout = "2006-01-02 15:04:05"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(timestampLayout)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatTime(*t)
}

func formatUser(u models.User) string {
	if u.Name == "" && u.Email == "" {
		return "-"
	}
	if u.Email == "" || u.Name == u.Email {
		return u.Key()
	}
	return fmt.Sprintf("%s <%s>", u.Key(), u.Email)
}

func emailOrDash(u models.User) string {
	if u.Email == "" {
		return "-"
	}
	return u.Email
}

// editors returns the users that authored at least one revision
func editors(stats []*models.UserStat) []*models.UserStat {
	var result []*models.UserStat
	for _, stat := range stats {
		if stat.Revisions > 0 {
			result = append(result, stat)
		}
	}
	return result
}

// commenters returns the users that took part in any comment thread
func commenters(stats []*models.UserStat) []*models.UserStat {
	var result []*models.UserStat
	for _, stat := range stats {
		if stat.Comments > 0 || stat.Replies > 0 || stat.Resolutions > 0 {
			result = append(result, stat)
		}
	}
	return result
}
