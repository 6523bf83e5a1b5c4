package services

import (
	"strings"
	"unicode"

	"github.com/alimgiray/gdocscope/internal/models"
	"github.com/alimgiray/gdocscope/pkg/logger"
)

// minNameSimilarity is the score an address needs before it is attributed
// to a display name it does not literally contain
const minNameSimilarity = 0.8

// IdentityService folds users the APIs reported only by email address into
// the named user the address belongs to. Revisions sometimes carry just an
// address while comments carry just a display name.
type IdentityService struct{}

func NewIdentityService() *IdentityService {
	return &IdentityService{}
}

// EmailNameSimilarity scores between 0 and 1 how likely an email address
// belongs to a person with the given display name
func (s *IdentityService) EmailNameSimilarity(email, name string) float64 {
	local, _, _ := strings.Cut(email, "@")
	normalizedLocal := normalizeIdentity(local)
	normalizedName := normalizeIdentity(name)
	if normalizedLocal == "" || normalizedName == "" {
		return 0
	}
	if normalizedLocal == normalizedName {
		return 1
	}

	// first.last, flast and firstl style addresses
	parts := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if len(parts) >= 2 {
		first, last := parts[0], parts[len(parts)-1]
		for _, candidate := range []string{
			last + first,
			initial(first) + last,
			first + initial(last),
			first,
		} {
			if normalizedLocal == candidate {
				return 0.95
			}
		}
	}

	distance := levenshtein(normalizedLocal, normalizedName)
	longest := max(len([]rune(normalizedLocal)), len([]rune(normalizedName)))
	similarity := 1 - float64(distance)/float64(longest)

	if strings.Contains(normalizedLocal, normalizedName) || strings.Contains(normalizedName, normalizedLocal) {
		similarity += 0.2
	}
	return min(1, similarity)
}

// Merge returns the aggregation with email-only users folded into their
// named counterpart. An exact email match wins; otherwise the single best
// scoring name above the threshold is used and ties are left alone.
func (s *IdentityService) Merge(aggregation *Aggregation) *Aggregation {
	var named []*models.UserStat
	for _, stat := range aggregation.Users {
		if !emailOnly(stat.User) {
			named = append(named, stat)
		}
	}
	if len(named) == len(aggregation.Users) {
		return aggregation
	}

	renamed := make(map[string]models.User)
	users := make([]*models.UserStat, 0, len(aggregation.Users))
	for _, stat := range aggregation.Users {
		if !emailOnly(stat.User) {
			users = append(users, stat)
			continue
		}

		target := s.match(stat.User.Email, named)
		if target == nil {
			users = append(users, stat)
			continue
		}

		logger.WithFields(map[string]interface{}{
			"email": stat.User.Email,
			"user":  target.User.Name,
		}).Debugf("Merging email-only user")

		target.Absorb(stat)
		renamed[stat.User.Key()] = target.User
	}

	if len(renamed) == 0 {
		return aggregation
	}

	history := make([]models.WordPoint, len(aggregation.History))
	for i, point := range aggregation.History {
		if user, ok := renamed[point.User.Key()]; ok {
			point.User = user
		}
		history[i] = point
	}

	return &Aggregation{Users: users, History: history}
}

func (s *IdentityService) match(email string, named []*models.UserStat) *models.UserStat {
	for _, stat := range named {
		if stat.User.Email != "" && strings.EqualFold(stat.User.Email, email) {
			return stat
		}
	}

	var best *models.UserStat
	bestScore := 0.0
	tied := false
	for _, stat := range named {
		score := s.EmailNameSimilarity(email, stat.User.Name)
		switch {
		case score > bestScore:
			best, bestScore, tied = stat, score, false
		case score == bestScore:
			tied = true
		}
	}

	if best == nil || tied || bestScore < minNameSimilarity {
		return nil
	}
	return best
}

// emailOnly reports whether the APIs gave no display name for the user
func emailOnly(u models.User) bool {
	return u.Email != "" && (u.Name == "" || u.Name == u.Email)
}

// normalizeIdentity lowercases and keeps only letters and digits
func normalizeIdentity(str string) string {
	var result strings.Builder
	for _, r := range strings.ToLower(str) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

func initial(word string) string {
	for _, r := range word {
		return string(r)
	}
	return ""
}

// levenshtein counts the rune edits turning a into b
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	previous := make([]int, len(rb)+1)
	current := make([]int, len(rb)+1)
	for j := range previous {
		previous[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		current[0] = i
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				current[j] = previous[j-1]
			} else {
				current[j] = 1 + min(previous[j], current[j-1], previous[j-1])
			}
		}
		previous, current = current, previous
	}

	return previous[len(rb)]
}
