package team

import (
	"fmt"
	"log"

	"github.com/arvoinvest/backend/internal/models"
	"github.com/arvoinvest/backend/internal/services/referral"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Per-level fetch caps for descendant expansion
const (
	level1Cap = 50
	deepCap   = 100
)

// Member is a downline user annotated with the sum of their own investments
type Member struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	ReferralCode  string    `json:"referral_code"`
	TotalInvested float64   `json:"total_invested"`
	JoinedAt      string    `json:"joined_at"`
}

// Stats holds per-level team counts
type Stats struct {
	LevelCounts   [referral.MaxLevels]int `json:"level_counts"`
	TotalTeamSize int                     `json:"total_team_size"`
}

// TeamService expands a user's downline, breadth-first by level
type TeamService struct {
	db *gorm.DB
}

// NewTeamService creates a new team service
func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{db: db}
}

// ExpandDescendants returns the downline partitioned by level, 1..MaxLevels.
// Level 1 is capped at 50 members, deeper levels at 100 each. Expansion stops
// at the first empty level; the remaining levels stay empty. A failure on the
// level-1 query is surfaced; a failure on a deeper level just ends the
// expansion early, matching what the UI can tolerate.
func (s *TeamService) ExpandDescendants(userID uuid.UUID) ([referral.MaxLevels][]Member, error) {
	var levels [referral.MaxLevels][]Member

	parentIDs := []uuid.UUID{userID}
	for level := 1; level <= referral.MaxLevels; level++ {
		users, err := s.fetchLevel(parentIDs, level)
		if err != nil {
			if level == 1 {
				return levels, err
			}
			log.Printf("Team expansion for %s stopped at level %d: %v", userID, level, err)
			break
		}
		if len(users) == 0 {
			break
		}

		members := make([]Member, 0, len(users))
		nextParents := make([]uuid.UUID, 0, len(users))
		for _, u := range users {
			invested, err := s.totalInvested(u.ID)
			if err != nil {
				log.Printf("Could not total investments for %s: %v", u.ID, err)
			}
			members = append(members, Member{
				ID:            u.ID,
				Username:      u.Username,
				ReferralCode:  u.ReferralCode,
				TotalInvested: invested,
				JoinedAt:      u.CreatedAt.Format("2006-01-02"),
			})
			nextParents = append(nextParents, u.ID)
		}

		levels[level-1] = members
		parentIDs = nextParents
	}

	return levels, nil
}

// TeamStats runs the same breadth-first expansion but keeps only counts
func (s *TeamService) TeamStats(userID uuid.UUID) (*Stats, error) {
	stats := &Stats{}

	parentIDs := []uuid.UUID{userID}
	for level := 1; level <= referral.MaxLevels; level++ {
		users, err := s.fetchLevel(parentIDs, level)
		if err != nil {
			if level == 1 {
				return nil, err
			}
			log.Printf("Team stats for %s stopped at level %d: %v", userID, level, err)
			break
		}
		if len(users) == 0 {
			break
		}

		stats.LevelCounts[level-1] = len(users)
		stats.TotalTeamSize += len(users)

		parentIDs = parentIDs[:0]
		for _, u := range users {
			parentIDs = append(parentIDs, u.ID)
		}
	}

	return stats, nil
}

// fetchLevel loads the users directly referred by any of the given parents
func (s *TeamService) fetchLevel(parentIDs []uuid.UUID, level int) ([]models.User, error) {
	limit := deepCap
	if level == 1 {
		limit = level1Cap
	}

	var users []models.User
	if err := s.db.Where("referred_by IN ?", parentIDs).
		Order("created_at ASC").Limit(limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("error loading level %d members: %w", level, err)
	}
	return users, nil
}

// totalInvested sums the amounts of a member's own investments
func (s *TeamService) totalInvested(userID uuid.UUID) (float64, error) {
	var total float64
	err := s.db.Model(&models.Investment{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("error summing investments: %w", err)
	}
	return total, nil
}
