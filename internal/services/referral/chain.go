package referral

import (
	"github.com/arvoinvest/backend/internal/models"
	"github.com/google/uuid"
)

// MaxLevels is the depth of the commission structure. It is also the hard
// bound on chain walks: referral assignment does not enforce acyclicity, so
// the cap is what keeps a corrupted chain from looping forever.
const MaxLevels = 7

// ResolveChain walks the referred_by pointers of a user and returns up to
// MaxLevels ancestor ids, nearest first. A user without an upline, or an
// upline row that cannot be read, ends the chain; neither is an error.
func (s *ReferralService) ResolveChain(userID uuid.UUID) []uuid.UUID {
	chain := make([]uuid.UUID, 0, MaxLevels)

	currentID := userID
	for len(chain) < MaxLevels {
		var user models.User
		if err := s.db.Select("id", "referred_by").First(&user, "id = ?", currentID).Error; err != nil {
			break
		}

		if user.ReferredBy == nil {
			break
		}

		chain = append(chain, *user.ReferredBy)
		currentID = *user.ReferredBy
	}

	return chain
}
