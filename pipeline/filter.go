// ABOUTME: Deal search and probability badge tiers for board cards
// ABOUTME: Search matches title, contact name, or contact company case-insensitively
package pipeline

import (
	"strings"

	"github.com/harperreed/dealboard/models"
)

// FilterDeals keeps deals whose title, contact name or contact company
// contains term. An empty term keeps everything. Order is preserved.
func FilterDeals(deals []models.Deal, contacts map[int64]models.Contact, term string) []models.Deal {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return deals
	}

	out := make([]models.Deal, 0, len(deals))
	for _, d := range deals {
		if strings.Contains(strings.ToLower(d.Title), term) {
			out = append(out, d)
			continue
		}
		if d.ContactID == nil {
			continue
		}
		c, ok := contacts[*d.ContactID]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(c.FullName()), term) ||
			strings.Contains(strings.ToLower(c.Company), term) {
			out = append(out, d)
		}
	}
	return out
}

type ProbabilityTier string

const (
	TierHigh    ProbabilityTier = "high"
	TierMedium  ProbabilityTier = "medium"
	TierLow     ProbabilityTier = "low"
	TierMinimal ProbabilityTier = "minimal"
)

func TierFor(probability int) ProbabilityTier {
	switch {
	case probability >= 75:
		return TierHigh
	case probability >= 50:
		return TierMedium
	case probability >= 25:
		return TierLow
	default:
		return TierMinimal
	}
}

// Color is the badge colour for the tier.
func (t ProbabilityTier) Color() string {
	switch t {
	case TierHigh:
		return "green"
	case TierMedium:
		return "yellow"
	case TierLow:
		return "blue"
	default:
		return "gray"
	}
}
