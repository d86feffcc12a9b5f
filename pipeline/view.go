// ABOUTME: Render-ready columns for the board surfaces
// ABOUTME: Resolves contact names and badge tiers so TUI, web, and MCP show the same cards
package pipeline

import "github.com/harperreed/dealboard/models"

// Card is one deal as a board shows it. ContactName is empty when the deal
// has no contact or the reference no longer resolves.
type Card struct {
	Deal        models.Deal     `json:"deal"`
	ContactName string          `json:"contact_name,omitempty"`
	Company     string          `json:"company,omitempty"`
	Tier        ProbabilityTier `json:"tier"`
}

type Column struct {
	Stage      models.Stage `json:"stage"`
	Cards      []Card       `json:"cards"`
	Count      int          `json:"count"`
	TotalValue float64      `json:"total_value"`
}

// Empty reports whether the column should show its empty state.
func (c Column) Empty() bool {
	return c.Count == 0
}

// Columns groups the deals matching term into render-ready columns.
func (b *Board) Columns(term string) []Column {
	contacts := b.Contacts()
	deals := FilterDeals(b.Deals(), contacts, term)
	return BuildColumns(GroupByStages(b.stages, deals), contacts)
}

// BuildColumns decorates stage groups with contact and badge details.
func BuildColumns(groups []StageGroup, contacts map[int64]models.Contact) []Column {
	cols := make([]Column, len(groups))
	for i, g := range groups {
		col := Column{
			Stage:      g.Stage,
			Cards:      make([]Card, 0, len(g.Deals)),
			Count:      g.Count,
			TotalValue: g.TotalValue,
		}
		for _, d := range g.Deals {
			card := Card{Deal: d, Tier: TierFor(d.Probability)}
			if d.ContactID != nil {
				if c, ok := contacts[*d.ContactID]; ok {
					card.ContactName = c.FullName()
					card.Company = c.Company
				}
			}
			col.Cards = append(col.Cards, card)
		}
		cols[i] = col
	}
	return cols
}
