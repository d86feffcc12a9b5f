// ABOUTME: Deal grouping engine for the pipeline board
// ABOUTME: Stable partition of deals by stage with per-stage count and total value
package pipeline

import (
	"math"

	"github.com/harperreed/dealboard/models"
)

// StageGroup is one board column's worth of deals. It is derived on every
// read and never cached.
type StageGroup struct {
	Stage      models.Stage  `json:"stage"`
	Deals      []models.Deal `json:"deals"`
	Count      int           `json:"count"`
	TotalValue float64       `json:"total_value"`
}

// GroupByStage groups deals into one StageGroup per taxonomy entry, in
// taxonomy order. Deals with an unknown stage are dropped.
func GroupByStage(deals []models.Deal) []StageGroup {
	groups, _ := Partition(models.Stages(), deals)
	return groups
}

// GroupByStages is GroupByStage over an explicit stage list.
func GroupByStages(stages []models.Stage, deals []models.Deal) []StageGroup {
	groups, _ := Partition(stages, deals)
	return groups
}

// Partition returns the groups plus the deals whose stage matched none of
// them. Within a group deals keep their input order.
func Partition(stages []models.Stage, deals []models.Deal) ([]StageGroup, []models.Deal) {
	groups := make([]StageGroup, len(stages))
	matched := make([]bool, len(deals))

	for i, stage := range stages {
		g := StageGroup{Stage: stage, Deals: []models.Deal{}}
		for j, d := range deals {
			if d.Stage != stage.ID {
				continue
			}
			g.Deals = append(g.Deals, d)
			g.TotalValue += dealValue(d.Value)
			matched[j] = true
		}
		g.Count = len(g.Deals)
		groups[i] = g
	}

	var unmatched []models.Deal
	for j, d := range deals {
		if !matched[j] {
			unmatched = append(unmatched, d)
		}
	}
	return groups, unmatched
}

// dealValue counts NaN and infinities as zero so one bad record cannot
// poison a column total.
func dealValue(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Summary rolls the groups up into board-wide figures.
type Summary struct {
	Deals         int     `json:"deals"`
	OpenDeals     int     `json:"open_deals"`
	TotalValue    float64 `json:"total_value"`
	OpenValue     float64 `json:"open_value"`
	WonValue      float64 `json:"won_value"`
	WeightedValue float64 `json:"weighted_value"`
}

func Summarize(groups []StageGroup) Summary {
	var s Summary
	for _, g := range groups {
		s.Deals += g.Count
		s.TotalValue += g.TotalValue

		switch {
		case g.Stage.ID == models.StageClosedWon:
			s.WonValue += g.TotalValue
		case !g.Stage.Closed():
			s.OpenDeals += g.Count
			s.OpenValue += g.TotalValue
			for _, d := range g.Deals {
				s.WeightedValue += dealValue(d.Value) * float64(d.Probability) / 100
			}
		}
	}
	return s
}
