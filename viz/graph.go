// ABOUTME: GraphViz generation for the deal pipeline
// ABOUTME: Stage chain with each deal hanging off its stage, coloured by the stage palette
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
)

// GraphStore is what the graph generators read.
type GraphStore interface {
	db.ContactStore
	db.DealStore
	db.TaskStore
	db.QuoteStore
}

type GraphGenerator struct {
	store GraphStore
}

func NewGraphGenerator(store GraphStore) *GraphGenerator {
	return &GraphGenerator{store: store}
}

// stageFill maps the board palette to graphviz fill colours light enough for black text.
var stageFill = map[string]string{
	"gray":   "lightgray",
	"blue":   "lightblue",
	"yellow": "lightyellow",
	"orange": "moccasin",
	"green":  "palegreen",
	"red":    "mistyrose",
}

func fillFor(color string) string {
	if c, ok := stageFill[color]; ok {
		return c
	}
	return "white"
}

// render sets up a graphviz instance, lets build populate the graph, and
// returns the DOT output.
func render(ctx context.Context, build func(graph *cgraph.Graph) error) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	if err := build(graph); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}

// GeneratePipelineGraph draws the stage progression left to right with every
// deal attached to its stage. Deals with a stage outside the taxonomy are left out.
func (g *GraphGenerator) GeneratePipelineGraph(ctx context.Context) (string, error) {
	deals, err := g.store.ListDeals(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch deals: %w", err)
	}
	groups := pipeline.GroupByStage(deals)

	return render(ctx, func(graph *cgraph.Graph) error {
		graph.SetLabel("Deal Pipeline")
		graph.SetRankDir(cgraph.LRRank)

		stageNodes := make(map[string]*cgraph.Node, len(groups))
		for _, group := range groups {
			node, err := graph.CreateNodeByName("stage_" + group.Stage.ID)
			if err != nil {
				return fmt.Errorf("failed to create stage node: %w", err)
			}
			node.SetLabel(fmt.Sprintf("%s\n%d deals\n%s", group.Stage.Name, group.Count, formatMoney(group.TotalValue)))
			node.SetShape("box")
			node.SetStyle("filled")
			node.SetFillColor(fillFor(group.Stage.Color))
			stageNodes[group.Stage.ID] = node

			for _, deal := range group.Deals {
				dn, err := graph.CreateNodeByName(fmt.Sprintf("deal_%d", deal.ID))
				if err != nil {
					return fmt.Errorf("failed to create deal node: %w", err)
				}
				dn.SetLabel(fmt.Sprintf("%s\n%s (%d%%)", deal.Title, formatMoney(deal.Value), deal.Probability))
				dn.SetShape("ellipse")
				edge, err := graph.CreateEdgeByName(fmt.Sprintf("in_%d", deal.ID), node, dn)
				if err != nil {
					return fmt.Errorf("failed to create edge: %w", err)
				}
				edge.SetStyle("dotted")
				edge.SetArrowHead("none")
			}
		}

		// open stages form a chain; negotiation forks to both closed outcomes
		open := []string{models.StageLead, models.StageQualified, models.StageProposal, models.StageNegotiation}
		for i := 0; i+1 < len(open); i++ {
			if _, err := graph.CreateEdgeByName("next", stageNodes[open[i]], stageNodes[open[i+1]]); err != nil {
				return fmt.Errorf("failed to create stage edge: %w", err)
			}
		}
		for _, closed := range []string{models.StageClosedWon, models.StageClosedLost} {
			edge, err := graph.CreateEdgeByName("close", stageNodes[models.StageNegotiation], stageNodes[closed])
			if err != nil {
				return fmt.Errorf("failed to create stage edge: %w", err)
			}
			edge.SetStyle("bold")
		}
		return nil
	})
}

func formatMoney(v float64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("$%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("$%.1fK", v/1_000)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}
