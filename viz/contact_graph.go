// ABOUTME: Contact-centred graph generation
// ABOUTME: One contact, or every contact, linked to their deals, open tasks, and quotes
package viz

import (
	"context"
	"fmt"

	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/dealboard/models"
)

// GenerateContactGraph draws contactID's deals, open tasks, and quotes. A nil
// id draws every contact.
func (g *GraphGenerator) GenerateContactGraph(ctx context.Context, contactID *int64) (string, error) {
	contacts, err := g.store.ListContacts(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch contacts: %w", err)
	}
	if contactID != nil {
		contact, err := g.store.GetContact(ctx, *contactID)
		if err != nil {
			return "", fmt.Errorf("failed to fetch contact: %w", err)
		}
		contacts = []models.Contact{*contact}
	}

	deals, err := g.store.ListDeals(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch deals: %w", err)
	}
	tasks, err := g.store.ListTasks(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch tasks: %w", err)
	}
	quotes, err := g.store.ListQuotes(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch quotes: %w", err)
	}

	return render(ctx, func(graph *cgraph.Graph) error {
		graph.SetLabel("Contacts")
		graph.SetRankDir(cgraph.LRRank)

		contactNodes := make(map[int64]*cgraph.Node, len(contacts))
		for _, c := range contacts {
			node, err := graph.CreateNodeByName(fmt.Sprintf("contact_%d", c.ID))
			if err != nil {
				return fmt.Errorf("failed to create contact node: %w", err)
			}
			label := c.FullName()
			if c.Company != "" {
				label += "\n" + c.Company
			}
			node.SetLabel(label)
			node.SetShape("ellipse")
			node.SetStyle("filled")
			node.SetFillColor("lightgreen")
			contactNodes[c.ID] = node
		}

		for _, d := range deals {
			if d.ContactID == nil {
				continue
			}
			cn, ok := contactNodes[*d.ContactID]
			if !ok {
				continue
			}
			node, err := graph.CreateNodeByName(fmt.Sprintf("deal_%d", d.ID))
			if err != nil {
				return fmt.Errorf("failed to create deal node: %w", err)
			}
			stage := d.Stage
			color := "white"
			if s, ok := models.LookupStage(d.Stage); ok {
				stage = s.Name
				color = fillFor(s.Color)
			}
			node.SetLabel(fmt.Sprintf("%s\n%s\n(%s)", d.Title, formatMoney(d.Value), stage))
			node.SetShape("diamond")
			node.SetStyle("filled")
			node.SetFillColor(color)
			edge, err := graph.CreateEdgeByName("deal", cn, node)
			if err != nil {
				return fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetLabel("deal")
		}

		for _, t := range tasks {
			if t.ContactID == nil || !t.IsOpen() {
				continue
			}
			cn, ok := contactNodes[*t.ContactID]
			if !ok {
				continue
			}
			node, err := graph.CreateNodeByName(fmt.Sprintf("task_%d", t.ID))
			if err != nil {
				return fmt.Errorf("failed to create task node: %w", err)
			}
			node.SetLabel(fmt.Sprintf("%s\ndue %s", t.Title, t.DueDate.Format("2006-01-02")))
			node.SetShape("note")
			edge, err := graph.CreateEdgeByName("task", cn, node)
			if err != nil {
				return fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetStyle("dashed")
		}

		for _, q := range quotes {
			cn, ok := contactNodes[q.ContactID]
			if !ok {
				continue
			}
			node, err := graph.CreateNodeByName(fmt.Sprintf("quote_%d", q.ID))
			if err != nil {
				return fmt.Errorf("failed to create quote node: %w", err)
			}
			node.SetLabel(fmt.Sprintf("Quote #%d\n%s", q.ID, q.Status))
			node.SetShape("component")
			edge, err := graph.CreateEdgeByName("quote", cn, node)
			if err != nil {
				return fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetStyle("dotted")
		}
		return nil
	})
}
