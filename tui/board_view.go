// ABOUTME: Kanban board view for the TUI
// ABOUTME: Renders stage columns and turns space/arrows/esc into drag-controller calls
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
)

const minColumnWidth = 18

var (
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	dropTargetStyle = columnStyle.
			BorderForeground(lipgloss.Color("170"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	selectedCardStyle = cardStyle.
				BorderForeground(lipgloss.Color("170"))

	ghostCardStyle = cardStyle.
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("170")).
			Faint(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

func (m Model) renderBoardView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("DEAL PIPELINE"))
	s.WriteString("\n")

	if m.filtering || m.filter.Value() != "" {
		s.WriteString(m.filter.View())
		s.WriteString("\n")
	}

	if !m.loaded && m.status == "" {
		s.WriteString("Loading deals...\n")
		return s.String()
	}

	width := m.columnWidth()
	rendered := make([]string, len(m.columns))
	for i, col := range m.columns {
		rendered[i] = m.renderColumn(i, col, width)
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	s.WriteString("\n")

	s.WriteString(m.renderStatus())
	s.WriteString(m.renderBoardHelp())

	return s.String()
}

func (m Model) columnWidth() int {
	n := len(m.columns)
	if n == 0 {
		return minColumnWidth
	}
	// border and padding take four cells per column
	w := m.width/n - 4
	if w < minColumnWidth {
		return minColumnWidth
	}
	return w
}

func (m Model) renderColumn(i int, col pipeline.Column, width int) string {
	var s strings.Builder

	header := lipgloss.NewStyle().Bold(true).Foreground(colorFor(col.Stage.Color)).Render(col.Stage.Name)
	s.WriteString(header)
	s.WriteString("\n")
	s.WriteString(mutedStyle.Render(fmt.Sprintf("%d · %s", col.Count, formatValue(col.TotalValue))))
	s.WriteString("\n\n")

	for r, card := range col.Cards {
		style := cardStyle
		if i == m.col && r == m.row && !m.dragging {
			style = selectedCardStyle
		}
		if m.dragging && i == m.dragFrom && r == m.row {
			style = style.Faint(true)
		}
		s.WriteString(style.Width(width - 2).Render(renderCard(card)))
		s.WriteString("\n")
	}

	if m.dragging && i == m.col && i != m.dragFrom {
		if held, ok := m.controller.Payload(); ok {
			ghost := pipeline.Card{Deal: held, Tier: pipeline.TierFor(held.Probability)}
			if c, ok := m.board.Contact(held.ContactID); ok {
				ghost.ContactName = c.FullName()
			}
			s.WriteString(ghostCardStyle.Width(width - 2).Render(renderCard(ghost)))
			s.WriteString("\n")
		}
	}

	if col.Empty() && !(m.dragging && i == m.col) {
		s.WriteString(emptyStyle.Render("No deals in this stage"))
	}

	style := columnStyle
	if m.dragging && i == m.col {
		style = dropTargetStyle
	}
	return style.Width(width).Render(s.String())
}

func renderCard(card pipeline.Card) string {
	d := card.Deal
	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(d.Title),
		formatValue(d.Value),
	}
	if card.ContactName != "" {
		lines = append(lines, mutedStyle.Render(card.ContactName))
	}
	badge := lipgloss.NewStyle().Foreground(colorFor(card.Tier.Color())).Render(fmt.Sprintf("%d%%", d.Probability))
	if d.ExpectedCloseDate != nil {
		badge += mutedStyle.Render(" · " + d.ExpectedCloseDate.Format("Jan 2"))
	}
	lines = append(lines, badge)
	return strings.Join(lines, "\n")
}

func formatValue(v float64) string {
	return "$" + humanize.Commaf(v)
}

func (m Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return errorStyle.Render(m.status) + "\n"
	}
	return statusStyle.Render(m.status) + "\n"
}

func (m Model) renderBoardHelp() string {
	var help []string
	switch {
	case m.filtering:
		help = []string{"Enter: Apply", "Esc: Clear filter"}
	case m.dragging:
		help = []string{"←/→: Choose stage", "Space: Drop", "Esc: Cancel"}
	default:
		help = []string{
			"←/→/↑/↓: Navigate",
			"Space: Pick up",
			"Enter: Details",
			"n: New",
			"e: Edit",
			"d: Delete",
			"g: Graph",
			"/: Filter",
			"r: Reload",
			"q: Quit",
		}
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		return m.handleFilterKeys(msg)
	}

	// a drop is in flight; wait for its result
	if m.pending {
		return m, nil
	}

	switch msg.String() {
	case "q":
		if m.dragging {
			return m, nil
		}
		return m, tea.Quit
	case "left", "h":
		if m.col > 0 {
			m.col--
			if !m.dragging {
				m.clampCursor()
			}
		}
	case "right", "l":
		if m.col < len(m.columns)-1 {
			m.col++
			if !m.dragging {
				m.clampCursor()
			}
		}
	case "up", "k":
		if !m.dragging && m.row > 0 {
			m.row--
		}
	case "down", "j":
		if !m.dragging {
			m.row++
			m.clampCursor()
		}
	case " ", "space":
		if m.dragging {
			return m.drop()
		}
		return m.pickUp()
	case "esc":
		if m.dragging {
			m.controller.Cancel()
			m.dragging = false
			m.col = m.dragFrom
			m.setStatus("Move cancelled")
			return m, nil
		}
		if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.refresh()
		}
	case "enter":
		if _, ok := m.selectedCard(); ok && !m.dragging {
			m.viewMode = ViewDetail
		}
	case "e":
		if card, ok := m.selectedCard(); ok && !m.dragging {
			m.initDealForm(card.Deal)
			m.viewMode = ViewEdit
			return m, textinput.Blink
		}
	case "n":
		if !m.dragging && m.col < len(m.columns) {
			m.initDealForm(models.Deal{Stage: m.columns[m.col].Stage.ID})
			m.viewMode = ViewEdit
			return m, textinput.Blink
		}
	case "d":
		if _, ok := m.selectedCard(); ok && !m.dragging {
			m.viewMode = ViewConfirmDelete
		}
	case "g":
		if !m.dragging && m.graphs != nil {
			m.viewMode = ViewGraph
			m.graphDOT = ""
			return m, m.graphCmd()
		}
	case "r":
		if !m.dragging {
			m.setStatus("Reloading...")
			return m, m.loadCmd()
		}
	case "/":
		if !m.dragging {
			m.filtering = true
			m.filter.Focus()
			return m, textinput.Blink
		}
	}

	return m, nil
}

func (m Model) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case "esc":
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.refresh()
	return m, cmd
}

func (m Model) pickUp() (tea.Model, tea.Cmd) {
	card, ok := m.selectedCard()
	if !ok {
		return m, nil
	}
	if err := m.controller.Begin(card.Deal); err != nil {
		m.setError("Cannot pick up deal", err)
		return m, nil
	}
	m.dragging = true
	m.dragFrom = m.col
	m.setStatus("Moving " + card.Deal.Title)
	return m, nil
}

// drop releases the held card over the current column. The store call runs
// as a command so the UI stays responsive.
func (m Model) drop() (tea.Model, tea.Cmd) {
	if m.col < 0 || m.col >= len(m.columns) {
		return m, nil
	}
	stage := m.columns[m.col].Stage.ID
	m.pending = true
	controller := m.controller
	ctx := m.ctx
	return m, func() tea.Msg {
		res, err := controller.Drop(ctx, stage)
		return dropDoneMsg{result: res, err: err}
	}
}

func (m Model) handleDropDone(msg dropDoneMsg) (tea.Model, tea.Cmd) {
	m.pending = false
	m.dragging = false
	res := msg.result

	if msg.err != nil {
		m.refresh()
		m.col = m.dragFrom
		m.focusDeal(res.DealID)
		cause := msg.err
		var te *pipeline.TransitionError
		if errors.As(msg.err, &te) {
			cause = te.Err
		}
		m.setError("Failed to update deal stage", cause)
		return m, nil
	}

	switch res.Outcome {
	case pipeline.OutcomeMoved:
		m.refresh()
		m.focusDeal(res.DealID)
		to, _ := models.LookupStage(res.To)
		title := ""
		if res.Deal != nil {
			title = res.Deal.Title
		}
		m.setStatus(fmt.Sprintf("Moved %s to %s", title, to.Name))
	case pipeline.OutcomeUnchanged, pipeline.OutcomeIgnored:
		m.col = m.dragFrom
		m.focusDeal(res.DealID)
		m.setStatus("")
	}
	return m, nil
}
