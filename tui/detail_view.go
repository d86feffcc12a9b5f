package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/harperreed/dealboard/models"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("DEAL"))
	s.WriteString("\n\n")

	card, ok := m.selectedCard()
	if !ok {
		s.WriteString("Deal no longer on the board\n")
	} else {
		d := card.Deal
		stageName := d.Stage
		if st, ok := models.LookupStage(d.Stage); ok {
			stageName = lipgloss.NewStyle().Foreground(colorFor(st.Color)).Render(st.Name)
		}

		s.WriteString(m.renderField("Title", d.Title))
		s.WriteString(m.renderField("Stage", stageName))
		s.WriteString(m.renderField("Value", formatValue(d.Value)))
		s.WriteString(m.renderField("Probability", fmt.Sprintf("%d%% (%s)", d.Probability, card.Tier)))

		contact := card.ContactName
		if card.Company != "" {
			contact += " (" + card.Company + ")"
		}
		s.WriteString(m.renderField("Contact", contact))

		if d.ExpectedCloseDate != nil {
			s.WriteString(m.renderField("Expected Close", d.ExpectedCloseDate.Format("2006-01-02")))
		}
		s.WriteString(m.renderField("Created", humanize.Time(d.CreatedAt)))
		s.WriteString(m.renderField("Description", d.Description))
	}

	s.WriteString("\n")
	s.WriteString(m.renderStatus())
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"Esc: Back",
		"e: Edit",
		"d: Delete",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewBoard
	case "q":
		return m, tea.Quit
	case "e":
		if card, ok := m.selectedCard(); ok {
			m.initDealForm(card.Deal)
			m.viewMode = ViewEdit
			return m, textinput.Blink
		}
	case "d":
		if _, ok := m.selectedCard(); ok {
			m.viewMode = ViewConfirmDelete
		}
	}

	return m, nil
}
