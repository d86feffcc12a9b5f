package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/dealboard/models"
)

const (
	fieldTitle = iota
	fieldValue
	fieldProbability
	fieldCloseDate
	fieldDescription
	fieldCount
)

func (m Model) renderEditView() string {
	var s strings.Builder

	if m.editingID == 0 {
		stage, _ := models.LookupStage(m.editingStage)
		s.WriteString(titleStyle.Render("NEW DEAL IN " + strings.ToUpper(stage.Name)))
	} else {
		s.WriteString(titleStyle.Render("EDIT DEAL"))
	}
	s.WriteString("\n\n")

	for i, input := range m.formInputs {
		if i == m.focusIndex {
			s.WriteString("> ")
		} else {
			s.WriteString("  ")
		}
		s.WriteString(input.View())
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(m.renderStatus())
	s.WriteString(m.renderEditHelp())

	return s.String()
}

func (m Model) renderEditHelp() string {
	help := []string{
		"Tab: Next field",
		"Enter: Save",
		"Esc: Cancel",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewBoard
		m.setStatus("")
		return m, nil
	case "tab", "down":
		m.focusIndex = (m.focusIndex + 1) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "shift+tab", "up":
		m.focusIndex = (m.focusIndex + len(m.formInputs) - 1) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "enter":
		return m.save()
	}

	var cmd tea.Cmd
	m.formInputs[m.focusIndex], cmd = m.formInputs[m.focusIndex].Update(msg)
	return m, cmd
}

// initDealForm fills the form from deal. A zero id means a new deal in the
// stage of the current column.
func (m *Model) initDealForm(deal models.Deal) {
	inputs := make([]textinput.Model, fieldCount)

	inputs[fieldTitle] = textinput.New()
	inputs[fieldTitle].Placeholder = "Title"
	inputs[fieldTitle].CharLimit = 100

	inputs[fieldValue] = textinput.New()
	inputs[fieldValue].Placeholder = "Value"
	inputs[fieldValue].CharLimit = 20

	inputs[fieldProbability] = textinput.New()
	inputs[fieldProbability].Placeholder = "Probability 0-100"
	inputs[fieldProbability].CharLimit = 3

	inputs[fieldCloseDate] = textinput.New()
	inputs[fieldCloseDate].Placeholder = "Expected close (YYYY-MM-DD)"
	inputs[fieldCloseDate].CharLimit = 10

	inputs[fieldDescription] = textinput.New()
	inputs[fieldDescription].Placeholder = "Description"
	inputs[fieldDescription].CharLimit = 500

	m.editingID = deal.ID
	m.editingStage = deal.Stage
	if deal.ID != 0 {
		inputs[fieldTitle].SetValue(deal.Title)
		inputs[fieldValue].SetValue(strconv.FormatFloat(deal.Value, 'f', -1, 64))
		inputs[fieldProbability].SetValue(strconv.Itoa(deal.Probability))
		if deal.ExpectedCloseDate != nil {
			inputs[fieldCloseDate].SetValue(deal.ExpectedCloseDate.Format("2006-01-02"))
		}
		inputs[fieldDescription].SetValue(deal.Description)
	}

	m.formInputs = inputs
	m.focusIndex = 0
	m.updateFormFocus()
	m.setStatus("")
}

func (m *Model) updateFormFocus() {
	for i := range m.formInputs {
		if i == m.focusIndex {
			m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
}

// formPatch reads the form into a patch that overwrites every editable field.
func (m Model) formPatch() (models.DealPatch, error) {
	title := strings.TrimSpace(m.formInputs[fieldTitle].Value())
	if title == "" {
		return models.DealPatch{}, fmt.Errorf("title is required")
	}
	patch := models.DealPatch{Title: &title}

	value := 0.0
	if raw := strings.TrimSpace(m.formInputs[fieldValue].Value()); raw != "" {
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			return models.DealPatch{}, fmt.Errorf("value must be a number")
		}
		value = v
	}
	patch.Value = &value

	if raw := strings.TrimSpace(m.formInputs[fieldProbability].Value()); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			return models.DealPatch{}, fmt.Errorf("probability must be a whole number")
		}
		patch.Probability = &p
	}

	if raw := strings.TrimSpace(m.formInputs[fieldCloseDate].Value()); raw != "" {
		t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return models.DealPatch{}, fmt.Errorf("expected close must be YYYY-MM-DD")
		}
		patch.ExpectedCloseDate = &t
	} else {
		patch.ClearCloseDate = true
	}

	description := strings.TrimSpace(m.formInputs[fieldDescription].Value())
	patch.Description = &description

	return patch, nil
}

func (m Model) save() (tea.Model, tea.Cmd) {
	patch, err := m.formPatch()
	if err != nil {
		m.setError("Cannot save", err)
		return m, nil
	}

	board := m.board
	ctx := m.ctx
	id := m.editingID

	if id == 0 {
		deal := patch.Apply(models.Deal{Stage: m.editingStage, Probability: models.DefaultProbability})
		return m, func() tea.Msg {
			err := board.CreateDeal(ctx, &deal)
			return dealSavedMsg{id: deal.ID, err: err}
		}
	}

	return m, func() tea.Msg {
		_, err := board.EditDeal(ctx, id, patch)
		return dealSavedMsg{id: id, err: err}
	}
}
