// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Kanban pipeline board with keyboard drag-and-drop between stage columns
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
	"github.com/harperreed/dealboard/viz"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewBoard ViewMode = iota
	ViewDetail
	ViewEdit
	ViewGraph
	ViewConfirmDelete
)

// Model is the main bubbletea model
type Model struct {
	ctx        context.Context
	board      *pipeline.Board
	controller *pipeline.Controller
	graphs     viz.GraphStore
	viewMode   ViewMode

	// Board state
	columns   []pipeline.Column
	col       int
	row       int
	filter    textinput.Model
	filtering bool
	loaded    bool

	// Drag state: the column the card came from while it is held
	dragging bool
	dragFrom int
	pending  bool

	// Edit view state
	formInputs   []textinput.Model
	focusIndex   int
	editingID    int64
	editingStage string

	// Graph view state
	graphDOT string

	// Status line
	status    string
	statusErr bool

	// UI state
	width  int
	height int
}

// NewModel creates a new TUI model. graphs may be nil, which disables the
// graph view.
func NewModel(ctx context.Context, board *pipeline.Board, graphs viz.GraphStore) Model {
	filter := textinput.New()
	filter.Placeholder = "Filter by title, contact, or company"
	filter.CharLimit = 100
	filter.Prompt = "/ "

	return Model{
		ctx:        ctx,
		board:      board,
		controller: board.NewController(),
		graphs:     graphs,
		viewMode:   ViewBoard,
		columns:    board.Columns(""),
		filter:     filter,
		width:      120,
		height:     30,
	}
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, board *pipeline.Board, graphs viz.GraphStore) error {
	p := tea.NewProgram(NewModel(ctx, board, graphs), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

type boardLoadedMsg struct{ err error }

type dropDoneMsg struct {
	result pipeline.DropResult
	err    error
}

type dealSavedMsg struct {
	id  int64
	err error
}

type dealDeletedMsg struct {
	title string
	err   error
}

type graphMsg struct {
	dot string
	err error
}

func (m Model) loadCmd() tea.Cmd {
	board := m.board
	ctx := m.ctx
	return func() tea.Msg {
		return boardLoadedMsg{err: board.Load(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case boardLoadedMsg:
		if msg.err != nil {
			m.setError("Failed to load deals", msg.err)
			return m, nil
		}
		m.loaded = true
		m.refresh()
		return m, nil
	case dropDoneMsg:
		return m.handleDropDone(msg)
	case dealSavedMsg:
		if msg.err != nil {
			m.setError("Failed to save deal", msg.err)
			return m, nil
		}
		m.refresh()
		m.focusDeal(msg.id)
		m.viewMode = ViewDetail
		m.setStatus("Deal saved")
		return m, nil
	case dealDeletedMsg:
		if msg.err != nil {
			m.setError("Failed to delete deal", msg.err)
			m.viewMode = ViewBoard
			return m, nil
		}
		m.refresh()
		m.viewMode = ViewBoard
		m.setStatus("Deleted " + msg.title)
		return m, nil
	case graphMsg:
		if msg.err != nil {
			m.setError("Failed to generate graph", msg.err)
			m.viewMode = ViewBoard
			return m, nil
		}
		m.graphDOT = msg.dot
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewBoard:
		return m.renderBoardView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewEdit:
		return m.renderEditView()
	case ViewGraph:
		return m.renderGraphView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewBoard:
		return m.handleBoardKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewEdit:
		return m.handleEditKeys(msg)
	case ViewGraph:
		return m.handleGraphKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	}

	return m, nil
}

// refresh rebuilds the columns from the board and keeps the cursor in range.
func (m *Model) refresh() {
	m.columns = m.board.Columns(m.filter.Value())
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if len(m.columns) == 0 {
		m.col, m.row = 0, 0
		return
	}
	if m.col >= len(m.columns) {
		m.col = len(m.columns) - 1
	}
	if m.col < 0 {
		m.col = 0
	}
	n := len(m.columns[m.col].Cards)
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

// focusDeal moves the cursor onto the card for id if it is visible.
// focusDeal moves the cursor onto a deal's card. Columns follow stage order,
// so the deal's stage picks the column; a card hidden by the filter leaves
// the cursor where it was.
func (m *Model) focusDeal(id int64) {
	deal, ok := m.board.Deal(id)
	if !ok {
		return
	}
	c := models.StageIndex(deal.Stage)
	if c < 0 || c >= len(m.columns) {
		return
	}
	for r, card := range m.columns[c].Cards {
		if card.Deal.ID == id {
			m.col, m.row = c, r
			return
		}
	}
}

// selectedCard returns the card under the cursor.
func (m Model) selectedCard() (pipeline.Card, bool) {
	if m.col < 0 || m.col >= len(m.columns) {
		return pipeline.Card{}, false
	}
	cards := m.columns[m.col].Cards
	if m.row < 0 || m.row >= len(cards) {
		return pipeline.Card{}, false
	}
	return cards[m.row], true
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(prefix string, err error) {
	m.status = prefix + ": " + err.Error()
	m.statusErr = true
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)
)

// stageColors maps taxonomy colour names to terminal colours.
var stageColors = map[string]lipgloss.Color{
	"gray":   lipgloss.Color("245"),
	"blue":   lipgloss.Color("33"),
	"yellow": lipgloss.Color("220"),
	"orange": lipgloss.Color("208"),
	"green":  lipgloss.Color("42"),
	"red":    lipgloss.Color("196"),
}

func colorFor(name string) lipgloss.Color {
	if c, ok := stageColors[name]; ok {
		return c
	}
	return lipgloss.Color("252")
}
