package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-koopa/internal/core"
	"github.com/vovakirdan/tui-koopa/internal/registry"
)

// MenuItem represents a selectable game in the menu.
type MenuItem struct {
	GameID string
	Title  string
}

type menuStage int

const (
	stageGames menuStage = iota
	stageSlots
)

const newSlotRow = "+ new slot"

// MenuModel is the Bubble Tea model for the game and save-slot picker.
type MenuModel struct {
	items          []MenuItem
	cursor         int
	width          int
	height         int
	saves          core.SaveStore // nil skips the slot picker
	stage          menuStage
	slots          []core.SlotInfo
	slotTable      table.Model
	status         string
	config         core.RuntimeConfig
	keyMapper      *KeyMapper
	quitting       bool
	selected       *MenuItem // Set when user selects a game
	slot           string
	openScoreboard bool // True if user pressed Tab for scoreboard
}

// NewMenuModel creates a new menu model. With a non-nil saves store a
// slot is picked after the game.
func NewMenuModel(saves core.SaveStore, cfg core.RuntimeConfig) MenuModel {
	games := registry.List()
	items := make([]MenuItem, 0, len(games))
	for _, g := range games {
		items = append(items, MenuItem{GameID: g.ID, Title: g.Title})
	}

	return MenuModel{
		items:     items,
		width:     cfg.ScreenW,
		height:    cfg.ScreenH,
		saves:     saves,
		config:    cfg,
		keyMapper: NewKeyMapper(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.stage == stageSlots {
			return m.handleSlotKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		if m.stage == stageSlots {
			m.slotTable.SetHeight(m.tableHeight())
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit, MenuActionBack:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.items) == 0 {
			return m, nil
		}
		selected := m.items[m.cursor]
		if m.saves == nil {
			m.selected = &selected
			return m, tea.Quit // Exit menu to start game
		}
		m.stage = stageSlots
		m.loadSlots()

	case MenuActionScoreboard:
		m.openScoreboard = true
		return m, tea.Quit // Exit menu to show scoreboard
	}

	return m, nil
}

func (m MenuModel) handleSlotKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionBack:
		m.stage = stageGames
		m.status = ""
		return m, nil

	case MenuActionSelect:
		selected := m.items[m.cursor]
		m.selected = &selected
		m.slot = m.cursorSlot()
		if m.slot == "" {
			m.slot = nextSlotName(m.slots)
		}
		return m, tea.Quit

	case MenuActionDelete:
		name := m.cursorSlot()
		if name == "" {
			return m, nil
		}
		if err := m.saves.DeleteSlot(m.items[m.cursor].GameID, name); err != nil {
			m.status = err.Error()
		} else {
			m.status = fmt.Sprintf("deleted %s", name)
		}
		m.loadSlots()
		return m, nil
	}

	var cmd tea.Cmd
	m.slotTable, cmd = m.slotTable.Update(msg)
	return m, cmd
}

// cursorSlot returns the slot under the table cursor, or "" on the new
// slot row.
func (m MenuModel) cursorSlot() string {
	i := m.slotTable.Cursor()
	if i < 0 || i >= len(m.slots) {
		return ""
	}
	return m.slots[i].Name
}

func (m *MenuModel) loadSlots() {
	slots, err := m.saves.ListSlots(m.items[m.cursor].GameID)
	if err != nil {
		m.status = err.Error()
		slots = nil
	}
	m.slots = slots

	rows := make([]table.Row, 0, len(slots)+1)
	for _, s := range slots {
		rows = append(rows, table.Row{s.Name, s.Summary, s.UpdatedAt.Format("Jan 02 15:04")})
	}
	rows = append(rows, table.Row{newSlotRow, "", ""})

	m.slotTable = table.New(
		table.WithColumns([]table.Column{
			{Title: "Slot", Width: 14},
			{Title: "Progress", Width: 28},
			{Title: "Saved", Width: 14},
		}),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
	)
	m.slotTable.SetStyles(tableStyles())
}

func (m MenuModel) tableHeight() int {
	return max(m.height-10, 3)
}

// nextSlotName returns the first unused "slot-N" name.
func nextSlotName(slots []core.SlotInfo) string {
	used := make(map[string]bool, len(slots))
	for _, s := range slots {
		used[s.Name] = true
	}
	for n := 1; ; n++ {
		name := fmt.Sprintf("slot-%d", n)
		if !used[name] {
			return name
		}
	}
}

// tableStyles are shared by the slot picker and the scoreboard.
func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	return s
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText("  K O O P A  ", m.width))
	b.WriteString("\n\n")

	if m.stage == stageSlots {
		b.WriteString(centerText(fmt.Sprintf("%s - choose a save slot", m.items[m.cursor].Title), m.width))
		b.WriteString("\n\n")
		b.WriteString(m.slotTable.View())
		b.WriteString("\n\n")
		if m.status != "" {
			b.WriteString(centerText(m.status, m.width))
			b.WriteString("\n")
		}
		b.WriteString(centerText("Up/Down: Navigate  |  Enter: Play  |  X: Delete  |  Esc: Back", m.width))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(centerText("Select a game", m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString(centerText(cursor+item.Title, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Select  |  Tab: Scores  |  Q: Quit"
	b.WriteString(centerText(controls, m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// Slot returns the chosen save slot, empty when no slot was picked.
func (m MenuModel) Slot() string {
	return m.slot
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsScoreboard returns true if user requested scoreboard.
func (m MenuModel) WantsScoreboard() bool {
	return m.openScoreboard
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	if len(text) >= width {
		return text
	}
	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}

// MenuResult holds the result of running the menu.
type MenuResult struct {
	GameID          string
	Slot            string
	Config          core.RuntimeConfig
	WantsScoreboard bool
	Quit            bool
}

// RunMenu runs the menu and returns the selection result.
func RunMenu(saves core.SaveStore, cfg core.RuntimeConfig) (MenuResult, error) {
	model := NewMenuModel(saves, cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return MenuResult{Config: cfg}, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok {
		return MenuResult{Config: cfg, Quit: true}, nil
	}

	result := MenuResult{
		Config: m.Config(),
	}

	if m.WantsScoreboard() {
		result.WantsScoreboard = true
		return result, nil
	}

	if m.IsQuitting() {
		result.Quit = true
		return result, nil
	}

	if m.Selected() != nil {
		result.GameID = m.Selected().GameID
		result.Slot = m.Slot()
	} else {
		result.Quit = true
	}

	return result, nil
}
