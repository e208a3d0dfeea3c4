package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"echoes/internal/engine"
	"echoes/internal/storage"
	"echoes/pkg/command"
	"echoes/pkg/prompts"
	"echoes/pkg/state"
)

const placeholderText = "What do you do next?"

var (
	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

// chatEntry is one block of text in the story pane.
type chatEntry struct {
	kind string // "narrator", "user", "info", "error"
	text string
}

// GameUI is the Bubble Tea model that runs the round loop.
type GameUI struct {
	engine *engine.Engine
	store  storage.Storage
	player *state.Player

	viewport viewport.Model
	textarea textarea.Model
	entries  []chatEntry
	round    int

	ready         bool
	width         int
	height        int
	loading       bool
	progressTick  int
	showQuitModal bool
	lastNarrative string
	err           error
}

type roundResultMsg struct {
	result *engine.RoundResult
	err    error
}

type progressTickMsg struct{}

func progressTicker() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}

func NewGameUI(eng *engine.Engine, store storage.Storage, player *state.Player, opening *engine.RoundResult) *GameUI {
	ta := textarea.New()
	ta.Placeholder = placeholderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	vp := viewport.New(50, 20)
	vp.MouseWheelEnabled = true

	ui := &GameUI{
		engine:        eng,
		store:         store,
		player:        player,
		textarea:      ta,
		viewport:      vp,
		round:         opening.Round,
		lastNarrative: opening.Narrative,
	}
	ui.appendResult(opening)
	return ui
}

func (m *GameUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m *GameUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.width - 4
		m.viewport.Height = m.height - 7
		m.textarea.SetWidth(m.width - 6)
		m.ready = true
		m.writeContent()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlY:
			// Copy the latest narration for sharing.
			_ = clipboard.WriteAll(m.lastNarrative)
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			return m.dispatch(input)
		}

	case roundResultMsg:
		m.loading = false
		if msg.err != nil {
			// Storage or template failures are not recoverable in-session.
			m.err = msg.err
			return m, tea.Quit
		}
		m.round = msg.result.Round
		m.lastNarrative = msg.result.Narrative
		m.appendResult(msg.result)
		m.writeContent()
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeContent()
			return m, progressTicker()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

// dispatch routes input through the closed command set; anything unmatched is
// a story action.
func (m *GameUI) dispatch(input string) (tea.Model, tea.Cmd) {
	switch command.Parse(input) {
	case command.Inventory:
		items, err := m.store.Inventory(context.Background(), m.player.GameID)
		if err != nil {
			m.appendEntry("error", "Error: "+err.Error())
		} else {
			m.appendEntry("info", prompts.InventoryView(items))
		}
	case command.Journal:
		events, err := m.store.RecentEvents(context.Background(), m.player.GameID, prompts.JournalEventWindow)
		if err != nil {
			m.appendEntry("error", "Error: "+err.Error())
		} else {
			m.appendEntry("info", prompts.Journal(events))
		}
	case command.Characters:
		npcs, err := m.store.ListNPCs(context.Background(), m.player.GameID)
		if err != nil {
			m.appendEntry("error", "Error: "+err.Error())
		} else {
			m.appendEntry("info", prompts.CharactersView(npcs))
		}
	case command.Help:
		m.appendEntry("info", command.HelpText)
	case command.Quit:
		m.showQuitModal = true
		return m, nil
	default:
		m.appendEntry("user", input)
		m.loading = true
		m.progressTick = 0
		m.writeContent()
		return m, tea.Batch(m.processAction(input), progressTicker())
	}
	m.writeContent()
	return m, nil
}

// processAction runs one round against the engine off the UI goroutine.
func (m *GameUI) processAction(action string) tea.Cmd {
	eng, player := m.engine, m.player
	return func() tea.Msg {
		result, err := eng.ProcessAction(context.Background(), player, action)
		return roundResultMsg{result: result, err: err}
	}
}

func (m *GameUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch strings.ToLower(key.String()) {
		case "y", "enter":
			return m, tea.Quit
		case "n", "esc":
			m.showQuitModal = false
			m.appendEntry("info", "Adventure continues...")
			m.writeContent()
		}
	}
	return m, nil
}

func (m *GameUI) appendResult(result *engine.RoundResult) {
	m.appendEntry("narrator", result.Narrative)
	if len(result.NewItems) > 0 {
		m.appendEntry("info", "Added to inventory: "+strings.Join(result.NewItems, ", "))
	}
}

func (m *GameUI) appendEntry(kind, text string) {
	m.entries = append(m.entries, chatEntry{kind: kind, text: text})
}

func (m *GameUI) writeContent() {
	width := m.viewport.Width - 4
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(headerStyle.Render("ECHOES OF THE NEW WORLD") + "\n")
	content.WriteString(fmt.Sprintf("%s — Round %d\n", m.player.Name, m.round))
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, entry := range m.entries {
		wrapped := wordwrap.String(entry.text, width)
		switch entry.kind {
		case "user":
			content.WriteString(userStyle.Render("You: ") + wrapped + "\n\n")
		case "info":
			content.WriteString(infoStyle.Render(wrapped) + "\n\n")
		case "error":
			content.WriteString(errorStyle.Render(wrapped) + "\n\n")
		default:
			content.WriteString(narratorStyle.Render(wrapped) + "\n\n")
		}
	}

	if m.loading {
		dots := strings.Repeat(".", m.progressTick%4)
		content.WriteString(infoStyle.Render("The story unfolds"+dots) + "\n")
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

func (m *GameUI) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showQuitModal {
		modal := modalStyle.Render("End your adventure?\n\n[y] yes, write the epilogue   [n] keep playing")
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
	}

	help := promptStyle.Render("i inventory · j journal · c characters · h help · q quit · ctrl+y copy")
	return fmt.Sprintf("%s\n%s\n%s", m.viewport.View(), m.textarea.View(), help)
}
