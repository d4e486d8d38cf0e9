// Package tui provides a terminal user interface for building and sending
// dLive console commands
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shedworth/companion-module-allenheath-dlive/pkg/command"
	"github.com/shedworth/companion-module-allenheath-dlive/pkg/macro"
)

// Console-surface colour scheme
var (
	ledGreen  = lipgloss.Color("#3CE66B")
	ledAmber  = lipgloss.Color("#FFB000")
	panelGray = lipgloss.Color("#C0C0C0")
	darkGray  = lipgloss.Color("#2B2B2B")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ledGreen).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(panelGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(ledGreen).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(ledAmber).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF3B30")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(ledGreen).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ledGreen).
			Padding(1, 2)
)

// menuPage is the number of menu rows shown at once
const menuPage = 12

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateEntry
	StateFilePicker
	StateWorking
	StateResult
)

type itemKind int

const (
	itemOperation itemKind = iota
	itemMacro
	itemExit
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Operation   command.Operation
	kind        itemKind
}

func menuItems() []MenuItem {
	var items []MenuItem
	for _, def := range command.Operations() {
		items = append(items, MenuItem{
			Title:       def.Name,
			Description: def.Description,
			Operation:   def.Operation,
		})
	}
	return append(items,
		MenuItem{Title: "Run macro", Description: "Pick a YAML or JSON macro file and run every step", kind: itemMacro},
		MenuItem{Title: "Exit", Description: "Exit the application", kind: itemExit},
	)
}

// Model represents the TUI model
type Model struct {
	dispatcher *command.Dispatcher
	send       bool

	state      State
	items      []MenuItem
	menuIndex  int
	selected   MenuItem
	input      textinput.Model
	filePicker filepicker.Model
	spinner    spinner.Model

	result string
	err    error
	width  int
	height int
}

// doneMsg carries the outcome of a resolve, send or macro run
type doneMsg struct {
	summary string
	err     error
}

// New creates a new TUI model. With send false commands are only resolved
// and shown; nothing reaches the console.
func New(dispatcher *command.Dispatcher, send bool) Model {
	ti := textinput.New()
	ti.Placeholder = "channelType=input input=0 mute=true"
	ti.Prompt = "› "
	ti.CharLimit = 512
	ti.Width = 60

	fp := filepicker.New()
	fp.AllowedTypes = []string{".yaml", ".yml", ".json"}
	fp.CurrentDirectory, _ = os.Getwd()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ledGreen)

	return Model{
		dispatcher: dispatcher,
		send:       send,
		state:      StateMenu,
		items:      menuItems(),
		input:      ti,
		filePicker: fp,
		spinner:    s,
	}
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The file picker needs every message while it is open
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.state = StateWorking
			return m, tea.Batch(m.spinner.Tick, m.runMacro(path))
		}
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateEntry:
			return m.updateEntry(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case doneMsg:
		m.state = StateResult
		m.result = msg.summary
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(m.items)-1 {
			m.menuIndex++
		}
	case "enter":
		m.selected = m.items[m.menuIndex]
		switch m.selected.kind {
		case itemExit:
			return m, tea.Quit
		case itemMacro:
			m.state = StateFilePicker
			return m, m.filePicker.Init()
		}
		m.state = StateEntry
		m.input.SetValue("")
		return m, m.input.Focus()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.state = StateMenu
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		fields, err := command.ParseFields(command.SplitPairs(m.input.Value()))
		if err != nil {
			m.err = err
			return m, nil
		}
		m.input.Blur()
		m.err = nil
		m.state = StateWorking
		req := command.Request{Operation: m.selected.Operation, Fields: fields}
		return m, tea.Batch(m.spinner.Tick, m.perform(req))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.result = ""
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) perform(req command.Request) tea.Cmd {
	d, send := m.dispatcher, m.send
	return func() tea.Msg {
		var (
			cmd command.Command
			err error
		)
		if send {
			cmd, err = d.Dispatch(context.Background(), req)
		} else {
			cmd, err = d.Resolve(req)
		}
		if err != nil {
			return doneMsg{err: err}
		}
		data, err := json.MarshalIndent(cmd, "", "  ")
		if err != nil {
			return doneMsg{err: err}
		}
		return doneMsg{summary: string(data)}
	}
}

func (m Model) runMacro(path string) tea.Cmd {
	d, send := m.dispatcher, m.send
	return func() tea.Msg {
		mac, err := macro.Load(path)
		if err != nil {
			return doneMsg{err: err}
		}

		var cmds []command.Command
		if send {
			cmds, err = mac.Run(context.Background(), d)
		} else {
			cmds, err = mac.Resolve()
		}
		if err != nil {
			return doneMsg{err: err}
		}

		var s strings.Builder
		fmt.Fprintf(&s, "%s: %d commands\n", mac.Name, len(cmds))
		for i, cmd := range cmds {
			fmt.Fprintf(&s, "%3d  %s\n", i+1, cmd)
		}
		return doneMsg{summary: strings.TrimRight(s.String(), "\n")}
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(logo())
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateEntry:
		s.WriteString(m.viewEntry())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateWorking:
		s.WriteString(m.viewWorking())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • esc: back • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	title := " SELECT OPERATION "
	if !m.send {
		title = " SELECT OPERATION (resolve only) "
	}
	s.WriteString(titleStyle.Render(title))
	s.WriteString("\n\n")

	start := 0
	if m.menuIndex >= menuPage {
		start = m.menuIndex - menuPage + 1
	}
	end := min(start+menuPage, len(m.items))

	for i := start; i < end; i++ {
		item := m.items[i]
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(ledAmber).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewEntry() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" " + strings.ToUpper(m.selected.Title) + " "))
	s.WriteString("\n\n")
	s.WriteString(m.input.View())
	s.WriteString("\n")

	fields, err := command.ParseFields(command.SplitPairs(m.input.Value()))
	if err == nil {
		hint, herr := command.Hint(command.Request{Operation: m.selected.Operation, Fields: fields})
		switch {
		case herr != nil:
			err = herr
		case len(hint) > 0:
			s.WriteString(statusStyle.Render("needs: " + strings.Join(hint, ", ")))
		default:
			s.WriteString(statusStyle.Render("ready: press enter"))
		}
	}
	if m.err != nil {
		err = m.err
	}
	if err != nil {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render(err.Error()))
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT MACRO FILE "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewWorking() string {
	var s strings.Builder

	verb := "Resolving"
	if m.send {
		verb = "Sending"
	}
	s.WriteString(titleStyle.Render(" WORKING "))
	s.WriteString("\n\n")
	fmt.Fprintf(&s, "%s %s %s...\n", m.spinner.View(), verb, m.selected.Title)

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	if m.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s", m.err.Error())))
	} else {
		s.WriteString(titleStyle.Render(" DONE "))
		s.WriteString("\n\n")
		if m.send {
			s.WriteString(successStyle.Render("✓ Sent"))
		} else {
			s.WriteString(successStyle.Render("✓ Resolved"))
		}
		s.WriteString("\n\n")
		s.WriteString(m.result)
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func logo() string {
	return lipgloss.NewStyle().Foreground(ledGreen).Bold(true).Render("\n  d L I V E   //   control surface\n")
}

// Run starts the TUI application
func Run(dispatcher *command.Dispatcher, send bool) error {
	p := tea.NewProgram(New(dispatcher, send), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
