package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/quotebox/internal/reconcile"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// Messages emitted by modals when the user confirms.

type addSubmitMsg struct {
	text     string
	category string
}

type importSubmitMsg struct {
	path string
}

type resolveSubmitMsg struct {
	id     string
	choice reconcile.Choice
}

// deferConflictMsg is sent when the user closes a conflict without choosing.
type deferConflictMsg struct {
	id string
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// addModal collects the text and category of a new quote.
type addModal struct {
	inputs [2]textinput.Model // text, category
	focus  int
	err    string
}

func newAddModal(categories []string) *addModal {
	m := &addModal{}
	m.inputs[0] = textinput.New()
	m.inputs[0].Placeholder = "Enter a new quote"
	m.inputs[0].CharLimit = 500
	m.inputs[0].Width = 50
	m.inputs[0].Focus()

	m.inputs[1] = textinput.New()
	m.inputs[1].Placeholder = "Enter quote category"
	m.inputs[1].CharLimit = 60
	m.inputs[1].Width = 30
	m.inputs[1].ShowSuggestions = true
	m.inputs[1].SetSuggestions(categories)
	return m
}

func (m *addModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keys.Escape):
			return m, nil, true
		case key.Matches(keyMsg, keys.NextField):
			m.inputs[m.focus].Blur()
			m.focus = (m.focus + 1) % len(m.inputs)
			return m, m.inputs[m.focus].Focus(), false
		case key.Matches(keyMsg, keys.Confirm):
			text := strings.TrimSpace(m.inputs[0].Value())
			category := strings.TrimSpace(m.inputs[1].Value())
			if text == "" || category == "" {
				m.err = "Please fill in both fields."
				return m, nil, false
			}
			return m, emit(addSubmitMsg{text: text, category: category}), true
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd, false
}

func (m *addModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Add Quote"))
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render("Text"))
	b.WriteString("\n")
	b.WriteString(m.inputs[0].View())
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render("Category"))
	b.WriteString("\n")
	b.WriteString(m.inputs[1].View())
	b.WriteString("\n\n")
	if m.err != "" {
		b.WriteString(styles.DangerText.Render(m.err))
		b.WriteString("\n")
	}
	b.WriteString(styles.FaintText.Render("enter save · tab next field · esc cancel"))
	return centerModal(theme, width, height, b.String())
}

// importModal asks for the path of a JSON file to import.
type importModal struct {
	input textinput.Model
}

func newImportModal() *importModal {
	in := textinput.New()
	in.Placeholder = "quotes.json"
	in.CharLimit = 4096
	in.Width = 50
	in.Focus()
	return &importModal{input: in}
}

func (m *importModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keys.Escape):
			return m, nil, true
		case key.Matches(keyMsg, keys.Confirm):
			path := strings.TrimSpace(m.input.Value())
			if path == "" {
				path = m.input.Placeholder
			}
			return m, emit(importSubmitMsg{path: path}), true
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd, false
}

func (m *importModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Import Quotes"))
	b.WriteString("\n\n")
	b.WriteString(styles.WarningText.Render("Importing replaces the whole collection."))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("enter import · esc cancel"))
	return centerModal(theme, width, height, b.String())
}

// conflictModal shows both sides of a conflict and asks which to keep.
type conflictModal struct {
	conflict reconcile.Conflict
	pending  int // conflicts in the queue including this one
}

func newConflictModal(c reconcile.Conflict, pending int) *conflictModal {
	return &conflictModal{conflict: c, pending: pending}
}

func (m *conflictModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}
	switch {
	case key.Matches(keyMsg, keys.KeepLocal):
		return m, emit(resolveSubmitMsg{id: m.conflict.ID, choice: reconcile.KeepLocal}), true
	case key.Matches(keyMsg, keys.AcceptServer):
		return m, emit(resolveSubmitMsg{id: m.conflict.ID, choice: reconcile.AcceptServer}), true
	case key.Matches(keyMsg, keys.Escape):
		return m, emit(deferConflictMsg{id: m.conflict.ID}), true
	}
	return m, nil, false
}

func (m *conflictModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	side := func(label string, text, category string, stamp string) string {
		return lipgloss.JoinVertical(lipgloss.Left,
			styles.AccentText.Bold(true).Render(label),
			styles.Text.Width(34).Render(fmt.Sprintf("%q", text)),
			styles.CategoryStyle(category).Render(category),
			styles.FaintText.Render(stamp),
		)
	}
	local := side("Local", m.conflict.Local.Text, m.conflict.Local.Category,
		m.conflict.Local.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	remote := side("Server", m.conflict.Remote.Text, m.conflict.Remote.Category,
		m.conflict.Remote.UpdatedAt.Local().Format("2006-01-02 15:04:05"))

	title := "Sync Conflict"
	if m.pending > 1 {
		title = fmt.Sprintf("Sync Conflict (1 of %d)", m.pending)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.WarningText.Bold(true).Render(title),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, local, "    ", remote),
		"",
		styles.FaintText.Render("l keep local · s accept server · esc decide later"),
	)
	return centerModal(theme, width, height, content)
}

func centerModal(theme Theme, width, height int, content string) string {
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		theme.Styles().Modal.Render(content),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
