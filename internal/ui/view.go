package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/quotebox/internal/quote"
)

// renderMain renders the header, the quote card, the activity pane and the
// footer.
func (m Model) renderMain() string {
	header := m.renderHeader()
	footer := m.renderFooter()

	var sections []string
	if b := m.renderBanner(); b != "" {
		sections = append(sections, b)
	}
	activity := ""
	if m.showActivity {
		activity = m.renderActivity()
	}

	used := lipgloss.Height(header) + lipgloss.Height(footer)
	for _, s := range sections {
		used += lipgloss.Height(s)
	}
	if activity != "" {
		used += lipgloss.Height(activity)
	}
	bodyHeight := max(m.height-used, 3)

	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.renderQuote())

	parts := []string{header}
	parts = append(parts, sections...)
	parts = append(parts, body)
	if activity != "" {
		parts = append(parts, activity)
	}
	parts = append(parts, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderHeader shows the logo, active category, collection size and sync
// health.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	sep := styles.FaintText.Render("  │  ")

	parts := []string{
		styles.Logo.Render("quotebox"),
		styles.MutedText.Render("category ") + styles.AccentText.Render(m.filterLabel()),
		styles.MutedText.Render(fmt.Sprintf("%d quotes", len(m.snapshot.Records))),
	}
	parts = append(parts, m.syncStatus(styles))
	if n := len(m.snapshot.Conflicts); n > 0 {
		parts = append(parts, styles.WarningText.Bold(true).Render(fmt.Sprintf("%d conflicts", n)))
	}
	if dirty := countDirty(m.snapshot.Records); dirty > 0 && m.width >= LayoutCompactWidth {
		parts = append(parts, styles.FaintText.Render(fmt.Sprintf("%d unsynced", dirty)))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

func (m Model) syncStatus(styles Styles) string {
	switch {
	case m.engine == nil || !m.engine.SyncEnabled():
		return styles.FaintText.Render("sync off")
	case m.syncing:
		return styles.InfoText.Render("syncing…")
	case m.snapshot.IsOffline():
		return styles.DangerText.Render("OFFLINE") +
			styles.MutedText.Render(fmt.Sprintf(" (%d failed)", m.snapshot.ConsecutiveFailures))
	case m.snapshot.LastError != nil:
		return styles.WarningText.Render("sync error, retrying")
	case m.snapshot.LastSync.IsZero():
		return styles.MutedText.Render("not synced yet")
	}
	status := styles.SuccessText.Render("synced ") +
		styles.MutedText.Render(m.snapshot.LastSync.Local().Format("15:04:05"))
	if m.syncEvery > 0 && m.width >= LayoutCompactWidth {
		status += styles.FaintText.Render(fmt.Sprintf(" every %s", m.syncEvery))
	}
	return status
}

func (m Model) filterLabel() string {
	if m.snapshot.Filter == "" || m.snapshot.Filter == quote.FilterAll {
		return "All"
	}
	return m.snapshot.Filter
}

// renderQuote renders the displayed quote or the empty placeholder.
func (m Model) renderQuote() string {
	styles := m.theme.Styles()
	width := min(QuoteMaxWidth, max(m.width-8, 20))

	if m.current == nil || !m.currentMatchesFilter() {
		return styles.Card.Width(width).Render(styles.MutedText.Render(quote.EmptyPlaceholder))
	}

	text := styles.Text.Italic(true).Render(fmt.Sprintf("“%s”", m.current.Text))
	category := styles.CategoryStyle(m.current.Category).Render(m.current.Category)
	meta := category
	if m.current.Dirty {
		meta += " " + styles.FaintText.Render("not synced")
	}
	return styles.Card.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, text, "", meta))
}

// currentMatchesFilter reports whether the displayed quote still belongs to
// the active category and still exists.
func (m Model) currentMatchesFilter() bool {
	if m.current == nil {
		return false
	}
	for _, r := range quote.Filter(m.snapshot.Records, m.snapshot.Filter) {
		if r.ID == m.current.ID {
			return true
		}
	}
	return false
}

func (m Model) renderBanner() string {
	if m.banner.text == "" {
		return ""
	}
	styles := m.theme.Styles()
	style := styles.InfoText
	switch m.banner.kind {
	case bannerSuccess:
		style = styles.SuccessText
	case bannerError:
		style = styles.DangerText
	}
	return lipgloss.NewStyle().Width(m.width).Padding(0, 1).Render(style.Render(m.banner.text))
}

func (m Model) renderActivity() string {
	styles := m.theme.Styles()
	lines := []string{styles.FaintText.Render("activity")}
	if len(m.activity) == 0 {
		lines = append(lines, styles.FaintText.Render("no activity yet"))
	}
	for _, e := range m.activity {
		style := styles.MutedText
		switch e.Level {
		case "warn":
			style = styles.WarningText
		case "error":
			style = styles.DangerText
		}
		lines = append(lines, style.Render(truncate(e.String(), max(m.width-4, 10))))
	}
	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		Render(strings.Join(lines, "\n"))
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	var parts []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, styles.WarningText.Render(h.Key)+" "+h.Desc)
	}
	return styles.Footer.Width(m.width).Render(strings.Join(parts, "  "))
}

func countDirty(records []quote.Record) int {
	n := 0
	for _, r := range records {
		if r.Dirty {
			n++
		}
	}
	return n
}

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
