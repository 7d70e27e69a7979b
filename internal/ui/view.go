package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/nowplaying/internal/media"
)

const labelWidth = 14

// renderMain renders the header, the now-playing card and the footer.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderCard())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	title := styles.AccentText.Bold(true).Render("♪ now playing")

	var state string
	switch {
	case m.paused:
		state = styles.WarningText.Render("paused")
	case m.snapshot.IsOffline():
		state = styles.DangerText.Render("source offline")
	case m.waiting:
		state = m.spinner.View() + styles.MutedText.Render(" listening")
	default:
		state = styles.MutedText.Render("idle")
	}
	return title + "  " + state
}

// renderCard renders the current metadata. Only fields the source reported
// are shown.
func (m Model) renderCard() string {
	styles := m.theme.Styles()
	snap := m.snapshot.Media

	if snap.IsEmpty() {
		msg := "Waiting for media…"
		if m.paused {
			msg = "Paused. Press p to resume listening."
		}
		return styles.Card.Render(styles.MutedText.Render(msg))
	}

	var lines []string
	if !m.isHidden(media.FieldTitle) {
		title := snap.Value(media.FieldTitle)
		if title == "" {
			title = "Untitled"
		}
		lines = append(lines, styles.Title.Render(title))
	}
	if artist := m.value(snap, media.FieldArtist); artist != "" {
		lines = append(lines, styles.Text.Render(artist))
	}
	if sub := m.value(snap, media.FieldSubtitle); sub != "" {
		lines = append(lines, styles.MutedText.Render(sub))
	}
	lines = append(lines, "")

	if m.showAlbum {
		lines = appendRow(lines, styles, "Album", m.value(snap, media.FieldAlbumTitle))
		lines = appendRow(lines, styles, "Album artist", m.value(snap, media.FieldAlbumArtist))
		lines = appendRow(lines, styles, "Track", m.trackLabel(snap))
	}
	lines = appendRow(lines, styles, "Genres", m.value(snap, media.FieldGenres))
	if snap.PlaybackType != nil && !m.isHidden(media.FieldPlaybackType) {
		badge := styles.PlaybackStyle(*snap.PlaybackType).Render(snap.PlaybackType.String())
		lines = append(lines, styles.Label.Render("Type")+badge)
	}

	return styles.Card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderStatus() string {
	styles := m.theme.Styles()
	parts := []string{fmt.Sprintf("updates %d", m.updates), fmt.Sprintf("version %d", m.snapshot.Version)}
	if !m.snapshot.LastChanged.IsZero() {
		parts = append(parts, "changed "+m.snapshot.LastChanged.Format("15:04:05"))
	}
	parts = append(parts, "theme "+m.theme.Name)
	line := styles.FaintText.Render(strings.Join(parts, " · "))

	switch {
	case m.lastErr != nil:
		line += "  " + styles.WarningText.Render(m.lastErr.Error())
	case m.snapshot.LastError != nil:
		line += "  " + styles.DangerText.Render(m.snapshot.LastError.Error())
	}
	return styles.Footer.Render(line)
}

func appendRow(lines []string, styles Styles, label, value string) []string {
	if value == "" {
		return lines
	}
	return append(lines, styles.Label.Render(label)+styles.Text.Render(value))
}

func (m Model) isHidden(f media.Field) bool {
	return slices.Contains(m.hidden, f)
}

// value is snap's rendering of f, or "" when f is hidden.
func (m Model) value(snap media.Snapshot, f media.Field) string {
	if m.isHidden(f) {
		return ""
	}
	return snap.Value(f)
}

func (m Model) trackLabel(snap media.Snapshot) string {
	n := m.value(snap, media.FieldTrackNumber)
	total := m.value(snap, media.FieldAlbumTrackCount)
	switch {
	case n != "" && total != "":
		return n + " / " + total
	case n != "":
		return n
	case total != "":
		return "? / " + total
	default:
		return ""
	}
}
