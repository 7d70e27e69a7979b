package logtail

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Entry is one parsed service log line.
type Entry struct {
	Timestamp string
	Level     string
	Component string
	Message   string
}

// lineRE matches the standard logger output with a level prefix:
//
//	2026/10/19 15:04:05 [INFO] watcher: media changed (version 3)
var lineRE = regexp.MustCompile(`^(\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}(?:\.\d+)?) \[([A-Z]+)\] (?:([a-z][a-z0-9_-]*): )?(.*)$`)

// Parse splits line into its parts. ok is false for lines that do not
// follow the service format, such as panics or output from other programs.
func Parse(line string) (Entry, bool) {
	m := lineRE.FindStringSubmatch(line)
	if m == nil {
		return Entry{}, false
	}
	return Entry{Timestamp: m[1], Level: m[2], Component: m[3], Message: m[4]}, true
}

var (
	timestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	componentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#87AFFF"))
	levelStyles    = map[string]lipgloss.Style{
		"INFO":  lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F")).Bold(true),
		"WARN":  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
		"ERROR": lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		"DEBUG": lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true),
	}
)

// ColorizeLine highlights the timestamp, level and component of a log line.
// Lines it cannot parse are returned unchanged.
func ColorizeLine(line string) string {
	e, ok := Parse(line)
	if !ok {
		return line
	}

	var b strings.Builder
	b.WriteString(timestampStyle.Render(e.Timestamp))
	b.WriteString(" ")
	level := "[" + e.Level + "]"
	if style, ok := levelStyles[e.Level]; ok {
		level = style.Render(level)
	}
	b.WriteString(level)
	b.WriteString(" ")
	if e.Component != "" {
		b.WriteString(componentStyle.Render(e.Component + ":"))
		b.WriteString(" ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// ColorizeLines applies ColorizeLine to every line.
func ColorizeLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = ColorizeLine(line)
	}
	return out
}
