package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Levels in increasing severity, as written by the service components.
var levels = []string{"DEBUG", "INFO", "WARN", "ERROR"}

// Filter selects which log lines Tail keeps.
type Filter struct {
	// Lines caps the result to the last Lines matches; zero or less keeps all.
	Lines int
	// Component keeps only entries from one component, e.g. "watcher".
	Component string
	// MinLevel drops entries below this level, e.g. "WARN".
	MinLevel string
}

func (f Filter) active() bool {
	return f.Component != "" || f.MinLevel != ""
}

// Validate reports an unknown MinLevel.
func (f Filter) Validate() error {
	if f.MinLevel != "" && levelRank(f.MinLevel) < 0 {
		return fmt.Errorf("unknown log level %q (want one of %s)", f.MinLevel, strings.Join(levels, ", "))
	}
	return nil
}

func (f Filter) keep(line string) bool {
	if !f.active() {
		return true
	}
	e, ok := Parse(line)
	if !ok {
		// Continuation lines such as panic traces carry no level.
		return false
	}
	if f.Component != "" && !strings.EqualFold(e.Component, f.Component) {
		return false
	}
	if f.MinLevel != "" && levelRank(e.Level) < levelRank(f.MinLevel) {
		return false
	}
	return true
}

func levelRank(level string) int {
	for i, l := range levels {
		if strings.EqualFold(l, level) {
			return i
		}
	}
	return -1
}

// Read returns at most maxLines from the end of the log at path. A maxLines
// of zero or less returns the whole file. A missing log is empty, not an
// error: the service creates it on first start.
func Read(path string, maxLines int) ([]string, error) {
	return Tail(path, Filter{Lines: maxLines})
}

// Tail returns the last lines of the log at path that pass f.
func Tail(path string, f Filter) ([]string, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if !f.keep(line) {
			continue
		}
		lines = append(lines, line)
		// Trim in batches so long logs stay bounded without shifting on
		// every line.
		if f.Lines > 0 && len(lines) >= 2*f.Lines {
			lines = append(lines[:0], lines[len(lines)-f.Lines:]...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	if f.Lines > 0 && len(lines) > f.Lines {
		lines = lines[len(lines)-f.Lines:]
	}
	return lines, nil
}
