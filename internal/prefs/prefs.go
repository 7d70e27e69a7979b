// Package prefs persists how the now-playing viewer looks: its theme, whether
// album details are shown, and which metadata fields the card leaves out.
// Preferences live in ~/.config/nowplaying/prefs.toml and never block startup;
// an unreadable or malformed file yields Default().
package prefs

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/nowplaying/internal/config"
	"github.com/five82/nowplaying/internal/media"
)

// Prefs holds user preferences for the now-playing viewer.
type Prefs struct {
	Theme     string `toml:"theme"`
	ShowAlbum bool   `toml:"show_album"`
	// Hidden names media fields the card omits, e.g. "genres".
	Hidden []string `toml:"hidden_fields,omitempty"`
}

const (
	defaultPrefsPath = "~/.config/nowplaying/prefs.toml"
	defaultTheme     = "Nightfox"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Default returns the preferences used when no file exists.
func Default() Prefs {
	return Prefs{Theme: defaultTheme, ShowAlbum: true}
}

// HiddenFields returns the hidden field selectors.
func (p Prefs) HiddenFields() []media.Field {
	var out []media.Field
	for _, name := range p.Hidden {
		if f, ok := media.ParseField(name); ok {
			out = append(out, f)
		}
	}
	return out
}

// WithHidden returns p with Hidden set to the canonical names of fields.
func (p Prefs) WithHidden(fields []media.Field) Prefs {
	p.Hidden = nil
	for _, f := range fields {
		p.Hidden = append(p.Hidden, f.String())
	}
	p.Hidden = normalizeHidden(p.Hidden)
	return p
}

// Load reads preferences from path, falling back to defaults if missing or
// unreadable.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Default(), nil
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return Default(), nil
	}

	p := Default()
	if err := toml.Unmarshal(data, &p); err != nil {
		log.Printf("[WARN] prefs: ignoring %s: %v", resolved, err)
		return Default(), nil
	}
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	p.Hidden = normalizeHidden(p.Hidden)
	return p, nil
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	p.Hidden = normalizeHidden(p.Hidden)
	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(resolved, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

// normalizeHidden maps names to canonical field names in field order,
// dropping unknown names and duplicates.
func normalizeHidden(names []string) []string {
	var fields []media.Field
	for _, name := range names {
		f, ok := media.ParseField(name)
		if !ok {
			log.Printf("[WARN] prefs: unknown hidden field %q", name)
			continue
		}
		if !slices.Contains(fields, f) {
			fields = append(fields, f)
		}
	}
	slices.Sort(fields)

	var out []string
	for _, f := range fields {
		out = append(out, f.String())
	}
	return out
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return config.ExpandPath(defaultPrefsPath)
	}
	return config.ExpandPath(path)
}
