package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
)

type markdownTheme string

const (
	markdownThemeAuto  markdownTheme = "auto"
	markdownThemeDark  markdownTheme = "dark"
	markdownThemeLight markdownTheme = "light"
)

func markdownThemeFromString(value string) markdownTheme {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dark":
		return markdownThemeDark
	case "light":
		return markdownThemeLight
	default:
		return markdownThemeAuto
	}
}

func (t markdownTheme) String() string {
	switch t {
	case markdownThemeDark:
		return "dark"
	case markdownThemeLight:
		return "light"
	default:
		return "auto"
	}
}

func nextMarkdownTheme(theme markdownTheme) markdownTheme {
	switch theme {
	case markdownThemeAuto:
		return markdownThemeDark
	case markdownThemeDark:
		return markdownThemeLight
	default:
		return markdownThemeAuto
	}
}

// markdownRenderer caches a glamour renderer per theme and wrap width.
type markdownRenderer struct {
	mu       sync.Mutex
	theme    markdownTheme
	wrap     int
	renderer *glamour.TermRenderer
}

func newMarkdownRenderer(theme markdownTheme) *markdownRenderer {
	return &markdownRenderer{theme: theme, wrap: 80}
}

func (r *markdownRenderer) SetTheme(theme markdownTheme) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.theme != theme {
		r.theme = theme
		r.renderer = nil
	}
}

func (r *markdownRenderer) Theme() markdownTheme {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.theme
}

func (r *markdownRenderer) SetWordWrap(width int) {
	if width < 0 {
		width = 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.wrap != width {
		r.wrap = width
		r.renderer = nil
	}
}

// Render falls back to the raw markdown when glamour fails.
func (r *markdownRenderer) Render(content string) string {
	renderer := r.ensure()
	if renderer == nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}

func (r *markdownRenderer) ensure() *glamour.TermRenderer {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.renderer != nil {
		return r.renderer
	}
	options := []glamour.TermRendererOption{glamour.WithWordWrap(r.wrap)}
	switch r.theme {
	case markdownThemeLight:
		options = append(options, glamour.WithStandardStyle("light"))
	case markdownThemeDark:
		options = append(options, glamour.WithStandardStyle("dark"))
	default:
		options = append(options, glamour.WithAutoStyle())
	}
	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return nil
	}
	r.renderer = renderer
	return renderer
}

// helpMarkdown documents every key binding of keys.
func helpMarkdown(keys keyMap) string {
	var b strings.Builder
	b.WriteString("# Construction companies\n\n")
	b.WriteString("Filters on different columns are combined: a row is shown only when it passes all of them. ")
	b.WriteString("Only one column is sorted at a time. Hiding a column drops its filter and sort.\n\n")
	b.WriteString("| Key | Action |\n|---|---|\n")
	for _, group := range keys.FullHelp() {
		for _, binding := range group {
			writeBindingRow(&b, binding)
		}
	}
	b.WriteString("\n## Filters\n\n")
	b.WriteString("- Text columns match a case-insensitive substring.\n")
	b.WriteString("- Number columns match an exact value.\n")
	b.WriteString("- Speciality offers a multi-select; companies without a speciality never match.\n")
	return b.String()
}

func writeBindingRow(b *strings.Builder, binding key.Binding) {
	h := binding.Help()
	if h.Key == "" {
		return
	}
	fmt.Fprintf(b, "| `%s` | %s |\n", h.Key, h.Desc)
}
