package tui

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

// noteRenderers caches glamour renderers by style and wrap width. WithAutoStyle
// is avoided because its terminal queries can block.
var noteRenderers = &rendererCache{byKey: map[string]*glamour.TermRenderer{}}

type rendererCache struct {
	mu    sync.Mutex
	byKey map[string]*glamour.TermRenderer
}

func (c *rendererCache) get(style string, width int) (*glamour.TermRenderer, error) {
	key := style + ":" + strconv.Itoa(width)
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.byKey[key]; ok {
		return r, nil
	}
	cfg := markdownStyleConfig(style)
	zero := uint(0)
	cfg.Document.Margin = &zero
	cfg.Paragraph.Margin = &zero
	cfg.List.Margin = &zero
	r, err := glamour.NewTermRenderer(glamour.WithStyles(cfg), glamour.WithWordWrap(width))
	if err != nil {
		return nil, err
	}
	c.byKey[key] = r
	return r, nil
}

// renderMarkdown renders a note body; on any renderer error the raw text is shown.
func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	r, err := noteRenderers.get(markdownStyle(), max(width, 10))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

func markdownStyleConfig(style string) ansi.StyleConfig {
	if style == "light" {
		return styles.LightStyleConfig
	}
	return styles.DarkStyleConfig
}

// markdownStyle follows the palette chosen by applyThemePreference unless
// GREENLIGHT_TUI_MD_STYLE overrides it.
func markdownStyle() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("GREENLIGHT_TUI_MD_STYLE"))) {
	case "light":
		return "light"
	case "dark":
		return "dark"
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
