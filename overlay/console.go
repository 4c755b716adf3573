package overlay

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// blockRamp maps intensity to a partial-block glyph.
var blockRamp = []rune(" ▁▂▃▄▅▆▇█")

// Console renders the meter as one line of colored block characters,
// redrawn in place with a carriage return.
type Console struct {
	mu  sync.Mutex
	out io.Writer

	loud  lipgloss.Style
	mid   lipgloss.Style
	quiet lipgloss.Style
}

func NewConsole(out io.Writer) *Console {
	return &Console{
		out:   out,
		loud:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		mid:   lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		quiet: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

func (c *Console) RenderBars(intensities []float64) {
	var sb strings.Builder
	for _, v := range intensities {
		idx := int(v * float64(len(blockRamp)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(blockRamp) {
			idx = len(blockRamp) - 1
		}
		glyph := string(blockRamp[idx])
		switch {
		case v > 0.75:
			sb.WriteString(c.loud.Render(glyph))
		case v > 0.4:
			sb.WriteString(c.mid.Render(glyph))
		default:
			sb.WriteString(c.quiet.Render(glyph))
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "\r%s", sb.String())
}

func (c *Console) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "\r%s\r", strings.Repeat(" ", BarCount))
}
