// Package formatter pretty-prints resolved node trees.
package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/opal-lang/interact/core/nodetree"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

// Colorize wraps text in ANSI color codes if color is enabled
func Colorize(text, color string, useColor bool) string {
	if !useColor {
		return text
	}
	return color + text + ColorReset
}

// Settings control line breaking and coloring.
type Settings struct {
	MaxLineLength int
	IndentStep    int
	Color         bool
}

// DefaultSettings returns the settings used by the prompt.
func DefaultSettings() Settings {
	return Settings{MaxLineLength: 120, IndentStep: 4}
}

type printer struct {
	w        io.Writer
	settings Settings

	indent        int
	lineUsed      int
	itemLinebreak bool

	// labels for values reached more than once, numbered from 1
	seen    map[*nodetree.Meta]int
	seenIdx int
}

// Format writes n to w. The tree must be resolved so that sizes are known.
func Format(w io.Writer, n *nodetree.Node, settings Settings) {
	p := &printer{
		w:             w,
		settings:      settings,
		itemLinebreak: true,
		seen:          make(map[*nodetree.Meta]int),
		seenIdx:       1,
	}
	p.print(n)
	if p.lineUsed > 0 {
		p.endLine()
	}
}

// FormatString returns the formatted tree as a string.
func FormatString(n *nodetree.Node, settings Settings) string {
	var b strings.Builder
	Format(&b, n, settings)
	return b.String()
}

func (p *printer) write(s string) {
	if p.lineUsed == 0 && p.indent > 0 {
		_, _ = io.WriteString(p.w, strings.Repeat(" ", p.indent))
	}
	_, _ = io.WriteString(p.w, s)
	p.lineUsed += len(s)
}

func (p *printer) paint(s, color string) {
	p.write(Colorize(s, color, p.settings.Color))
}

func (p *printer) endLine() {
	_, _ = io.WriteString(p.w, "\n")
	p.lineUsed = 0
}

func (p *printer) label(m *nodetree.Meta) int {
	if idx, ok := p.seen[m]; ok {
		return idx
	}
	idx := p.seenIdx
	p.seen[m] = idx
	p.seenIdx++
	return idx
}

func (p *printer) print(n *nodetree.Node) {
	repeatedIdx := 0
	if n.Meta != nil {
		if n.Kind == nodetree.Repeated {
			repeatedIdx = p.label(n.Meta)
		} else if n.Meta.Refs() >= 2 {
			p.paint(fmt.Sprintf("[#%d] ", p.label(n.Meta)), ColorGreen)
		}
	}

	switch n.Kind {
	case nodetree.Grouped:
		p.printGrouped(n)
	case nodetree.Delimited:
		for i, c := range n.Children {
			if i > 0 {
				if p.itemLinebreak {
					p.write(string(n.Delim))
					p.endLine()
				} else {
					p.write(string(n.Delim) + " ")
				}
			}
			p.print(c)
		}
	case nodetree.KeyValue:
		p.print(n.Children[0])
		p.paint(n.Sep, ColorCyan)
		p.write(" ")
		p.print(n.Children[1])
	case nodetree.Named:
		p.print(n.Children[0])
		p.write(" ")
		p.print(n.Children[1])
	case nodetree.Leaf:
		p.write(n.Text)
	case nodetree.Limited:
		p.paint("...<<<>>>...", ColorBold+ColorYellow)
	case nodetree.Hole:
		p.paint("< - hole - >", ColorBold+ColorRed)
	case nodetree.Repeated:
		p.paint(fmt.Sprintf("[#%d]", repeatedIdx), ColorGreen)
	case nodetree.BorrowedMut:
		p.paint("< borrowed-mut >", ColorBold+ColorRed)
	case nodetree.Locked:
		p.paint("< locked >", ColorBold+ColorRed)
	}
}

func (p *printer) printGrouped(n *nodetree.Node) {
	p.paint(string(n.Open), ColorCyan)

	sub := n.Sub()
	hasSpace := true
	if sub.Kind == nodetree.Delimited {
		hasSpace = len(sub.Children) > 0 && n.Open != '('
	}

	saved := p.itemLinebreak
	indented := false
	if p.indent+n.Size > p.settings.MaxLineLength {
		p.itemLinebreak = true
		p.indent += p.settings.IndentStep
		p.endLine()
		indented = true
	} else {
		p.itemLinebreak = false
		if hasSpace {
			p.write(" ")
		}
	}

	p.print(sub)
	p.itemLinebreak = saved

	if indented {
		p.indent -= p.settings.IndentStep
		p.endLine()
	} else if hasSpace {
		p.write(" ")
	}

	p.paint(string(n.Close), ColorCyan)
}
