package prompt

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/opal-lang/interact/core/assist"
	"github.com/opal-lang/interact/core/nodetree/formatter"
	"github.com/opal-lang/interact/runtime/interact"
)

// Command is a prompt command such as :help.
type Command interface {
	Name() string
	Help() []string
	Handle(p *Prompt, params []string) Response
	// Completions returns the assist for the text following the command
	// name.
	Completions(p *Prompt, line string) assist.Assist[string]
}

type helpCommand struct{}

func (helpCommand) Name() string { return ":help" }

func (helpCommand) Help() []string {
	return []string{":help           Prints this help screen"}
}

func (helpCommand) Handle(p *Prompt, _ []string) Response {
	p.printf("\nThe following are the valid commands:\n\n")
	for _, name := range p.commandNames() {
		for _, line := range p.commands[name].Help() {
			p.printf("      %s\n", line)
		}
	}
	for _, line := range (accessCommand{}).Help() {
		p.printf("      %s\n", line)
	}

	p.printf("\nPossible nodes to evaluate from:\n\n")
	for _, k := range p.root.Keys() {
		p.printf("      %s\n", k)
	}
	p.printf("\n")
	return Continue
}

func (helpCommand) Completions(*Prompt, string) assist.Assist[string] {
	return assist.Assist[string]{}
}

type exitCommand struct{}

func (exitCommand) Name() string { return ":exit" }

func (exitCommand) Help() []string {
	return []string{":exit           Terminate the program"}
}

func (exitCommand) Handle(*Prompt, []string) Response { return Exit }

func (exitCommand) Completions(*Prompt, string) assist.Assist[string] {
	return assist.Assist[string]{}
}

// accessCommand evaluates any line that is not a command.
type accessCommand struct{}

func (accessCommand) Name() string { return "<expr>" }

func (accessCommand) Help() []string {
	return []string{"<expr>          Access the value of expr"}
}

func (accessCommand) Handle(p *Prompt, params []string) Response {
	line := strings.Join(params, " ")
	node, a, err := p.root.Access(line)
	if err != nil {
		p.printError(line, a, err)
		return Continue
	}
	p.printNode(node)
	return Continue
}

func (accessCommand) Completions(p *Prompt, line string) assist.Assist[string] {
	_, a, _ := p.root.Probe(line)
	return a
}

func (p *Prompt) commandNames() []string {
	return slices.Sorted(maps.Keys(p.commands))
}

// HandleLine runs the command on line.
func (p *Prompt) HandleLine(line string) Response {
	params := strings.Split(line, " ")
	switch {
	case len(params) == 1 && params[0] == "?":
		return helpCommand{}.Handle(p, nil)
	case len(params) == 1 && params[0] == "":
		return Continue
	}
	if cmd, ok := p.commands[params[0]]; ok {
		return cmd.Handle(p, params[1:])
	}
	return accessCommand{}.Handle(p, params)
}

// NextOptions returns the assist for line with the cursor at pos. A prefix
// of a single command name completes to that name, text after a command
// name is completed by the command, and anything else is an expression.
func (p *Prompt) NextOptions(line string, pos int) assist.Assist[string] {
	if line == "?" || line == ":" {
		var a assist.Assist[string]
		a.PendOne()
		return a
	}

	pos = min(pos, len(line))
	split := strings.Split(line[:pos], " ")
	prefix := ""
	for _, s := range split {
		if s != "" {
			prefix = s
			break
		}
	}

	var matching []string
	for _, name := range p.commandNames() {
		if strings.HasPrefix(name, prefix) {
			matching = append(matching, name)
		}
	}

	switch {
	case len(matching) == 1:
		name := matching[0]
		var parts []string
		for _, s := range split {
			if strings.TrimSpace(s) != "" && strings.HasPrefix(name, s) {
				parts = append(parts, name)
				break
			}
			parts = append(parts, s)
		}
		reconstructed := strings.Join(parts, " ")

		switch {
		case strings.HasPrefix(reconstructed, line[:pos]):
			return assist.Assist[string]{}.
				WithValid(pos).
				WithNextOptions(assist.Avail(0, []string{reconstructed[pos:]}))
		case strings.HasPrefix(line[:pos], reconstructed):
			deeper := line[len(reconstructed):]
			nospace := len(deeper) - len(strings.TrimLeft(deeper, " "))
			return p.commands[name].Completions(p, deeper[nospace:]).WithValid(len(reconstructed) + nospace)
		}
		return assist.Assist[string]{}
	case len(split) != 1 || split[0] != "":
		return accessCommand{}.Completions(p, line)
	}
	return assist.Assist[string]{}
}

// Highlight colors line by how much of it is understood: the valid prefix
// is left as is, pending text is yellow, special pending text green and the
// rest red.
func Highlight(line string, a assist.Assist[string], color bool) string {
	valid, pending, special, _ := a.Dismantle()
	yellow := min(valid, len(line))
	green := max(min(valid+pending-special, len(line)), yellow)
	red := max(min(valid+pending, len(line)), green)

	var b strings.Builder
	b.WriteString(line[:yellow])
	b.WriteString(paint(line[yellow:green], formatter.ColorYellow, color))
	b.WriteString(paint(line[green:red], formatter.ColorBold+formatter.ColorGreen, color))
	b.WriteString(paint(line[red:], formatter.ColorRed, color))
	return b.String()
}

// errorKind names the kind of a climb error, or describes any other error.
func errorKind(err error) string {
	if kind, ok := interact.KindOf(err); ok {
		return kind.String()
	}
	return fmt.Sprint(err)
}
