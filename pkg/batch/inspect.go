package batch

import (
	"context"
	"strings"
	"unicode"
)

// SceneKey is the argument the benchmark executable refuses to start
// without.
const SceneKey = "s"

// ViewReport describes one view file as the executable will see it.
type ViewReport struct {
	View
	Args     map[string]string
	Warnings []string
}

// ParseViewArgs splits a flags string into keys and values the way the
// benchmark executable does: a token starting with '-' whose remainder has
// no digits or blanks opens a key, any other token is appended to the
// value of the current key. A repeated key keeps its earlier value and
// appends to it. Tokens before the first key land under "".
func ParseViewArgs(flags string) map[string]string {
	args := map[string]string{"": ""}
	current := ""
	for _, tok := range strings.Fields(flags) {
		if isKeyToken(tok) {
			current = tok[1:]
			if _, ok := args[current]; !ok {
				args[current] = ""
			}
			continue
		}
		if args[current] != "" {
			args[current] += " "
		}
		args[current] += tok
	}
	if args[""] == "" {
		delete(args, "")
	}
	return args
}

func isKeyToken(tok string) bool {
	if tok == "" || tok[0] != '-' {
		return false
	}
	for _, r := range tok[1:] {
		if unicode.IsDigit(r) || r == ' ' || r == '\t' {
			return false
		}
	}
	return true
}

// Inspect reads every configured view and reports its parsed arguments.
// Reading stops at the first unreadable view.
func (g *Generator) Inspect(ctx context.Context) ([]ViewReport, error) {
	reports := make([]ViewReport, 0, len(g.cfg.Views))
	for _, file := range g.cfg.Views {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		view, err := g.ReadView(file)
		if err != nil {
			return reports, err
		}
		report := ViewReport{View: view, Args: ParseViewArgs(view.Flags)}
		if _, ok := report.Args[SceneKey]; !ok {
			report.Warnings = append(report.Warnings, "missing scene argument -"+SceneKey)
		}
		if view.Name == "" {
			report.Warnings = append(report.Warnings, "file name too short for a short name")
		}
		reports = append(reports, report)
	}
	return reports, nil
}
