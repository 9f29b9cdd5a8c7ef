package vm

import (
	"cmp"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
	tea "github.com/charmbracelet/bubbletea"
)

// NamedCommand is a Command exposed through the command palette.
type NamedCommand struct {
	ID          string
	Name        string
	Description string
	Scopes      []string
	Command     *Command
}

type CommandResult struct {
	CommandID string
	Name      string
	Desc      string
	Disabled  bool
	Reason    string
	Score     int
}

type CommandRegistry struct {
	commands map[string]NamedCommand
}

func NewCommandRegistry(cmds ...NamedCommand) *CommandRegistry {
	reg := &CommandRegistry{commands: map[string]NamedCommand{}}
	for _, c := range cmds {
		reg.Register(c)
	}
	return reg
}

func (r *CommandRegistry) Register(c NamedCommand) {
	if c.ID == "" || c.Command == nil {
		return
	}
	r.commands[c.ID] = c
}

func (r *CommandRegistry) Unregister(ids ...string) {
	for _, id := range ids {
		delete(r.commands, id)
	}
}

func (r *CommandRegistry) Len() int { return len(r.commands) }

// Search lists commands visible in scope that match query. Exact substring
// matches rank ahead of typo-tolerant ones; enabled commands rank ahead of
// disabled ones.
func (r *CommandRegistry) Search(query, scope string) []CommandResult {
	q := strings.ToLower(strings.TrimSpace(query))
	results := make([]CommandResult, 0, len(r.commands))
	for _, c := range r.commands {
		if !scopeMatch(scope, c.Scopes) {
			continue
		}
		score, ok := matchScore(q, c)
		if !ok {
			continue
		}
		reason := c.Command.Reason()
		results = append(results, CommandResult{
			CommandID: c.ID,
			Name:      c.Name,
			Desc:      c.Description,
			Disabled:  reason != "",
			Reason:    reason,
			Score:     score,
		})
	}
	slices.SortFunc(results, func(a, b CommandResult) int {
		if a.Disabled != b.Disabled {
			if !a.Disabled {
				return -1
			}
			return 1
		}
		if a.Score != b.Score {
			return cmp.Compare(a.Score, b.Score)
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return results
}

func (r *CommandRegistry) Execute(id string) tea.Cmd {
	c, ok := r.commands[id]
	if !ok {
		return StatusCmd("Unknown command: " + id)
	}
	if reason := c.Command.Reason(); reason != "" {
		return StatusCmd(reason)
	}
	return c.Command.Execute()
}

func matchScore(q string, c NamedCommand) (int, bool) {
	if q == "" {
		return 0, true
	}
	name := strings.ToLower(c.Name)
	if strings.HasPrefix(name, q) {
		return 0, true
	}
	h := name + " " + strings.ToLower(c.Description) + " " + strings.ToLower(c.ID)
	if strings.Contains(h, q) {
		return 1, true
	}
	limit := max(1, min(2, len(q)/2), len(q)/3)
	best := -1
	for _, w := range strings.Fields(name) {
		d := levenshtein.ComputeDistance(q, w)
		if best < 0 || d < best {
			best = d
		}
	}
	if best < 0 || best > limit {
		return 0, false
	}
	return 2 + best, true
}

func scopeMatch(scope string, scopes []string) bool {
	if len(scopes) == 0 {
		return true
	}
	for _, s := range scopes {
		if s == "*" || s == scope {
			return true
		}
	}
	return false
}
