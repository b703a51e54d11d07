// Package resolver turns a raw token into a command, either exactly by name
// or alias, or as a short list of near matches for a "did you mean" chooser.
package resolver

import (
	"strings"

	"github.com/keshon/switchboard/pkg/cmd"
)

const (
	// MaxMatches caps fuzzy results; it matches the number of glyphs below.
	MaxMatches = 10
	// descriptionLimit is the description length kept in a choice before
	// an ellipsis is appended.
	descriptionLimit = 47
)

// Glyphs label fuzzy matches by position.
var Glyphs = [MaxMatches]string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣", "🔟"}

// Resolver looks commands up in a registry on behalf of a viewer.
type Resolver struct {
	registry   *cmd.Registry
	privileged func(userID string) bool
}

// New returns a resolver. privileged decides who may see dev-only commands;
// nil means nobody.
func New(registry *cmd.Registry, privileged func(userID string) bool) *Resolver {
	if privileged == nil {
		privileged = func(string) bool { return false }
	}
	return &Resolver{registry: registry, privileged: privileged}
}

// Registry returns the underlying registry.
func (r *Resolver) Registry() *cmd.Registry { return r.registry }

// Privileged reports whether the user may see dev-only commands.
func (r *Resolver) Privileged(userID string) bool { return r.privileged(userID) }

// ResolveExact looks the token up by name, then by alias. A dev-only command
// is reported as missing to a non-privileged viewer.
func (r *Resolver) ResolveExact(token string, privileged bool) (cmd.Command, bool) {
	c := r.registry.Get(token)
	if c == nil {
		return nil, false
	}
	if !Visible(c.Meta(), privileged) {
		return nil, false
	}
	return c, true
}

// ResolveName is ResolveExact without the alias table.
func (r *Resolver) ResolveName(name string, privileged bool) (cmd.Command, bool) {
	c := r.registry.Get(name)
	if c == nil || c.Meta().Name != name || !Visible(c.Meta(), privileged) {
		return nil, false
	}
	return c, true
}

// ResolveFuzzy returns up to MaxMatches commands whose name contains token,
// in registration order.
func (r *Resolver) ResolveFuzzy(token string, privileged bool) []cmd.Choice {
	var out []cmd.Choice
	for _, c := range r.registry.All() {
		m := c.Meta()
		if !strings.Contains(m.Name, token) || !Visible(m, privileged) {
			continue
		}
		out = append(out, cmd.Choice{
			Emoji:       Glyphs[len(out)],
			Label:       m.Name,
			Description: Truncate(m.Description),
			Value:       m.Name,
		})
		if len(out) == MaxMatches {
			break
		}
	}
	return out
}

// Visible reports whether a viewer with the given privilege may see m.
func Visible(m cmd.Meta, privileged bool) bool {
	return privileged || !m.DevOnly
}

// Truncate shortens a description for a choice entry.
func Truncate(s string) string {
	r := []rune(s)
	if len(r) <= descriptionLimit {
		return s
	}
	return string(r[:descriptionLimit]) + "..."
}
