package cmd

import "fmt"

// DuplicateNameError is returned by Register when a name or alias is taken.
type DuplicateNameError struct {
	Name    string
	Command string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("command %q: name or alias %q already registered", e.Command, e.Name)
}

// Category groups command names for listing.
type Category struct {
	Name     string
	Hidden   bool
	Commands []string
}

// Registry stores commands by name and alias. It does not perform dispatch.
// It is filled at startup and read-only afterwards.
type Registry struct {
	commands   map[string]Command
	aliases    map[string]string
	order      []string
	categories map[string]*Category
	catOrder   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands:   make(map[string]Command),
		aliases:    make(map[string]string),
		categories: make(map[string]*Category),
	}
}

// DefineCategory declares a category ahead of its commands so that listing
// order and visibility do not depend on which command registers first.
// Redefining an existing category only updates its hidden flag.
func (r *Registry) DefineCategory(name string, hidden bool) {
	if c, ok := r.categories[name]; ok {
		c.Hidden = hidden
		return
	}
	r.categories[name] = &Category{Name: name, Hidden: hidden}
	r.catOrder = append(r.catOrder, name)
}

// Register adds a command. The registry is left untouched when the name or
// any alias is already used by another command.
func (r *Registry) Register(c Command) error {
	m := c.Meta()
	if m.Name == "" {
		return fmt.Errorf("command has no name")
	}

	seen := map[string]bool{m.Name: true}
	if r.taken(m.Name) {
		return &DuplicateNameError{Name: m.Name, Command: m.Name}
	}
	for _, a := range m.Aliases {
		if seen[a] || r.taken(a) {
			return &DuplicateNameError{Name: a, Command: m.Name}
		}
		seen[a] = true
	}

	r.commands[m.Name] = c
	r.order = append(r.order, m.Name)
	for _, a := range m.Aliases {
		r.aliases[a] = m.Name
	}

	if _, ok := r.categories[m.Category]; !ok {
		r.DefineCategory(m.Category, false)
	}
	cat := r.categories[m.Category]
	cat.Commands = append(cat.Commands, m.Name)
	return nil
}

// MustRegister is Register for static startup wiring.
func (r *Registry) MustRegister(cmds ...Command) {
	for _, c := range cmds {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
}

func (r *Registry) taken(name string) bool {
	if _, ok := r.commands[name]; ok {
		return true
	}
	_, ok := r.aliases[name]
	return ok
}

// Get returns the command registered under the given name or alias, or nil.
// Names take precedence over aliases.
func (r *Registry) Get(name string) Command {
	if c, ok := r.commands[name]; ok {
		return c
	}
	if canonical, ok := r.aliases[name]; ok {
		return r.commands[canonical]
	}
	return nil
}

// Alias returns the canonical name an alias points to.
func (r *Registry) Alias(alias string) (string, bool) {
	name, ok := r.aliases[alias]
	return name, ok
}

// All returns all registered commands in registration order.
func (r *Registry) All() []Command {
	list := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.commands[name])
	}
	return list
}

// Categories returns the categories in definition order. The returned values
// are copies.
func (r *Registry) Categories() []Category {
	list := make([]Category, 0, len(r.catOrder))
	for _, name := range r.catOrder {
		c := r.categories[name]
		list = append(list, Category{
			Name:     c.Name,
			Hidden:   c.Hidden,
			Commands: append([]string(nil), c.Commands...),
		})
	}
	return list
}

// BySlashName returns the command exposed under the given structured name.
func (r *Registry) BySlashName(name string) Command {
	for _, c := range r.All() {
		if n := c.Meta().SlashName(); n != "" && n == name {
			return c
		}
	}
	return nil
}

// ContextTarget is what a context-menu command was invoked on.
type ContextTarget int

const (
	ContextTargetUser ContextTarget = iota
	ContextTargetMessage
)

// ByContextMenu returns the first command bound to the given context-menu
// name for the target kind.
func (r *Registry) ByContextMenu(name string, target ContextTarget) Command {
	for _, c := range r.All() {
		m := c.Meta()
		bound := m.ContextUser
		if target == ContextTargetMessage {
			bound = m.ContextChat
		}
		if bound != "" && bound == name {
			return c
		}
	}
	return nil
}
