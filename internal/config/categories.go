package config

// Category names used by the built-in commands.
const (
	CategoryInformation = "🕯️ Information"
	CategoryUtilities   = "📢 Utilities"
	CategoryMaintenance = "🛠️ Maintenance"
)

// CategorySpec declares a listing category ahead of registration.
type CategorySpec struct {
	Name   string
	Hidden bool
}

// Categories are declared in this order; the help listing follows it.
var Categories = []CategorySpec{
	{Name: CategoryInformation},
	{Name: CategoryUtilities},
	{Name: CategoryMaintenance, Hidden: true},
}
