package providers

import (
	"strings"

	"StoryStudio/internal/config"
)

// ModelRoute is one entry of the OpenAI-compatible tier table
type ModelRoute struct {
	Name string
	// Match holds case-insensitive substrings of the logical model identifier
	Match []string
	Model string

	NoSystemRole       bool
	NoJSONMode         bool
	NoTemperature      bool
	FallbackOnNotFound bool
}

func (r ModelRoute) matches(logical string) bool {
	for _, m := range r.Match {
		if m != "" && strings.Contains(logical, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// ModelTable maps logical identifiers to backend models. Routes are
// evaluated top to bottom; the default route answers everything else.
type ModelTable struct {
	routes   []ModelRoute
	fallback ModelRoute
}

// NewModelTable builds a table from ordered routes and a mandatory default
func NewModelTable(def ModelRoute, routes ...ModelRoute) ModelTable {
	if def.Name == "" {
		def.Name = "default"
	}
	return ModelTable{routes: routes, fallback: def}
}

// DefaultModelTable is the built-in tier mapping
func DefaultModelTable() ModelTable {
	return NewModelTable(
		ModelRoute{Name: "default", Model: "gpt-4o"},
		ModelRoute{
			Name:               "thinking",
			Match:              []string{"thinking", "reasoning", "o1", "o3"},
			Model:              "o3-mini",
			NoSystemRole:       true,
			NoJSONMode:         true,
			NoTemperature:      true,
			FallbackOnNotFound: true,
		},
		// after thinking, so reasoning names ending in "mini" keep their tier
		ModelRoute{Name: "instant", Match: []string{"instant", "mini"}, Model: "gpt-4o-mini"},
		ModelRoute{Name: "pro", Match: []string{"pro"}, Model: "gpt-4.1"},
	)
}

// ModelTableFromConfig returns the configured table, or the built-in one when
// none is configured. A configured route without Match becomes the default.
func ModelTableFromConfig(routes []config.ModelRoute) ModelTable {
	if len(routes) == 0 {
		return DefaultModelTable()
	}

	def := DefaultModelTable().Default()
	var ordered []ModelRoute
	for _, r := range routes {
		route := ModelRoute{
			Name:               r.Name,
			Match:              r.Match,
			Model:              r.Model,
			NoSystemRole:       r.NoSystemRole,
			NoJSONMode:         r.NoJSONMode,
			NoTemperature:      r.NoTemperature,
			FallbackOnNotFound: r.FallbackOnNotFound,
		}
		if len(route.Match) == 0 {
			def = route
			continue
		}
		ordered = append(ordered, route)
	}
	return NewModelTable(def, ordered...)
}

// Resolve returns the first route matching logical, or the default route.
// Unknown identifiers are not an error.
func (t ModelTable) Resolve(logical string) ModelRoute {
	route, _ := t.Lookup(logical)
	return route
}

// Lookup is Resolve that also reports whether a tier matched
func (t ModelTable) Lookup(logical string) (ModelRoute, bool) {
	lower := strings.ToLower(logical)
	for _, r := range t.routes {
		if r.matches(lower) {
			return r, true
		}
	}
	return t.fallback, false
}

// Default returns the flagship route used for not-found fallback
func (t ModelTable) Default() ModelRoute {
	return t.fallback
}
