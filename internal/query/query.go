// Package query builds provider-ready search queries from a topic and
// a requester role.
package query

import (
	"sort"
	"strings"

	"github.com/abelbrown/zeitgeist/internal/config"
)

// builtinTemplates bias queries toward role-relevant phrasing. Roles are
// an open set: anything not found here or in the user templates falls
// back to config.DefaultTemplate.
var builtinTemplates = map[string]string{
	"expert":     "{topic} expert analysis opinions",
	"academic":   "{topic} research papers academic perspective",
	"journalist": "{topic} news coverage investigation",
	"analyst":    "{topic} market analysis trends forecast",
	"developer":  "{topic} developer tools libraries frameworks",
	"designer":   "{topic} design trends tools UX",
	"manager":    "{topic} industry impact adoption strategy",
}

// Generator resolves role templates into query strings. The template
// map is built once at construction and never mutated, which keeps
// generation deterministic and cache keys stable.
type Generator struct {
	templates map[string]string
}

// NewGenerator builds a Generator from the built-in role templates plus
// user overrides. User entries win over built-ins for the same role.
func NewGenerator(userTemplates map[string]string) *Generator {
	templates := make(map[string]string, len(builtinTemplates)+len(userTemplates))
	for role, tmpl := range builtinTemplates {
		templates[role] = tmpl
	}
	for role, tmpl := range userTemplates {
		templates[NormalizeRole(role)] = tmpl
	}
	return &Generator{templates: templates}
}

// Generate returns the provider query for (topic, role, context).
// Identical inputs always yield the identical string.
func (g *Generator) Generate(topic, role, context string) string {
	tmpl, ok := g.templates[NormalizeRole(role)]
	if !ok {
		tmpl = config.DefaultTemplate
	}

	q := strings.ReplaceAll(tmpl, "{topic}", NormalizeTopic(topic))
	if context = strings.TrimSpace(context); context != "" {
		q += " " + context
	}
	return q
}

// Roles returns the known role tags in sorted order.
func (g *Generator) Roles() []string {
	roles := make([]string, 0, len(g.templates))
	for role := range g.templates {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// NormalizeTopic case-folds, trims, and collapses inner whitespace so
// equivalent topics produce the same query and the same cache key.
func NormalizeTopic(topic string) string {
	return strings.Join(strings.Fields(strings.ToLower(topic)), " ")
}

// NormalizeRole lower-cases and trims a role tag.
func NormalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
