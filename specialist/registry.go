// Package specialist holds the closed table of domain specialists and the invoker that asks them questions.
package specialist

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"help-desk/domain"
	"help-desk/errors"

	"github.com/samber/lo"
)

//go:embed templates/*.txt
var templateFS embed.FS

const templateDir = "templates"

// Registry maps specialist ids and domains to their definitions.
// It is built once at startup and only read afterwards, so it is safe to share between sessions.
type Registry struct {
	byID     map[domain.SpecialistID]domain.SpecialistDefinition
	byDomain map[domain.Domain]domain.SpecialistID
}

// NewRegistry validates the table: ids are unique, every domain has exactly one specialist
// and every specialist carries a behavior template.
func NewRegistry(definitions []domain.SpecialistDefinition) (*Registry, error) {
	r := &Registry{
		byID:     make(map[domain.SpecialistID]domain.SpecialistDefinition, len(definitions)),
		byDomain: make(map[domain.Domain]domain.SpecialistID, len(definitions)),
	}
	for _, def := range definitions {
		if def.ID == "" {
			return nil, fmt.Errorf("%w: empty id for domain %q", errors.ErrUnknownSpecialist, def.Domain)
		}
		if _, ok := r.byID[def.ID]; ok {
			return nil, fmt.Errorf("%w: %s declared twice", errors.ErrUnknownSpecialist, def.ID)
		}
		if !lo.Contains(domain.AllDomains, def.Domain) {
			return nil, fmt.Errorf("%w: %s routes to unknown domain %q", errors.ErrUnmappedDomain, def.ID, def.Domain)
		}
		if other, ok := r.byDomain[def.Domain]; ok {
			return nil, fmt.Errorf("%w: %s (%s and %s)", errors.ErrDuplicateDomain, def.Domain, other, def.ID)
		}
		if strings.TrimSpace(def.Template) == "" {
			return nil, fmt.Errorf("%w: %s", errors.ErrMissingTemplate, def.ID)
		}
		r.byID[def.ID] = def
		r.byDomain[def.Domain] = def.ID
	}
	for _, d := range domain.AllDomains {
		if _, ok := r.byDomain[d]; !ok {
			return nil, fmt.Errorf("%w: %s", errors.ErrUnmappedDomain, d)
		}
	}
	return r, nil
}

// DefaultRegistry builds the production table with the embedded templates.
func DefaultRegistry() (*Registry, error) {
	defs, err := withTemplates(templateFS, definitions)
	if err != nil {
		return nil, err
	}
	return NewRegistry(defs)
}

// MustDefaultRegistry panics on a misconfigured table. A broken table is a programming error.
func MustDefaultRegistry() *Registry {
	r, err := DefaultRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns the definition for id.
func (r *Registry) Get(id domain.SpecialistID) (domain.SpecialistDefinition, error) {
	def, ok := r.byID[id]
	if !ok {
		return domain.SpecialistDefinition{}, fmt.Errorf("%w: %s", errors.ErrUnknownSpecialist, id)
	}
	return def, nil
}

// ForDomain returns the specialist registered for d, or the general specialist.
func (r *Registry) ForDomain(d domain.Domain) domain.SpecialistDefinition {
	if id, ok := r.byDomain[d]; ok {
		return r.byID[id]
	}
	return r.byID[r.byDomain[domain.DomainGeneral]]
}

// Domains returns the registered domains in routing order.
func (r *Registry) Domains() []domain.Domain {
	return lo.Filter(domain.AllDomains, func(d domain.Domain, _ int) bool {
		_, ok := r.byDomain[d]
		return ok
	})
}

// Definitions returns every definition in routing order.
func (r *Registry) Definitions() []domain.SpecialistDefinition {
	return lo.Map(r.Domains(), func(d domain.Domain, _ int) domain.SpecialistDefinition {
		return r.byID[r.byDomain[d]]
	})
}

// withTemplates copies defs and fills each Template from <dir>/<id>.txt.
func withTemplates(fsys fs.FS, defs []domain.SpecialistDefinition) ([]domain.SpecialistDefinition, error) {
	out := make([]domain.SpecialistDefinition, 0, len(defs))
	for _, def := range defs {
		data, err := fs.ReadFile(fsys, path.Join(templateDir, string(def.ID)+".txt"))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errors.ErrMissingTemplate, def.ID, err)
		}
		def.Template = strings.TrimSpace(string(data))
		out = append(out, def)
	}
	return out, nil
}
