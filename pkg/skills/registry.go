package skills

import (
	"io"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Registry owns the set of loaded skills keyed by slug. It is populated once
// and never mutated afterwards, so concurrent reads need no locking.
type Registry struct {
	root   string
	skills map[string]*Skill
	log    *logrus.Entry
}

// NewRegistry builds a registry from already constructed skills. Duplicate
// slugs are rejected.
func NewRegistry(skills []*Skill, opts ...Option) (*Registry, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		skills: make(map[string]*Skill, len(skills)),
		log:    o.log,
	}
	for _, skill := range skills {
		if skill == nil {
			continue
		}
		if skill.Slug == "" {
			return nil, errors.New("skill slug cannot be empty")
		}
		if _, exists := r.skills[skill.Slug]; exists {
			return nil, errors.Errorf("duplicate skill slug '%s'", skill.Slug)
		}
		r.skills[skill.Slug] = skill
	}

	return r, nil
}

// Root returns the directory the registry was loaded from, if any.
func (r *Registry) Root() string {
	return r.root
}

// Get returns the skill with the exact, case-sensitive slug.
func (r *Registry) Get(slug string) (*Skill, error) {
	skill, ok := r.skills[slug]
	if !ok {
		r.log.WithField("skill", slug).Debug("skill lookup failed")
		return nil, notFound(slug)
	}
	return skill, nil
}

// Len returns the number of registered skills.
func (r *Registry) Len() int {
	return len(r.skills)
}

// Skills returns every registered skill sorted by slug.
func (r *Registry) Skills() []*Skill {
	skills := make([]*Skill, 0, len(r.skills))
	for _, skill := range r.skills {
		skills = append(skills, skill)
	}
	sort.Slice(skills, func(i, j int) bool {
		return skills[i].Slug < skills[j].Slug
	})
	return skills
}

// Names returns the sorted slugs of all registered skills.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.skills))
	for name := range r.skills {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
