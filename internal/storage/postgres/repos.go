package postgres

import (
	"mercadito/internal/domain"
	"mercadito/internal/schema"
)

// Repos implements domain.RepositorySet: one EntityRepo per registered
// entity, all sharing the same transaction manager and audit log.
type Repos struct {
	byName map[string]*EntityRepo
}

var _ domain.RepositorySet = (*Repos)(nil)

// NewRepos builds repositories for every entity in the registry.
func NewRepos(registry *schema.Registry, tx *TxManager, audit *AuditLog) *Repos {
	byName := make(map[string]*EntityRepo)
	for _, def := range registry.List() {
		byName[def.Name] = NewEntityRepo(def, tx, audit)
	}
	return &Repos{byName: byName}
}

// Repo resolves the repository for an entity name.
func (r *Repos) Repo(entity string) (domain.Repository, bool) {
	repo, ok := r.byName[entity]
	return repo, ok
}

// Entity returns the concrete repository, for callers that need the
// full type (the orders aggregate).
func (r *Repos) Entity(name string) (*EntityRepo, bool) {
	repo, ok := r.byName[name]
	return repo, ok
}
