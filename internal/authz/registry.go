// Package authz keeps the set of actions the HTTP layer guards with permissions.
// Route groups register their actions when they are mounted; the set is then
// synced into the permissions table so roles can be granted them.
package authz

import (
	"sort"
	"strings"
	"sync"

	"go-occupational-backend/internal/domain"
)

type Registry struct {
	mu      sync.RWMutex
	actions map[string]domain.Permission
}

func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]domain.Permission)}
}

// Register adds an action and returns its code so it can be used inline
// when building routes. Registering the same code twice keeps the first description.
func (r *Registry) Register(code, description string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.actions[code]; !ok {
		r.actions[code] = domain.Permission{
			Code:        code,
			Module:      moduleOf(code),
			Description: description,
		}
	}
	return code
}

// moduleOf returns the part before the first dot: "orders.create" -> "orders".
func moduleOf(code string) string {
	if i := strings.IndexByte(code, '.'); i > 0 {
		return code[:i]
	}
	return code
}

func (r *Registry) Has(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.actions[code]
	return ok
}

// List returns every registered action sorted by code.
func (r *Registry) List() []domain.Permission {
	r.mu.RLock()
	out := make([]domain.Permission, 0, len(r.actions))
	for _, p := range r.actions {
		out = append(out, p)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
