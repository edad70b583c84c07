// Package identity generates stable, content-derived identifiers for model
// elements and tracks uniqueness within the scopes the target format cares
// about. Identifiers are derived from the element's natural key (its fully
// qualified name, optionally with an ordinal disambiguator), so re-running
// the pipeline on unchanged input yields byte-identical ids.
package identity

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"cuml/internal/errors"
)

// ModelScope is the scope used for ids that must be unique across the whole
// model (every packaged element, member end, literal, and so on).
const ModelScope = "model"

// For derives a stable identifier from a natural key.
// The id format (id_ + 16 hex chars) is fixed by the downstream modeling tool.
func For(key string) string {
	sum := sha1.Sum([]byte(key))
	return "id_" + hex.EncodeToString(sum[:])[:16]
}

// ForOrdinal derives a stable identifier from a natural key plus a zero-based
// ordinal. The ordinal is folded into the key unconditionally, so two callers
// with textually identical keys still receive distinct ids as long as their
// ordinals differ. Operations use their position within the owning class here,
// which is what keeps identically-mangled overloads apart.
func ForOrdinal(key string, ordinal int) string {
	return For(fmt.Sprintf("%s#%d", key, ordinal))
}

// Fallback returns a random identifier for input records that carry no usable
// natural key at all. These are not reproducible across runs, which is
// acceptable only because a nameless element has no stable key to anchor to.
func Fallback() string {
	return "id_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Registry tracks identifiers that have been claimed within named scopes.
// It is a correctness check on top of key composition, not the primary
// uniqueness mechanism: a collision here means the natural keys were built
// wrong, not that the input was bad.
type Registry struct {
	seen map[string]map[string]struct{}
}

// NewRegistry creates an empty registry. A registry is pipeline-scoped:
// created when a build starts and discarded with it.
func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]map[string]struct{})}
}

// Claim derives an id via For and records it in the model scope.
func (r *Registry) Claim(key string) (string, error) {
	id := For(key)
	if err := r.AssertUnique(id, ModelScope); err != nil {
		return "", err
	}
	return id, nil
}

// ClaimOrdinal derives an id via ForOrdinal and records it in both the model
// scope and the given owner scope.
func (r *Registry) ClaimOrdinal(key string, ordinal int, ownerScope string) (string, error) {
	id := ForOrdinal(key, ordinal)
	if err := r.AssertUnique(id, ownerScope); err != nil {
		return "", err
	}
	if err := r.AssertUnique(id, ModelScope); err != nil {
		return "", err
	}
	return id, nil
}

// AssertUnique fails with a DuplicateIdentity error if the same id has
// already been claimed within the given scope.
func (r *Registry) AssertUnique(id, scope string) error {
	ids, ok := r.seen[scope]
	if !ok {
		ids = make(map[string]struct{})
		r.seen[scope] = ids
	}
	if _, dup := ids[id]; dup {
		return errors.New(errors.DuplicateIdentity,
			fmt.Sprintf("identity %s claimed twice in scope %s", id, scope), nil)
	}
	ids[id] = struct{}{}
	return nil
}

// Seen reports whether an id has been claimed in the given scope.
func (r *Registry) Seen(id, scope string) bool {
	_, ok := r.seen[scope][id]
	return ok
}
