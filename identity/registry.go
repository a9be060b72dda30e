package identity

import "fmt"

// Claims exposes identifiers already assigned in earlier runs.
type Claims interface {
	// IdentifierFor returns the identifier previously given to a source URL.
	IdentifierFor(sourceURL string) (string, bool, error)
	// OwnerOf returns the source URL that owns an identifier.
	OwnerOf(identifier string) (string, bool, error)
}

// Assignment is the outcome of registering one article.
type Assignment struct {
	Identifier string
	// Base is the identifier Resolve derived from the title.
	Base string
	// Collided is set when Base belonged to another article or was
	// reserved, and a suffix was appended.
	Collided bool
	// Reused is set when the identifier came from an earlier run.
	Reused bool
}

// Registry hands out identifiers that are unique within a run. Collisions
// are resolved by suffixing the later article rather than overwriting the
// earlier one's output.
type Registry struct {
	claims Claims
	taken  map[string]string // identifier -> source URL
}

// NewRegistry creates a registry. claims may be nil, in which case only
// identifiers assigned during this run are considered.
func NewRegistry(claims Claims) *Registry {
	return &Registry{
		claims: claims,
		taken:  make(map[string]string),
	}
}

// Assign returns the identifier for the article at sourceURL. Assigning the
// same source URL twice yields the same identifier, reported as a collision
// only the first time. Reserved identifiers are never handed out; a title
// resolving to one is suffixed like any other collision.
func (r *Registry) Assign(sourceURL, title string) (Assignment, error) {
	base := Resolve(title)

	if r.claims != nil {
		prior, ok, err := r.claims.IdentifierFor(sourceURL)
		if err != nil {
			return Assignment{}, fmt.Errorf("failed to look up identifier: %w", err)
		}
		if owner, taken := r.taken[prior]; ok && !IsReserved(prior) && (!taken || owner == sourceURL) {
			r.taken[prior] = sourceURL
			return Assignment{Identifier: prior, Base: base, Reused: true}, nil
		}
	}

	for n := 1; ; n++ {
		candidate := WithSuffix(base, n)
		if IsReserved(candidate) {
			continue
		}

		if owner, taken := r.taken[candidate]; taken {
			if owner == sourceURL {
				return Assignment{Identifier: candidate, Base: base}, nil
			}
			continue
		}

		if r.claims != nil {
			owner, ok, err := r.claims.OwnerOf(candidate)
			if err != nil {
				return Assignment{}, fmt.Errorf("failed to look up identifier owner: %w", err)
			}
			if ok && owner != sourceURL {
				continue
			}
		}

		r.taken[candidate] = sourceURL
		return Assignment{Identifier: candidate, Base: base, Collided: n > 1}, nil
	}
}

// Len returns the number of identifiers assigned so far.
func (r *Registry) Len() int {
	return len(r.taken)
}
