// Package catalog holds the static registry of playable entities for each
// game variant. Entities are loaded once at process start from embedded seed
// files and never mutated; the catalog itself is stateless and safe to share.
package catalog

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

//go:embed data/*.json
var seedFS embed.FS

// Variant identifies one of the playable game variants.
type Variant string

const (
	Countries   Variant = "countries"
	Powiaty     Variant = "powiaty"
	Wojewodztwa Variant = "wojewodztwa"
	USStates    Variant = "us_states"
)

// seedFiles maps each variant to its embedded seed file.
var seedFiles = map[Variant]string{
	Countries:   "data/countries.json",
	Powiaty:     "data/powiaty.json",
	Wojewodztwa: "data/wojewodztwa.json",
	USStates:    "data/us_states.json",
}

// Valid reports whether v is a registered variant.
func (v Variant) Valid() bool {
	_, ok := seedFiles[v]
	return ok
}

func (v Variant) String() string { return string(v) }

// Variants returns all registered variants in a stable order.
func Variants() []Variant {
	vs := make([]Variant, 0, len(seedFiles))
	for v := range seedFiles {
		vs = append(vs, v)
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i] < vs[j] })
	return vs
}

// ErrNotFound is returned for unknown entity IDs or unregistered variants.
var ErrNotFound = errors.New("catalog: not found")

// Entity is one secret geographic unit a round can be about. Immutable.
type Entity struct {
	ID           string            `json:"id"`
	Names        map[string]string `json:"names"` // locale -> display name
	Aliases      []string          `json:"aliases,omitempty"`
	ReferenceDoc string            `json:"doc"`
	Variant      Variant           `json:"-"`
}

// DisplayName returns the entity name for a locale, falling back to English,
// then to any available locale in stable order, then to the entity ID.
func (e Entity) DisplayName(locale string) string {
	if name, ok := e.Names[locale]; ok {
		return name
	}
	if name, ok := e.Names["en"]; ok {
		return name
	}
	locales := make([]string, 0, len(e.Names))
	for l := range e.Names {
		locales = append(locales, l)
	}
	sort.Strings(locales)
	if len(locales) > 0 {
		return e.Names[locales[0]]
	}
	return e.ID
}

// AllNames returns the canonical names and aliases used for guess matching.
func (e Entity) AllNames() []string {
	names := make([]string, 0, len(e.Names)+len(e.Aliases))
	for _, n := range e.Names {
		names = append(names, n)
	}
	names = append(names, e.Aliases...)
	return names
}

// Catalog is the loaded entity registry.
type Catalog struct {
	byVariant map[Variant][]Entity
	byID      map[string]Entity
}

// Load parses the embedded seed files for every registered variant. It fails
// if any variant has no entities or an entity ID repeats; callers treat that
// as fatal at startup.
func Load() (*Catalog, error) {
	c := &Catalog{
		byVariant: make(map[Variant][]Entity, len(seedFiles)),
		byID:      make(map[string]Entity),
	}

	for variant, path := range seedFiles {
		raw, err := seedFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", path, err)
		}

		var entities []Entity
		if err := json.Unmarshal(raw, &entities); err != nil {
			return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
		}
		if len(entities) == 0 {
			return nil, fmt.Errorf("catalog: variant %s has no entities", variant)
		}

		for i := range entities {
			entities[i].Variant = variant
			e := entities[i]
			if e.ID == "" {
				return nil, fmt.Errorf("catalog: variant %s has an entity with no id", variant)
			}
			if _, dup := c.byID[e.ID]; dup {
				return nil, fmt.Errorf("catalog: duplicate entity id %q", e.ID)
			}
			if len(e.Names) == 0 {
				return nil, fmt.Errorf("catalog: entity %s has no names", e.ID)
			}
			c.byID[e.ID] = e
		}
		c.byVariant[variant] = entities
	}

	return c, nil
}

// Get returns the entity with the given ID.
func (c *Catalog) Get(id string) (Entity, error) {
	e, ok := c.byID[id]
	if !ok {
		return Entity{}, fmt.Errorf("catalog: entity %q: %w", id, ErrNotFound)
	}
	return e, nil
}

// ByVariant returns all entities for a variant.
func (c *Catalog) ByVariant(v Variant) ([]Entity, error) {
	entities, ok := c.byVariant[v]
	if !ok {
		return nil, fmt.Errorf("catalog: variant %q: %w", v, ErrNotFound)
	}
	return entities, nil
}

// Count returns the number of entities registered for a variant.
func (c *Catalog) Count(v Variant) int {
	return len(c.byVariant[v])
}

// Pick selects a uniformly random entity for the variant, skipping IDs in
// exclude. The cool-down exclusion is best effort: if it would empty the
// pool the full variant is used instead.
func (c *Catalog) Pick(rng *rand.Rand, v Variant, exclude map[string]struct{}) (Entity, error) {
	entities, ok := c.byVariant[v]
	if !ok {
		return Entity{}, fmt.Errorf("catalog: variant %q: %w", v, ErrNotFound)
	}

	pool := entities
	if len(exclude) > 0 {
		pool = make([]Entity, 0, len(entities))
		for _, e := range entities {
			if _, skip := exclude[e.ID]; !skip {
				pool = append(pool, e)
			}
		}
		if len(pool) == 0 {
			pool = entities
		}
	}

	return pool[rng.Intn(len(pool))], nil
}
