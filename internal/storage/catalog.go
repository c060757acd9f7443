package storage

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/pixil98/go-errors"
)

const manifestFile = "manifest.json"

// Catalog is a read-only set of templates listed by a manifest file. The
// manifest is a JSON object holding one list of ids under listKey, and each id
// is loaded from <dir>/<id>.json as an Asset envelope.
type Catalog[T ValidatingSpec] struct {
	dir     string
	order   []string
	records map[string]T
}

func NewCatalog[T ValidatingSpec](dir string, listKey string) (*Catalog[T], error) {
	var manifest map[string][]string
	found, err := ReadJSON(filepath.Join(dir, manifestFile), &manifest)
	if err != nil {
		return nil, fmt.Errorf("loading manifest: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("manifest %s not found in %s", manifestFile, dir)
	}

	c := &Catalog[T]{
		dir:     dir,
		records: map[string]T{},
	}

	el := errors.NewErrorList()
	for _, id := range manifest[listKey] {
		if _, dup := c.records[id]; dup {
			el.Add(fmt.Errorf("duplicate key detected: %s", id))
			continue
		}

		asset := &Asset[T]{}
		found, err := ReadJSON(filepath.Join(dir, id+".json"), asset)
		if err != nil {
			el.Add(err)
			continue
		}
		if !found {
			el.Add(fmt.Errorf("%s: file not found", id))
			continue
		}
		if err := asset.Validate(); err != nil {
			el.Add(fmt.Errorf("validating %s: %w", id, err))
			continue
		}
		if asset.Id() != id {
			el.Add(fmt.Errorf("%s: asset id %q does not match manifest", id, asset.Id()))
			continue
		}

		c.records[id] = asset.Spec
		c.order = append(c.order, id)
	}

	if err := el.Err(); err != nil {
		return nil, err
	}

	return c, nil
}

// Get returns the template for id, or the zero value if it is not listed.
func (c *Catalog[T]) Get(id string) T {
	return c.records[id]
}

// Has reports whether id is listed.
func (c *Catalog[T]) Has(id string) bool {
	_, ok := c.records[id]
	return ok
}

// Ids returns the manifest ids in manifest order.
func (c *Catalog[T]) Ids() []string {
	return append([]string(nil), c.order...)
}

// GetAll returns a copy of every template keyed by id.
func (c *Catalog[T]) GetAll() map[string]T {
	vals := make(map[string]T, len(c.records))
	for id, v := range c.records {
		vals[id] = v
	}
	return vals
}

// NewStaticCatalog builds a catalog from records already in memory. Ids are
// ordered lexically.
func NewStaticCatalog[T ValidatingSpec](records map[string]T) *Catalog[T] {
	c := &Catalog[T]{records: map[string]T{}}
	for id, v := range records {
		c.records[id] = v
		c.order = append(c.order, id)
	}
	sort.Strings(c.order)
	return c
}
