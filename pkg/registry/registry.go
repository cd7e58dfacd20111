// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	apperrors "alternator-reqgen/internal/common/errors"
)

// Catalog is a read-only lookup of shapes and operations by name.
// It is safe for concurrent readers once constructed.
type Catalog struct {
	operations map[string]Operation
	shapes     map[string]*Shape
}

// LoadCatalog reads and decodes a service document from path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewSchemaLoadFailedError(path, err)
	}
	cat, err := ParseCatalog(data)
	if err != nil {
		if apperrors.CodeOf(err) != "" {
			return nil, err
		}
		return nil, apperrors.NewSchemaLoadFailedError(path, err)
	}
	return cat, nil
}

// ParseCatalog decodes a service document and checks that every shape
// reference resolves.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc ServiceDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode service document: %w", err)
	}
	return NewCatalog(doc)
}

// NewCatalog builds a catalog from an already decoded document.
func NewCatalog(doc ServiceDocument) (*Catalog, error) {
	cat := &Catalog{
		operations: make(map[string]Operation, len(doc.Operations)),
		shapes:     make(map[string]*Shape, len(doc.Shapes)),
	}
	for name, sh := range doc.Shapes {
		if sh == nil {
			continue
		}
		sh.prepare(name)
		cat.shapes[name] = sh
	}
	for name, op := range doc.Operations {
		if op.Name == "" {
			op.Name = name
		}
		cat.operations[name] = op
	}
	if problems := cat.integrityProblems(); len(problems) > 0 {
		return nil, apperrors.NewSchemaInvalidError(problems)
	}
	return cat, nil
}

func (c *Catalog) integrityProblems() []string {
	var problems []string
	for _, name := range c.ShapeNames() {
		sh := c.shapes[name]
		problems = append(problems, sh.check()...)
		refs := sh.references()
		roles := make([]string, 0, len(refs))
		for role := range refs {
			roles = append(roles, role)
		}
		sort.Strings(roles)
		for _, role := range roles {
			if _, ok := c.shapes[refs[role]]; !ok {
				problems = append(problems, fmt.Sprintf("shape %s: %s references unknown shape %s", name, role, refs[role]))
			}
		}
	}
	for _, name := range c.OperationNames() {
		op := c.operations[name]
		if op.Input == nil {
			continue
		}
		if _, ok := c.shapes[op.Input.Shape]; !ok {
			problems = append(problems, fmt.Sprintf("operation %s: input references unknown shape %s", name, op.Input.Shape))
		}
	}
	return problems
}

// Shape returns the named shape.
func (c *Catalog) Shape(name string) (*Shape, error) {
	sh, ok := c.shapes[name]
	if !ok {
		return nil, apperrors.NewShapeNotFoundError(name)
	}
	return sh, nil
}

// Operation returns the named operation.
func (c *Catalog) Operation(name string) (Operation, bool) {
	op, ok := c.operations[name]
	return op, ok
}

// OperationNames returns all operation names in sorted order.
func (c *Catalog) OperationNames() []string {
	names := make([]string, 0, len(c.operations))
	for n := range c.operations {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ShapeNames returns all shape names in sorted order.
func (c *Catalog) ShapeNames() []string {
	names := make([]string, 0, len(c.shapes))
	for n := range c.shapes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// MemberNames returns the declared members of a structure shape in sorted order.
func (s *Shape) MemberNames() []string {
	names := make([]string, 0, len(s.Members))
	for n := range s.Members {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
