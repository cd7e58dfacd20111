package generator

import (
	"fmt"
	"strconv"

	"alternator-reqgen/pkg/registry"
)

// Builder constructs minimal valid instances of named shapes.
type Builder struct {
	shapes      ShapeSource
	opts        Options
	identifiers map[string]identifierKind
}

func NewBuilder(shapes ShapeSource, opts Options) *Builder {
	return &Builder{
		shapes:      shapes,
		opts:        opts,
		identifiers: opts.identifiers(),
	}
}

// Build returns a valid instance of the named shape.
func (b *Builder) Build(name string) (Value, error) {
	return b.BuildSeeded(name, 0)
}

// BuildSeeded is Build with a per-index seed used to keep generated map keys
// and list elements distinct. Seed 0 yields the plain placeholder.
func (b *Builder) BuildSeeded(name string, seed int) (Value, error) {
	if kind, ok := b.identifiers[name]; ok {
		return b.opts.marker(kind), nil
	}
	sh, err := b.shapes.Shape(name)
	if err != nil {
		return nil, err
	}

	switch sh.Kind() {
	case registry.KindString:
		if sh.HasEnum() {
			return sh.Enum[0], nil
		}
		return b.placeholder(seed), nil

	case registry.KindStructure:
		obj := make(Object, len(sh.Required))
		for _, mem := range sh.Required {
			v, err := b.Build(sh.Members[mem].Shape)
			if err != nil {
				return nil, fmt.Errorf("member %s of %s: %w", mem, name, err)
			}
			obj[mem] = v
		}
		return obj, nil

	case registry.KindMap:
		obj := Object{}
		for i := 0; i < sh.MinCount(); i++ {
			k, err := b.BuildSeeded(sh.Key.Shape, i)
			if err != nil {
				return nil, fmt.Errorf("key of %s: %w", name, err)
			}
			v, err := b.BuildSeeded(sh.Value.Shape, i)
			if err != nil {
				return nil, fmt.Errorf("value of %s: %w", name, err)
			}
			obj[b.keyString(k, i)] = v
		}
		return obj, nil

	case registry.KindList:
		list := NewList()
		for i := 0; i < sh.MinCount(); i++ {
			v, err := b.BuildSeeded(sh.Member.Shape, i)
			if err != nil {
				return nil, fmt.Errorf("member of %s: %w", name, err)
			}
			list.Items = append(list.Items, v)
		}
		return list, nil

	default:
		return nil, nil
	}
}

func (b *Builder) placeholder(seed int) string {
	if seed == 0 {
		return b.opts.StringPlaceholder
	}
	return b.opts.StringPlaceholder + strconv.Itoa(seed)
}

// keyString coerces a built key to a map key.
func (b *Builder) keyString(k Value, seed int) string {
	if s, ok := k.(string); ok {
		return s
	}
	return b.placeholder(seed)
}
