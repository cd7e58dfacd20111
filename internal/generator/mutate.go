package generator

import (
	"fmt"
	"sort"

	"alternator-reqgen/pkg/registry"
)

// EmitFunc receives one mutation site while the mutated value is in place.
type EmitFunc func(path, shape, label string) error

type mutation struct {
	value Value
	label string
}

// Generator walks a valid value and emits one case per single-point violation.
type Generator struct {
	shapes      ShapeSource
	builder     *Builder
	opts        Options
	recursive   map[string]bool
	identifiers map[string]identifierKind
}

func NewGenerator(shapes ShapeSource, opts Options) *Generator {
	recursive := make(map[string]bool, len(opts.RecursiveShapes))
	for _, n := range opts.RecursiveShapes {
		recursive[n] = true
	}
	return &Generator{
		shapes:      shapes,
		builder:     NewBuilder(shapes, opts),
		opts:        opts,
		recursive:   recursive,
		identifiers: opts.identifiers(),
	}
}

// Builder returns the builder used to fill absent members.
func (g *Generator) Builder() *Builder { return g.builder }

// Generate applies every applicable mutation to the slot behind ref, which
// holds an instance of shapeName, then recurses into its children with
// maxDepth-1. Every mutation is reverted before the next one is applied.
func (g *Generator) Generate(shapeName string, ref Reference, emit EmitFunc, maxDepth int) error {
	if maxDepth <= 0 {
		return nil
	}
	sh, err := g.shapes.Shape(shapeName)
	if err != nil {
		return err
	}
	if g.recursive[shapeName] && maxDepth > g.opts.RecursiveDepthCap {
		maxDepth = g.opts.RecursiveDepthCap
	}

	here := func(label string) error {
		return emit(ref.Name(), shapeName, label)
	}
	for _, m := range g.mutationsFor(sh) {
		if err := attempt(ref, m.value, here, m.label); err != nil {
			return err
		}
	}

	switch sh.Kind() {
	case registry.KindStructure:
		obj, ok := ref.Read().(Object)
		if !ok {
			return nil
		}
		return g.structure(sh, obj, ref, emit, maxDepth)
	case registry.KindMap:
		obj, ok := ref.Read().(Object)
		if !ok {
			return nil
		}
		return g.mapEntries(sh, obj, ref, emit, maxDepth)
	case registry.KindList:
		list, ok := ref.Read().(*List)
		if !ok || list == nil {
			return nil
		}
		return g.listElements(sh, list, ref, emit, maxDepth)
	case registry.KindString, registry.KindScalar:
		return nil
	default:
		return fmt.Errorf("shape %s: unhandled kind %s", shapeName, sh.Kind())
	}
}

// mutationsFor lists the generic and string-specific mutations in the order
// they are attempted.
func (g *Generator) mutationsFor(sh *registry.Shape) []mutation {
	kind := sh.Kind()
	ms := []mutation{{nil, LabelUnexpectedNull}}
	if kind != registry.KindString {
		ms = append(ms, mutation{sentinelString, LabelUnexpectedString})
	}
	if kind != registry.KindStructure && kind != registry.KindMap {
		ms = append(ms, mutation{Object{}, LabelUnexpectedObject})
	}
	if kind != registry.KindList {
		ms = append(ms, mutation{NewList(), LabelUnexpectedList})
	}
	if kind != registry.KindString {
		return ms
	}

	switch g.identifiers[sh.Name] {
	case tableIdentifier:
		ms = append(ms, mutation{invalidTableLiteral, LabelInvalidTableName})
	case attributeIdentifier:
		ms = append(ms, mutation{invalidAttrLiteral, LabelInvalidAttrName})
	case resourceIdentifier:
		ms = append(ms, mutation{invalidResourceLit, LabelInvalidResourceName})
	}
	if sh.HasEnum() {
		ms = append(ms, mutation{invalidEnumLiteral, LabelInvalidEnum})
	}
	if sh.MinCount() > 0 {
		ms = append(ms, mutation{"", LabelEmptyString})
	}
	if sh.HasPattern() {
		ms = append(ms, mutation{forbiddenLiteral, LabelForbiddenString})
	}
	return ms
}

func (g *Generator) structure(sh *registry.Shape, obj Object, ref Reference, emit EmitFunc, depth int) error {
	for _, mem := range sh.MemberNames() {
		memShape := sh.Members[mem].Shape
		current, present := obj[mem]
		if !present {
			filler, err := g.builder.Build(memShape)
			if err != nil {
				return fmt.Errorf("fill member %s of %s: %w", mem, sh.Name, err)
			}
			obj[mem] = filler
		} else if sh.IsRequired(mem) {
			delete(obj, mem)
			err := emit(ref.Name(), sh.Name, mem+LabelMissingSuffix)
			obj[mem] = current
			if err != nil {
				return err
			}
			memberRef := NewMemberRef(obj, mem, ref.Name())
			emitNull := func(label string) error { return emit(ref.Name(), sh.Name, label) }
			if err := attempt(memberRef, nil, emitNull, mem+LabelNullSuffix); err != nil {
				return err
			}
		}

		err := g.Generate(memShape, NewMemberRef(obj, mem, ref.Name()+"."+mem), emit, depth-1)
		if !present {
			delete(obj, mem)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) mapEntries(sh *registry.Shape, obj Object, ref Reference, emit EmitFunc, depth int) error {
	var key string
	synthesized := len(obj) == 0
	if synthesized {
		k, err := g.builder.Build(sh.Key.Shape)
		if err != nil {
			return fmt.Errorf("map key of %s: %w", sh.Name, err)
		}
		v, err := g.builder.Build(sh.Value.Shape)
		if err != nil {
			return fmt.Errorf("map value of %s: %w", sh.Name, err)
		}
		key = g.builder.keyString(k, 0)
		obj[key] = v
	} else {
		key = firstKey(obj)
		saved := obj[key]
		delete(obj, key)
		err := emit(ref.Name(), sh.Name, LabelMissingValue)
		obj[key] = saved
		if err != nil {
			return err
		}
		here := func(label string) error { return emit(ref.Name(), sh.Name, label) }
		if err := attempt(NewMemberRef(obj, key, ref.Name()), nil, here, LabelNullValue); err != nil {
			return err
		}
	}

	err := g.Generate(sh.Value.Shape, NewMemberRef(obj, key, ref.Name()+valueReferenceSuffix), emit, depth-1)
	if err == nil {
		keyRef := NewKeyRef(obj, key, ref.Name()+keyReferenceSuffix)
		err = g.Generate(sh.Key.Shape, keyRef, emit, depth-1)
		key = keyRef.Key()
	}
	if synthesized {
		delete(obj, key)
	}
	return err
}

func (g *Generator) listElements(sh *registry.Shape, list *List, ref Reference, emit EmitFunc, depth int) error {
	synthesized := len(list.Items) == 0
	if synthesized {
		v, err := g.builder.Build(sh.Member.Shape)
		if err != nil {
			return fmt.Errorf("list member of %s: %w", sh.Name, err)
		}
		list.Items = append(list.Items, v)
	} else {
		saved := list.Items
		list.Items = append(make([]Value, 0, len(saved)-1), saved[1:]...)
		err := emit(ref.Name(), sh.Name, LabelMissingValue)
		list.Items = saved
		if err != nil {
			return err
		}
		here := func(label string) error { return emit(ref.Name(), sh.Name, label) }
		if err := attempt(NewIndexRef(list, 0, ref.Name()), nil, here, LabelNullValue); err != nil {
			return err
		}
	}

	err := g.Generate(sh.Member.Shape, NewIndexRef(list, 0, ref.Name()+firstElementSuffix), emit, depth-1)
	if synthesized {
		list.Items = list.Items[:0]
	}
	return err
}

func firstKey(obj Object) string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0]
}
