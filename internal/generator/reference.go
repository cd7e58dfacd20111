package generator

import (
	"errors"
	"fmt"

	apperrors "alternator-reqgen/internal/common/errors"
)

var (
	errNotString   = errors.New("map keys must be strings")
	errKeyTaken    = errors.New("map key already present")
	errKeyMissing  = errors.New("map key no longer present")
	errOutOfRange  = errors.New("list index out of range")
	errNilSlotHost = errors.New("reference has no container")
)

// Reference is a mutable slot inside a composite value.
// Write either replaces the slot content or returns an error and leaves the
// container untouched.
type Reference interface {
	Name() string
	Read() Value
	Write(v Value) error
}

// MemberRef addresses a structure member or a map value. The slot must be
// present when the reference is used; restoring writes the value back, it
// never deletes the key.
type MemberRef struct {
	obj  Object
	key  string
	name string
}

func NewMemberRef(obj Object, key, name string) *MemberRef {
	return &MemberRef{obj: obj, key: key, name: name}
}

func (r *MemberRef) Name() string { return r.name }

func (r *MemberRef) Read() Value { return r.obj[r.key] }

func (r *MemberRef) Write(v Value) error {
	if r.obj == nil {
		return errNilSlotHost
	}
	r.obj[r.key] = v
	return nil
}

// KeyRef addresses the key of a map entry. Writing renames the key and
// keeps its value.
type KeyRef struct {
	obj  Object
	key  string
	name string
}

func NewKeyRef(obj Object, key, name string) *KeyRef {
	return &KeyRef{obj: obj, key: key, name: name}
}

func (r *KeyRef) Name() string { return r.name }

// Key is the current key of the entry.
func (r *KeyRef) Key() string { return r.key }

func (r *KeyRef) Read() Value { return r.key }

func (r *KeyRef) Write(v Value) error {
	next, ok := v.(string)
	if !ok {
		return errNotString
	}
	value, present := r.obj[r.key]
	if !present {
		return errKeyMissing
	}
	if next == r.key {
		return nil
	}
	// a rename onto an existing key would merge two entries and could not be undone
	if _, taken := r.obj[next]; taken {
		return errKeyTaken
	}
	r.obj[next] = value
	delete(r.obj, r.key)
	r.key = next
	return nil
}

// IndexRef addresses one element of a list.
type IndexRef struct {
	list  *List
	index int
	name  string
}

func NewIndexRef(list *List, index int, name string) *IndexRef {
	return &IndexRef{list: list, index: index, name: name}
}

func (r *IndexRef) Name() string { return r.name }

func (r *IndexRef) Read() Value {
	if r.list == nil || r.index < 0 || r.index >= len(r.list.Items) {
		return nil
	}
	return r.list.Items[r.index]
}

func (r *IndexRef) Write(v Value) error {
	if r.list == nil {
		return errNilSlotHost
	}
	if r.index < 0 || r.index >= len(r.list.Items) {
		return fmt.Errorf("%w: %d of %d", errOutOfRange, r.index, len(r.list.Items))
	}
	r.list.Items[r.index] = v
	return nil
}

// attempt writes value into ref, calls emit with label while the mutation is
// in place, then writes the previous content back. A rejected write means the
// mutation does not apply to this slot and is skipped without emitting.
func attempt(ref Reference, value Value, emit func(label string) error, label string) error {
	saved := ref.Read()
	if err := ref.Write(value); err != nil {
		return nil
	}
	emitErr := emit(label)
	if err := ref.Write(saved); err != nil {
		return apperrors.NewRestoreFailedError(ref.Name(), err)
	}
	return emitErr
}
