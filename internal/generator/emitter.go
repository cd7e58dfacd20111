package generator

import (
	"strings"

	apperrors "alternator-reqgen/internal/common/errors"
	"alternator-reqgen/internal/models"
)

const idSeparator = "-"

// Emitter collects the cases of one generation run and enforces that their
// identifiers are unique across the run.
type Emitter struct {
	operation string
	root      Reference
	cases     []models.TestCase
	seen      map[string]struct{}
	onEmit    func(operation string)
}

func NewEmitter() *Emitter {
	return &Emitter{seen: make(map[string]struct{})}
}

// OnEmit registers a hook invoked after each accepted case.
func (e *Emitter) OnEmit(fn func(operation string)) { e.onEmit = fn }

// Begin points the emitter at the root value of the next operation.
func (e *Emitter) Begin(operation string, root Reference) {
	e.operation = operation
	e.root = root
}

// Emit records the current root value under an identifier built from the
// mutation site. It satisfies EmitFunc.
func (e *Emitter) Emit(path, shape, label string) error {
	id := CaseID(e.operation, path, shape, label)
	if _, dup := e.seen[id]; dup {
		return apperrors.NewDuplicateCaseIDError(id)
	}
	body, err := Serialize(e.root.Read())
	if err != nil {
		return err
	}
	e.seen[id] = struct{}{}
	e.cases = append(e.cases, models.TestCase{ID: id, Request: e.operation, Body: body})
	if e.onEmit != nil {
		e.onEmit(e.operation)
	}
	return nil
}

// Cases returns the collected cases in emission order.
func (e *Emitter) Cases() []models.TestCase { return e.cases }

// CaseID joins the parts of a case identifier.
func CaseID(operation, path, shape, label string) string {
	return strings.Join([]string{operation, path, shape, label}, idSeparator)
}
