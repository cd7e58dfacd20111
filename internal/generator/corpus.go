package generator

import (
	"context"
	"fmt"

	"alternator-reqgen/internal/common/logger"
	"alternator-reqgen/internal/common/metrics"
	"alternator-reqgen/internal/models"
	"alternator-reqgen/pkg/registry"
)

// Catalog is the read-only view of the service document the corpus needs.
type Catalog interface {
	ShapeSource
	OperationNames() []string
	Operation(name string) (registry.Operation, bool)
}

// Result is the outcome of one corpus generation run.
type Result struct {
	Cases       []models.TestCase
	Unsupported []models.TestCase
	// Skipped lists supported operations that declare no input shape.
	Skipped []string
}

// Corpus generates the request corpus for every supported operation.
type Corpus struct {
	catalog   Catalog
	opts      Options
	supported map[string]bool
	log       logger.Logger
}

func NewCorpus(catalog Catalog, opts Options, supported []string, log logger.Logger) *Corpus {
	allow := make(map[string]bool, len(supported))
	for _, op := range supported {
		allow[op] = true
	}
	return &Corpus{catalog: catalog, opts: opts, supported: allow, log: log}
}

// Generate walks operations in name order. Unsupported operations yield a
// placeholder record and nothing in the corpus.
func (c *Corpus) Generate(ctx context.Context) (*Result, error) {
	res := &Result{Unsupported: c.Unsupported()}
	gen := NewGenerator(c.catalog, c.opts)
	emitter := NewEmitter()
	emitter.OnEmit(func(op string) {
		metrics.CasesGenerated.WithLabelValues(op).Inc()
	})

	for _, name := range c.catalog.OperationNames() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !c.supported[name] {
			continue
		}

		op, _ := c.catalog.Operation(name)
		if op.Input == nil || op.Input.Shape == "" {
			c.log.Warn("Operation has no input shape, skipping", map[string]interface{}{
				"operation": name,
			})
			res.Skipped = append(res.Skipped, name)
			continue
		}

		before := len(emitter.Cases())
		if err := c.generateOperation(gen, emitter, name, op.Input.Shape); err != nil {
			return nil, fmt.Errorf("generate %s: %w", name, err)
		}
		c.log.Debug("Operation generated", map[string]interface{}{
			"operation": name,
			"cases":     len(emitter.Cases()) - before,
		})
	}

	res.Cases = emitter.Cases()
	c.log.Info("Corpus generated", map[string]interface{}{
		"cases":       len(res.Cases),
		"unsupported": len(res.Unsupported),
		"skipped":     len(res.Skipped),
	})
	return res, nil
}

// Unsupported returns one placeholder record per operation outside the
// allow-list, in name order.
func (c *Corpus) Unsupported() []models.TestCase {
	var out []models.TestCase
	for _, name := range c.catalog.OperationNames() {
		if !c.supported[name] {
			out = append(out, models.UnsupportedCase(name))
			metrics.CasesUnsupported.Inc()
		}
	}
	return out
}

func (c *Corpus) generateOperation(gen *Generator, emitter *Emitter, operation, inputShape string) error {
	seed, err := gen.Builder().Build(inputShape)
	if err != nil {
		return err
	}
	// the holder list makes the top level value itself addressable
	holder := NewList(seed)
	root := NewIndexRef(holder, 0, rootReferenceName)

	if body, err := Serialize(seed); err == nil {
		c.log.Debug("Valid seed", map[string]interface{}{
			"operation": operation,
			"body":      body,
		})
	}

	emitter.Begin(operation, root)
	return gen.Generate(inputShape, root, emitter.Emit, c.opts.MaxDepth)
}
