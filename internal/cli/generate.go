package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apperrors "alternator-reqgen/internal/common/errors"
	"alternator-reqgen/internal/common/observability"
	"alternator-reqgen/internal/common/validation"
	"alternator-reqgen/internal/generator"
	"alternator-reqgen/pkg/registry"
)

func (a *app) generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate the request corpus and the unsupported operations list",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.generate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "generated %d cases, %d unsupported operations\n",
				len(res.Cases), len(res.Unsupported))
			return nil
		},
	}
}

func (a *app) unsupportedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unsupported",
		Short: "Write only the unsupported operations list",
		RunE: func(cmd *cobra.Command, args []string) error {
			corpus, err := a.corpus()
			if err != nil {
				return err
			}
			unsupported := corpus.Unsupported()
			if err := a.ws.WriteCases(a.cfg.Paths.Resolve(a.cfg.Paths.Unsupported), unsupported); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d unsupported operations\n", len(unsupported))
			return nil
		},
	}
}

// loadCatalog reads the service document, validating it first when enabled.
func (a *app) loadCatalog() (*registry.Catalog, error) {
	path := a.cfg.Paths.Resolve(a.cfg.Schema.Path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewSchemaLoadFailedError(path, err)
	}
	if a.cfg.Schema.Validate {
		if err := validation.RequireValidServiceDocument(data); err != nil {
			return nil, err
		}
	}
	cat, err := registry.ParseCatalog(data)
	if err != nil {
		if apperrors.CodeOf(err) != "" {
			return nil, err
		}
		return nil, apperrors.NewSchemaLoadFailedError(path, err)
	}
	a.log.Debug("Service document loaded", map[string]interface{}{
		"path":       path,
		"operations": len(cat.OperationNames()),
		"shapes":     len(cat.ShapeNames()),
	})
	return cat, nil
}

func (a *app) corpus() (*generator.Corpus, error) {
	cat, err := a.loadCatalog()
	if err != nil {
		return nil, err
	}
	opts := generator.OptionsFromConfig(a.cfg.Generator)
	return generator.NewCorpus(cat, opts, a.cfg.Generator.SupportedOperations, a.log), nil
}

// generate writes the corpus and the unsupported list.
func (a *app) generate(ctx context.Context) (*generator.Result, error) {
	corpus, err := a.corpus()
	if err != nil {
		return nil, err
	}

	var res *generator.Result
	err = a.obs.Track(ctx, observability.PhaseGenerate, func() error {
		res, err = corpus.Generate(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	paths := a.cfg.Paths
	if err := a.ws.WriteCases(paths.Resolve(paths.Generated), res.Cases); err != nil {
		return nil, err
	}
	if paths.Unsupported != "" {
		if err := a.ws.WriteCases(paths.Resolve(paths.Unsupported), res.Unsupported); err != nil {
			return nil, err
		}
	}
	return res, nil
}
