package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"alternator-reqgen/internal/models"
	"alternator-reqgen/internal/reconcile"
)

func (a *app) reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Merge collected responses, split pending cases and classify replies",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.reconcile(cmd.Context())
			if err != nil {
				return err
			}
			printPass(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func (a *app) runCmd() *cobra.Command {
	var regenerate bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate the corpus if it is missing, then run one reconciliation pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			generated := a.cfg.Paths.Resolve(a.cfg.Paths.Generated)
			if regenerate || !a.ws.Exists(generated) {
				res, err := a.generate(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "generated %d cases, %d unsupported operations\n",
					len(res.Cases), len(res.Unsupported))
			}
			res, err := a.reconcile(cmd.Context())
			if err != nil {
				return err
			}
			printPass(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&regenerate, "regenerate", false, "regenerate the corpus even if it exists")
	return cmd
}

func (a *app) reconcile(ctx context.Context) (*reconcile.PassResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := reconcile.NewStore(ctx, a.cfg, a.log)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	engine := reconcile.NewEngine(
		store,
		a.ws,
		reconcile.FilesFromConfig(a.cfg.Paths),
		reconcile.ClassifierFromConfig(a.cfg.Classification),
		a.obs,
		a.log,
	)
	return engine.Pass(ctx)
}

func printPass(w io.Writer, res *reconcile.PassResult) {
	fmt.Fprintf(w, "run %s: merged %d, pending %d, resolved %d, invalid %d, other %d, valid %d\n",
		res.RunID, res.Merged, res.Pending, res.Resolved,
		res.Classified[models.BucketInvalid],
		res.Classified[models.BucketOther],
		res.Classified[models.BucketValid],
	)
}
