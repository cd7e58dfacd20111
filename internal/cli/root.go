package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"alternator-reqgen/internal/common/config"
	apperrors "alternator-reqgen/internal/common/errors"
	"alternator-reqgen/internal/common/logger"
	"alternator-reqgen/internal/common/metrics"
	"alternator-reqgen/internal/common/observability"
	"alternator-reqgen/internal/reconcile"
)

// app carries what every command needs once configuration is loaded.
type app struct {
	v          *viper.Viper
	configFile string

	cfg *config.Config
	log logger.Logger
	obs *observability.Observability
	ws  reconcile.Workspace
}

// Execute runs the root command and returns the process exit status.
func Execute() int {
	return ExecuteArgs(nil)
}

// ExecuteArgs is Execute with explicit arguments; nil uses os.Args.
func ExecuteArgs(args []string) int {
	a := &app{v: viper.New()}
	root := newRoot(a)
	if args != nil {
		root.SetArgs(args)
	}
	cmd, err := root.ExecuteC()
	if err == nil {
		return 0
	}
	log := a.log
	if log == nil {
		log = logger.NewStructured("info", "console", "stderr")
	}
	return apperrors.NewErrorHandler(log).HandleCommandError(cmd.Name(), err)
}

// NewRoot builds the command tree with a fresh configuration scope.
func NewRoot() *cobra.Command {
	return newRoot(&app{v: viper.New()})
}

func newRoot(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "reqgen",
		Short:         "Schema driven request corpus generator and response reconciler",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: reqgen.yaml in ./configs or .)")
	flags.String("workdir", "", "directory every relative path is resolved against")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.String("log-format", "", "console or json")
	flags.String("store", "", "history backend: file, redis or postgres")
	_ = a.v.BindPFlag("paths.work_dir", flags.Lookup("workdir"))
	_ = a.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("store.backend", flags.Lookup("store"))

	root.AddCommand(
		a.generateCmd(),
		a.unsupportedCmd(),
		a.reconcileCmd(),
		a.runCmd(),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if cfg.Metrics.Textfile != "" {
		a.obs = observability.New(cfg.App.Name, a.log)
	} else {
		a.obs = observability.Noop()
	}
	a.ws = reconcile.NewFileWorkspace()
	a.log.Debug("Configuration loaded", map[string]interface{}{
		"workDir": cfg.Paths.WorkDir,
		"store":   cfg.Store.Backend,
		"schema":  cfg.Schema.Path,
	})
	return nil
}

func (a *app) teardown() error {
	defer func() { _ = a.log.Sync() }()
	defer a.obs.Shutdown()
	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(a.cfg.Paths.Resolve(path)); err != nil {
			return err
		}
	}
	return nil
}
