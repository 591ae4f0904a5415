package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"record-mapper/internal/analyze"
	"record-mapper/internal/cache"
	"record-mapper/internal/config"
	"record-mapper/internal/declare"
	"record-mapper/internal/provider"
)

var errNoDeclarations = errors.New("no declaration source: pass --decl or --pkg, or list declarations in the config file")

// app carries the state shared by every subcommand once the root command
// has loaded the configuration.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "record-mapper",
		Short: "Inspect class metadata and validate records against it",
		Long: `record-mapper resolves the per-subset metadata of declared classes and
checks plain records against the validators those declarations name.`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./record-mapper.yaml)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInspectCmd(a))
	root.AddCommand(newValidateCmd(a))
	root.AddCommand(newCacheCmd(a))

	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = cfg.Logger()

	return nil
}

func (a *app) cache() (*cache.FileCache, error) {
	umask, err := a.cfg.Cache.FileMode()
	if err != nil {
		return nil, err
	}

	return cache.New(a.cfg.Cache.Dir, umask, a.logger)
}

// sourceFlags selects where declarations come from and which class subset
// a command works on.
type sourceFlags struct {
	decls  []string
	pkgs   []string
	class  string
	subset string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.decls, "decl", nil, "YAML declaration file (repeatable)")
	cmd.Flags().StringSliceVar(&f.pkgs, "pkg", nil, "Go package pattern to read struct tag declarations from (repeatable)")
	cmd.Flags().StringVar(&f.class, "class", "", "fully qualified class, e.g. example.com/app/model.User")
	cmd.Flags().StringVar(&f.subset, "subset", "", "metadata subset")
	_ = cmd.MarkFlagRequired("class")
}

func (a *app) reader(f *sourceFlags) (declare.Reader, error) {
	files := f.decls
	if len(files) == 0 && len(f.pkgs) == 0 {
		files = a.cfg.Declarations
	}

	var readers declare.Readers

	for _, path := range files {
		r, err := declare.LoadFile(path)
		if err != nil {
			return nil, err
		}

		readers = append(readers, r)
	}

	if len(f.pkgs) > 0 {
		an := analyze.NewAnalyzer("")

		classes, err := an.LoadPackages(f.pkgs...)
		if err != nil {
			return nil, fmt.Errorf("load packages: %w", err)
		}

		a.logger.Debug("packages analyzed", zap.Strings("patterns", f.pkgs), zap.Int("classes", len(classes)))

		readers = append(readers, an)
	}

	if len(readers) == 0 {
		return nil, errNoDeclarations
	}

	return readers, nil
}

func (a *app) provider(f *sourceFlags) (*provider.Provider, error) {
	reader, err := a.reader(f)
	if err != nil {
		return nil, err
	}

	c, err := a.cache()
	if err != nil {
		return nil, err
	}

	return provider.New(reader, c, a.logger), nil
}
