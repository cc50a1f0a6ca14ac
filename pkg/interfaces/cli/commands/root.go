package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vsinha/bomengine/pkg/config"
	"github.com/vsinha/bomengine/pkg/interfaces/cli/output"
	"github.com/vsinha/bomengine/pkg/logger"
)

// Config holds the settings shared by every subcommand. Flags win over
// $HOME/.bomengine.yaml, which wins over the environment configuration.
type Config struct {
	ConfigFile  string
	ScenarioDir string
	DBDriver    string
	DBDSN       string
	Format      string
	OutputFile  string
	Verbose     bool
	LogLevel    string
}

type rootCommand struct {
	cmd    *cobra.Command
	viper  *viper.Viper
	config Config
}

// NewRootCommand builds the bomengine command tree
func NewRootCommand() *cobra.Command {
	root := &rootCommand{viper: viper.New()}

	root.cmd = &cobra.Command{
		Use:   "bomengine",
		Short: "Multi-level BOM explosion, scaling and by-product yield engine.",
		Long: `bomengine expands multi-level bills of materials into per-level component
requirements, rescales recipes to new batch sizes, and tracks by-product yields.

BOM data is read from a CSV scenario directory (--scenario) or a SQLite/Postgres
database (--db-driver, --db).`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := root.initConfig(); err != nil {
				return err
			}
			return root.initLogger()
		},
	}

	flags := root.cmd.PersistentFlags()
	flags.StringVar(&root.config.ConfigFile, "config", "", "config file (default is $HOME/.bomengine.yaml)")
	flags.String("scenario", "", "Path to scenario directory containing components.csv, boms.csv and bom_items.csv")
	flags.String("db-driver", "", "Database driver: sqlite or postgres")
	flags.String("db", "", "SQLite file path or Postgres connection string")
	flags.StringP("format", "f", "text", "Output format: text, json, csv, xlsx")
	flags.StringP("output", "o", "", "Write results to this file instead of stdout")
	flags.BoolP("verbose", "v", false, "Enable verbose output")
	flags.StringP("loglevel", "l", "", "Set log level. Available: debug, info, warn, error")

	for key, flag := range map[string]string{
		"scenario":  "scenario",
		"db.driver": "db-driver",
		"db.dsn":    "db",
		"format":    "format",
		"output":    "output",
		"verbose":   "verbose",
		"log_level": "loglevel",
	} {
		_ = root.viper.BindPFlag(key, flags.Lookup(flag))
	}

	root.cmd.AddCommand(
		newListCommand(root),
		newExplodeCommand(root),
		newScaleCommand(root),
		newByProductsCommand(root),
		newYieldCommand(root),
		newCompareCommand(root),
		newImportCommand(root),
		newValidateCommand(root),
		newGenerateCommand(root),
		newServeCommand(root),
	)
	return root.cmd
}

// Execute runs the root command with the process arguments
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// initConfig reads in config file and resolves every setting
func (r *rootCommand) initConfig() error {
	v := r.viper
	if r.config.ConfigFile != "" {
		v.SetConfigFile(r.config.ConfigFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return err
		}
		v.AddConfigPath(home)
		v.SetConfigName(".bomengine")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	env := config.C()
	if env != nil {
		v.SetDefault("scenario", env.Database.ScenarioDir())
		v.SetDefault("db.driver", env.Database.Driver())
		v.SetDefault("db.dsn", env.Database.DSN())
		v.SetDefault("log_level", env.Logger.Level())
	}

	r.config.ScenarioDir = expandHome(v.GetString("scenario"))
	r.config.DBDriver = v.GetString("db.driver")
	r.config.DBDSN = v.GetString("db.dsn")
	r.config.Format = v.GetString("format")
	r.config.OutputFile = expandHome(v.GetString("output"))
	r.config.Verbose = v.GetBool("verbose")
	r.config.LogLevel = v.GetString("log_level")
	return nil
}

func (r *rootCommand) initLogger() error {
	level := r.config.LogLevel
	if level == "" {
		level = "warn"
	}
	asJSON := false
	if env := config.C(); env != nil {
		asJSON = env.Logger.AsJSON()
	}
	return logger.Init(level, asJSON)
}

func (r *rootCommand) outputConfig(elapsed time.Duration) (output.Config, error) {
	format, err := output.ParseFormat(r.config.Format)
	if err != nil {
		return output.Config{}, err
	}
	return output.Config{Format: format, Verbose: r.config.Verbose, Elapsed: elapsed}, nil
}

// writer returns the destination for results. The returned close function
// must always be called.
func (r *rootCommand) writer(cmd *cobra.Command) (io.Writer, func() error, error) {
	if r.config.OutputFile == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(r.config.OutputFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(r.config.OutputFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

func (r *rootCommand) printVerbose(cmd *cobra.Command, format string, args ...any) {
	if r.config.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), format, args...)
	}
}

func expandHome(path string) string {
	if path == "" {
		return ""
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}

// render writes a result to the configured destination. elapsed is the
// computation time shown in verbose output.
func (r *rootCommand) render(cmd *cobra.Command, elapsed time.Duration, fn func(io.Writer, output.Config) error) error {
	cfg, err := r.outputConfig(elapsed)
	if err != nil {
		return err
	}
	w, closeFn, err := r.writer(cmd)
	if err != nil {
		return err
	}
	if err := fn(w, cfg); err != nil {
		_ = closeFn()
		return err
	}
	if err := closeFn(); err != nil {
		return err
	}
	if r.config.OutputFile != "" {
		r.printVerbose(cmd, "💾 Results written to %s\n", r.config.OutputFile)
	}
	return nil
}

// withSource opens the configured data source for the duration of fn
func (r *rootCommand) withSource(cmd *cobra.Command, fn func(context.Context, *dataSource) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	src, err := r.openSource(ctx, cmd)
	if err != nil {
		return err
	}
	defer src.close()
	return fn(ctx, src)
}
