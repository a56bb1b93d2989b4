package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/obisquery/internal/logger"
	"github.com/cognicore/obisquery/pkg/obis"
	"github.com/cognicore/obisquery/pkg/obis/config"
	"github.com/cognicore/obisquery/pkg/obis/internalerr"
	"github.com/cognicore/obisquery/pkg/obis/params"
	"github.com/cognicore/obisquery/pkg/obis/report"
)

// cli carries state shared by subcommands.
type cli struct {
	configPath string
	logLevel   string
	logJSON    bool

	cfg *config.Config
	log *zap.SugaredLogger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "obis",
		Short: "Natural-language queries over the OBIS API",
		Long: `obis turns free-text requests into OBIS API queries.

Entity names (institutes, areas, datasets, species) are resolved into OBIS
identifiers before the query is sent.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (OBISQUERY_* prefix)
3. Config file (--config)
4. Default values

Examples:
  obis query "cod records in the Baltic Sea since 2010"
  obis resolve -e occurrence area=baltic commonname=cod
  obis url -e taxon id=126436
  obis catalog warm`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Config file (yaml, toml or json)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&c.logJSON, "log-json", false, "Emit JSON logs")

	root.AddCommand(
		c.queryCmd(),
		c.resolveCmd(),
		c.urlCmd(),
		c.fetchCmd(),
		c.catalogCmd(),
		endpointsCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = c.logLevel
	}
	if cmd.Flags().Changed("log-json") {
		cfg.Log.JSON = c.logJSON
	}
	log, err := logger.New(cfg.Log.JSON, cfg.Log.Level)
	if err != nil {
		return errors.Wrap(internalerr.ErrInvalidConfig, err.Error())
	}
	c.cfg, c.log = cfg, log
	return nil
}

func (c *cli) withApp(cmd *cobra.Command, fn func(context.Context, *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := buildApp(ctx, c.cfg, c.log, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// parsePairs reads key=value arguments in order.
func parsePairs(args []string) (*params.Map, error) {
	m := params.NewMap()
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.WithHint(
				errors.Wrapf(internalerr.ErrInvalidInput, "bad parameter %q", arg),
				"parameters are written as key=value")
		}
		if err := m.Set(strings.ToLower(key), strings.TrimSpace(value)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// consoleReporter prints progress messages for the user.
type consoleReporter struct {
	w io.Writer
}

func (r consoleReporter) Log(_ context.Context, message string, _ any) {
	fmt.Fprintln(r.w, message)
}

func (r consoleReporter) Artifact(_ context.Context, a report.Artifact) {
	fmt.Fprintf(r.w, "Artifact %s: %s\n", a.ID, a.Description)
}

func printAnswer(w io.Writer, ans *obis.Answer) {
	if ans == nil {
		return
	}
	for _, warning := range ans.Warnings {
		fmt.Fprintln(w, "warning:", warning)
	}
	if ans.URL != "" {
		fmt.Fprintln(w, "URL:", ans.URL)
	}
	if ans.Result != nil {
		fmt.Fprintf(w, "Records: %s retrieved of %s matching\n",
			humanize.Comma(int64(ans.Result.Retrieved())), humanize.Comma(int64(ans.Result.Total)))
	}
	for _, hard := range ans.Validation.HardErrors {
		fmt.Fprintln(w, "validation error:", hard)
	}
	for _, warning := range ans.Validation.Warnings {
		fmt.Fprintln(w, "validation warning:", warning)
	}
}
