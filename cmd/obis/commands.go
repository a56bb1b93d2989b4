package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cognicore/obisquery/pkg/obis"
	"github.com/cognicore/obisquery/pkg/obis/catalog"
	"github.com/cognicore/obisquery/pkg/obis/params"
)

func (c *cli) queryCmd() *cobra.Command {
	var endpoint string
	cmd := &cobra.Command{
		Use:   "query [request]",
		Short: "Answer a natural-language request",
		Long: `Extract parameters from the request with the language model, resolve
entity names and query OBIS. Without an argument, reads requests
interactively from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app) error {
				out := cmd.OutOrStdout()
				if len(args) == 1 {
					ans, err := a.agent.Ask(ctx, endpoint, args[0])
					printAnswer(out, ans)
					return err
				}
				return interactive(ctx, cmd.InOrStdin(), out, a.agent, endpoint)
			})
		},
	}
	cmd.Flags().StringVarP(&endpoint, "endpoint", "e", params.Occurrence, "OBIS endpoint")
	return cmd
}

func interactive(ctx context.Context, in io.Reader, out io.Writer, agent *obis.Agent, endpoint string) error {
	fmt.Fprintln(out, "===========================================")
	fmt.Fprintln(out, "  OBIS query")
	fmt.Fprintf(out, "  endpoint: %s\n", endpoint)
	fmt.Fprintln(out, "===========================================")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Type your request (Ctrl+D to exit):")
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		request := strings.TrimSpace(scanner.Text())
		if request == "" {
			continue
		}
		ans, err := agent.Ask(ctx, endpoint, request)
		printAnswer(out, ans)
		if err != nil {
			fmt.Fprintln(out, "Error:", err)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, "\nGoodbye!")
	return scanner.Err()
}

func (c *cli) resolveCmd() *cobra.Command {
	var endpoint string
	cmd := &cobra.Command{
		Use:   "resolve key=value...",
		Short: "Resolve entity names in a parameter set",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := parsePairs(args)
			if err != nil {
				return err
			}
			return c.withApp(cmd, func(ctx context.Context, a *app) error {
				ans, err := a.agent.Prepare(ctx, endpoint, m)
				out := cmd.OutOrStdout()
				if ans != nil {
					tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
					for _, o := range ans.Resolution.Outcomes {
						fmt.Fprintf(tw, "%s\t%q\t%s\t%s=%s\n", o.Field, o.Query, o.Kind, o.Destination, o.Value)
					}
					tw.Flush()
					if ans.Resolution.OK() {
						for _, p := range ans.Query.Params().Pairs() {
							fmt.Fprintf(out, "%s=%v\n", p.Key, p.Value)
						}
					}
				}
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&endpoint, "endpoint", "e", params.Occurrence, "OBIS endpoint")
	return cmd
}

func (c *cli) urlCmd() *cobra.Command {
	var endpoint string
	cmd := &cobra.Command{
		Use:   "url key=value...",
		Short: "Print the OBIS URL for a parameter set",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := parsePairs(args)
			if err != nil {
				return err
			}
			return c.withApp(cmd, func(ctx context.Context, a *app) error {
				ans, err := a.agent.Prepare(ctx, endpoint, m)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ans.URL)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&endpoint, "endpoint", "e", params.Occurrence, "OBIS endpoint")
	return cmd
}

func (c *cli) fetchCmd() *cobra.Command {
	var endpoint, description string
	cmd := &cobra.Command{
		Use:   "fetch key=value...",
		Short: "Resolve a parameter set and query OBIS without the language model",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := parsePairs(args)
			if err != nil {
				return err
			}
			return c.withApp(cmd, func(ctx context.Context, a *app) error {
				ans, err := a.agent.Run(ctx, endpoint, description, m)
				printAnswer(cmd.OutOrStdout(), ans)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&endpoint, "endpoint", "e", params.Occurrence, "OBIS endpoint")
	cmd.Flags().StringVarP(&description, "describe", "d", "", "Request text recorded in the artifact")
	return cmd
}

func (c *cli) catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the cached OBIS reference sets",
	}

	warm := &cobra.Command{
		Use:   "warm [kind...]",
		Short: "Download reference sets into the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := parseKinds(args)
			if err != nil {
				return err
			}
			return c.withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.catalog.Warm(ctx, kinds...); err != nil {
					return err
				}
				return printCounts(ctx, cmd.OutOrStdout(), a.catalog, kinds)
			})
		},
	}

	refresh := &cobra.Command{
		Use:   "refresh [kind...]",
		Short: "Discard and re-download reference sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := parseKinds(args)
			if err != nil {
				return err
			}
			return c.withApp(cmd, func(ctx context.Context, a *app) error {
				for _, kind := range kinds {
					if _, err := a.catalog.Refresh(ctx, kind); err != nil {
						return err
					}
				}
				return printCounts(ctx, cmd.OutOrStdout(), a.catalog, kinds)
			})
		},
	}

	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete the local reference cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.catalog.Teardown(ctx); err != nil {
					return err
				}
				a.store = nil
				fmt.Fprintln(cmd.OutOrStdout(), "catalog purged")
				return nil
			})
		},
	}

	cmd.AddCommand(warm, refresh, purge)
	return cmd
}

func parseKinds(args []string) ([]catalog.Kind, error) {
	if len(args) == 0 {
		return catalog.Kinds(), nil
	}
	var kinds []catalog.Kind
	for _, arg := range args {
		kind := catalog.Kind(strings.ToLower(strings.TrimSuffix(arg, "s")))
		switch kind {
		case catalog.KindArea, catalog.KindInstitute:
			kinds = append(kinds, kind)
		default:
			return nil, fmt.Errorf("unknown catalog kind %q (want area or institute)", arg)
		}
	}
	return kinds, nil
}

func printCounts(ctx context.Context, out io.Writer, cat *catalog.Catalog, kinds []catalog.Kind) error {
	for _, kind := range kinds {
		entities, err := cat.Get(ctx, kind)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-10s %s entries\n", kind, humanize.Comma(int64(len(entities))))
	}
	return nil
}

func endpointsCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "endpoints [name]",
		Short: "List supported OBIS endpoints",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := params.DefaultRegistry()
			out := cmd.OutOrStdout()
			names := reg.Names()
			if len(args) == 1 {
				names = args
				verbose = true
			}
			for _, name := range names {
				e, ok := reg.Lookup(name)
				if !ok {
					return fmt.Errorf("unknown endpoint %q", name)
				}
				fmt.Fprintf(out, "%-18s /%s\n", e.Name, e.Path)
				if !verbose {
					continue
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				for _, f := range e.Fields {
					resolvesTo := ""
					if dest, ok := e.Destination(f.Name); ok {
						resolvesTo = "-> " + dest
					}
					fmt.Fprintf(tw, "  %s\t%s\t%s\n", f.Name, f.Kind, resolvesTo)
				}
				tw.Flush()
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show fields")
	return cmd
}
