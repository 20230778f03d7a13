package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mgomes/knolus/knolus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func runCmd(opts *options) *cobra.Command {
	var params []string
	cmd := &cobra.Command{
		Use:   "run [flags] <document> [document...]",
		Short: "Run documents, each in its own root context",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseParams(params)
			if err != nil {
				return err
			}
			engine, err := opts.engine(cmd)
			if err != nil {
				return err
			}
			return runDocuments(cmd, opts, engine, args, values)
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "declare a parameter as name=value (repeatable)")
	return cmd
}

// runDocuments runs every document concurrently and prints the results in
// argument order.
func runDocuments(cmd *cobra.Command, opts *options, engine *knolus.Engine, paths []string, params map[string]knolus.Value) error {
	run := knolus.RunOptions{Parameters: params}
	results := make([]knolus.ScopeResult, len(paths))

	g, ctx := errgroup.WithContext(cmd.Context())
	for i, path := range paths {
		g.Go(func() error {
			scope, err := opts.readDocument(path, engine.Restriction(run))
			if err != nil {
				return err
			}
			result, err := engine.Run(ctx, scope, run).Unpack()
			if err != nil {
				return fmt.Errorf("%s: execution failed: %w", path, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var failure *knolus.Failure
		if opts.Debug && errors.As(err, &failure) {
			fmt.Fprintln(cmd.ErrOrStderr(), knolus.FormatFailure(failure))
		}
		return err
	}

	out := cmd.OutOrStdout()
	for i, result := range results {
		if result.Value.IsUndefined() {
			continue
		}
		if len(paths) > 1 {
			fmt.Fprintf(out, "%s: %s\n", paths[i], result.Value)
			continue
		}
		fmt.Fprintln(out, result.Value)
	}
	return nil
}

// parseParams reads name=value pairs. Values that parse as numbers or
// booleans keep that type; anything else is a string.
func parseParams(raw []string) (map[string]knolus.Value, error) {
	params := make(map[string]knolus.Value, len(raw))
	for _, pair := range raw {
		name, text, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected name=value", pair)
		}
		params[name] = paramValue(text)
	}
	return params, nil
}

func paramValue(text string) knolus.Value {
	switch text {
	case "true":
		return knolus.NewBoolean(true)
	case "false":
		return knolus.NewBoolean(false)
	case "null":
		return knolus.NewNull()
	}
	if n, ok := knolus.ParseNumber(text); ok {
		return n
	}
	return knolus.NewString(text)
}
