package main

import (
	"fmt"

	"github.com/kr/pretty"
	"github.com/mgomes/knolus/knolus"
	"github.com/spf13/cobra"
)

func dumpCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <document>",
		Short: "Print the decoded AST of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := opts.readDocument(args[0], knolus.Permissive())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, line := range scope.Lines {
				fmt.Fprintf(out, "%d: %s\n", i+1, line)
				fmt.Fprintf(out, "%# v\n", pretty.Formatter(line))
			}
			return nil
		},
	}
}
