package main

import (
	"fmt"

	"github.com/mgomes/knolus/knolus"
	"github.com/spf13/cobra"
)

type lintWarning struct {
	Function string
	Line     int
	Message  string
}

func checkCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check <document> [document...]",
		Short: "Decode documents under the policy and report unreachable lines",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.engine(cmd)
			if err != nil {
				return err
			}
			restriction := engine.Restriction(knolus.RunOptions{})
			out := cmd.OutOrStdout()
			issues := 0
			for _, path := range args {
				scope, err := opts.readDocument(path, restriction)
				if err != nil {
					return err
				}
				for _, warning := range lintScope("", scope) {
					issues++
					where := ""
					if warning.Function != "" {
						where = " (" + warning.Function + ")"
					}
					fmt.Fprintf(out, "%s:%d: %s%s\n", path, warning.Line, warning.Message, where)
				}
			}
			if issues > 0 {
				return fmt.Errorf("check found %d issue(s)", issues)
			}
			fmt.Fprintln(out, "No issues found")
			return nil
		},
	}
}

// lintScope reports every line that follows a return, descending into the
// bodies of declared functions.
func lintScope(function string, scope *knolus.Scope) []lintWarning {
	var warnings []lintWarning
	terminated := false
	for i, line := range scope.Lines {
		if terminated {
			warnings = append(warnings, lintWarning{Function: function, Line: i + 1, Message: "unreachable line"})
			continue
		}
		switch typed := line.(type) {
		case *knolus.ReturnStatement:
			terminated = true
		case *knolus.FunctionDeclaration:
			if typed.Body != nil {
				warnings = append(warnings, lintScope(typed.Name, typed.Body)...)
			}
		}
	}
	return warnings
}
