package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgomes/knolus/knolus"
	"github.com/spf13/cobra"
)

// options holds the flags shared by every subcommand.
type options struct {
	Debug  bool
	Policy string
	Format string
}

func main() {
	if err := runCLI(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCLI(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "knolus",
		Short: "Run sandboxed Knolus documents",
		Long: `knolus evaluates scripts stored as JSON or CBOR AST documents under a
configurable sandbox policy.`,
		Example: `  # Run a document
  knolus run script.json

  # Run several documents concurrently with a parameter
  knolus run --param limit=10 a.json b.json

  # Check documents against a policy without running them
  knolus check --policy sandbox.toml script.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&opts.Debug, "debug", "d", false, "enable debug logging")
	root.PersistentFlags().StringVar(&opts.Policy, "policy", "", "TOML sandbox policy file")
	root.PersistentFlags().StringVar(&opts.Format, "format", "", "document format (json or cbor); inferred from the extension when empty")

	root.AddCommand(
		runCmd(opts),
		checkCmd(opts),
		fmtCmd(opts),
		dumpCmd(opts),
		replCmd(opts),
	)
	return root
}

func (o *options) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// engine builds an engine carrying the policy file, if any.
func (o *options) engine(cmd *cobra.Command) (*knolus.Engine, error) {
	cfg := knolus.Config{Logger: o.logger(cmd.ErrOrStderr())}
	if o.Policy != "" {
		policy, err := knolus.LoadPolicyConfig(o.Policy)
		if err != nil {
			return nil, fmt.Errorf("load policy: %w", err)
		}
		cfg.Restrictions = append(cfg.Restrictions, policy.Restriction())
	}
	return knolus.NewEngine(cfg)
}

// formatFor picks the document format of path: the --format flag when set,
// otherwise the file extension.
func (o *options) formatFor(path string) (knolus.Format, error) {
	if o.Format != "" {
		return knolus.ParseFormat(o.Format)
	}
	if strings.EqualFold(filepath.Ext(path), ".cbor") {
		return knolus.FormatCBOR, nil
	}
	return knolus.FormatJSON, nil
}

// readDocument loads and decodes the document at path under restriction.
func (o *options) readDocument(path string, restriction knolus.Restriction) (*knolus.Scope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	format, err := o.formatFor(path)
	if err != nil {
		return nil, err
	}
	scope, err := knolus.DecodeDocument(data, format, restriction).Unpack()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return scope, nil
}
