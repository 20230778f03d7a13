package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mgomes/knolus/knolus"
	"github.com/spf13/cobra"
)

func fmtCmd(opts *options) *cobra.Command {
	var write, check bool
	cmd := &cobra.Command{
		Use:   "fmt [flags] <path> [path...]",
		Short: "Rewrite documents in canonical form",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := collectDocumentFiles(args)
			if err != nil {
				return err
			}
			changedCount := 0
			for _, path := range files {
				original, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				formatted, err := formatDocument(opts, path, original)
				if err != nil {
					return err
				}
				changed := !bytes.Equal(formatted, original)
				if changed {
					changedCount++
				}

				switch {
				case write && changed:
					info, err := os.Stat(path)
					if err != nil {
						return fmt.Errorf("stat %s: %w", path, err)
					}
					if err := os.WriteFile(path, formatted, info.Mode().Perm()); err != nil {
						return fmt.Errorf("write %s: %w", path, err)
					}
				case !write && !check:
					_, _ = cmd.OutOrStdout().Write(formatted)
				}
			}
			if check && changedCount > 0 {
				return fmt.Errorf("knolus fmt: %d file(s) need formatting", changedCount)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write result to source files instead of stdout")
	cmd.Flags().BoolVar(&check, "check", false, "fail if any document needs formatting")
	return cmd
}

// formatDocument decodes a document without restrictions and encodes it
// again. JSON output ends with a newline.
func formatDocument(opts *options, path string, data []byte) ([]byte, error) {
	format, err := opts.formatFor(path)
	if err != nil {
		return nil, err
	}
	scope, err := knolus.DecodeDocument(data, format, nil).Unpack()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	out, err := knolus.EncodeDocument(scope, format)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}
	if format == knolus.FormatJSON {
		out = append(out, '\n')
	}
	return out, nil
}

func isDocumentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".cbor":
		return true
	}
	return false
}

func collectDocumentFiles(targets []string) ([]string, error) {
	seen := make(map[string]struct{})
	files := make([]string, 0)
	addFile := func(path string) {
		if !isDocumentFile(path) {
			return
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return
		}
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		files = append(files, abs)
	}

	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", target, err)
		}
		if !info.IsDir() {
			addFile(target)
			continue
		}
		err = filepath.WalkDir(target, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if entry.IsDir() {
				return nil
			}
			addFile(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", target, err)
		}
	}

	sort.Strings(files)
	return files, nil
}
