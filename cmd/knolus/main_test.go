package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const greetDocument = `{"lines": [
  {"type": "variable_declaration", "name": "who", "value": {"kind": "string", "text": "world"}},
  {"type": "return", "value": {"kind": "lazy_string", "items": [
    {"kind": "string", "text": "hello "}, {"kind": "variable", "name": "who"}
  ]}}
]}`

const paramDocument = `{"lines": [
  {"type": "return", "value": {"kind": "expression", "start": {"kind": "variable", "name": "n"},
    "operations": [{"operator": "*", "value": {"kind": "int", "text": "2"}}]}}
]}`

const unreachableDocument = `{"lines": [
  {"type": "function_declaration", "name": "f", "body": {"lines": [
    {"type": "return", "value": {"kind": "int", "text": "1"}},
    {"type": "function_call", "name": "never"}
  ]}},
  {"type": "return", "value": {"kind": "null"}},
  {"type": "function_call", "name": "f"}
]}`

func TestRunCLIHelp(t *testing.T) {
	out, err := execCLI(t, "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	if !strings.Contains(out, "run") || !strings.Contains(out, "check") {
		t.Fatalf("help does not list commands: %q", out)
	}
}

func TestRunCLIInvalidCommand(t *testing.T) {
	_, err := execCLI(t, "unknown")
	if err == nil {
		t.Fatalf("expected unknown command error")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCommandPrintsResult(t *testing.T) {
	path := writeDocument(t, "greet.json", greetDocument)

	out, err := execCLI(t, "run", path)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := strings.TrimSpace(out); got != "hello world" {
		t.Fatalf("unexpected stdout: %q", got)
	}
}

func TestRunCommandRequiresDocument(t *testing.T) {
	_, err := execCLI(t, "run")
	if err == nil {
		t.Fatalf("expected missing document error")
	}
}

func TestRunCommandParametersAndMultipleDocuments(t *testing.T) {
	first := writeDocument(t, "a.json", paramDocument)
	second := writeDocument(t, "b.json", paramDocument)

	out, err := execCLI(t, "run", "--param", "n=21", first, second)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two results, got %q", out)
	}
	if lines[0] != first+": 42" || lines[1] != second+": 42" {
		t.Fatalf("unexpected results: %q", lines)
	}
}

func TestRunCommandRejectsMalformedParameter(t *testing.T) {
	path := writeDocument(t, "p.json", paramDocument)
	_, err := execCLI(t, "run", "--param", "oops", path)
	if err == nil || !strings.Contains(err.Error(), "expected name=value") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCommandAppliesPolicy(t *testing.T) {
	doc := writeDocument(t, "global.json", `{"lines": [
  {"type": "variable_declaration", "name": "g", "global": true, "value": {"kind": "int", "text": "1"}}
]}`)
	policy := writeDocument(t, "policy.toml", "deny_global_writes = true\n")

	_, err := execCLI(t, "run", "--policy", policy, doc)
	if err == nil {
		t.Fatalf("expected the policy to deny the global write")
	}
	if !strings.Contains(err.Error(), "read-only") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckCommandNoIssues(t *testing.T) {
	path := writeDocument(t, "greet.json", greetDocument)

	out, err := execCLI(t, "check", path)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(out, "No issues found") {
		t.Fatalf("unexpected check output: %q", out)
	}
}

func TestCheckCommandReportsUnreachableLines(t *testing.T) {
	path := writeDocument(t, "unreachable.json", unreachableDocument)

	out, err := execCLI(t, "check", path)
	if err == nil {
		t.Fatalf("expected check to report issues")
	}
	if !strings.Contains(err.Error(), "check found 2 issue(s)") {
		t.Fatalf("unexpected check error: %v", err)
	}
	if !strings.Contains(out, path+":2: unreachable line (f)") {
		t.Fatalf("expected function body warning, got %q", out)
	}
	if !strings.Contains(out, path+":3: unreachable line") {
		t.Fatalf("expected top-level warning, got %q", out)
	}
}

func TestCheckCommandReportsDecodeErrors(t *testing.T) {
	path := writeDocument(t, "bad.json", `{"lines": [{"type": "loop"}]}`)

	_, err := execCLI(t, "check", path)
	if err == nil || !strings.Contains(err.Error(), `unknown line type "loop"`) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFmtCommandCheckAndWrite(t *testing.T) {
	path := writeDocument(t, "greet.json", greetDocument)

	_, err := execCLI(t, "fmt", "--check", path)
	if err == nil || !strings.Contains(err.Error(), "need formatting") {
		t.Fatalf("expected formatting check failure, got %v", err)
	}

	if _, err := execCLI(t, "fmt", "-w", path); err != nil {
		t.Fatalf("fmt -w failed: %v", err)
	}
	if _, err := execCLI(t, "fmt", "--check", path); err != nil {
		t.Fatalf("formatted document still needs formatting: %v", err)
	}
	out, err := execCLI(t, "run", path)
	if err != nil {
		t.Fatalf("run after fmt failed: %v", err)
	}
	if strings.TrimSpace(out) != "hello world" {
		t.Fatalf("formatting changed behavior: %q", out)
	}
}

func TestFmtCommandPrintsCanonicalJSON(t *testing.T) {
	src := writeDocument(t, "greet.json", greetDocument)

	encoded, err := execCLI(t, "fmt", "--format", "json", src)
	if err != nil {
		t.Fatalf("fmt failed: %v", err)
	}
	if !strings.HasPrefix(encoded, "{") {
		t.Fatalf("expected JSON output, got %q", encoded)
	}
}

func TestDumpCommandPrintsLines(t *testing.T) {
	path := writeDocument(t, "greet.json", greetDocument)

	out, err := execCLI(t, "dump", path)
	if err != nil {
		t.Fatalf("dump failed: %v", err)
	}
	if !strings.Contains(out, "1: val who = world") {
		t.Fatalf("unexpected dump output: %q", out)
	}
	if !strings.Contains(out, "VariableDeclaration") {
		t.Fatalf("expected a structural dump, got %q", out)
	}
}

func TestCollectDocumentFilesDedupesAndFilters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.json", "b.cbor", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	files, err := collectDocumentFiles([]string{dir, filepath.Join(dir, "a.json")})
	if err != nil {
		t.Fatalf("collectDocumentFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %v", files)
	}
}

func TestParamValueTypes(t *testing.T) {
	tests := map[string]string{
		"42":    "Int",
		"1.5":   "Double",
		"true":  "Boolean",
		"null":  "Null",
		"hello": "String",
	}
	for text, want := range tests {
		if got := paramValue(text).Kind().TypeName(); got != want {
			t.Fatalf("paramValue(%q) kind = %s, want %s", text, got, want)
		}
	}
}

func execCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := runCLI(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func writeDocument(t *testing.T, name, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}
	return path
}
