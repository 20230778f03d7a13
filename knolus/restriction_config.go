package knolus

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// PolicyConfig is the file form of a sandbox policy.
//
//	default = "permit"
//	max_depth = 32
//	max_recursion = 8
//	max_calls = 10000
//	memory_quota_bytes = 65536
//	hide_limits = true
//	deny_global_writes = true
//	deny_functions = ["exec*", "net*"]
type PolicyConfig struct {
	// Default decides what no policy ruled on: "permit" (the default) or "deny".
	Default          string   `toml:"default,omitempty"`
	MaxDepth         int      `toml:"max_depth,omitempty"`
	MaxRecursion     int      `toml:"max_recursion,omitempty"`
	MaxCalls         int      `toml:"max_calls,omitempty"`
	MemoryQuotaBytes int      `toml:"memory_quota_bytes,omitempty"`
	HideLimits       bool     `toml:"hide_limits,omitempty"`
	DenyGlobalWrites bool     `toml:"deny_global_writes,omitempty"`
	AllowFunctions   []string `toml:"allow_functions,omitempty"`
	DenyFunctions    []string `toml:"deny_functions,omitempty"`
}

// LoadPolicyConfig reads a TOML policy file.
func LoadPolicyConfig(path string) (*PolicyConfig, error) {
	var config PolicyConfig
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &config, nil
}

// ParsePolicyConfig decodes a TOML policy from text.
func ParsePolicyConfig(text string) (*PolicyConfig, error) {
	var config PolicyConfig
	if _, err := toml.Decode(text, &config); err != nil {
		return nil, fmt.Errorf("parsing policy: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (p *PolicyConfig) Validate() error {
	switch strings.ToLower(strings.TrimSpace(p.Default)) {
	case "", "permit", "deny":
	default:
		return fmt.Errorf("knolus: policy default must be \"permit\" or \"deny\", got %q", p.Default)
	}
	for _, limit := range []struct {
		name  string
		value int
	}{
		{"max_depth", p.MaxDepth},
		{"max_recursion", p.MaxRecursion},
		{"max_calls", p.MaxCalls},
		{"memory_quota_bytes", p.MemoryQuotaBytes},
	} {
		if limit.value < 0 {
			return fmt.Errorf("knolus: policy %s cannot be negative", limit.name)
		}
	}
	if err := validateFunctionPatterns(p.AllowFunctions, "allow"); err != nil {
		return err
	}
	return validateFunctionPatterns(p.DenyFunctions, "deny")
}

// Restriction builds the policy the config describes.
func (p *PolicyConfig) Restriction() *Composite {
	var fallback Restriction = Permissive()
	if strings.EqualFold(strings.TrimSpace(p.Default), "deny") {
		fallback = DenyAll()
	}
	var policies []Restriction
	if p.MaxDepth > 0 || p.MaxRecursion > 0 {
		policies = append(policies, RecursionLimiter{MaxDepth: p.MaxDepth, MaxRecursion: p.MaxRecursion, HideLimits: p.HideLimits})
	}
	if p.MaxCalls > 0 {
		policies = append(policies, CallBudget{MaxCalls: p.MaxCalls})
	}
	if p.MemoryQuotaBytes > 0 {
		policies = append(policies, MemoryQuota{Bytes: p.MemoryQuotaBytes})
	}
	if p.DenyGlobalWrites {
		policies = append(policies, ReadOnlyGlobals{})
	}
	if len(p.AllowFunctions) > 0 || len(p.DenyFunctions) > 0 {
		policies = append(policies, FunctionFilter{Allow: p.AllowFunctions, Deny: p.DenyFunctions})
	}
	return Chain(fallback, policies...)
}
