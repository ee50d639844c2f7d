package main

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/sce/internal/env"
)

type keyValueFlag map[string]string

func (kv *keyValueFlag) String() string {
	if kv == nil || len(*kv) == 0 {
		return ""
	}
	var pairs []string
	for key, value := range *kv {
		pairs = append(pairs, fmt.Sprintf("%s=%s", key, value))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ", ")
}

func (kv *keyValueFlag) Set(value string) error {
	name, raw, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("expected name=value, got %q", value)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("variable name is empty in %q", value)
	}
	if *kv == nil {
		*kv = keyValueFlag{}
	}
	(*kv)[name] = raw
	return nil
}

// buildEnv turns name=value pairs into an environment. Values are read as
// YAML scalars, so 3 is an int, true a bool and anything else a string.
func buildEnv(vars keyValueFlag) (*env.Env, error) {
	e := env.New()
	for name, raw := range vars {
		if name == env.RunModeName {
			return nil, fmt.Errorf("%s is controlled by the script", env.RunModeName)
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if value == nil {
			value = raw
		}
		e.Set(name, value)
	}
	return e, nil
}
