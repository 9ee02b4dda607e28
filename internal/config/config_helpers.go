package config

import (
	"fmt"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// compileCUE compiles CUE source, keeping the compiler's message.
func compileCUE(data []byte) (cue.Value, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data)
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("invalid config: %v", err)
	}
	return v, nil
}

func parseCUE(data []byte) (Config, error) {
	v, err := compileCUE(data)
	if err != nil {
		return Config{}, err
	}
	if err := rejectUnknownTopLevel(v); err != nil {
		return Config{}, err
	}
	var c Config
	if _, err := optionalString(v, "configVersion", &c.ConfigVersion); err != nil {
		return Config{}, err
	}
	if c.HasLineEnding, err = optionalString(v, "lineEnding", &c.LineEnding); err != nil {
		return Config{}, err
	}
	if c.HasBoundary, err = optionalString(v, "boundary", &c.Boundary); err != nil {
		return Config{}, err
	}
	rv := v.LookupPath(cue.ParsePath("renames"))
	if rv.Exists() {
		if rv.Kind() != cue.StructKind {
			return Config{}, fmt.Errorf("invalid type for field: renames (expected struct)")
		}
		if err := rv.Decode(&c.Renames); err != nil {
			return Config{}, fmt.Errorf("invalid value for renames: %v", err)
		}
	}
	return c, nil
}

func optionalString(v cue.Value, name string, dst *string) (bool, error) {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return false, nil
	}
	if f.Kind() != cue.StringKind {
		return false, fmt.Errorf("invalid type for field: %s (expected string)", name)
	}
	if err := f.Decode(dst); err != nil {
		return false, fmt.Errorf("invalid value for %s: %v", name, err)
	}
	return true, nil
}

func rejectUnknownTopLevel(v cue.Value) error {
	it, err := v.Fields()
	if err != nil {
		return fmt.Errorf("invalid config: %v", err)
	}
	for it.Next() {
		name := it.Selector().String()
		if !slices.Contains(topLevelFields, name) {
			return fmt.Errorf("unknown config field: %s", name)
		}
	}
	return nil
}
