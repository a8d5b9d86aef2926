package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaSource string

// Config holds the settings of a simulation run.
type Config struct {
	Policy  string `json:"policy"`
	Timing  string `json:"timing"`
	Seed    uint64 `json:"seed"`
	Firings int    `json:"firings"`
	Drain   bool   `json:"drain"`
}

// Default returns the built-in settings: the prioritized policy on the
// fast timing profile, a full 186-exit run with drain on.
func Default() Config {
	return Config{Policy: "prioritized", Timing: "fast", Seed: 1, Firings: 186, Drain: true}
}

// LoadError is a config loading failure, with the source position when one
// is known.
type LoadError struct {
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// Load reads a CUE config file, fills unset fields from the schema
// defaults, and validates the result.
func Load(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return Config{}, &LoadError{Message: fmt.Sprintf("config not found: %v", err)}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, &LoadError{Message: fmt.Sprintf("compiling schema: %v", err)}
	}

	cfg := &load.Config{Dir: filepath.Dir(path)}
	insts := load.Instances([]string{filepath.Base(path)}, cfg)
	if len(insts) == 0 {
		return Config{}, &LoadError{Message: "no CUE instance loaded"}
	}
	if insts[0].Err != nil {
		return Config{}, wrapCUE("loading config", insts[0].Err)
	}

	value := ctx.BuildInstance(insts[0])
	if err := value.Err(); err != nil {
		return Config{}, wrapCUE("building config", err)
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Final(), cue.Concrete(true)); err != nil {
		return Config{}, wrapCUE("validating config", err)
	}

	var out struct {
		Simulation Config `json:"simulation"`
	}
	if err := unified.Decode(&out); err != nil {
		return Config{}, wrapCUE("decoding config", err)
	}
	return out.Simulation, nil
}

func wrapCUE(context string, err error) error {
	pos := token.NoPos
	if positions := cueerrors.Positions(err); len(positions) > 0 {
		pos = positions[0]
	}
	return &LoadError{Message: fmt.Sprintf("%s: %v", context, err), Pos: pos}
}
