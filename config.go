package main

import (
	"flag"
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// config holds settings that may come from a YAML file, and be overridden
// by command line flags.
type config struct {
	Arena   int    `yaml:"arena"`
	Stack   int    `yaml:"stack"`
	RStack  int    `yaml:"rstack"`
	Ack     *bool  `yaml:"ack"`
	Prelude *bool  `yaml:"prelude"`
	Prompt  string `yaml:"prompt"`
	History string `yaml:"history"`
}

func defaultConfig() config {
	return config{
		Arena:  defaultArenaSize,
		Stack:  defaultStackDepth,
		RStack: defaultRStackDepth,
		Prompt: "> ",
	}
}

// loadConfig reads a YAML file over cfg; unknown keys are an error.
func loadConfig(cfg *config, path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("invalid config %v: %w", path, err)
	}
	return cfg.validate()
}

func (cfg config) validate() error {
	if cfg.Arena <= 0 {
		return fmt.Errorf("invalid arena size %v", cfg.Arena)
	}
	if cfg.Stack <= 0 {
		return fmt.Errorf("invalid stack depth %v", cfg.Stack)
	}
	if cfg.RStack <= 0 {
		return fmt.Errorf("invalid return stack depth %v", cfg.RStack)
	}
	return nil
}

// options converts cfg into VM options; ack defaults to interactive, when
// not set by file or flag.
func (cfg config) options(interactive bool) VMOption {
	ack := interactive
	if cfg.Ack != nil {
		ack = *cfg.Ack
	}
	prelude := true
	if cfg.Prelude != nil {
		prelude = *cfg.Prelude
	}
	return VMOptions(
		WithArenaSize(cfg.Arena),
		WithStackDepth(cfg.Stack),
		WithReturnStackDepth(cfg.RStack),
		WithAck(ack),
		WithPrelude(prelude),
	)
}

// configFlags binds command line flags that override config file values.
type configFlags struct {
	arena     int
	stack     int
	rstack    int
	ack       bool
	noPrelude bool
}

func (cf *configFlags) bind(fs *flag.FlagSet) {
	fs.IntVar(&cf.arena, "arena", defaultArenaSize, "arena size in bytes")
	fs.IntVar(&cf.stack, "stack", defaultStackDepth, "data stack depth in cells")
	fs.IntVar(&cf.rstack, "rstack", defaultRStackDepth, "return stack depth in cells")
	fs.BoolVar(&cf.ack, "ack", false, "acknowledge each line of input with \" ok\"")
	fs.BoolVar(&cf.noPrelude, "no-prelude", false, "skip the builtin prelude")
}

// apply copies only flags that were explicitly set on the command line.
func (cf *configFlags) apply(fs *flag.FlagSet, cfg *config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "arena":
			cfg.Arena = cf.arena
		case "stack":
			cfg.Stack = cf.stack
		case "rstack":
			cfg.RStack = cf.rstack
		case "ack":
			ack := cf.ack
			cfg.Ack = &ack
		case "no-prelude":
			prelude := !cf.noPrelude
			cfg.Prelude = &prelude
		}
	})
}
