package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/jcorbin/goforth/internal/lineinput"
	"github.com/jcorbin/goforth/internal/logio"
)

func main() {
	var log logio.Logger
	log.SetOutput(os.Stderr)
	defer func() { os.Exit(log.ExitCode()) }()

	var (
		configFile string
		timeout    time.Duration
		trace      bool
		dump       bool
		stats      bool
		cf         configFlags
	)
	flag.StringVar(&configFile, "config", "", "YAML configuration file")
	flag.DurationVar(&timeout, "timeout", 0, "specify a time limit")
	flag.BoolVar(&trace, "trace", false, "enable trace logging")
	flag.BoolVar(&dump, "dump", false, "dump the dictionary and stacks at exit")
	flag.BoolVar(&stats, "stats", false, "report arena usage at exit")
	cf.bind(flag.CommandLine)
	flag.Parse()

	cfg := defaultConfig()
	if configFile != "" {
		if err := loadConfig(&cfg, configFile); err != nil {
			log.Errorf("%v", err)
			return
		}
	}
	cf.apply(flag.CommandLine, &cfg)
	if err := cfg.validate(); err != nil {
		log.Errorf("%v", err)
		return
	}

	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())

	opts := []VMOption{
		cfg.options(interactive),
		WithOutput(os.Stdout),
	}
	if trace {
		opts = append(opts, WithLogf(log.Leveledf("TRACE")))
	}

	for _, name := range flag.Args() {
		f, err := os.Open(name)
		if err != nil {
			log.Errorf("%v", err)
			return
		}
		opts = append(opts, WithInput(f))
	}

	var stdin io.Reader = os.Stdin
	if interactive {
		stdin = lineinput.Open(cfg.Prompt, cfg.History)
	}
	opts = append(opts, WithInput(stdin))

	vm := New(opts...)
	defer func() { log.ErrorIf(vm.Close()) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := vm.Run(ctx); err != nil {
		log.Errorf("%+v", err)
	}

	if dump {
		lw := log.Writer("DUMP")
		vm.Dump(lw)
		log.ErrorIf(lw.Close())
	}
	if stats {
		st := vm.Stats()
		log.Printf("STATS", "arena %v of %v used, %v free, %v words",
			humanize.Bytes(uint64(st.Here)),
			humanize.Bytes(uint64(st.Cap)),
			humanize.Bytes(uint64(st.Cap-st.Here)),
			humanize.Comma(int64(st.Entries)),
		)
	}
}
