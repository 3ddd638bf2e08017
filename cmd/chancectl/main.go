// Package main runs a single chance tool once from the command line and
// prints its frames.
//
//	chancectl [flags] coin
//	chancectl [flags] dice [count]
//	chancectl [flags] number [min max]
//	chancectl [flags] wheel [label...]
//	chancectl [flags] draw name...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/cory-johannsen/chance/internal/chance/runstate"
	"github.com/cory-johannsen/chance/internal/chance/sample"
	"github.com/cory-johannsen/chance/internal/chance/tools"
	"github.com/cory-johannsen/chance/internal/chance/wheel"
	"github.com/cory-johannsen/chance/internal/config"
	"github.com/cory-johannsen/chance/internal/frontend/handlers"
	"github.com/cory-johannsen/chance/internal/frontend/telnet"
	"github.com/cory-johannsen/chance/internal/observability"
	"github.com/cory-johannsen/chance/internal/storage"
)

// options are the parsed command-line flags.
type options struct {
	configPath string
	profile    string
	seed       uint64
	instant    bool
	ticks      bool
	color      bool
	decimals   int
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	var o options
	fs := flag.NewFlagSet("chancectl", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "optional configuration file")
	fs.StringVar(&o.profile, "profile", handlers.DefaultProfile, "profile whose saved wheel options are used")
	fs.Uint64Var(&o.seed, "seed", 0, "seed for reproducible runs (0 = crypto/rand)")
	fs.BoolVar(&o.instant, "instant", false, "skip animation delays")
	fs.BoolVar(&o.ticks, "ticks", false, "print intermediate frames")
	fs.BoolVar(&o.color, "color", false, "keep ANSI colors")
	fs.IntVar(&o.decimals, "decimals", -1, "number: decimal places (enables decimal mode)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing tool name")
	}

	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return err
	}
	if o.seed != 0 {
		cfg.Tools.Seed = o.seed
	}
	logger, err := observability.NewLogger(config.LoggingConfig{Level: "warn", Format: "console"})
	if err != nil {
		return err
	}
	defer logger.Sync()

	done := make(chan struct{})
	printer := tools.ObserverFunc(func(f tools.Frame) {
		switch f.Kind {
		case tools.FrameIdle:
			close(done)
			return
		case tools.FrameTick:
			if !o.ticks {
				return
			}
		}
		text := handlers.RenderFrame(f)
		if !o.color {
			text = telnet.StripANSI(text)
		}
		fmt.Fprintln(stdout, text)
	})

	deps := tools.Deps{
		Source:   sample.New(cfg.Tools.Seed),
		Observer: printer,
		Logger:   logger,
		Timings:  cfg.Tools,
	}
	var clock *runstate.ManualClock
	if o.instant {
		clock = runstate.NewManualClock()
		deps.Scheduler = clock
	}

	tool, start, err := build(fs.Arg(0), fs.Args()[1:], o, cfg, deps, logger)
	if err != nil {
		return err
	}
	defer tool.Close()
	if err := start(); err != nil {
		return fmt.Errorf("%s: %w", tool.Name(), err)
	}

	if clock != nil {
		for tool.State() != runstate.Idle {
			clock.Advance(10 * time.Millisecond)
		}
	}
	<-done
	return nil
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	v := viper.New()
	config.SetDefaults(v)
	return config.LoadFromViper(v)
}

// build constructs the named tool, applies its arguments, and returns the
// action that starts a run.
func build(name string, args []string, o options, cfg config.Config, deps tools.Deps, logger *zap.Logger) (tools.Tool, func() error, error) {
	switch strings.ToLower(name) {
	case tools.ToolCoin:
		c := tools.NewCoin(deps)
		return c, c.Flip, nil

	case tools.ToolDice:
		d := tools.NewDice(deps)
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return nil, nil, fmt.Errorf("dice count %q: %w", args[0], err)
			}
			if err := d.SetCount(n); err != nil {
				return nil, nil, err
			}
		}
		return d, d.Roll, nil

	case tools.ToolNumber:
		n := tools.NewNumber(deps)
		if len(args) == 2 {
			lo, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("min %q: %w", args[0], err)
			}
			hi, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("max %q: %w", args[1], err)
			}
			_ = n.SetAllowNegative(lo < 0 || hi < 0)
			_ = n.SetMin(lo)
			_ = n.SetMax(hi)
		} else if len(args) != 0 {
			return nil, nil, errors.New("number takes no arguments or both min and max")
		}
		if o.decimals >= 0 {
			_ = n.SetMode(sample.ModeDecimal)
			_ = n.SetDecimals(o.decimals)
		}
		return n, n.Generate, nil

	case tools.ToolWheel:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		var store tools.OptionStore
		if len(args) > 0 {
			store = fixedOptions(wheel.FromLabels(args, wheel.NewID))
		} else {
			backend, err := storage.Open(ctx, cfg, logger)
			if err != nil {
				return nil, nil, err
			}
			defer backend.Close()
			store = storage.NewOptionRepository(backend.KV, o.profile, logger)
		}
		w := tools.NewWheel(ctx, deps, store, nil)
		return w, w.Spin, nil

	case tools.ToolDraw, "name":
		nd := tools.NewNameDraw(deps)
		if err := nd.SetInput(strings.Join(args, "\n")); err != nil {
			return nil, nil, err
		}
		return nd, nd.Draw, nil
	}
	return nil, nil, fmt.Errorf("unknown tool %q", name)
}

// fixedOptions is an OptionStore that serves labels from the command line
// and discards saves.
type fixedOptions []wheel.Option

func (f fixedOptions) Load(context.Context) []wheel.Option { return f }

func (fixedOptions) Save(context.Context, []wheel.Option) error { return nil }
