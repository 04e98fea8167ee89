package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/getsentry/parallelstacks/internal/backtrace"
	"github.com/getsentry/parallelstacks/internal/logutil"
	"github.com/getsentry/parallelstacks/internal/parallelstack"
	"github.com/getsentry/parallelstacks/internal/render"
	"github.com/getsentry/parallelstacks/internal/stacksclient"
)

const usage = `parallelstacks [flags] [file]

Merges the output of gdb's "thread apply all bt" into a parallel stacks tree.
The dump is read from file, or from the standard input when no file is given.

`

type options struct {
	format   render.Format
	maxDepth int
	server   string
	retries  int
	timeout  time.Duration
	verbose  bool
	input    string
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var (
		o      options
		format string
	)
	fs := flag.NewFlagSet("parallelstacks", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&format, "format", string(render.Text), "output format: text, json, dot or threads")
	fs.IntVar(&o.maxDepth, "max-depth", 0, "stop merging after this many frames from the entry point, 0 for no limit")
	fs.StringVar(&o.server, "server", "", "URL of a stacksd service to send the dump to instead of merging it locally")
	fs.IntVar(&o.retries, "retries", 2, "retries when the stacksd service fails")
	fs.DurationVar(&o.timeout, "timeout", 30*time.Second, "timeout of each request to the stacksd service")
	fs.BoolVar(&o.verbose, "v", false, "log debug information")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return options{}, errors.New("too many arguments")
	}
	o.input = fs.Arg(0)
	if o.maxDepth < 0 {
		return options{}, errors.New("max-depth can't be negative")
	}

	var err error
	o.format, err = render.ParseFormat(format)
	if err != nil {
		return options{}, err
	}
	return o, nil
}

func run(ctx context.Context, o options, stdin io.Reader, stdout io.Writer) error {
	in := stdin
	if o.input != "" && o.input != "-" {
		f, err := os.Open(o.input)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	if o.server != "" {
		c := stacksclient.New(o.server, o.timeout, o.retries)
		res, err := c.Submit(ctx, in, o.format, o.maxDepth)
		if err != nil {
			return err
		}
		log.Debug().Str("snapshot_id", res.SnapshotID).Str("server", o.server).Msg("dump submitted")
		_, err = stdout.Write(res.Body)
		return err
	}

	threads, err := backtrace.ParseReader(in)
	if err != nil {
		return err
	}
	log.Debug().Int("threads", len(threads)).Msg("dump parsed")

	tree := parallelstack.Aggregate(threads, parallelstack.WithMaxDepth(o.maxDepth))
	return render.Write(stdout, o.format, threads, tree)
}

func main() {
	o, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level := zerolog.InfoLevel
	if o.verbose {
		level = zerolog.DebugLevel
	}
	logutil.ConfigureConsoleLogger(level)

	if err := run(context.Background(), o, os.Stdin, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("can't build parallel stacks")
	}
}
