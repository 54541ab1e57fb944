package config

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/jacoelho/kq/internal/exit"
	"github.com/jacoelho/kq/internal/formatter"
)

// Version is reported by --version. Overridden at build time with -ldflags.
var Version = "dev"

const description = `Query KDL documents with selectors.

The selector is matched against the document read from the given files, or from
stdin when no file is given. An empty selector returns the document unchanged.`

// ErrJSONPathOutput is returned when --jsonpath is combined with kdl output.
var ErrJSONPathOutput = errors.New("--jsonpath requires json or yaml output")

// Config represents the complete configuration for the kq command.
type Config struct {
	Selector string
	Files    []string
	Output   formatter.Kind
	Color    formatter.ColorMode
	JSONPath string
	Debug    bool
}

type cli struct {
	Selector string   `arg:"" optional:"" help:"Selector to match, for example 'package > dependencies[platform]'."`
	Files    []string `arg:"" optional:"" type:"existingfile" help:"KDL documents to read. Reads stdin when omitted."`

	Output   string           `short:"o" enum:"kdl,json,yaml" default:"kdl" env:"KQ_OUTPUT" help:"Output format (${enum})."`
	Color    string           `enum:"auto,always,never" default:"auto" env:"KQ_COLOR" help:"Colour KDL output (${enum})."`
	JSONPath string           `name:"jsonpath" placeholder:"EXPR" help:"JSONPath expression applied to the matches. Requires json or yaml output."`
	Debug    bool             `env:"KQ_DEBUG" help:"Log query details to stderr."`
	Version  kong.VersionFlag `short:"v" help:"Print version information and quit."`
}

// Parse parses command-line arguments, args[0] being the program name.
// Help, version and a missing selector return a successful exit result instead of a config.
func Parse(args []string) (*Config, *exit.Result) {
	var (
		out      bytes.Buffer
		options  cli
		exited   bool
		exitCode int
	)

	parser, err := kong.New(&options,
		kong.Name("kq"),
		kong.Description(description),
		kong.Writers(&out, &out),
		kong.Exit(func(code int) {
			exited = true
			exitCode = code
		}),
		kong.Vars{"version": Version},
	)
	if err != nil {
		return nil, exit.Failure(err)
	}

	if len(args) > 0 {
		args = args[1:]
	}

	// kong keeps parsing after --help or --version, so a requested exit wins over
	// any later error.
	kctx, err := parser.Parse(args)
	if exited {
		if exitCode != 0 {
			return nil, &exit.Result{Stream: exit.Stderr, ExitCode: exitCode, Message: out.String()}
		}
		return nil, exit.Success(out.String())
	}
	if err != nil {
		return nil, exit.Errorf("Error: %v\n\nRun 'kq --help' for usage.\n", err)
	}

	if !hasSelector(kctx) {
		if err := kctx.PrintUsage(false); err != nil {
			return nil, exit.Failure(err)
		}
		return nil, exit.Success(out.String())
	}

	cfg, err := options.config()
	if err != nil {
		return nil, exit.Failure(err)
	}
	return cfg, nil
}

func hasSelector(kctx *kong.Context) bool {
	for _, p := range kctx.Path {
		if p.Positional != nil && p.Positional.Name == "selector" {
			return true
		}
	}
	return false
}

func (c *cli) config() (*Config, error) {
	output, err := formatter.ParseKind(c.Output)
	if err != nil {
		return nil, err
	}

	if c.JSONPath != "" && !output.Structured() {
		return nil, ErrJSONPathOutput
	}

	color := formatter.ColorMode(c.Color)
	switch color {
	case formatter.ColorAuto, formatter.ColorAlways, formatter.ColorNever:
	default:
		return nil, fmt.Errorf("unsupported colour mode %q", c.Color)
	}

	var files []string
	if len(c.Files) > 0 {
		files = c.Files
	}

	return &Config{
		Selector: c.Selector,
		Files:    files,
		Output:   output,
		Color:    color,
		JSONPath: c.JSONPath,
		Debug:    c.Debug,
	}, nil
}
