package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("usage error")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	verbose bool
}

// conversionFlags override the conversion section of the config.
type conversionFlags struct {
	backend string
	workers int
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common     commonFlags
	conversion conversionFlags
	host       string
	port       int
}

// renderFlags holds flags for the render command.
type renderFlags struct {
	common     commonFlags
	conversion conversionFlags
	input      string
	output     string
	format     string
	quiet      bool
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common commonFlags
	json   bool
}

// newFlagSet returns a silent flag set; callers report errors and help.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.SortFlags = false
	return fs
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "Config file name or path")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Debug logging")
}

func addConversionFlags(fs *flag.FlagSet, f *conversionFlags) {
	fs.StringVar(&f.backend, "backend", "", "PDF backend: soffice, chrome")
	fs.IntVarP(&f.workers, "workers", "w", 0, "Concurrent conversions (0 = auto)")
}

// parse wraps flag errors in ErrUsage and rejects positional arguments.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return nil
}

func parseServeFlags(args []string) (*serveFlags, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve")
	addCommonFlags(fs, &f.common)
	addConversionFlags(fs, &f.conversion)
	fs.StringVar(&f.host, "host", "", "Listen host")
	fs.IntVarP(&f.port, "port", "p", 0, "Listen port")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return f, nil
}

func parseRenderFlags(args []string) (*renderFlags, error) {
	f := &renderFlags{}
	fs := newFlagSet("render")
	addCommonFlags(fs, &f.common)
	addConversionFlags(fs, &f.conversion)
	fs.StringVarP(&f.input, "input", "i", "-", "Request JSON file (- = stdin)")
	fs.StringVarP(&f.output, "output", "o", "", "Output file (default: invoice filename)")
	fs.StringVarP(&f.format, "format", "f", "", "Output format: docx, pdf (overrides request)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "Only show errors")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return f, nil
}

func parseDoctorFlags(args []string) (*doctorFlags, error) {
	f := &doctorFlags{}
	fs := newFlagSet("doctor")
	addCommonFlags(fs, &f.common)
	fs.BoolVar(&f.json, "json", false, "Machine-readable output")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return f, nil
}

func parseConfigFlags(args []string) (*commonFlags, error) {
	f := &commonFlags{}
	fs := newFlagSet("config")
	addCommonFlags(fs, f)
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return f, nil
}
