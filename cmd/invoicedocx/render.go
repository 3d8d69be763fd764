package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	"github.com/alnah/go-invoicedocx"
)

// Sentinel errors for the render command.
var (
	ErrReadInput   = errors.New("cannot read request")
	ErrWriteOutput = errors.New("cannot write document")
)

// maxRequestBytes bounds a request read from a file or stdin.
const maxRequestBytes = 8 << 20

// runRender renders one request JSON offline and writes the document.
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseRenderFlags(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	applyConversionFlags(flags.conversion, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	in, err := readRequest(flags.input, env.Stdin)
	if err != nil {
		return err
	}
	if flags.format != "" {
		in.Format = invoicedocx.Format(flags.format)
	}

	logger := zap.NewNop()
	if flags.common.verbose {
		if logger, err = newLogger(cfg.Log, true); err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
	}

	opts, err := rendererOptions(cfg, logger, nil)
	if err != nil {
		return err
	}
	renderer, err := invoicedocx.NewRenderer(opts...)
	if err != nil {
		return err
	}
	defer func() { _ = renderer.Close() }()

	start := env.Now()
	result, err := renderer.Render(ctx, in)
	if err != nil {
		return err
	}

	out := flags.output
	if out == "" {
		out = result.Filename
	}
	if err := atomic.WriteFile(out, bytes.NewReader(result.Data)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteOutput, out, err)
	}

	if !flags.quiet {
		fmt.Fprintf(env.Stdout, "Created %s (%s, %s)\n", out,
			humanize.Bytes(uint64(len(result.Data))), env.Now().Sub(start).Round(time.Millisecond))
	}
	return nil
}

// readRequest decodes a request from path, or from stdin when path is "-".
func readRequest(path string, stdin io.Reader) (invoicedocx.Input, error) {
	var in invoicedocx.Input

	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path) // #nosec G304 -- path is user-provided
		if err != nil {
			return in, fmt.Errorf("%w: %w", ErrReadInput, err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxRequestBytes+1))
	if err != nil {
		return in, fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	if len(data) > maxRequestBytes {
		return in, fmt.Errorf("%w: request exceeds %s", invoicedocx.ErrInvalidRequest, humanize.IBytes(maxRequestBytes))
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("%w: decoding %s: %w", invoicedocx.ErrInvalidRequest, path, err)
	}
	return in, nil
}
