package invoicedocx

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-invoicedocx/internal/assets"
	"github.com/alnah/go-invoicedocx/internal/docx"
	"github.com/alnah/go-invoicedocx/internal/pipeline"
)

// TemplateLoader loads DOCX templates by name. Returned bytes are shared
// and must not be modified.
type TemplateLoader interface {
	LoadTemplate(name string) ([]byte, error)
}

// Image is a fetched raster ready to embed.
type Image = pipeline.Image

// ImageSource retrieves overlay images by location.
type ImageSource = pipeline.ImageSource

// Compile-time interface implementation checks.
var (
	_ ImageSource    = (*ImageFetcher)(nil)
	_ TemplateLoader = (*assets.TemplateResolver)(nil)
	_ TemplateLoader = (*assets.EmbeddedLoader)(nil)
	_ CommandRunner  = (*execRunner)(nil)
)

// Stage is a step of the render state machine.
type Stage int

// Render stages, in execution order. Exactly one of StageStamped and
// StageUnstamped, and one of StageConverted and StageDone, is reached.
const (
	StageLoaded Stage = iota
	StageSubstituted
	StageTableBuilt
	StageStyled
	StageStamped
	StageUnstamped
	StageFontNormalized
	StageSerialized
	StageConverted
	StageDone
)

var stageNames = [...]string{
	StageLoaded:         "loaded",
	StageSubstituted:    "substituted",
	StageTableBuilt:     "table_built",
	StageStyled:         "styled",
	StageStamped:        "stamped",
	StageUnstamped:      "unstamped",
	StageFontNormalized: "font_normalized",
	StageSerialized:     "serialized",
	StageConverted:      "converted",
	StageDone:           "done",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// StageHook observes each completed stage with the time spent in it.
type StageHook func(stage Stage, elapsed time.Duration)

// WithStageHook registers a stage observer, e.g. for metrics.
func WithStageHook(h StageHook) Option {
	return func(r *Renderer) {
		r.stageHook = h
	}
}

// Renderer fills the invoice template and optionally converts it to PDF.
// A Renderer is safe for concurrent use; every render works on its own
// copy of the template. Create with NewRenderer and Close when done.
type Renderer struct {
	cfg       rendererConfig
	logger    *zap.Logger
	templates TemplateLoader
	images    ImageSource
	pool      *ConverterPool
	stageHook StageHook
}

// NewRenderer creates a Renderer with default configuration: embedded
// template, HTTP image fetcher, soffice PDF backend.
// Returns an error if the template cannot be loaded or breaks the
// invoice template contract.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		cfg: rendererConfig{
			timeout:         defaultTimeout,
			conversionLimit: defaultConversionTimeout,
			templateName:    assets.DefaultTemplateName,
			stampSource:     pipeline.DefaultStampURL,
			signatureSource: pipeline.DefaultSignatureURL,
			lateFeeColor:    pipeline.LateFeeColor,
			backend:         DefaultBackend,
		},
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.templates == nil {
		resolver, err := assets.NewTemplateResolver(r.cfg.templateDir)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
		}
		r.templates = resolver
	}

	// Fail fast on a broken template instead of on the first request.
	data, err := r.templates.LoadTemplate(r.cfg.templateName)
	if err != nil {
		return nil, fmt.Errorf("%w: loading %q: %w", ErrTemplate, r.cfg.templateName, err)
	}
	if err := assets.ValidateTemplate(data); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrTemplate, r.cfg.templateName, err)
	}

	if r.images == nil {
		r.images = NewImageFetcher(WithFetchLogger(r.logger))
	}

	factory := r.cfg.converterFactory
	if factory == nil {
		factory, err = NewConverterFactory(r.cfg.backend, r.cfg.converterBinary, r.cfg.conversionLimit)
		if err != nil {
			return nil, err
		}
	}
	r.pool = NewConverterPool(ResolvePoolSize(r.cfg.workers), factory)

	return r, nil
}

// Render runs the pipeline for one invoice. The context bounds the whole
// render, including asset fetches and conversion.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (r *Renderer) Render(ctx context.Context, in Input) (result *Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrInternal, rec)
		}
	}()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	format, _ := ParseFormat(string(in.Format))

	ctx, cancel := context.WithTimeout(ctx, r.cfg.timeout)
	defer cancel()

	t := r.newTracker(format)

	data, err := r.templates.LoadTemplate(r.cfg.templateName)
	if err != nil {
		return nil, t.fail(fmt.Errorf("%w: loading %q: %w", ErrTemplate, r.cfg.templateName, err))
	}
	pkg, err := docx.Open(data)
	if err != nil {
		return nil, t.fail(fmt.Errorf("%w: %w", ErrTemplate, err))
	}
	t.done(StageLoaded)

	n := pipeline.Substitute(pkg, in.Replacements())
	t.done(StageSubstituted, zap.Int("paragraphs", n))

	if err := pipeline.BuildItemsTable(pkg, in.Items); err != nil {
		return nil, t.fail(err)
	}
	t.done(StageTableBuilt, zap.Int("items", len(in.Items)))

	if err := pipeline.StyleFinancialTable(pkg, pipeline.LateFeeOptions{
		Apply:  in.ApplyLateFee,
		Strict: r.cfg.strictLateFee,
		Color:  r.cfg.lateFeeColor,
	}); err != nil {
		return nil, t.fail(err)
	}
	t.done(StageStyled, zap.Bool("late_fee", in.ApplyLateFee))

	if in.MarkAsPaid {
		overlays := pipeline.PaidOverlays(r.cfg.stampSource, r.cfg.signatureSource)
		if err := pipeline.Composite(ctx, pkg, r.images, overlays); err != nil {
			return nil, t.fail(err)
		}
		t.done(StageStamped)
	} else {
		t.done(StageUnstamped)
	}

	pipeline.NormalizeFont(pkg, pipeline.DefaultFont)
	t.done(StageFontNormalized)

	out, err := pkg.Bytes()
	if err != nil {
		return nil, t.fail(fmt.Errorf("%w: serializing: %w", ErrInternal, err))
	}
	t.done(StageSerialized, zap.Int("bytes", len(out)))

	if format == FormatPDF {
		out, err = r.convert(ctx, out)
		if err != nil {
			return nil, t.fail(err)
		}
		t.done(StageConverted, zap.Int("bytes", len(out)))
	} else {
		t.done(StageDone)
	}

	return &Result{
		Data:        out,
		Format:      format,
		ContentType: format.ContentType(),
		Filename:    in.Filename(format),
	}, nil
}

// convert runs one PDF conversion on a pooled converter.
func (r *Renderer) convert(ctx context.Context, docxData []byte) ([]byte, error) {
	conv, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquiring converter: %w", ErrConversion, err)
	}
	defer r.pool.Release(conv)

	return conv.ToPDF(ctx, docxData)
}

// Close releases converter resources.
func (r *Renderer) Close() error {
	if r.pool != nil {
		return r.pool.Close()
	}
	return nil
}

// tracker logs stage transitions and reports stage timings.
type tracker struct {
	logger *zap.Logger
	hook   StageHook
	last   time.Time
	stage  Stage
}

func (r *Renderer) newTracker(format Format) *tracker {
	return &tracker{
		logger: r.logger.With(zap.String("format", string(format))),
		hook:   r.stageHook,
		last:   time.Now(),
		stage:  -1,
	}
}

func (t *tracker) done(stage Stage, fields ...zap.Field) {
	now := time.Now()
	elapsed := now.Sub(t.last)
	t.last = now
	t.stage = stage

	t.logger.Debug("render stage",
		append([]zap.Field{zap.Stringer("stage", stage), zap.Duration("elapsed", elapsed)}, fields...)...)
	if t.hook != nil {
		t.hook(stage, elapsed)
	}
}

func (t *tracker) fail(err error) error {
	t.logger.Debug("render failed",
		zap.Stringer("after", t.stage),
		zap.String("kind", string(KindOf(err))),
		zap.Error(err))
	return err
}
