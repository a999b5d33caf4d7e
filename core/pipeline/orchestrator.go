// Package pipeline sequences one report request through fetch, analysis,
// chart enrichment, assembly, concurrent rendering, persistence and
// notification.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/core/assemble"
	"github.com/gaurav-prasanna/reportpipe/logger"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Orchestrator runs the generation pipeline. It holds no per-request state,
// so one value serves concurrent requests.
type Orchestrator struct {
	fetcher   core.Fetcher
	analyzer  core.Analyzer
	charts    core.ChartGenerator
	renderers map[core.OutputFormat]core.Renderer
	store     core.Store
	notifier  core.Notifier
	hook      StateHook
}

// New creates an Orchestrator. Renderers are keyed by their Format; a later
// renderer replaces an earlier one for the same format.
func New(
	fetcher core.Fetcher,
	analyzer core.Analyzer,
	charts core.ChartGenerator,
	renderers []core.Renderer,
	store core.Store,
	notifier core.Notifier,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		fetcher:   fetcher,
		analyzer:  analyzer,
		charts:    charts,
		renderers: make(map[core.OutputFormat]core.Renderer, len(renderers)),
		store:     store,
		notifier:  notifier,
	}
	for _, r := range renderers {
		o.renderers[r.Format()] = r
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate runs the pipeline for every format the request asks for and
// returns one persisted report per format. Once started, the run ignores
// cancellation of ctx and completes or fails on its own.
func (o *Orchestrator) Generate(ctx context.Context, req core.ReportRequest) ([]core.GeneratedReport, error) {
	return o.run(context.WithoutCancel(ctx), req, req.Format.Expand())
}

// GenerateSingle runs the pipeline for exactly one concrete format.
func (o *Orchestrator) GenerateSingle(ctx context.Context, req core.ReportRequest, format core.OutputFormat) (core.GeneratedReport, error) {
	if format == core.FormatBoth {
		return core.GeneratedReport{}, fmt.Errorf("%w: %s is not a single format", core.ErrUnsupportedFormat, format)
	}
	req.Format = format
	reports, err := o.run(context.WithoutCancel(ctx), req, []core.OutputFormat{format})
	if err != nil {
		return core.GeneratedReport{}, err
	}
	return reports[0], nil
}

func (o *Orchestrator) run(ctx context.Context, req core.ReportRequest, formats []core.OutputFormat) ([]core.GeneratedReport, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"request_id": req.ID,
		"url":        req.SourceURL,
	})
	state := StateFetching

	fail := func(err error) error {
		log.WithField("state", state).Errorf("report generation failed: %v", err)
		o.emit(ctx, StateEvent{RequestID: req.ID, State: StateFailed, Err: err})
		o.notifier.NotifyFailure(ctx, req.ID, err.Error())
		return &core.GenerationError{RequestID: req.ID, State: state.String(), Err: err}
	}
	enter := func(s State) {
		state = s
		o.emit(ctx, StateEvent{RequestID: req.ID, State: s})
	}

	enter(StateFetching)
	raw, err := o.fetcher.FetchRawData(ctx, req.SourceURL)
	if err != nil {
		return nil, fail(&core.FetchError{URL: req.SourceURL, Err: err})
	}

	enter(StateAnalyzing)
	data, err := o.analyzer.AnalyzeAndStructure(ctx, raw, req.SourceURL)
	if err != nil {
		return nil, fail(fmt.Errorf("analyzing content: %w", err))
	}

	enter(StateChartEnriching)
	charts, err := o.generateCharts(ctx, data)
	if err != nil {
		return nil, fail(fmt.Errorf("generating charts: %w", err))
	}
	data = data.WithMetadata("chartCount", len(charts))
	log.WithFields(logrus.Fields{
		"data_type": data.DataType,
		"points":    len(data.DataPoints),
		"sections":  len(data.TextSections),
		"charts":    len(charts),
	}).Info("content analyzed")

	enter(StateAssembling)
	content := assemble.AttachImages(assemble.Assemble(data, req), charts)

	enter(StateRendering)
	rendered, err := o.renderAll(ctx, content, req, formats)
	if err != nil {
		return nil, fail(err)
	}

	enter(StatePersisting)
	saved, err := o.persist(ctx, rendered)
	if err != nil {
		return nil, fail(err)
	}

	for _, r := range saved {
		o.notifier.NotifySuccess(ctx, r)
	}
	enter(StateNotified)
	log.WithField("reports", len(saved)).Info("report generation completed")
	return saved, nil
}

// generateCharts turns a panic in the chart collaborator into an error
// so the request still fails through the normal path.
func (o *Orchestrator) generateCharts(ctx context.Context, data core.ExtractedData) (charts []core.Chart, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			charts, err = nil, fmt.Errorf("panic: %v", rec)
		}
	}()
	return o.charts.GenerateCharts(ctx, data)
}

// renderAll renders every format concurrently and waits for all of them.
// Any failure discards the whole result set.
func (o *Orchestrator) renderAll(ctx context.Context, content core.ReportContent, req core.ReportRequest, formats []core.OutputFormat) ([]core.GeneratedReport, error) {
	renderers := make([]core.Renderer, len(formats))
	for i, f := range formats {
		r, ok := o.renderers[f]
		if !ok {
			return nil, &core.RenderError{Format: f, Err: core.ErrUnsupportedFormat}
		}
		renderers[i] = r
	}

	results := make([]core.GeneratedReport, len(formats))
	var g errgroup.Group
	for i, r := range renderers {
		own := content.Clone()
		g.Go(func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = &core.RenderError{Format: formats[i], Err: fmt.Errorf("panic: %v", rec)}
				}
			}()
			rep, err := r.Render(ctx, own, req)
			if err != nil {
				return &core.RenderError{Format: formats[i], Err: err}
			}
			rep.RequestID = req.ID
			if rep.SourceURL == "" {
				rep.SourceURL = req.SourceURL
			}
			results[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// persist saves every report. When one save fails the reports already saved
// by this run are removed again.
func (o *Orchestrator) persist(ctx context.Context, reports []core.GeneratedReport) ([]core.GeneratedReport, error) {
	saved := make([]core.GeneratedReport, 0, len(reports))
	for _, r := range reports {
		stored, err := o.store.Save(ctx, r)
		if err != nil {
			var errs []error
			for _, s := range saved {
				if derr := o.store.Delete(ctx, s.ID); derr != nil {
					errs = append(errs, fmt.Errorf("rolling back %s: %w", s.ID, derr))
				}
			}
			return nil, errors.Join(append([]error{fmt.Errorf("saving report %s: %w", r.FileName, err)}, errs...)...)
		}
		saved = append(saved, stored)
	}
	return saved, nil
}

func (o *Orchestrator) emit(ctx context.Context, ev StateEvent) {
	if o.hook != nil {
		o.hook(ctx, ev)
	}
}
