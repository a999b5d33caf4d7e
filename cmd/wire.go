package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/gaurav-prasanna/reportpipe/config"
	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/core/analyze"
	"github.com/gaurav-prasanna/reportpipe/core/chart"
	"github.com/gaurav-prasanna/reportpipe/core/fetch"
	"github.com/gaurav-prasanna/reportpipe/core/notify"
	"github.com/gaurav-prasanna/reportpipe/core/pipeline"
	"github.com/gaurav-prasanna/reportpipe/core/render"
	"github.com/gaurav-prasanna/reportpipe/core/store"
	"github.com/gaurav-prasanna/reportpipe/logger"
	"github.com/sirupsen/logrus"
)

// components is everything a command needs, built from config.
type components struct {
	fetcher      core.Fetcher
	store        core.Store
	orchestrator *pipeline.Orchestrator
	queries      *pipeline.Queries
}

// Close releases the store when it holds a database handle.
func (c *components) Close() error {
	if closer, ok := c.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// wire builds the pipeline. Outcomes always go to the log and also to any
// extra notifiers.
func wire(ctx context.Context, cfg *config.Config, extra ...core.Notifier) (*components, error) {
	fetcher := fetch.New(
		fetch.WithTimeout(cfg.Fetch.Timeout()),
		fetch.WithUserAgent(cfg.Fetch.UserAgent),
		fetch.WithMaxBytes(cfg.Fetch.MaxBytes),
	)

	analyzerOpts := []analyze.Option{analyze.WithPromptWords(cfg.LLM.MaxPromptWords)}
	if cfg.LLM.Enabled() {
		model, err := analyze.NewChatModel(ctx, cfg.LLM)
		if err != nil {
			return nil, err
		}
		analyzerOpts = append(analyzerOpts, analyze.WithModel(model, cfg.LLM.Model, analyze.NewLimiter(cfg.Concurrency)))
		logger.Log.WithField("model", cfg.LLM.Model).Info("LLM enrichment enabled")
	}

	st, err := store.Open(cfg.Storage.Driver, cfg.Storage.DSN, cfg.Server.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	orch := pipeline.New(
		fetcher,
		analyze.New(analyzerOpts...),
		chart.NewGenerator(),
		render.All(),
		st,
		append(notify.Multi{notify.NewLogNotifier()}, extra...),
		pipeline.WithStateHook(logTransition),
	)

	return &components{
		fetcher:      fetcher,
		store:        st,
		orchestrator: orch,
		queries:      pipeline.NewQueries(st),
	}, nil
}

func logTransition(_ context.Context, ev pipeline.StateEvent) {
	entry := logger.Log.WithFields(logrus.Fields{
		"request_id": ev.RequestID,
		"state":      ev.State.String(),
	})
	if ev.Err != nil {
		entry = entry.WithError(ev.Err)
	}
	if ev.State.Terminal() {
		entry.Info("Pipeline finished")
		return
	}
	entry.Debug("Pipeline state")
}
