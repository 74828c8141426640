// Package pipeline runs one earnings-call analysis from raw transcript to PDF.
//
// Stages run strictly in order. Cleansing, market lookup, and narrative
// generation fall back to neutral values when their collaborator fails;
// scoring degrades only when the classifier is unavailable. Any other stage
// error moves the run to StateFailed and no report is returned.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/spacesedan/ecsa/internal/charts"
	"github.com/spacesedan/ecsa/internal/llm"
	"github.com/spacesedan/ecsa/internal/logging"
	"github.com/spacesedan/ecsa/internal/metrics"
	"github.com/spacesedan/ecsa/internal/models"
	"github.com/spacesedan/ecsa/internal/report"
	"github.com/spacesedan/ecsa/internal/sentiment"
)

type Request struct {
	Transcript string    `validate:"required"`
	Ticker     string    `validate:"required,max=12"`
	CallDate   time.Time `validate:"required"`
}

type Cleanser interface {
	Clean(ctx context.Context, raw string) (string, error)
}

type Scorer interface {
	Analyze(ctx context.Context, text string) (*sentiment.Analysis, error)
}

type MarketLookup interface {
	Performance(ctx context.Context, ticker string, refDate time.Time) (models.MarketPerformance, error)
}

type Narrator interface {
	Generate(ctx context.Context, cleaned string, results models.SentimentResults, marketChange float64) (string, error)
}

type FigureRenderer func(results models.SentimentResults, market models.MarketPerformance, ticker, text string) (models.Figures, error)

type DocumentRenderer func(narrative string, figures models.Figures) ([]byte, error)

// Observer is told about every state the run enters, terminal states included.
type Observer func(runID string, state State)

type Deps struct {
	Cleanser Cleanser
	Scorer   Scorer
	Market   MarketLookup
	Narrator Narrator
	Figures  FigureRenderer
	Document DocumentRenderer
	Observer Observer
}

type Pipeline struct {
	cleanser Cleanser
	scorer   Scorer
	market   MarketLookup
	narrator Narrator
	figures  FigureRenderer
	document DocumentRenderer
	observer Observer
	validate *validator.Validate
}

type Result struct {
	Report *models.AnalysisReport
	PDF    []byte
	Stages []StageResult
}

// Degraded reports whether any stage fell back to a neutral value.
func (r *Result) Degraded() bool {
	for _, s := range r.Stages {
		if s.Outcome == OutcomeDegraded {
			return true
		}
	}
	return false
}

func New(d Deps) *Pipeline {
	p := &Pipeline{
		cleanser: d.Cleanser,
		scorer:   d.Scorer,
		market:   d.Market,
		narrator: d.Narrator,
		figures:  d.Figures,
		document: d.Document,
		observer: d.Observer,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	if p.figures == nil {
		p.figures = charts.Render
	}
	if p.document == nil {
		p.document = report.Render
	}
	return p
}

// run is the per-request state. Nothing in it is shared between runs.
type run struct {
	id     string
	log    *slog.Logger
	report *models.AnalysisReport
	pdf    []byte
	stages []StageResult
}

// Run validates req and executes every stage. The returned error is
// ErrInvalidRequest (wrapped) for bad input or a *StageError for a fatal
// stage; in both cases no result is returned.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if err := p.validateRequest(req); err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	r := &run{
		id: uuid.NewString(),
		report: &models.AnalysisReport{
			Ticker:     strings.ToUpper(strings.TrimSpace(req.Ticker)),
			CallDate:   req.CallDate,
			Transcript: models.Transcript{Raw: req.Transcript},
			StartedAt:  time.Now(),
		},
	}
	r.report.RunID = r.id
	r.log = logging.WithRun(r.id)
	r.log.Info("[Pipeline] Starting analysis",
		slog.String("ticker", r.report.Ticker),
		slog.String("call_date", req.CallDate.Format(time.DateOnly)),
		slog.Int("transcript_chars", len(req.Transcript)))

	steps := []struct {
		state State
		fn    func(context.Context, *run) (Outcome, error)
	}{
		{StateCleansing, p.cleanse},
		{StateScoring, p.score},
		{StateMarketLookup, p.lookupMarket},
		{StateVisualizing, p.visualize},
		{StateReporting, p.narrate},
		{StateRendering, p.render},
	}

	for _, step := range steps {
		if err := p.runStage(ctx, r, step.state, step.fn); err != nil {
			p.enter(r, StateFailed)
			metrics.PipelineRunsTotal.WithLabelValues(string(StateFailed)).Inc()
			r.log.Error("[Pipeline] Analysis failed",
				slog.String("state", string(step.state)),
				slog.String("error", err.Error()))
			return nil, err
		}
	}

	r.report.CompletedAt = time.Now()
	p.enter(r, StateDone)
	metrics.PipelineRunsTotal.WithLabelValues(string(StateDone)).Inc()
	r.log.Info("[Pipeline] Analysis complete",
		slog.Int("warnings", len(r.report.Warnings)),
		slog.Int("pdf_bytes", len(r.pdf)),
		slog.Duration("elapsed", r.report.CompletedAt.Sub(r.report.StartedAt)))

	return &Result{Report: r.report, PDF: r.pdf, Stages: r.stages}, nil
}

func (p *Pipeline) runStage(ctx context.Context, r *run, state State, fn func(context.Context, *run) (Outcome, error)) error {
	p.enter(r, state)
	start := time.Now()

	var outcome Outcome
	var err error
	if ctxErr := ctx.Err(); ctxErr != nil {
		outcome, err = OutcomeFatal, ctxErr
	} else {
		outcome, err = fn(ctx, r)
	}

	elapsed := time.Since(start)
	metrics.StageDuration.WithLabelValues(string(state)).Observe(elapsed.Seconds())
	metrics.StageOutcomesTotal.WithLabelValues(string(state), string(outcome)).Inc()
	r.stages = append(r.stages, StageResult{State: state, Outcome: outcome, Err: err, Duration: elapsed})

	switch outcome {
	case OutcomeFatal:
		if err == nil {
			err = errors.New("stage reported failure without a cause")
		}
		return &StageError{State: state, Err: err}
	case OutcomeDegraded:
		r.log.Warn("[Pipeline] Stage degraded",
			slog.String("state", string(state)),
			slog.String("warning", errString(err)))
		r.report.Warnings = append(r.report.Warnings, fmt.Sprintf("%s: %s", state, errString(err)))
	default:
		r.log.Debug("[Pipeline] Stage complete",
			slog.String("state", string(state)),
			slog.Duration("elapsed", elapsed))
	}
	return nil
}

func (p *Pipeline) enter(r *run, state State) {
	r.log.Info("[Pipeline] "+state.Message(), slog.String("state", string(state)))
	if p.observer != nil {
		p.observer(r.id, state)
	}
}

func (p *Pipeline) cleanse(ctx context.Context, r *run) (Outcome, error) {
	t := &r.report.Transcript
	if p.cleanser == nil {
		t.Cleaned = t.Raw
		return OutcomeDegraded, errors.New("text cleansing not configured; using original transcript")
	}

	cleaned, err := p.cleanser.Clean(ctx, t.Raw)
	if err != nil {
		t.Cleaned = t.Raw
		return OutcomeDegraded, err
	}
	t.Cleaned = cleaned
	t.Cleansed = true
	return OutcomeSuccess, nil
}

func (p *Pipeline) score(ctx context.Context, r *run) (Outcome, error) {
	if p.scorer == nil {
		return OutcomeFatal, errors.New("no sentiment scorer configured")
	}

	analysis, err := p.scorer.Analyze(ctx, r.report.Transcript.Cleaned)
	if err != nil {
		return OutcomeFatal, err
	}
	r.report.Sentiment = analysis.Results

	if len(analysis.Warnings) > 0 {
		return OutcomeDegraded, errors.Join(analysis.Warnings...)
	}
	return OutcomeSuccess, nil
}

func (p *Pipeline) lookupMarket(ctx context.Context, r *run) (Outcome, error) {
	r.report.Market = models.MarketPerformance{Ticker: r.report.Ticker}
	if p.market == nil {
		return OutcomeDegraded, errors.New("market data not configured")
	}

	perf, err := p.market.Performance(ctx, r.report.Ticker, r.report.CallDate)
	if err != nil {
		r.report.Market = models.MarketPerformance{Ticker: r.report.Ticker}
		return OutcomeDegraded, err
	}
	r.report.Market = perf
	return OutcomeSuccess, nil
}

func (p *Pipeline) visualize(_ context.Context, r *run) (Outcome, error) {
	figs, err := p.figures(r.report.Sentiment, r.report.Market, r.report.Ticker, r.report.Transcript.Cleaned)
	if err != nil {
		return OutcomeFatal, err
	}
	r.report.Figures = figs
	return OutcomeSuccess, nil
}

func (p *Pipeline) narrate(ctx context.Context, r *run) (Outcome, error) {
	if p.narrator == nil {
		r.report.Narrative = llm.REPORT_FAILED_TEXT
		return OutcomeDegraded, errors.New("report generation not configured")
	}

	narrative, err := p.narrator.Generate(ctx, r.report.Transcript.Cleaned, r.report.Sentiment, r.report.Market.PercentChange)
	if err != nil {
		r.report.Narrative = llm.REPORT_FAILED_TEXT
		return OutcomeDegraded, err
	}
	r.report.Narrative = narrative
	return OutcomeSuccess, nil
}

func (p *Pipeline) render(_ context.Context, r *run) (Outcome, error) {
	pdf, err := p.document(r.report.Narrative, r.report.Figures)
	if err != nil {
		return OutcomeFatal, err
	}
	if len(pdf) == 0 {
		return OutcomeFatal, errors.New("renderer produced an empty document")
	}
	r.pdf = pdf
	return OutcomeSuccess, nil
}

func (p *Pipeline) validateRequest(req Request) error {
	if err := p.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if strings.TrimSpace(req.Transcript) == "" {
		return fmt.Errorf("%w: Transcript (blank)", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Ticker) == "" {
		return fmt.Errorf("%w: Ticker (blank)", ErrInvalidRequest)
	}
	return nil
}

func errString(err error) string {
	if err == nil {
		return "unknown"
	}
	return err.Error()
}
