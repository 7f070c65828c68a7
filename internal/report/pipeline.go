package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mattslade/ai-scorecard/internal/delivery"
	"github.com/mattslade/ai-scorecard/internal/questionnaire"
)

const (
	mailSubject  = "Your AI Readiness Scorecard"
	mailBody     = "Attached is your AI Readiness PDF."
	mailFilename = "ai-readiness-scorecard.pdf"
)

// Renderer converts a validated HTML document into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, htmlDoc string) ([]byte, error)
}

// Dispatcher fans the document out to its sinks.
type Dispatcher interface {
	Dispatch(ctx context.Context, doc delivery.Document) []delivery.Result
}

// Pipeline sequences one submission through normalize, compose, generate,
// render and dispatch. Runs are independent; the only shared state is the
// read-only question set and configuration.
type Pipeline struct {
	questions      *questionnaire.Set
	generator      *Generator
	renderer       Renderer
	dispatcher     Dispatcher
	strict         bool
	emailMandatory bool
	copyEmail      string
}

type PipelineConfig struct {
	Questions *questionnaire.Set
	Generator *Generator
	Renderer  Renderer
	Dispatch  Dispatcher
	// Strict selects the full-HTML generation contract.
	Strict bool
	// EmailMandatory fails the run when any email sink fails.
	EmailMandatory bool
	// CopyEmail always receives a copy of the report when set.
	CopyEmail string
}

func NewPipeline(cfg PipelineConfig) *Pipeline {
	return &Pipeline{
		questions:      cfg.Questions,
		generator:      cfg.Generator,
		renderer:       cfg.Renderer,
		dispatcher:     cfg.Dispatch,
		strict:         cfg.Strict,
		emailMandatory: cfg.EmailMandatory,
		copyEmail:      strings.TrimSpace(cfg.CopyEmail),
	}
}

// RunResult is the successful outcome of one pipeline run.
type RunResult struct {
	RunID      string
	PDF        []byte
	Deliveries []delivery.Result
	Answers    questionnaire.AnswerSet
}

// Run executes the full pipeline for one raw submission.
func (p *Pipeline) Run(ctx context.Context, raw map[string]any) (RunResult, error) {
	runID := uuid.NewString()
	tracer := otel.Tracer("scorecard/pipeline")
	ctx, span := tracer.Start(ctx, "pipeline.run")
	span.SetAttributes(attribute.String("run.id", runID))
	defer span.End()

	started := time.Now()
	res := RunResult{RunID: runID}

	// Normalized
	var as questionnaire.AnswerSet
	p.stage(ctx, runID, "normalize", func(ctx context.Context) {
		as = questionnaire.Normalize(p.questions, raw)
	})
	res.Answers = as

	// PromptBuilt
	var prompt Prompt
	p.stage(ctx, runID, "compose", func(ctx context.Context) {
		prompt = Compose(as, p.strict)
	})

	// NarrativeGenerated
	var narrative string
	err := p.stageErr(ctx, runID, "generate", func(ctx context.Context) error {
		var err error
		narrative, err = p.generator.Narrative(ctx, prompt)
		return err
	})
	if err != nil {
		kind := KindGenerationBackend
		if errors.Is(err, ErrNotMarkup) || errors.Is(err, ErrEmptyNarrative) {
			kind = KindGenerationFormat
		}
		return res, &StageError{Stage: "generate", Kind: kind, Err: err}
	}

	// DocumentRendered
	err = p.stageErr(ctx, runID, "render", func(ctx context.Context) error {
		htmlDoc, err := BuildDocument(narrative, p.strict, p.questions, as)
		if err != nil {
			return err
		}
		res.PDF, err = p.renderer.Render(ctx, htmlDoc)
		if err != nil {
			return err
		}
		if len(res.PDF) == 0 {
			return fmt.Errorf("renderer returned empty document")
		}
		return nil
	})
	if err != nil {
		return res, &StageError{Stage: "render", Kind: KindRender, Err: err}
	}

	// Dispatched. A dropped caller connection must not trigger email sends.
	if err := ctx.Err(); err != nil {
		return res, &StageError{Stage: "dispatch", Kind: KindDelivery, Err: fmt.Errorf("request cancelled before dispatch: %w", err)}
	}
	p.stage(ctx, runID, "dispatch", func(ctx context.Context) {
		res.Deliveries = p.dispatcher.Dispatch(ctx, delivery.Document{
			RunID:      runID,
			PDF:        res.PDF,
			Recipients: p.recipients(as),
			Subject:    mailSubject,
			Body:       mailBody,
			Filename:   mailFilename,
		})
	})
	if failed := delivery.EmailFailures(res.Deliveries); len(failed) > 0 && p.emailMandatory {
		return res, &StageError{
			Stage: "dispatch",
			Kind:  KindDelivery,
			Err:   fmt.Errorf("%d of %d email sends failed: %s", len(failed), len(res.Deliveries)-1, failed[0].Error),
		}
	}

	// Completed
	log.Info().
		Str("run_id", runID).
		Int("pdf_bytes", len(res.PDF)).
		Int("sinks", len(res.Deliveries)).
		Dur("elapsed", time.Since(started)).
		Msg("report run completed")
	return res, nil
}

func (p *Pipeline) recipients(as questionnaire.AnswerSet) []string {
	var out []string
	if as.Email != "" {
		out = append(out, as.Email)
	}
	if p.copyEmail != "" && !strings.EqualFold(p.copyEmail, as.Email) {
		out = append(out, p.copyEmail)
	}
	return out
}

func (p *Pipeline) stage(ctx context.Context, runID, name string, fn func(context.Context)) {
	_ = p.stageErr(ctx, runID, name, func(ctx context.Context) error {
		fn(ctx)
		return nil
	})
}

func (p *Pipeline) stageErr(ctx context.Context, runID, name string, fn func(context.Context) error) error {
	tracer := otel.Tracer("scorecard/pipeline")
	ctx, span := tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	started := time.Now()
	err := fn(ctx)
	elapsed := time.Since(started)
	if err != nil {
		span.RecordError(err)
		log.Warn().Str("run_id", runID).Str("stage", name).Dur("elapsed", elapsed).Err(err).Msg("pipeline stage")
		return err
	}
	log.Debug().Str("run_id", runID).Str("stage", name).Dur("elapsed", elapsed).Msg("pipeline stage")
	return nil
}
