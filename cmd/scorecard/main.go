package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mattslade/ai-scorecard/internal/config"
	"github.com/mattslade/ai-scorecard/internal/delivery"
	"github.com/mattslade/ai-scorecard/internal/httpapi"
	"github.com/mattslade/ai-scorecard/internal/mailer"
	"github.com/mattslade/ai-scorecard/internal/observability"
	"github.com/mattslade/ai-scorecard/internal/pdf"
	"github.com/mattslade/ai-scorecard/internal/questionnaire"
	"github.com/mattslade/ai-scorecard/internal/report"
)

func main() {
	questionsPath := flag.String("questions", "", "Path to a question set JSON file (default: embedded set)")
	pretty := flag.Bool("pretty-log", false, "Human-readable console logging")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration")
	}
	setupLogging(cfg.LogLevel, *pretty)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := observability.SetupTracing(ctx, "ai-scorecard", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("tracing setup")
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	qPath := *questionsPath
	if qPath == "" {
		qPath = cfg.QuestionsPath
	}
	questions, err := questionnaire.Load(qPath)
	if err != nil {
		log.Fatal().Err(err).Msg("question set")
	}

	var store *delivery.Store
	if cfg.DeliveryLogPath != "" {
		store, err = delivery.OpenStore(cfg.DeliveryLogPath)
		if err != nil {
			log.Fatal().Err(err).Msg("delivery log")
		}
		defer store.Close()
	}

	sender := mailer.NewSMTPSender(mailer.Options{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		SSL:      cfg.SMTPSecure,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.FromEmail,
		Timeout:  cfg.MailTimeout,
	})

	caller := report.NewAnthropicCaller(cfg.AnthropicAPIKey, cfg.Model, cfg.Temperature)
	pipeline := report.NewPipeline(report.PipelineConfig{
		Questions:      questions,
		Generator:      report.NewGenerator(caller, cfg.StrictGenerationFormat, cfg.GenerationTimeout),
		Renderer:       pdf.New(cfg.RenderTimeout),
		Dispatch:       delivery.NewDispatcher(sender, store),
		Strict:         cfg.StrictGenerationFormat,
		EmailMandatory: cfg.EmailMandatory,
		CopyEmail:      cfg.ReportCopyEmail,
	})

	handler := httpapi.NewServer(pipeline, cfg.ResponseMode)
	srv := &http.Server{Addr: cfg.Addr, Handler: handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().
		Str("addr", cfg.Addr).
		Str("model", cfg.Model).
		Bool("strict", cfg.StrictGenerationFormat).
		Str("response_mode", string(cfg.ResponseMode)).
		Msg("scorecard service listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server")
	}
}

func setupLogging(level string, pretty bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
