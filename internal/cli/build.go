package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/marketbrief/marketbrief/internal/config"
	"github.com/marketbrief/marketbrief/internal/llm"
	"github.com/marketbrief/marketbrief/internal/logging"
	"github.com/marketbrief/marketbrief/internal/markets"
	"github.com/marketbrief/marketbrief/internal/pipeline"
	"github.com/marketbrief/marketbrief/internal/retry"
	"github.com/marketbrief/marketbrief/internal/search"
	"github.com/marketbrief/marketbrief/internal/telegram"

	fmtstage "github.com/marketbrief/marketbrief/internal/format"
)

// app holds the wired pipeline and its preflight checks, sharing one set of
// API clients between them.
type app struct {
	pipeline *pipeline.Pipeline
	checks   []pipeline.Check
}

func buildLogger(cfg *config.Config) (*logrus.Logger, func() error, error) {
	logger, closeLog, err := logging.New(cfg.LogsDir, cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("init logging: %w", err)
	}
	return logger, closeLog, nil
}

func buildApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*app, error) {
	tavily := search.NewTavilyClient(cfg.TavilyAPIKey, cfg.RequestTimeout)
	serper := search.NewSerperClient(cfg.SerperAPIKey, cfg.RequestTimeout)
	tg := telegram.NewClient(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.RequestTimeout)

	analysisModel, err := llm.NewChatModel(ctx, cfg, cfg.AnalysisModel)
	if err != nil {
		return nil, fmt.Errorf("create analysis model: %w", err)
	}
	translationModel, err := llm.NewChatModel(ctx, cfg, cfg.TranslationModel)
	if err != nil {
		return nil, fmt.Errorf("create translation model: %w", err)
	}

	analyst, err := llm.NewAnalyst(ctx, analysisModel, logger.WithField("component", "analyst"))
	if err != nil {
		return nil, err
	}
	translator, err := llm.NewTranslator(ctx, translationModel, logger.WithField("component", "translator"))
	if err != nil {
		return nil, err
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.MaxAttempts

	p := pipeline.New(pipeline.Deps{
		Search:     search.NewService(logger.WithField("component", "search"), tavily, serper),
		Quotes:     markets.FetchIndexQuotes,
		Analyst:    analyst,
		Formatter:  fmtstage.NewFormatter(serper, logger.WithField("component", "formatter")),
		Translator: translator,
		Sender:     tg,
		Retry:      retryCfg,
		Logger:     logger,
	})

	checks := []pipeline.Check{
		{
			Name:      "telegram",
			Mandatory: true,
			Probe: func(ctx context.Context) error {
				username, err := tg.GetMe(ctx)
				if err != nil {
					return err
				}
				logger.WithField("bot", username).Info("telegram bot verified")
				return nil
			},
		},
		{
			Name:      "llm",
			Mandatory: true,
			Probe: func(ctx context.Context) error {
				return llm.Ping(ctx, translationModel)
			},
		},
		{
			Name: "tavily",
			Probe: func(ctx context.Context) error {
				_, err := tavily.Search(ctx, "test")
				return err
			},
		},
		{
			Name: "serper",
			Probe: func(ctx context.Context) error {
				_, err := serper.Search(ctx, "test")
				return err
			},
		},
	}

	return &app{pipeline: p, checks: checks}, nil
}
