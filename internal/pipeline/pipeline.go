package pipeline

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/marketbrief/marketbrief/internal/models"
	"github.com/marketbrief/marketbrief/internal/retry"
)

// Searcher produces the candidate document set.
type Searcher interface {
	Run(ctx context.Context) ([]models.NewsDocument, error)
}

// Analyst turns documents into a structured market summary.
type Analyst interface {
	Analyze(ctx context.Context, docs []models.NewsDocument, indices []models.IndexQuote) (models.MarketSummary, error)
}

// Renderer produces the presentation markup.
type Renderer interface {
	Render(ctx context.Context, s models.MarketSummary) models.FormattedContent
}

// Translator produces one locale's rendering, or its fallback notice.
type Translator interface {
	Translate(ctx context.Context, locale models.Locale, content models.FormattedContent) (models.FormattedContent, error)
	Fallback(locale models.Locale) models.FormattedContent
}

// Sender delivers one locale's message.
type Sender interface {
	Send(ctx context.Context, locale models.Locale, html string) (int64, error)
}

// QuoteSource supplies current index levels. Optional; quote outages are
// tolerated because the summary can still be produced from news context.
type QuoteSource func() ([]models.IndexQuote, error)

// Deps wires the five stages into the driver.
type Deps struct {
	Search     Searcher
	Quotes     QuoteSource
	Analyst    Analyst
	Formatter  Renderer
	Translator Translator
	Sender     Sender
	Retry      *retry.Config
	Logger     *logrus.Logger
}

// Pipeline runs the five stages in fixed order and owns the run verdict.
// Transitions are strictly forward; Failed is reached only when search or
// analysis exhausts its retries.
type Pipeline struct {
	deps   Deps
	log    *logrus.Logger
	state  models.RunState
	report *models.RunReport
}

func New(deps Deps) *Pipeline {
	if deps.Retry == nil {
		deps.Retry = retry.DefaultConfig()
	}
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}
	return &Pipeline{
		deps:  deps,
		log:   deps.Logger,
		state: models.StateIdle,
	}
}

func (p *Pipeline) advance(next models.RunState) {
	p.log.WithFields(logrus.Fields{"from": p.state, "to": next}).Info("state transition")
	p.state = next
	p.report.State = next
}

func (p *Pipeline) recordStage(stage string, attempts int, started time.Time, degraded bool, err error) {
	sr := models.StageReport{
		Stage:      stage,
		Attempts:   attempts,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Degraded:   degraded,
	}
	if err != nil {
		sr.Error = err.Error()
	}
	p.report.Stages = append(p.report.Stages, sr)

	entry := p.log.WithFields(logrus.Fields{"stage": stage, "attempts": attempts, "degraded": degraded})
	if err != nil {
		entry.Errorf("stage failed: %v", err)
	} else {
		entry.Info("stage completed")
	}
}

// Run executes one full pass. The returned report is always populated, even
// on failure; the error mirrors report.State == Failed.
func (p *Pipeline) Run(ctx context.Context) (*models.RunReport, error) {
	p.report = &models.RunReport{StartedAt: time.Now(), State: models.StateIdle}
	defer func() { p.report.FinishedAt = time.Now() }()

	docs, err := p.runSearch(ctx)
	if err != nil {
		p.advance(models.StateFailed)
		return p.report, err
	}

	summary, err := p.runAnalysis(ctx, docs)
	if err != nil {
		p.advance(models.StateFailed)
		return p.report, err
	}

	content := p.runFormatting(ctx, summary)
	translations := p.runTranslation(ctx, content)
	p.runDistribution(ctx, translations)

	if len(p.report.FailedLocales) > 0 || anyDeliveryFailed(p.report.Deliveries) {
		p.advance(models.StatePartialFailure)
	} else {
		p.advance(models.StateDone)
	}
	return p.report, nil
}

func (p *Pipeline) runSearch(ctx context.Context) ([]models.NewsDocument, error) {
	p.advance(models.StateSearching)
	started := time.Now()

	var docs []models.NewsDocument
	attempts, err := retry.Do(ctx, p.deps.Retry, "search", func() error {
		var sErr error
		docs, sErr = p.deps.Search.Run(ctx)
		return sErr
	})
	p.recordStage("search", attempts, started, false, err)
	return docs, err
}

func (p *Pipeline) runAnalysis(ctx context.Context, docs []models.NewsDocument) (models.MarketSummary, error) {
	p.advance(models.StateAnalyzing)
	started := time.Now()

	indices := p.fetchQuotes(ctx)

	var summary models.MarketSummary
	attempts, err := retry.Do(ctx, p.deps.Retry, "analysis", func() error {
		var aErr error
		summary, aErr = p.deps.Analyst.Analyze(ctx, docs, indices)
		return aErr
	})
	p.recordStage("analysis", attempts, started, summary.Degraded, err)
	return summary, err
}

func (p *Pipeline) fetchQuotes(ctx context.Context) []models.IndexQuote {
	if p.deps.Quotes == nil {
		return nil
	}

	var indices []models.IndexQuote
	_, err := retry.Do(ctx, p.deps.Retry, "index quotes", func() error {
		var qErr error
		indices, qErr = p.deps.Quotes()
		return qErr
	})
	if err != nil {
		p.log.Warnf("index quotes unavailable, analysis will rely on news context: %v", err)
		return nil
	}
	return indices
}

func (p *Pipeline) runFormatting(ctx context.Context, summary models.MarketSummary) models.FormattedContent {
	p.advance(models.StateFormatting)
	started := time.Now()

	content := p.deps.Formatter.Render(ctx, summary)
	p.recordStage("formatting", 1, started, false, nil)
	return content
}

func (p *Pipeline) runTranslation(ctx context.Context, content models.FormattedContent) models.TranslatedContent {
	p.advance(models.StateTranslating)

	translations := models.TranslatedContent{models.LocaleEnglish: content}

	for _, locale := range models.TargetLocales() {
		started := time.Now()

		var translated models.FormattedContent
		attempts, err := retry.Do(ctx, p.deps.Retry, "translation "+string(locale), func() error {
			var tErr error
			translated, tErr = p.deps.Translator.Translate(ctx, locale, content)
			return tErr
		})
		if err != nil {
			// Isolated per locale: substitute the fallback notice and move on.
			p.report.FailedLocales = append(p.report.FailedLocales, locale)
			translated = p.deps.Translator.Fallback(locale)
		}
		p.recordStage("translation "+string(locale), attempts, started, translated.Degraded, err)
		translations[locale] = translated
	}

	return translations
}

func (p *Pipeline) runDistribution(ctx context.Context, translations models.TranslatedContent) {
	p.advance(models.StateDistributing)

	order := append([]models.Locale{models.LocaleEnglish}, models.TargetLocales()...)
	for _, locale := range order {
		content, ok := translations[locale]
		if !ok {
			continue
		}
		started := time.Now()

		var msgID int64
		attempts, err := retry.Do(ctx, p.deps.Retry, "delivery "+string(locale), func() error {
			var sErr error
			msgID, sErr = p.deps.Sender.Send(ctx, locale, content.HTMLBody)
			return sErr
		})
		p.recordStage("delivery "+string(locale), attempts, started, content.Degraded, err)

		result := models.DeliveryResult{Locale: locale, Success: err == nil, MessageID: msgID}
		if err != nil {
			result.Error = err.Error()
		}
		p.report.Deliveries = append(p.report.Deliveries, result)
	}
}

func anyDeliveryFailed(results []models.DeliveryResult) bool {
	for _, r := range results {
		if !r.Success {
			return true
		}
	}
	return false
}
