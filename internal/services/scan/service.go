package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"vega/internal/adapters/ai"
	"vega/internal/adapters/providers"
	"vega/internal/domain/option"
	"vega/internal/domain/risk"
	"vega/internal/domain/selection"
	"vega/internal/domain/suggestion"
	"vega/internal/domain/symbol"
	"vega/internal/metrics"
	"vega/internal/tools/indicators"
	"vega/pkg/errors"
	"vega/pkg/logger"
)

// defaultIV is the volatility assumption when neither a chain nor enough
// bar history is available
const defaultIV = 0.25

// Config holds one scan pass's parameters
type Config struct {
	Symbols         []string
	Side            option.Type
	Cadence         symbol.Cadence
	MinBusinessDays int
	OTMPct          float64
	RiskFreeRate    float64
	BarHistory      int

	AccountSize    float64
	RiskPct        float64
	Strategy       risk.Strategy
	MaxContracts   int
	StopLossPct    float64
	TakeProfitMult float64

	Selection selection.Criteria

	// SymbolsPerSecond paces provider traffic across the symbol list.
	// Zero means no pacing.
	SymbolsPerSecond float64
}

// Result is the full decision output for one symbol
type Result struct {
	Symbol     string                 `json:"symbol"`
	Suggestion *suggestion.Suggestion `json:"suggestion"`
	Sizing     risk.SizingResult      `json:"sizing"`
	Plan       risk.ScalingPlan       `json:"plan"`
	Trend      *indicators.Snapshot   `json:"trend,omitempty"`
	Verdict    *ai.Verdict            `json:"verdict,omitempty"`
	Warnings   []string               `json:"warnings,omitempty"`
}

// Report aggregates one scan pass
type Report struct {
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Results    []Result          `json:"results"`
	Errors     map[string]string `json:"errors,omitempty"`
}

// Service runs the deterministic scan pipeline: quote, trend, suggestion,
// chain selection, sizing, scaling plan, then an optional advisory pass.
type Service struct {
	cfg     Config
	quotes  providers.QuoteProvider
	bars    providers.BarProvider
	chains  providers.ChainProvider
	builder *suggestion.Builder
	advisor *ai.Advisor
	limiter *rate.Limiter
	log     *logger.Logger
}

// NewService creates a scan service. Bars, chains and advisor are optional;
// the pipeline degrades with warnings when they are absent.
func NewService(
	cfg Config,
	quotes providers.QuoteProvider,
	bars providers.BarProvider,
	chains providers.ChainProvider,
	builder *suggestion.Builder,
	advisor *ai.Advisor,
) *Service {
	var limiter *rate.Limiter
	if cfg.SymbolsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.SymbolsPerSecond), 1)
	}
	return &Service{
		cfg:     cfg,
		quotes:  quotes,
		bars:    bars,
		chains:  chains,
		builder: builder,
		advisor: advisor,
		limiter: limiter,
		log:     logger.Get().With("component", "scan_service"),
	}
}

// Run scans every configured symbol sequentially, pacing provider traffic.
// Per-symbol failures land in the report instead of aborting the pass.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	if s.quotes == nil {
		return nil, errors.Wrap(errors.ErrNoProviders, "scan service has no quote provider")
	}

	report := &Report{
		StartedAt: time.Now(),
		Errors:    make(map[string]string),
	}

	s.log.Infof("starting scan of %d symbols, account size $%s",
		len(s.cfg.Symbols), humanize.Commaf(s.cfg.AccountSize))

	for _, sym := range s.cfg.Symbols {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil, errors.Wrap(err, "scan pacing interrupted")
			}
		}

		start := time.Now()
		result, err := s.ScanSymbol(ctx, sym)
		metrics.RecordScan(sym, time.Since(start), err)
		if err != nil {
			s.log.Errorf("scan failed for %s: %v", sym, err)
			report.Errors[sym] = classify(err).Error()
			continue
		}
		report.Results = append(report.Results, *result)
	}

	report.FinishedAt = time.Now()
	s.log.Infof("scan finished: %d results, %d errors in %s",
		len(report.Results), len(report.Errors), report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	return report, nil
}

// classify tags a per-symbol failure with its taxonomy code. Report consumers
// group failures by code instead of matching on message text.
func classify(err error) *errors.DomainError {
	code := "internal"
	switch {
	case errors.Is(err, errors.ErrUnsupportedSymbol):
		code = "unsupported_symbol"
	case errors.Is(err, errors.ErrUnsupportedDirection):
		code = "unsupported_direction"
	case errors.Is(err, errors.ErrInvalidExpiryOverride):
		code = "invalid_expiry_override"
	case errors.Is(err, errors.ErrRateLimitExceeded):
		code = "rate_limited"
	case errors.Is(err, errors.ErrNoProviders), errors.Is(err, errors.ErrProviderUnavailable):
		code = "provider_unavailable"
	case errors.Is(err, errors.ErrEmptyChain):
		code = "empty_chain"
	case errors.Is(err, errors.ErrNotFound):
		code = "not_found"
	case errors.Is(err, errors.ErrInvalidInput):
		code = "invalid_input"
	case errors.Is(err, errors.ErrTimeout):
		code = "timeout"
	}
	return errors.NewDomainError(code, "scan failed", err)
}

// ScanSymbol runs the full pipeline for one underlying
func (s *Service) ScanSymbol(ctx context.Context, sym string) (*Result, error) {
	result := &Result{Symbol: sym}

	quote, err := s.quotes.GetQuote(ctx, sym)
	if err != nil {
		return nil, errors.Wrapf(err, "quote for %s", sym)
	}

	iv := defaultIV
	trend, warn := s.trendContext(ctx, sym)
	if warn != "" {
		result.Warnings = append(result.Warnings, warn)
	}
	if trend != nil {
		result.Trend = trend
		if trend.RealizedVol > 0 {
			iv = trend.RealizedVol
		}
	}

	sugg, err := s.builder.Build(suggestion.Params{
		Symbol:          sym,
		Side:            s.cfg.Side,
		Direction:       "long",
		Spot:            quote.Price,
		IV:              iv,
		RiskFreeRate:    s.cfg.RiskFreeRate,
		OTMPct:          s.cfg.OTMPct,
		MinBusinessDays: s.cfg.MinBusinessDays,
		Cadence:         s.cfg.Cadence,
		StopLossPct:     s.cfg.StopLossPct,
		TakeProfitMult:  s.cfg.TakeProfitMult,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "build suggestion for %s", sym)
	}

	if warn := s.enrichFromChain(ctx, sugg); warn != "" {
		result.Warnings = append(result.Warnings, warn)
	}
	metrics.RecordSuggestion(sym, string(sugg.PricingSource))

	sizing := risk.ComputeQty(risk.SizingInput{
		AccountSize:  decimal.NewFromFloat(s.cfg.AccountSize),
		RiskPct:      decimal.NewFromFloat(s.cfg.RiskPct),
		Entry:        decimal.NewFromFloat(sugg.EntryPrice),
		Stop:         decimal.NewFromFloat(sugg.StopPrice),
		Multiplier:   sugg.Multiplier,
		MaxContracts: s.cfg.MaxContracts,
		Strategy:     s.cfg.Strategy,
	})
	if sizing.Quantity == 0 {
		result.Warnings = append(result.Warnings, "risk budget sizes position to zero contracts")
	}

	plan := risk.BuildPlan(risk.PlanInput{
		Quantity:   sizing.Quantity,
		Entry:      decimal.NewFromFloat(sugg.EntryPrice),
		TakeProfit: decimal.NewFromFloat(sugg.TargetPrice),
		Stop:       decimal.NewFromFloat(sugg.StopPrice),
	})

	result.Suggestion = sugg
	result.Sizing = sizing
	result.Plan = plan

	if s.advisor != nil && sizing.Quantity > 0 {
		start := time.Now()
		verdict, err := s.advisor.Review(ctx, sugg)
		action := ""
		if verdict != nil {
			action = verdict.Action
		}
		metrics.RecordAdvisorCall(action, time.Since(start), err)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("advisor unavailable: %v", err))
		} else {
			result.Verdict = verdict
		}
	}

	return result, nil
}

// trendContext computes indicator context from daily bars. Missing history
// degrades to a warning, never a scan failure.
func (s *Service) trendContext(ctx context.Context, sym string) (*indicators.Snapshot, string) {
	if s.bars == nil {
		return nil, "no bar provider, using default volatility"
	}
	limit := s.cfg.BarHistory
	if limit <= 0 {
		limit = 120
	}
	bars, err := s.bars.GetDailyBars(ctx, sym, limit)
	if err != nil {
		return nil, fmt.Sprintf("bar history unavailable: %v", err)
	}
	snap, err := indicators.Compute(providers.Closes(bars))
	if err != nil {
		return nil, fmt.Sprintf("trend context unavailable: %v", err)
	}
	return snap, ""
}

// enrichFromChain upgrades a theoretical suggestion with live chain data.
// Selection order: optimal weighted pick, then nearest strike, then the
// theoretical baseline stands.
func (s *Service) enrichFromChain(ctx context.Context, sugg *suggestion.Suggestion) string {
	if s.chains == nil {
		return ""
	}

	rows, err := s.chains.GetChain(ctx, sugg.Symbol, sugg.Expiry)
	if err != nil {
		return fmt.Sprintf("chain unavailable, keeping theoretical pricing: %v", err)
	}

	quotes, dropped := option.NormalizeChain(rows)
	if dropped > 0 {
		metrics.ChainRowsDropped.WithLabelValues(sugg.Symbol).Add(float64(dropped))
	}
	if len(quotes) == 0 {
		return "chain had no usable rows, keeping theoretical pricing"
	}

	if best := selection.SelectOptimal(quotes, sugg.Side, s.cfg.Selection); best != nil {
		sugg.ApplyChain(best)
		return ""
	}

	if nearest := selection.NearestStrike(quotes, sugg.Side, sugg.Strike); nearest != nil {
		sugg.ApplyNearest(nearest)
		return "no contract passed selection, fell back to nearest strike"
	}

	return "no chain contract matched the requested side, keeping theoretical pricing"
}
