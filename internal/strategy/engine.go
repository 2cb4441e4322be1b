package strategy

import (
	"fmt"

	"PriceSentinel/internal/calculator"
	"PriceSentinel/internal/model"

	"github.com/shopspring/decimal"
)

// Tier pairs a threshold boundary with a severity level and advice text.
type Tier struct {
	Boundary decimal.Decimal
	Level    int
	Advice   string
}

// TierTable holds tiers ordered from least to most severe. Level i+1 is
// assigned to the i-th boundary.
type TierTable []Tier

// Default advice texts for the three stock tiers.
var (
	DefaultBuyAdvice = []string{
		"👀 行情微调，建议关注",
		"✅ 深度回调，建议建仓",
		"🔥 极端超跌，建议重仓",
	}
	DefaultSellAdvice = []string{
		"📈 冲高受阻，注意止盈",
		"💰 获利丰厚，建议减仓",
		"🚀 涨幅过载，建议清仓",
	}
)

// NewBuyTable builds drawdown tiers. Boundaries must be negative and
// strictly decreasing, e.g. -1.0, -2.5, -4.0.
func NewBuyTable(boundaries []float64, advice []string) (TierTable, error) {
	if err := checkTable(boundaries, advice); err != nil {
		return nil, fmt.Errorf("buy tiers: %w", err)
	}
	for i, b := range boundaries {
		if b >= 0 {
			return nil, fmt.Errorf("buy tiers: boundary %v must be negative", b)
		}
		if i > 0 && b >= boundaries[i-1] {
			return nil, fmt.Errorf("buy tiers: boundary %v must be below %v", b, boundaries[i-1])
		}
	}
	return buildTable(boundaries, advice), nil
}

// NewSellTable builds rebound tiers. Boundaries must be positive and
// strictly increasing, e.g. 1.5, 3.0, 5.0.
func NewSellTable(boundaries []float64, advice []string) (TierTable, error) {
	if err := checkTable(boundaries, advice); err != nil {
		return nil, fmt.Errorf("sell tiers: %w", err)
	}
	for i, b := range boundaries {
		if b <= 0 {
			return nil, fmt.Errorf("sell tiers: boundary %v must be positive", b)
		}
		if i > 0 && b <= boundaries[i-1] {
			return nil, fmt.Errorf("sell tiers: boundary %v must be above %v", b, boundaries[i-1])
		}
	}
	return buildTable(boundaries, advice), nil
}

func checkTable(boundaries []float64, advice []string) error {
	if len(boundaries) == 0 {
		return fmt.Errorf("at least one boundary is required")
	}
	if len(advice) != len(boundaries) {
		return fmt.Errorf("%d boundaries but %d advice texts", len(boundaries), len(advice))
	}
	return nil
}

func buildTable(boundaries []float64, advice []string) TierTable {
	t := make(TierTable, len(boundaries))
	for i, b := range boundaries {
		t[i] = Tier{Boundary: decimal.NewFromFloat(b), Level: i + 1, Advice: advice[i]}
	}
	return t
}

// matchBuy scans from the most severe tier down.
func (t TierTable) matchBuy(drawdown decimal.Decimal) (Tier, bool) {
	for i := len(t) - 1; i >= 0; i-- {
		if drawdown.LessThanOrEqual(t[i].Boundary) {
			return t[i], true
		}
	}
	return Tier{}, false
}

func (t TierTable) matchSell(rebound decimal.Decimal) (Tier, bool) {
	for i := len(t) - 1; i >= 0; i-- {
		if rebound.GreaterThanOrEqual(t[i].Boundary) {
			return t[i], true
		}
	}
	return Tier{}, false
}

// Engine maps a quote's intraday deviation onto buy or sell tiers.
type Engine struct {
	Buy  TierTable
	Sell TierTable
	// Floor, when positive, raises a level 1 buy once the price is at or
	// below it and no tier matched.
	Floor decimal.Decimal
}

// NewEngine creates an Engine.
func NewEngine(buy, sell TierTable) *Engine {
	return &Engine{Buy: buy, Sell: sell}
}

// Evaluate computes the signal for q. Buy tiers are checked first; a buy
// match suppresses the sell scan. q must be normalized (positive high, low
// and open).
func (e *Engine) Evaluate(q model.Quote) (model.Signal, error) {
	drawdown, err := calculator.Drawdown(q.Current, q.High)
	if err != nil {
		return model.Signal{}, fmt.Errorf("drawdown: %w", err)
	}
	rebound, err := calculator.Rebound(q.Current, q.Low)
	if err != nil {
		return model.Signal{}, fmt.Errorf("rebound: %w", err)
	}
	dayChange, err := calculator.DayChange(q.Current, q.Open)
	if err != nil {
		return model.Signal{}, fmt.Errorf("day change: %w", err)
	}

	sig := model.Signal{
		Direction: model.DirectionNone,
		Drawdown:  drawdown,
		Rebound:   rebound,
		DayChange: dayChange,
	}

	if tier, ok := e.Buy.matchBuy(drawdown); ok {
		sig.Direction = model.DirectionBuy
		sig.Level = tier.Level
		sig.Rate = drawdown
		sig.Advice = tier.Advice
		return sig, nil
	}
	if tier, ok := e.Sell.matchSell(rebound); ok {
		sig.Direction = model.DirectionSell
		sig.Level = tier.Level
		sig.Rate = rebound
		sig.Advice = tier.Advice
		return sig, nil
	}
	if e.Floor.IsPositive() && q.Current.LessThanOrEqual(e.Floor) {
		sig.Direction = model.DirectionBuy
		sig.Level = 1
		sig.Rate = drawdown
		sig.Advice = fmt.Sprintf("🎯 触及目标价 %s", e.Floor)
	}
	return sig, nil
}
