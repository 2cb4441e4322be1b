package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"PriceSentinel/internal/model"

	"github.com/shopspring/decimal"
)

// Composer turns an evaluation into a message for one instrument.
type Composer struct {
	Instrument string // display name, e.g. 黄金9999
	Unit       string // price unit, e.g. 元/克
}

// Compose builds the message for mode. It is not meant for ModeSuppressed.
func (c Composer) Compose(q model.Quote, sig model.Signal, mode model.MessageMode, now time.Time) model.Message {
	msg := model.Message{Mode: mode, SentAt: now}
	price := c.price(q.Current)

	switch mode {
	case model.ModeAlert:
		label := "📈 高抛信号"
		msg.Theme = model.ThemeSellRed
		if sig.Direction == model.DirectionBuy {
			label = "📉 低吸信号"
			msg.Theme = model.ThemeBuyGreen
		}
		msg.Title = fmt.Sprintf("%s (等级 %d): %s", label, sig.Level, price)
		msg.Headline = label + " " + strings.Repeat("⭐", sig.Level)
	case model.ModeSummary:
		msg.Theme = model.ThemeSummaryGold
		msg.Title = fmt.Sprintf("📋 收盘总结 | %s: %s", c.Instrument, price)
		msg.Headline = "📋 收盘总结"
	default:
		msg.Theme = model.ThemePulseBlue
		msg.Title = fmt.Sprintf("💓 定时播报 | %s: %s", c.Instrument, price)
		msg.Headline = "💓 定时播报"
	}

	msg.Fields = []model.Field{
		{Label: "当前价格", Value: price},
		{Label: "开盘价", Value: c.price(q.Open)},
		{Label: "今日最高", Value: c.price(q.High)},
		{Label: "今日最低", Value: c.price(q.Low)},
		{Label: "日内涨跌", Value: signedPercent(sig.DayChange)},
	}
	if sig.Triggered() {
		msg.Fields = append(msg.Fields,
			model.Field{Label: "触发变动", Value: signedPercent(sig.Rate)},
			model.Field{Label: "操作建议", Value: sig.Advice},
		)
	}
	msg.Fields = append(msg.Fields, model.Field{Label: "更新时间", Value: now.Format("2006-01-02 15:04:05")})
	return msg
}

func (c Composer) price(v decimal.Decimal) string {
	if c.Unit == "" {
		return v.String()
	}
	return v.String() + " " + c.Unit
}

func signedPercent(v decimal.Decimal) string {
	s := v.StringFixed(2) + "%"
	if v.IsPositive() {
		return "+" + s
	}
	return s
}

// RenderHTML renders msg as the bordered card used for PushPlus.
func RenderHTML(msg model.Message) string {
	color := msg.Theme.Color()
	var b strings.Builder
	fmt.Fprintf(&b, `<div style="border: 2px solid %s; padding: 15px; border-radius: 10px;">`, color)
	fmt.Fprintf(&b, `<h2 style="color: %s;">%s</h2>`, color, html.EscapeString(msg.Headline))
	for _, f := range msg.Fields {
		fmt.Fprintf(&b, "<p><b>%s：</b>%s</p>", html.EscapeString(f.Label), html.EscapeString(f.Value))
	}
	b.WriteString("</div>")
	return b.String()
}

// RenderText renders msg with the small HTML subset Telegram accepts.
func RenderText(msg model.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n\n", html.EscapeString(msg.Title))
	for _, f := range msg.Fields {
		fmt.Fprintf(&b, "%s: %s\n", html.EscapeString(f.Label), html.EscapeString(f.Value))
	}
	return b.String()
}
