// Package chart renders report aggregates as bar charts.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"

	"fintrack/internal/log"
	"fintrack/internal/report"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to plot")

// Format selects the image encoding.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// Options controls size, encoding and labelling of a rendered chart.
type Options struct {
	Width    int
	Height   int
	Format   Format
	Currency string // shown on the value axis, e.g. "EUR"
	Title    string
}

// DefaultOptions matches the dashboard size used for reports.
func DefaultOptions() Options {
	return Options{Width: 1200, Height: 600, Format: PNG, Currency: "EUR"}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Format == "" {
		o.Format = d.Format
	}
	return o
}

// ParseFormat accepts "png" or "svg".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case PNG, SVG:
		return Format(s), nil
	case "":
		return PNG, nil
	default:
		return "", fmt.Errorf("unknown chart format %q", s)
	}
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	if f == SVG {
		return "svg"
	}
	return "png"
}

// CategoryBars plots one bar per category, largest absolute total first.
func CategoryBars(totals []report.CategoryTotal, opts Options) ([]byte, error) {
	if len(totals) == 0 {
		return nil, ErrNoData
	}
	opts = opts.withDefaults()
	if opts.Title == "" {
		opts.Title = "Totals by category"
	}

	bars := make([]gochart.Value, 0, len(totals))
	for _, ct := range totals {
		v := ct.Total.InexactFloat64()
		bars = append(bars, gochart.Value{
			Label: ct.Category,
			Value: v,
			Style: barStyle(v),
		})
	}
	return renderBars(bars, opts)
}

// MonthlyBars plots one bar per month in the given order.
func MonthlyBars(months []report.MonthTotal, opts Options) ([]byte, error) {
	if len(months) == 0 {
		return nil, ErrNoData
	}
	opts = opts.withDefaults()
	if opts.Title == "" {
		opts.Title = "Net amount by month"
	}

	bars := make([]gochart.Value, 0, len(months))
	for _, mt := range months {
		v := mt.Total.InexactFloat64()
		bars = append(bars, gochart.Value{
			Label: mt.Month.String(),
			Value: v,
			Style: barStyle(v),
		})
	}
	return renderBars(bars, opts)
}

// barStyle draws incomes green and expenses red.
func barStyle(v float64) gochart.Style {
	color := gochart.ColorGreen
	if v < 0 {
		color = gochart.ColorRed
	}
	return gochart.Style{
		StrokeColor: color,
		FillColor:   color.WithAlpha(180),
		FontSize:    10,
		FontColor:   gochart.ColorBlack,
	}
}

func renderBars(bars []gochart.Value, opts Options) ([]byte, error) {
	lo, hi := 0.0, 0.0
	for _, b := range bars {
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}
	// go-chart refuses a zero-height range
	if lo == hi {
		hi = lo + 1
	}

	barWidth := (opts.Width - 100) / (2 * len(bars))
	if barWidth < 4 {
		barWidth = 4
	}
	if barWidth > 80 {
		barWidth = 80
	}

	currency := opts.Currency
	graph := gochart.BarChart{
		Title: opts.Title,
		TitleStyle: gochart.Style{
			FontSize:  14,
			FontColor: gochart.ColorBlack,
		},
		Width:        opts.Width,
		Height:       opts.Height,
		BarWidth:     barWidth,
		UseBaseValue: true,
		BaseValue:    0,
		Background: gochart.Style{
			Padding: gochart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: gochart.ColorWhite,
		},
		XAxis: gochart.Style{
			FontSize:  10,
			FontColor: gochart.ColorBlack,
		},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: func(v interface{}) string {
				f, _ := v.(float64)
				if currency == "" {
					return fmt.Sprintf("%.0f", f)
				}
				return fmt.Sprintf("%.0f %s", f, currency)
			},
			Style: gochart.Style{
				FontSize:  10,
				FontColor: gochart.ColorBlack,
			},
		},
		Bars: bars,
	}

	provider := gochart.PNG
	if opts.Format == SVG {
		provider = gochart.SVG
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(provider, buffer); err != nil {
		return nil, fmt.Errorf("render bar chart: %w", err)
	}
	slog.Default().Debug("Bar chart rendered",
		log.FieldComponent, log.ComponentChart,
		"title", opts.Title,
		"bars", len(bars),
		"bytes", buffer.Len())
	return buffer.Bytes(), nil
}
