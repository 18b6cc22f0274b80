package site

import (
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/okian/chainaudit/internal/domain/render"
)

// Chart canvas geometry in SVG user units.
const (
	chartWidth   = 640
	chartHeight  = 320
	marginLeft   = 64
	marginRight  = 16
	marginTop    = 36
	marginBottom = 56
	yTicks       = 5
)

const (
	plotWidth  = chartWidth - marginLeft - marginRight
	plotHeight = chartHeight - marginTop - marginBottom
)

// ChartSVG draws c as an inline SVG element.
func ChartSVG(c render.Chart) template.HTML {
	var b svgBuilder
	b.open(c.Title)
	switch c.Kind {
	case render.ChartBar:
		b.bars(c)
	case render.ChartLine:
		b.line(c)
	case render.ChartTimeline:
		b.timeline(c)
	case render.ChartScatter:
		b.scatter(c)
	default:
		b.text(chartWidth/2, chartHeight/2, "middle", "unsupported chart")
	}
	b.legend(c.Legend)
	b.close()
	return template.HTML(b.String()) //nolint:gosec // every label is escaped by svgBuilder
}

type svgBuilder struct {
	strings.Builder
}

func (b *svgBuilder) open(title string) {
	fmt.Fprintf(b, `<svg class="chart" viewBox="0 0 %d %d" role="img" aria-label="%s" xmlns="http://www.w3.org/2000/svg">`,
		chartWidth, chartHeight, esc(title))
	if title != "" {
		fmt.Fprintf(b, `<text class="chart-title" x="%d" y="20" text-anchor="middle">%s</text>`, chartWidth/2, esc(title))
	}
}

func (b *svgBuilder) close() { b.WriteString(`</svg>`) }

func (b *svgBuilder) text(x, y float64, anchor, s string) {
	fmt.Fprintf(b, `<text x="%.1f" y="%.1f" text-anchor="%s">%s</text>`, x, y, anchor, esc(s))
}

func (b *svgBuilder) rect(x, y, w, h float64, fill, tip string) {
	fmt.Fprintf(b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%s</title></rect>`,
		x, y, w, h, esc(fill), esc(tip))
}

// yAxis draws horizontal grid lines from 0 to top and returns the scale.
func (b *svgBuilder) yAxis(top float64, label string) func(float64) float64 {
	scale := func(v float64) float64 {
		return marginTop + plotHeight - v/top*plotHeight
	}
	for i := 0; i <= yTicks; i++ {
		v := top * float64(i) / yTicks
		y := scale(v)
		fmt.Fprintf(b, `<line class="grid" x1="%d" y1="%.1f" x2="%d" y2="%.1f"/>`, marginLeft, y, chartWidth-marginRight, y)
		b.text(marginLeft-6, y+4, "end", formatTick(v))
	}
	if label != "" {
		fmt.Fprintf(b, `<text class="axis-label" transform="translate(14 %d) rotate(-90)" text-anchor="middle">%s</text>`,
			marginTop+plotHeight/2, esc(label))
	}
	return scale
}

func (b *svgBuilder) xLabel(label string) {
	if label != "" {
		b.text(marginLeft+plotWidth/2, chartHeight-8, "middle", label)
	}
}

func (b *svgBuilder) bars(c render.Chart) {
	top := niceCeil(maxSeries(c.Series))
	scale := b.yAxis(top, c.YLabel)
	n := len(c.Categories)
	if n == 0 || len(c.Series) == 0 {
		return
	}
	group := float64(plotWidth) / float64(n)
	barW := group * 0.8 / float64(len(c.Series))
	for i, cat := range c.Categories {
		x0 := marginLeft + group*float64(i) + group*0.1
		for j, s := range c.Series {
			if i >= len(s.Values) {
				continue
			}
			v := s.Values[i]
			y := scale(v)
			b.rect(x0+barW*float64(j), y, barW-2, marginTop+plotHeight-y, s.Color,
				fmt.Sprintf("%s %s: %s", cat, s.Name, formatTick(v)))
		}
		b.text(marginLeft+group*(float64(i)+0.5), marginTop+plotHeight+18, "middle", cat)
	}
	b.xLabel(c.XLabel)
}

func (b *svgBuilder) line(c render.Chart) {
	top := niceCeil(maxSeries(c.Series))
	scale := b.yAxis(top, c.YLabel)
	n := len(c.Categories)
	if n == 0 {
		b.text(marginLeft+plotWidth/2, marginTop+plotHeight/2, "middle", "无数据")
		b.xLabel(c.XLabel)
		return
	}
	step := float64(plotWidth) / float64(n)
	xAt := func(i int) float64 { return marginLeft + step*(float64(i)+0.5) }
	for _, s := range c.Series {
		pts := make([]string, 0, len(s.Values))
		for i, v := range s.Values {
			pts = append(pts, fmt.Sprintf("%.1f,%.1f", xAt(i), scale(v)))
		}
		fmt.Fprintf(b, `<polyline fill="none" stroke="%s" stroke-width="2" points="%s"/>`, esc(s.Color), strings.Join(pts, " "))
		for i, v := range s.Values {
			fmt.Fprintf(b, `<circle cx="%.1f" cy="%.1f" r="4" fill="%s"><title>%s: %s</title></circle>`,
				xAt(i), scale(v), esc(s.Color), esc(c.Categories[i]), esc(formatTick(v)))
		}
	}
	for i, cat := range c.Categories {
		b.text(xAt(i), marginTop+plotHeight+18, "middle", cat)
	}
	b.xLabel(c.XLabel)
}

func (b *svgBuilder) timeline(c render.Chart) {
	end := 0.0
	for _, bar := range c.Bars {
		end = math.Max(end, bar.End)
	}
	end = niceCeil(end)
	xAt := func(v float64) float64 { return marginLeft + v/end*plotWidth }
	for i := 0; i <= yTicks; i++ {
		v := end * float64(i) / yTicks
		x := xAt(v)
		fmt.Fprintf(b, `<line class="grid" x1="%.1f" y1="%d" x2="%.1f" y2="%d"/>`, x, marginTop, x, marginTop+plotHeight)
		b.text(x, marginTop+plotHeight+18, "middle", formatTick(v))
	}
	if len(c.Bars) == 0 {
		return
	}
	row := float64(plotHeight) / float64(len(c.Bars))
	for i, bar := range c.Bars {
		y := marginTop + row*float64(i)
		b.rect(xAt(bar.Start), y+row*0.15, xAt(bar.End)-xAt(bar.Start), row*0.7, bar.Color,
			fmt.Sprintf("%s · %s · %s-%s", bar.Label, bar.Group, formatTick(bar.Start), formatTick(bar.End)))
		b.text(marginLeft-6, y+row/2+4, "end", bar.Label)
	}
	b.xLabel(c.XLabel)
}

func (b *svgBuilder) scatter(c render.Chart) {
	if len(c.Points) == 0 {
		return
	}
	minX, maxX := c.Points[0].X, c.Points[0].X
	minY, maxY := c.Points[0].Y, c.Points[0].Y
	for _, p := range c.Points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	// one unit of padding keeps markers off the frame
	minX, maxX, minY, maxY = minX-1, maxX+1, minY-1, maxY+1
	xAt := func(v float64) float64 { return marginLeft + (v-minX)/(maxX-minX)*plotWidth }
	yAt := func(v float64) float64 { return marginTop + plotHeight - (v-minY)/(maxY-minY)*plotHeight }

	for _, s := range c.Segments {
		fmt.Fprintf(b, `<line class="edge" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"><title>%s</title></line>`,
			xAt(s.X0), yAt(s.Y0), xAt(s.X1), yAt(s.Y1), esc(s.Label))
		b.text((xAt(s.X0)+xAt(s.X1))/2, (yAt(s.Y0)+yAt(s.Y1))/2-4, "middle", s.Label)
	}
	for _, p := range c.Points {
		fmt.Fprintf(b, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"><title>%s (%s)</title></circle>`,
			xAt(p.X), yAt(p.Y), p.Size/2, esc(p.Color), esc(p.Label), esc(p.Group))
		b.text(xAt(p.X), yAt(p.Y)-p.Size/2-4, "middle", p.Label)
	}
}

func (b *svgBuilder) legend(entries []render.LegendEntry) {
	x := float64(marginLeft)
	y := float64(chartHeight - 30)
	for _, e := range entries {
		b.rect(x, y-9, 10, 10, e.Color, e.Name)
		b.text(x+14, y, "start", e.Name)
		x += 24 + float64(len([]rune(e.Name)))*13
	}
}

func maxSeries(series []render.Series) float64 {
	m := 0.0
	for _, s := range series {
		for _, v := range s.Values {
			m = math.Max(m, v)
		}
	}
	return m
}

// niceCeil rounds v up to a multiple of 10 (or 1 below 10), never below 1.
func niceCeil(v float64) float64 {
	switch {
	case v <= 1:
		return 1
	case v < 10:
		return math.Ceil(v)
	default:
		return math.Ceil(v/10) * 10
	}
}

func formatTick(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

func esc(s string) string { return template.HTMLEscapeString(s) }
