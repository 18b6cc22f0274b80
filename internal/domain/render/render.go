// Package render turns the demo dataset and one session's inputs into view
// descriptors. It is the single view module for all three pages; the HTML
// and JSON surfaces both draw from it.
package render

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/okian/chainaudit/internal/domain/model"
	"github.com/okian/chainaudit/internal/domain/types"
)

// ErrUnknownPage is returned by SelectPage for a page outside the enum.
var ErrUnknownPage = errors.New("unknown page")

// palette is the colour cycle used for chart groups.
var palette = []string{"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A", "#19D3F3"}

// Renderer builds views from an immutable dataset. It is safe for concurrent use.
type Renderer struct {
	ds      model.Dataset
	printer *message.Printer
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLanguage selects the locale used for number grouping.
func WithLanguage(tag language.Tag) Option {
	return func(r *Renderer) {
		r.printer = message.NewPrinter(tag)
	}
}

// New creates a Renderer over ds.
func New(ds model.Dataset, opts ...Option) *Renderer {
	r := &Renderer{
		ds:      ds,
		printer: message.NewPrinter(language.SimplifiedChinese),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dataset returns the dataset the renderer draws from.
func (r *Renderer) Dataset() model.Dataset { return r.ds }

// SelectPage dispatches on the page of state and builds its view. Parameters
// are clamped into the slider domains first. The same state always yields
// the same view.
func (r *Renderer) SelectPage(state types.State) (View, error) {
	state.Parameters = state.Parameters.Clamped()

	var tabs []Tab
	var header string
	switch state.Page {
	case types.PageConflictSimulation:
		header, tabs = r.conflictSimulation(state.Parameters)
	case types.PageArbitrationWorkflow:
		header, tabs = r.arbitrationWorkflow(state.Vote)
	case types.PageCaseLibrary:
		header, tabs = r.caseLibrary(state.CaseFilter)
	default:
		return View{}, fmt.Errorf("%w: %q", ErrUnknownPage, state.Page)
	}

	return View{
		Page:       state.Page,
		Header:     header,
		Parameters: state.Parameters,
		Tabs:       tabs,
		Caption:    r.ds.Caption,
	}, nil
}

// yuan formats an amount in yuan with digit grouping, e.g. ¥15,800.
func (r *Renderer) yuan(v float64) string {
	return r.printer.Sprintf("¥%.0f", v)
}

// wan formats an amount in units of 10k yuan with one decimal, e.g. ¥14.2万.
func (r *Renderer) wan(v float64) string {
	return r.printer.Sprintf("¥%.1f万", v)
}

func (r *Renderer) percent(v float64) string {
	return r.printer.Sprintf("%.1f%%", v)
}

// colorFor assigns palette colours to groups in first-seen order.
type colorFor struct {
	seen  map[string]string
	order []LegendEntry
}

func newColorFor() *colorFor { return &colorFor{seen: make(map[string]string)} }

func (c *colorFor) get(group string) string {
	if col, ok := c.seen[group]; ok {
		return col
	}
	col := palette[len(c.order)%len(palette)]
	c.seen[group] = col
	c.order = append(c.order, LegendEntry{Name: group, Color: col})
	return col
}
