package site

import (
	"fmt"
	"html/template"
	"io"

	"github.com/okian/chainaudit/internal/domain/render"
	"github.com/okian/chainaudit/internal/domain/types"
)

// NavItem is one entry of the page selector.
type NavItem struct {
	ID     types.Page
	Label  string
	Active bool
}

// Sliders carries the slider domains into the template.
type Sliders struct {
	MinBasePrice     float64
	MaxBasePrice     float64
	MinRiskThreshold int
	MaxRiskThreshold int
}

// Page is everything the dashboard template needs.
type Page struct {
	Title   string
	View    render.View
	State   types.State
	Nav     []NavItem
	Sliders Sliders
	Flash   string
}

// NewPage assembles the template data for one rendered view.
func NewPage(title string, v render.View, st types.State, flash string) Page {
	nav := make([]NavItem, len(types.Pages))
	for i, p := range types.Pages {
		nav[i] = NavItem{ID: p, Label: p.Label(), Active: p == st.Page}
	}
	return Page{
		Title: title,
		View:  v,
		State: st,
		Nav:   nav,
		Sliders: Sliders{
			MinBasePrice:     types.MinBasePrice,
			MaxBasePrice:     types.MaxBasePrice,
			MinRiskThreshold: types.MinRiskThreshold,
			MaxRiskThreshold: types.MaxRiskThreshold,
		},
		Flash: flash,
	}
}

// Site renders dashboard pages from the embedded templates.
type Site struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Site, error) {
	tmpl, err := template.New("site").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	return &Site{tmpl: tmpl}, nil
}

// Render writes the dashboard for p to w.
func (s *Site) Render(w io.Writer, p Page) error {
	if err := s.tmpl.ExecuteTemplate(w, "dashboard", p); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	return nil
}

type panelCtx struct {
	Panel render.Panel
	Page  types.Page
}

type controlCtx struct {
	Control render.Control
	Page    types.Page
}

var funcs = template.FuncMap{
	"chart": ChartSVG,
	"panelOf": func(p render.Panel, page types.Page) panelCtx {
		return panelCtx{Panel: p, Page: page}
	},
	"controlOf": func(c render.Control, page types.Page) controlCtx {
		return controlCtx{Control: c, Page: page}
	},
	"flex": func(widths []int, i int) int {
		if i < len(widths) && widths[i] > 0 {
			return widths[i]
		}
		return 1
	},
	"pct": func(v float64) int {
		switch {
		case v <= 0:
			return 0
		case v >= 1:
			return 100
		}
		return int(v*100 + 0.5)
	},
	"colspan": func(t render.Table) int {
		if t.Index {
			return len(t.Columns) + 1
		}
		return len(t.Columns)
	},
}
