package render

import "github.com/okian/chainaudit/internal/domain/types"

// View is the full descriptor of one rendered page.
type View struct {
	Page       types.Page       `json:"page"`
	Header     string           `json:"header"`
	Parameters types.Parameters `json:"parameters"`
	Tabs       []Tab            `json:"tabs"`
	Caption    string           `json:"caption"`
}

// Tab groups sections. Pages without tabs have a single untitled tab.
type Tab struct {
	ID       string    `json:"id"`
	Title    string    `json:"title,omitempty"`
	Sections []Section `json:"sections"`
}

// Section is a horizontal band of panels laid out side by side.
type Section struct {
	Title  string  `json:"title,omitempty"`
	Panels []Panel `json:"panels"`
	// Widths are relative column widths; empty means equal.
	Widths []int `json:"widths,omitempty"`
}

// Panel is one column of a section.
type Panel struct {
	Title       string    `json:"title,omitempty"`
	Collapsible bool      `json:"collapsible,omitempty"`
	Metrics     []Metric  `json:"metrics,omitempty"`
	Progress    *Progress `json:"progress,omitempty"`
	Details     []Detail  `json:"details,omitempty"`
	Facts       []Fact    `json:"facts,omitempty"`
	Tables      []Table   `json:"tables,omitempty"`
	Charts      []Chart   `json:"charts,omitempty"`
	Controls    []Control `json:"controls,omitempty"`
	Note        string    `json:"note,omitempty"`
}

// Metric is a single value with an optional delta annotation.
type Metric struct {
	Label   string `json:"label"`
	Value   string `json:"value"`
	Delta   string `json:"delta,omitempty"`
	Inverse bool   `json:"inverse,omitempty"`
	Help    string `json:"help,omitempty"`
}

// Progress is a bar filled to Value in [0, 1].
type Progress struct {
	Value float64 `json:"value"`
	Text  string  `json:"text,omitempty"`
}

// Detail is an expandable preformatted block.
type Detail struct {
	Summary string `json:"summary"`
	Body    string `json:"body"`
}

// Fact is a key/value line of a summary block.
type Fact struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CellStyle marks a table cell for highlighting.
type CellStyle string

// Cell styles.
const (
	CellPlain  CellStyle = ""
	CellMax    CellStyle = "max"
	CellAlert  CellStyle = "alert"
	CellAccent CellStyle = "accent"
)

// Cell is one table cell.
type Cell struct {
	Text  string    `json:"text"`
	Style CellStyle `json:"style,omitempty"`
}

// Table is a header plus rows. Rows may be empty.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]Cell `json:"rows"`
	// Index shows a leading row-number column.
	Index bool `json:"index,omitempty"`
}

// ChartKind selects how a chart is drawn.
type ChartKind string

// Chart kinds.
const (
	ChartBar      ChartKind = "bar"
	ChartLine     ChartKind = "line"
	ChartTimeline ChartKind = "timeline"
	ChartScatter  ChartKind = "scatter"
)

// Chart describes a chart independently of how it is drawn.
type Chart struct {
	Kind   ChartKind `json:"kind"`
	Title  string    `json:"title"`
	XLabel string    `json:"x_label,omitempty"`
	YLabel string    `json:"y_label,omitempty"`

	// bar and line
	Categories []string `json:"categories,omitempty"`
	Series     []Series `json:"series,omitempty"`

	// timeline
	Bars []Bar `json:"bars,omitempty"`

	// scatter
	Points   []Point   `json:"points,omitempty"`
	Segments []Segment `json:"segments,omitempty"`

	// Legend maps a group name to its colour.
	Legend []LegendEntry `json:"legend,omitempty"`
}

// Series is one named list of values aligned with Categories.
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
	Color  string    `json:"color,omitempty"`
}

// Bar is one interval of a timeline chart.
type Bar struct {
	Label string  `json:"label"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Group string  `json:"group"`
	Color string  `json:"color"`
}

// Point is one marker of a scatter chart.
type Point struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
	Group string  `json:"group"`
	Color string  `json:"color"`
}

// Segment is a connector line between two scatter coordinates.
type Segment struct {
	X0    float64 `json:"x0"`
	Y0    float64 `json:"y0"`
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	Label string  `json:"label,omitempty"`
}

// LegendEntry names a colour.
type LegendEntry struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ControlKind selects the widget of a control.
type ControlKind string

// Control kinds.
const (
	ControlSelect ControlKind = "select"
	ControlRadio  ControlKind = "radio"
	ControlButton ControlKind = "button"
)

// Control is an interactive widget placed inside a page.
type Control struct {
	Kind    ControlKind `json:"kind"`
	Name    string      `json:"name"`
	Label   string      `json:"label"`
	Options []Choice    `json:"options,omitempty"`
	// Action is the form target of a button.
	Action string `json:"action,omitempty"`
	Help   string `json:"help,omitempty"`
}

// Choice is one option of a select or radio control.
type Choice struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected,omitempty"`
}
