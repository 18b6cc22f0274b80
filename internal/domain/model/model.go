// Package model contains the demo dataset entities passed between layers.
// All values are sample data; nothing here is mutated after load.
package model

// ConflictType classifies how many department checks disagree on a supplier.
type ConflictType string

// Conflict types used by cases and events.
const (
	ConflictSingle ConflictType = "单一冲突"
	ConflictDual   ConflictType = "双重冲突"
	ConflictTriple ConflictType = "三重冲突"
)

// Supplier is the supplier under qualification review.
type Supplier struct {
	ID            string `yaml:"id" json:"id"`
	Name          string `yaml:"name" json:"name"`
	Category      string `yaml:"category" json:"category"`
	Qualification string `yaml:"qualification" json:"qualification"`
	// Price is the quoted unit price in yuan.
	Price         float64 `yaml:"price" json:"price"`
	DeliveryScore int     `yaml:"delivery_score" json:"delivery_score"`
}

// ConflictEvent is a detected disagreement about a supplier.
type ConflictEvent struct {
	EventID      string       `yaml:"event_id" json:"event_id"`
	SupplierID   string       `yaml:"supplier_id" json:"supplier_id"`
	ConflictType ConflictType `yaml:"conflict_type" json:"conflict_type"`
	Status       string       `yaml:"status" json:"status"`
}

// ArbitrationResult is the resolution of a conflict event.
type ArbitrationResult struct {
	EventID    string   `yaml:"event_id" json:"event_id"`
	Resolution string   `yaml:"resolution" json:"resolution"`
	Conditions []string `yaml:"conditions" json:"conditions"`
}

// CaseRecord is one row of the case library.
type CaseRecord struct {
	CaseID        string       `yaml:"case_id" json:"case_id"`
	ConflictType  ConflictType `yaml:"conflict_type" json:"conflict_type"`
	Disposition   string       `yaml:"disposition" json:"disposition"`
	DurationHours int          `yaml:"duration_hours" json:"duration_hours"`
	Outcome       string       `yaml:"outcome" json:"outcome"`
}

// Department is one column of the conflict simulation page.
type Department struct {
	Key    string `yaml:"key" json:"key"`
	Title  string `yaml:"title" json:"title"`
	Detail string `yaml:"detail" json:"detail"`
}

// Indicator is one bar group of the department comparison chart. A nil
// Threshold means the threshold comes from the session's risk threshold.
type Indicator struct {
	Name      string `yaml:"name" json:"name"`
	Current   int    `yaml:"current" json:"current"`
	Threshold *int   `yaml:"threshold" json:"threshold,omitempty"`
}

// ConflictChannel maps a conflict type to its handling channel.
type ConflictChannel struct {
	ConflictType string `yaml:"conflict_type" json:"conflict_type"`
	Channel      string `yaml:"channel" json:"channel"`
	TimeLimit    string `yaml:"time_limit" json:"time_limit"`
}

// TimelineStage is one bar of the arbitration meeting timeline.
type TimelineStage struct {
	Stage  string `yaml:"stage" json:"stage"`
	Status string `yaml:"status" json:"status"`
	Hours  int    `yaml:"hours" json:"hours"`
	Owner  string `yaml:"owner" json:"owner"`
	Start  int    `yaml:"start" json:"start"`
	End    int    `yaml:"end" json:"end"`
}

// Contact is one row of the contact roster.
type Contact struct {
	Role     string `yaml:"role" json:"role"`
	Name     string `yaml:"name" json:"name"`
	Position string `yaml:"position" json:"position"`
	Email    string `yaml:"email" json:"email"`
}

// Stat is a single-value metric with an optional delta and help text.
type Stat struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
	Delta string `yaml:"delta,omitempty" json:"delta,omitempty"`
	// Inverse renders the delta in the warning colour.
	Inverse bool   `yaml:"inverse,omitempty" json:"inverse,omitempty"`
	Help    string `yaml:"help,omitempty" json:"help,omitempty"`
}

// Node is a system in the integration topology.
type Node struct {
	Name string `yaml:"name" json:"name"`
	Kind string `yaml:"kind" json:"kind"`
	X    int    `yaml:"x" json:"x"`
	Y    int    `yaml:"y" json:"y"`
	Size int    `yaml:"size" json:"size"`
}

// Edge connects two topology nodes by name.
type Edge struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
	Kind string `yaml:"kind" json:"kind"`
}

// DataFlow is one row of the data-flow status table.
type DataFlow struct {
	Channel  string `yaml:"channel" json:"channel"`
	DataType string `yaml:"data_type" json:"data_type"`
	Status   string `yaml:"status" json:"status"`
	Latency  string `yaml:"latency" json:"latency"`
}

// Task is one row of the execution tracking matrix.
type Task struct {
	Task       string `yaml:"task" json:"task"`
	Executor   string `yaml:"executor" json:"executor"`
	Supervisor string `yaml:"supervisor" json:"supervisor"`
	Acceptance string `yaml:"acceptance" json:"acceptance"`
}

// Detection summarizes the conflict currently detected.
type Detection struct {
	ConflictType string `yaml:"conflict_type" json:"conflict_type"`
	Flow         string `yaml:"flow" json:"flow"`
	TimeLimit    string `yaml:"time_limit" json:"time_limit"`
}

// Workflow holds the static content of the arbitration workflow page.
type Workflow struct {
	Matrix            []ConflictChannel `yaml:"matrix" json:"matrix"`
	Detection         Detection         `yaml:"detection" json:"detection"`
	Timeline          []TimelineStage   `yaml:"timeline" json:"timeline"`
	StatusColors      map[string]string `yaml:"status_colors" json:"status_colors"`
	Contacts          []Contact         `yaml:"contacts" json:"contacts"`
	External          []Stat            `yaml:"external" json:"external"`
	Controls          []Stat            `yaml:"controls" json:"controls"`
	VoteOptions       []string          `yaml:"vote_options" json:"vote_options"`
	Consensus         int               `yaml:"consensus" json:"consensus"`
	ConsensusRequired int               `yaml:"consensus_required" json:"consensus_required"`
	Nodes             []Node            `yaml:"nodes" json:"nodes"`
	Edges             []Edge            `yaml:"edges" json:"edges"`
	Flows             []DataFlow        `yaml:"flows" json:"flows"`
	Tasks             []Task            `yaml:"tasks" json:"tasks"`
	HighlightExecutor string            `yaml:"highlight_executor" json:"highlight_executor"`
	DelayedStatus     string            `yaml:"delayed_status" json:"delayed_status"`
}

// Dataset is the whole demo dataset.
type Dataset struct {
	Title        string              `yaml:"title" json:"title"`
	Caption      string              `yaml:"caption" json:"caption"`
	Suppliers    []Supplier          `yaml:"suppliers" json:"suppliers"`
	Conflicts    []ConflictEvent     `yaml:"conflicts" json:"conflicts"`
	Arbitrations []ArbitrationResult `yaml:"arbitrations" json:"arbitrations"`
	Departments  []Department        `yaml:"departments" json:"departments"`
	Indicators   []Indicator         `yaml:"indicators" json:"indicators"`
	Workflow     Workflow            `yaml:"workflow" json:"workflow"`
	Cases        []CaseRecord        `yaml:"cases" json:"cases"`
}

// Supplier returns the supplier under review (the first one).
func (d Dataset) Supplier() Supplier {
	if len(d.Suppliers) == 0 {
		return Supplier{}
	}
	return d.Suppliers[0]
}

// Department returns the department with key, if present.
func (d Dataset) Department(key string) (Department, bool) {
	for _, dep := range d.Departments {
		if dep.Key == key {
			return dep, true
		}
	}
	return Department{}, false
}
