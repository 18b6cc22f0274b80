package render

import (
	"strconv"
	"strings"

	"github.com/okian/chainaudit/internal/domain/model"
	"github.com/okian/chainaudit/internal/domain/scenario"
	"github.com/okian/chainaudit/internal/domain/types"
)

const (
	seriesCurrent   = "当前值"
	seriesThreshold = "阈值"
)

func (r *Renderer) conflictSimulation(p types.Parameters) (string, []Tab) {
	supplier := r.ds.Supplier()
	a := scenario.Assess(supplier, p)

	procurement, _ := r.ds.Department("procurement")
	legal, _ := r.ds.Department("legal")
	finance, _ := r.ds.Department("finance")

	panels := []Panel{
		{
			Title: orDefault(procurement.Title, "采购部门"),
			Metrics: []Metric{{
				Label: "交付能力评分",
				Value: strconv.Itoa(supplier.DeliveryScore) + "/100",
				Delta: "推荐等级" + strings.TrimSuffix(supplier.Qualification, "级"),
			}},
			Progress: &Progress{Value: float64(supplier.DeliveryScore) / 100},
			Details:  []Detail{{Summary: "查看审核逻辑", Body: procurement.Detail}},
		},
		{
			Title: orDefault(legal.Title, "法务部门"),
			Metrics: []Metric{{
				Label:   "风险评级",
				Value:   a.Risk.Label(),
				Delta:   "1条关联诉讼",
				Inverse: true,
			}},
			Details: []Detail{{Summary: "查看风险详情", Body: legal.Detail}},
		},
		{
			Title: orDefault(finance.Title, "财务部门"),
			Metrics: []Metric{{
				Label:   "价格偏离度",
				Value:   r.percent(a.Deviation),
				Delta:   a.Flag.Label(),
				Inverse: a.Flag.Inverse(),
			}},
			Details: []Detail{{
				Summary: "成本分析",
				Body: strings.Join([]string{
					"市场基准价：" + r.wan(p.BasePrice),
					"当前报价：" + r.wan(a.CurrentPrice),
					"允许浮动：±5%",
				}, "\n"),
			}},
		},
	}

	return "🔍 供应商资质审核冲突模拟", []Tab{{
		ID: "main",
		Sections: []Section{
			{Title: "供应商概览", Panels: []Panel{r.supplierOverview(supplier)}},
			{Panels: panels},
			{Title: "动态冲突分析", Panels: []Panel{{Charts: []Chart{r.indicatorChart(p.RiskThreshold)}}}},
		},
	}}
}

func (r *Renderer) supplierOverview(s model.Supplier) Panel {
	facts := []Fact{
		{Key: "供应商", Value: s.Name + "（" + s.ID + "）"},
		{Key: "品类", Value: s.Category},
		{Key: "资质等级", Value: s.Qualification},
		{Key: "报价", Value: r.yuan(s.Price)},
	}
	for _, c := range r.ds.Conflicts {
		if c.SupplierID != s.ID {
			continue
		}
		facts = append(facts,
			Fact{Key: "冲突事件", Value: c.EventID + " · " + string(c.ConflictType) + " · " + c.Status},
		)
		for _, arb := range r.ds.Arbitrations {
			if arb.EventID == c.EventID {
				facts = append(facts, Fact{
					Key:   "仲裁结果",
					Value: arb.Resolution + "（" + strings.Join(arb.Conditions, "；") + "）",
				})
			}
		}
	}
	return Panel{Facts: facts}
}

func (r *Renderer) indicatorChart(riskThreshold int) Chart {
	cats := make([]string, len(r.ds.Indicators))
	cur := make([]float64, len(r.ds.Indicators))
	thr := make([]float64, len(r.ds.Indicators))
	for i, ind := range r.ds.Indicators {
		cats[i] = ind.Name
		cur[i] = float64(ind.Current)
		if ind.Threshold != nil {
			thr[i] = float64(*ind.Threshold)
		} else {
			thr[i] = float64(riskThreshold)
		}
	}
	return Chart{
		Kind:       ChartBar,
		Title:      "部门指标对比分析",
		XLabel:     "指标",
		Categories: cats,
		Series: []Series{
			{Name: seriesCurrent, Values: cur, Color: palette[0]},
			{Name: seriesThreshold, Values: thr, Color: palette[1]},
		},
		Legend: []LegendEntry{
			{Name: seriesCurrent, Color: palette[0]},
			{Name: seriesThreshold, Color: palette[1]},
		},
	}
}

func (r *Renderer) arbitrationWorkflow(vote types.VoteOption) (string, []Tab) {
	wf := r.ds.Workflow
	return "⚙️ 三阶治理工作流演示", []Tab{
		r.identificationTab(wf),
		r.meetingTab(wf, vote),
		r.integrationTab(wf),
		r.trackingTab(wf),
	}
}

func (r *Renderer) identificationTab(wf model.Workflow) Tab {
	rows := make([][]Cell, len(wf.Matrix))
	for i, m := range wf.Matrix {
		rows[i] = []Cell{{Text: m.ConflictType}, {Text: m.Channel}, {Text: m.TimeLimit}}
	}
	highlightMax(rows)

	return Tab{
		ID:    "identification",
		Title: "冲突识别",
		Sections: []Section{{
			Title: "阶段1：冲突分类矩阵",
			Panels: []Panel{{
				Tables: []Table{{Columns: []string{"冲突类型", "处理通道", "时限"}, Rows: rows, Index: true}},
			}, {
				Title: "当前冲突检测",
				Facts: []Fact{
					{Key: "冲突类型", Value: wf.Detection.ConflictType},
					{Key: "触发流程", Value: wf.Detection.Flow},
					{Key: "处理时限", Value: wf.Detection.TimeLimit},
				},
			}},
		}},
	}
}

func (r *Renderer) meetingTab(wf model.Workflow, vote types.VoteOption) Tab {
	bars := make([]Bar, len(wf.Timeline))
	for i, s := range wf.Timeline {
		bars[i] = Bar{
			Label: s.Stage,
			Start: float64(s.Start),
			End:   float64(s.End),
			Group: s.Status,
			Color: wf.StatusColors[s.Status],
		}
	}
	var legend []LegendEntry
	seen := make(map[string]bool)
	for _, s := range wf.Timeline {
		if !seen[s.Status] {
			seen[s.Status] = true
			legend = append(legend, LegendEntry{Name: s.Status, Color: wf.StatusColors[s.Status]})
		}
	}

	contacts := make([][]Cell, len(wf.Contacts))
	for i, c := range wf.Contacts {
		contacts[i] = []Cell{{Text: c.Role}, {Text: c.Name}, {Text: c.Position}, {Text: c.Email}}
	}

	if !vote.Valid() {
		vote = types.VoteApprove
	}
	options := make([]Choice, len(wf.VoteOptions))
	for i, o := range wf.VoteOptions {
		options[i] = Choice{Value: o, Selected: o == string(vote)}
	}

	return Tab{
		ID:    "meeting",
		Title: "仲裁会议",
		Sections: []Section{
			{
				Title:  "仲裁会议进程",
				Widths: []int{3, 1},
				Panels: []Panel{{
					Title: "会议进程甘特图",
					Charts: []Chart{{
						Kind:   ChartTimeline,
						Title:  "仲裁进度跟踪",
						XLabel: "处理时长（小时）",
						YLabel: "阶段",
						Bars:   bars,
						Legend: legend,
					}},
				}, {
					Title:  "联系人矩阵",
					Tables: []Table{{Columns: []string{"角色", "姓名", "职位", "联系方式"}, Rows: contacts}},
				}},
			},
			{
				Panels: []Panel{
					{Title: "外部环境指标", Metrics: statMetrics(wf.External)},
					{Title: "企业风控参数", Metrics: statMetrics(wf.Controls)},
					{
						Title:    "实时投票机制",
						Controls: []Control{{Kind: ControlRadio, Name: "vote", Label: "模拟表决选项", Options: options}},
						Progress: &Progress{
							Value: float64(wf.Consensus) / 100,
							Text:  "当前共识度：" + strconv.Itoa(wf.Consensus) + "%",
						},
						Note: "需达成>" + strconv.Itoa(wf.ConsensusRequired) + "%共识方可生效",
					},
				},
			},
		},
	}
}

func (r *Renderer) integrationTab(wf model.Workflow) Tab {
	colors := newColorFor()
	points := make([]Point, len(wf.Nodes))
	byName := make(map[string]model.Node, len(wf.Nodes))
	for i, n := range wf.Nodes {
		byName[n.Name] = n
		points[i] = Point{
			Label: n.Name,
			X:     float64(n.X),
			Y:     float64(n.Y),
			Size:  float64(n.Size),
			Group: n.Kind,
			Color: colors.get(n.Kind),
		}
	}
	segments := make([]Segment, 0, len(wf.Edges))
	for _, e := range wf.Edges {
		from, okFrom := byName[e.From]
		to, okTo := byName[e.To]
		if !okFrom || !okTo {
			continue
		}
		segments = append(segments, Segment{
			X0: float64(from.X), Y0: float64(from.Y),
			X1: float64(to.X), Y1: float64(to.Y),
			Label: e.Kind,
		})
	}

	flows := make([][]Cell, len(wf.Flows))
	for i, f := range wf.Flows {
		status := Cell{Text: f.Status}
		if f.Status == wf.DelayedStatus {
			status.Style = CellAlert
		}
		flows[i] = []Cell{{Text: f.Channel}, {Text: f.DataType}, status, {Text: f.Latency}}
	}

	return Tab{
		ID:    "integration",
		Title: "系统连携",
		Sections: []Section{
			{
				Title: "系统连携拓扑",
				Panels: []Panel{{Charts: []Chart{{
					Kind:     ChartScatter,
					Title:    "系统集成拓扑图",
					Points:   points,
					Segments: segments,
					Legend:   colors.order,
				}}}},
			},
			{
				Title: "实时数据流状态",
				Panels: []Panel{{
					Tables: []Table{{Columns: []string{"通道", "数据类型", "状态", "延迟"}, Rows: flows, Index: true}},
				}},
			},
		},
	}
}

func (r *Renderer) trackingTab(wf model.Workflow) Tab {
	rows := make([][]Cell, len(wf.Tasks))
	for i, t := range wf.Tasks {
		row := []Cell{{Text: t.Task}, {Text: t.Executor}, {Text: t.Supervisor}, {Text: t.Acceptance}}
		for j := range row {
			if row[j].Text == wf.HighlightExecutor {
				row[j].Style = CellAccent
			}
		}
		rows[i] = row
	}
	return Tab{
		ID:    "tracking",
		Title: "执行跟踪",
		Sections: []Section{{
			Title: "执行追踪矩阵",
			Panels: []Panel{{
				Tables: []Table{{Columns: []string{"任务", "执行方", "监督方", "验收标准"}, Rows: rows, Index: true}},
				Controls: []Control{{
					Kind:   ControlButton,
					Name:   "notice",
					Label:  "模拟完成通知",
					Action: "/notice",
					Help:   "点击发送完成通知邮件",
				}},
			}},
		}},
	}
}

func (r *Renderer) caseLibrary(filter types.CaseFilter) (string, []Tab) {
	filter = types.ParseCaseFilter(string(filter))
	if !filter.Valid() {
		filter = types.FilterAll
	}
	cases := scenario.FilterCases(r.ds.Cases, filter)

	options := make([]Choice, len(types.CaseFilters))
	for i, f := range types.CaseFilters {
		options[i] = Choice{Value: string(f), Selected: f == filter}
	}

	rows := make([][]Cell, len(cases))
	ids := make([]string, len(cases))
	hours := make([]float64, len(cases))
	for i, c := range cases {
		rows[i] = []Cell{
			{Text: c.CaseID},
			{Text: string(c.ConflictType)},
			{Text: c.Disposition},
			{Text: strconv.Itoa(c.DurationHours)},
			{Text: c.Outcome},
		}
		ids[i] = c.CaseID
		hours[i] = float64(c.DurationHours)
	}

	return "📚 实施案例库", []Tab{{
		ID: "main",
		Sections: []Section{
			{Panels: []Panel{{
				Controls: []Control{{Kind: ControlSelect, Name: "case_filter", Label: "筛选案例类型", Options: options}},
				Tables: []Table{{
					Columns: []string{"案例ID", "冲突类型", "处置方式", "处理时长", "保留结果"},
					Rows:    rows,
					Index:   true,
				}},
			}}},
			{Panels: []Panel{{
				Title:       "案例趋势分析",
				Collapsible: true,
				Charts: []Chart{{
					Kind:       ChartLine,
					Title:      "案例处理效率趋势",
					XLabel:     "案例ID",
					YLabel:     "处理时长",
					Categories: ids,
					Series:     []Series{{Name: "处理时长", Values: hours, Color: palette[0]}},
				}},
			}}},
		},
	}}
}

// highlightMax marks the maximum cell of every column, comparing text.
func highlightMax(rows [][]Cell) {
	if len(rows) == 0 {
		return
	}
	for col := range rows[0] {
		best := 0
		for i := 1; i < len(rows); i++ {
			if col < len(rows[i]) && rows[i][col].Text > rows[best][col].Text {
				best = i
			}
		}
		rows[best][col].Style = CellMax
	}
}

func statMetrics(stats []model.Stat) []Metric {
	out := make([]Metric, len(stats))
	for i, s := range stats {
		out[i] = Metric{Label: s.Label, Value: s.Value, Delta: s.Delta, Inverse: s.Inverse, Help: s.Help}
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
