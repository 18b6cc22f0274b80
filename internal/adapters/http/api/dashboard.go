package api

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/okian/chainaudit/internal/adapters/http/site"
	"github.com/okian/chainaudit/internal/adapters/repository"
	"github.com/okian/chainaudit/internal/domain/types"
	"github.com/okian/chainaudit/pkg/logger"
	"github.com/okian/chainaudit/pkg/metrics"
)

// SessionCookie names the cookie that carries the session id.
const SessionCookie = "chainaudit_session"

const paramNotice = "notice"

var noticeFlash = map[string]string{
	types.NoticeAccepted:  "✅ 完成通知已记录（演示模式，未发送邮件）",
	types.NoticeDuplicate: "ℹ️ 该任务的完成通知此前已记录",
}

// DashboardHandler serves the HTML dashboard of one visitor session.
type DashboardHandler struct {
	deps         Dependencies
	site         *site.Site
	log          logger.Logger
	secureCookie bool
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(deps Dependencies, pages *site.Site, log logger.Logger, secureCookie bool) *DashboardHandler {
	return &DashboardHandler{deps: deps, site: pages, log: log, secureCookie: secureCookie}
}

// HandleDashboard handles GET / requests. Query inputs update the session
// before the selected page is rendered.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.dashboard"
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	sess, err := h.session(w, r)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}

	q := r.URL.Query()
	var changed []string
	sess, err = h.deps.UpdateSession(ctx, sess.ID, func(st *types.State) {
		changed, _ = overlay(q, st, false)
	})
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	for _, input := range changed {
		metrics.RecordParameterUpdate(input)
	}

	view, err := h.deps.View(ctx, sess.State, "html")
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}

	var buf bytes.Buffer
	page := site.NewPage(h.deps.Dataset(ctx).Title, view, sess.State, noticeFlash[q.Get(paramNotice)])
	if err := h.site.Render(&buf, page); err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// HandleNotice handles POST /notice from the dashboard button and redirects
// back to the execution tracking tab.
func (h *DashboardHandler) HandleNotice(w http.ResponseWriter, r *http.Request) {
	const op = "api.dashboard_notice"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, WrapKind(op, ErrBadRequest, err).Error(), http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	sess, err := h.session(w, r)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	task := r.PostFormValue("task")
	if task == "" {
		task = types.AllTasks
	}
	ack, err := h.deps.Notice(ctx, sess.ID, task)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}

	target := url.URL{Path: "/", RawQuery: url.Values{
		paramPage:   {string(types.PageArbitrationWorkflow)},
		paramNotice: {ack.Status},
	}.Encode(), Fragment: "tracking"}
	http.Redirect(w, r, target.String(), http.StatusSeeOther)
}

// session resolves the cookie to a session, issuing a new cookie when the
// presented one is missing or expired.
func (h *DashboardHandler) session(w http.ResponseWriter, r *http.Request) (repository.Session, error) {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}
	sess, created, err := h.deps.Session(r.Context(), id)
	if err != nil {
		return repository.Session{}, err
	}
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   h.secureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess, nil
}

func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, _ := classify(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(r.Context(), "dashboard request failed", logger.Error(err))
		http.Error(w, http.StatusText(status), status)
		return
	}
	http.Error(w, err.Error(), status)
}
