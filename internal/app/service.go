// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/chainaudit/internal/adapters/repository"
	"github.com/okian/chainaudit/internal/domain/dataset"
	"github.com/okian/chainaudit/internal/domain/dedupe"
	"github.com/okian/chainaudit/internal/domain/model"
	"github.com/okian/chainaudit/internal/domain/render"
	"github.com/okian/chainaudit/internal/domain/scenario"
	"github.com/okian/chainaudit/internal/domain/types"
	"github.com/okian/chainaudit/pkg/logger"
	"github.com/okian/chainaudit/pkg/metrics"
)

// noticeMessage is returned for every acknowledgement. No mail is sent.
const noticeMessage = "完成通知已记录（演示模式，未发送邮件）"

// Service implements the API dependencies for the dashboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	ds       model.Dataset
	renderer *render.Renderer
	sessions *repository.MemoryStore
	notices  dedupe.Deduper

	// Configuration
	datasetFile   string
	preloaded     *model.Dataset
	defaults      types.Parameters
	sessionTTL    time.Duration
	sweepInterval time.Duration
	maxSessions   int
	dedupeSize    int

	// State
	started   bool
	startedAt time.Time

	renders          atomic.Int64
	noticesAccepted  atomic.Int64
	noticesDuplicate atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDatasetFile replaces the embedded dataset with a YAML file.
func WithDatasetFile(path string) Option {
	return func(s *Service) {
		s.datasetFile = path
	}
}

// WithDataset uses ds instead of loading one. It is validated on Start.
func WithDataset(ds model.Dataset) Option {
	return func(s *Service) {
		s.preloaded = &ds
	}
}

// WithDefaultParameters sets the slider values of new sessions.
func WithDefaultParameters(p types.Parameters) Option {
	return func(s *Service) {
		s.defaults = p.Clamped()
	}
}

// WithSessionTTL sets how long an idle session is kept.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithSweepInterval sets the idle session sweep interval.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.sweepInterval = interval
		}
	}
}

// WithMaxSessions bounds the session store.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithNoticeDedupeSize sets the size of the notice idempotency set.
func WithNoticeDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		defaults:      types.DefaultParameters(),
		sessionTTL:    30 * time.Minute,
		sweepInterval: time.Minute,
		maxSessions:   10_000,
		dedupeSize:    10_000,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the dataset and starts the session store. The session
// sweeper runs until ctx is cancelled or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting dashboard service...")

	ds, source, err := s.loadDataset()
	if err != nil {
		return fmt.Errorf("load dataset from %s: %w", source, err)
	}
	s.ds = ds
	s.renderer = render.New(ds)
	s.sessions = repository.NewMemoryStore(ctx,
		repository.WithTTL(s.sessionTTL),
		repository.WithSweepInterval(s.sweepInterval),
		repository.WithMaxSessions(s.maxSessions),
		repository.WithLogger(s.logger.Named("sessions")),
	)
	s.notices = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "dashboard service started",
		logger.String("dataset", source),
		logger.Int("cases", len(ds.Cases)),
		logger.Int("maxSessions", s.maxSessions),
		logger.String("sessionTTL", s.sessionTTL.String()),
	)

	return nil
}

func (s *Service) loadDataset() (model.Dataset, string, error) {
	switch {
	case s.preloaded != nil:
		if err := dataset.Validate(*s.preloaded); err != nil {
			return model.Dataset{}, "option", err
		}
		return *s.preloaded, "option", nil
	case s.datasetFile != "":
		ds, err := dataset.Load(s.datasetFile)
		return ds, s.datasetFile, err
	default:
		ds, err := dataset.Load("")
		return ds, "embedded", err
	}
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping dashboard service...")

	if s.sessions != nil {
		_ = s.sessions.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "dashboard service stopped")
}

func (s *Service) running() (*render.Renderer, *repository.MemoryStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.renderer, s.sessions, nil
}

// Dataset returns the loaded dataset.
func (s *Service) Dataset(_ context.Context) model.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds
}

// DefaultState is the state new sessions start with.
func (s *Service) DefaultState() types.State {
	st := types.DefaultState()
	st.Parameters = s.defaults
	return st
}

// View renders state. surface labels the caller ("html" or "api") in metrics.
func (s *Service) View(ctx context.Context, state types.State, surface string) (render.View, error) {
	r, _, err := s.running()
	if err != nil {
		return render.View{}, err
	}

	start := time.Now()
	v, err := r.SelectPage(state)
	if err != nil {
		return render.View{}, err
	}
	metrics.RecordPageRender(string(state.Page), surface, float64(time.Since(start).Microseconds())/1000)
	s.renders.Add(1)

	if state.Page == types.PageCaseLibrary {
		metrics.RecordCaseFilterRows(len(scenario.FilterCases(r.Dataset().Cases, state.CaseFilter)))
	}
	s.logger.Debug(ctx, "rendered view",
		logger.String("page", string(state.Page)),
		logger.String("surface", surface),
	)
	return v, nil
}

// Session returns the session with id. An empty, unknown or expired id
// starts a fresh session; created reports whether that happened.
func (s *Service) Session(ctx context.Context, id string) (sess repository.Session, created bool, err error) {
	_, store, err := s.running()
	if err != nil {
		return repository.Session{}, false, err
	}
	if id != "" {
		sess, err = store.Get(ctx, id)
		if err == nil {
			return sess, false, nil
		}
	}
	sess, err = store.Create(ctx, s.DefaultState())
	if err != nil {
		return repository.Session{}, false, err
	}
	s.logger.Debug(ctx, "session created", logger.String("session_id", sess.ID))
	return sess, true, nil
}

// UpdateSession applies fn to the state of session id.
func (s *Service) UpdateSession(ctx context.Context, id string, fn func(*types.State)) (repository.Session, error) {
	_, store, err := s.running()
	if err != nil {
		return repository.Session{}, err
	}
	return store.Update(ctx, id, func(st *types.State) {
		fn(st)
		st.Parameters = st.Parameters.Clamped()
	})
}

// Cases returns the case rows matching filter, in dataset order.
func (s *Service) Cases(_ context.Context, filter types.CaseFilter) []model.CaseRecord {
	s.mu.RLock()
	cases := s.ds.Cases
	s.mu.RUnlock()

	out := scenario.FilterCases(cases, filter)
	metrics.RecordCaseFilterRows(len(out))
	return out
}

// Notice acknowledges a completion notice for task in session sessionID.
// Repeats for the same pair are reported as duplicates.
func (s *Service) Notice(ctx context.Context, sessionID, task string) (types.NoticeAck, error) {
	if _, _, err := s.running(); err != nil {
		return types.NoticeAck{}, err
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		return types.NoticeAck{}, fmt.Errorf("%w: %w", types.ErrInvalidSession, err)
	}
	if !s.knownTask(task) {
		return types.NoticeAck{}, fmt.Errorf("%w: %q", types.ErrUnknownTask, task)
	}

	ack := types.NoticeAck{Status: types.NoticeAccepted, Task: task, Message: noticeMessage}
	if s.notices.SeenAndRecord(ctx, dedupe.Key(sessionID, task)) {
		ack.Status = types.NoticeDuplicate
		ack.Duplicate = true
		s.noticesDuplicate.Add(1)
	} else {
		s.noticesAccepted.Add(1)
	}
	metrics.RecordNotice(ack.Status)
	s.logger.Info(ctx, "completion notice",
		logger.String("session_id", sessionID),
		logger.String("task", task),
		logger.Bool("duplicate", ack.Duplicate),
	)
	return ack, nil
}

func (s *Service) knownTask(task string) bool {
	if task == types.AllTasks {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.ds.Workflow.Tasks {
		if t.Task == task {
			return true
		}
	}
	return false
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"maxSessions": s.maxSessions,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		ctx := context.Background()
		active := s.sessions.Count(ctx)
		stats["activeSessions"] = active
		stats["renders"] = s.renders.Load()
		stats["noticesAccepted"] = s.noticesAccepted.Load()
		stats["noticesDuplicate"] = s.noticesDuplicate.Load()
		stats["noticeKeys"] = s.notices.Size()
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())

		metrics.UpdateActiveSessions(active)
	}

	return stats
}
