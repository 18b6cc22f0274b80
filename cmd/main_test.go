package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/chainaudit/internal/config"
	"github.com/okian/chainaudit/pkg/logger"
)

func TestNewService(t *testing.T) {
	convey.Convey("Given configuration from the environment", t, func() {
		t.Setenv("CHAINAUDIT_MAX_SESSIONS", "7")
		t.Setenv("CHAINAUDIT_DEFAULT_RISK_THRESHOLD", "75")
		t.Setenv("CHAINAUDIT_NOTICE_DEDUPE_SIZE", "3")

		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the service is built from it", func() {
			svc := newService(cfg, logger.Nop())
			convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then the options are applied", func() {
				stats := svc.GetStats()
				convey.So(stats["maxSessions"], convey.ShouldEqual, 7)
				convey.So(stats["dedupeSize"], convey.ShouldEqual, 3)
				convey.So(svc.DefaultState().Parameters.RiskThreshold, convey.ShouldEqual, 75)
			})
		})
	})
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given the assembled routes", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.SecureCookie = true
		svc := newService(cfg, logger.Nop())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		handler, err := newHandler(ctx, cfg, svc, logger.Nop())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then every surface answers", func() {
			for _, path := range []string{
				"/",
				"/?page=case-library",
				"/api/v1/views/arbitration-workflow",
				"/api/v1/risk",
				"/static/style.css",
				"/api-docs",
				"/openapi.yaml",
				"/healthz",
				"/stats",
			} {
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then the session cookie follows secure_cookie", func() {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			cookies := rec.Result().Cookies()
			convey.So(len(cookies), convey.ShouldEqual, 1)
			convey.So(cookies[0].Secure, convey.ShouldBeTrue)
		})
	})
}

func TestRunInvalidConfig(t *testing.T) {
	convey.Convey("Given an out-of-range default risk threshold", t, func() {
		t.Setenv("CHAINAUDIT_DEFAULT_RISK_THRESHOLD", "500")

		convey.Convey("Then run fails before serving", func() {
			err := run(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "failed to load config")
		})
	})
}

func TestRunShutdown(t *testing.T) {
	convey.Convey("Given the run loop", t, func() {
		convey.Convey("When the context is cancelled", func() {
			t.Setenv("CHAINAUDIT_ADDR", "127.0.0.1:0")
			t.Setenv("CHAINAUDIT_LOG_LEVEL", "error")
			ctx, cancel := context.WithCancel(context.Background())

			done := make(chan error, 1)
			go func() { done <- run(ctx) }()
			time.Sleep(50 * time.Millisecond)
			cancel()

			convey.Convey("Then it shuts down cleanly", func() {
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(5 * time.Second):
					t.Fatal("run did not return after cancel")
				}
			})
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then a single update does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("Then the updater returns once its context is done", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("updater did not stop")
			}
		})
	})
}
