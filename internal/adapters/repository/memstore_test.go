package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/chainaudit/internal/adapters/repository"
	"github.com/okian/chainaudit/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newStore(ctx context.Context, clock *fakeClock, opts ...repository.Option) *repository.MemoryStore {
	base := []repository.Option{
		repository.WithClock(clock.Now),
		repository.WithTTL(10 * time.Minute),
		repository.WithSweepInterval(time.Hour),
	}
	return repository.NewMemoryStore(ctx, append(base, opts...)...)
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	Convey("Given an empty session store", t, func() {
		ctx := context.Background()
		clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
		store := newStore(ctx, clock)
		defer func() { _ = store.Close() }()

		So(store.Count(ctx), ShouldEqual, 0)

		Convey("When a session is created", func() {
			sess, err := store.Create(ctx, types.DefaultState())
			So(err, ShouldBeNil)

			Convey("Then it should get a uuid and the default state", func() {
				So(sess.ID, ShouldHaveLength, 36)
				So(sess.State, ShouldResemble, types.DefaultState())
				So(store.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then Get should return a copy", func() {
				got, err := store.Get(ctx, sess.ID)
				So(err, ShouldBeNil)
				got.State.Page = types.PageCaseLibrary

				again, _ := store.Get(ctx, sess.ID)
				So(again.State.Page, ShouldEqual, types.PageConflictSimulation)
			})

			Convey("Then Update should change only that session", func() {
				other, _ := store.Create(ctx, types.DefaultState())
				updated, err := store.Update(ctx, sess.ID, func(s *types.State) {
					s.Parameters.RiskThreshold = 80
				})
				So(err, ShouldBeNil)
				So(updated.State.Parameters.RiskThreshold, ShouldEqual, 80)

				untouched, _ := store.Get(ctx, other.ID)
				So(untouched.State.Parameters.RiskThreshold, ShouldEqual, types.DefaultRiskThreshold)
			})

			Convey("Then Delete should remove it", func() {
				So(store.Delete(ctx, sess.ID), ShouldBeNil)
				_, err := store.Get(ctx, sess.ID)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(store.Delete(ctx, sess.ID), ShouldBeNil)
			})
		})

		Convey("When an unknown session is requested", func() {
			_, err := store.Get(ctx, "missing")
			_, uerr := store.Update(ctx, "missing", nil)

			Convey("Then ErrNotFound should be returned", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(errors.Is(uerr, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestMemoryStore_Expiry(t *testing.T) {
	Convey("Given a store with a ten minute idle TTL", t, func() {
		ctx := context.Background()
		clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
		store := newStore(ctx, clock)
		defer func() { _ = store.Close() }()

		idle, _ := store.Create(ctx, types.DefaultState())
		active, _ := store.Create(ctx, types.DefaultState())

		Convey("When one session keeps being used past the TTL", func() {
			clock.Advance(6 * time.Minute)
			_, err := store.Get(ctx, active.ID)
			So(err, ShouldBeNil)
			clock.Advance(6 * time.Minute)

			Convey("Then the idle one should no longer be readable", func() {
				_, err := store.Get(ctx, idle.ID)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				_, err = store.Get(ctx, active.ID)
				So(err, ShouldBeNil)
			})

			Convey("Then Sweep should remove only the idle one", func() {
				So(store.Sweep(ctx, clock.Now()), ShouldEqual, 1)
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When exactly the TTL has passed", func() {
			clock.Advance(10 * time.Minute)

			Convey("Then the session should still be live", func() {
				_, err := store.Get(ctx, idle.ID)
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestMemoryStore_Capacity(t *testing.T) {
	Convey("Given a store bounded to two sessions", t, func() {
		ctx := context.Background()
		clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
		n := 0
		store := newStore(ctx, clock,
			repository.WithMaxSessions(2),
			repository.WithIDGenerator(func() string {
				n++
				return fmt.Sprintf("s-%d", n)
			}),
		)
		defer func() { _ = store.Close() }()

		first, _ := store.Create(ctx, types.DefaultState())
		clock.Advance(time.Second)
		second, _ := store.Create(ctx, types.DefaultState())
		clock.Advance(time.Second)
		_, _ = store.Get(ctx, first.ID)

		Convey("When a third session is created", func() {
			third, err := store.Create(ctx, types.DefaultState())
			So(err, ShouldBeNil)

			Convey("Then the least recently seen session should be evicted", func() {
				So(store.Count(ctx), ShouldEqual, 2)
				_, err := store.Get(ctx, second.ID)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				_, err = store.Get(ctx, first.ID)
				So(err, ShouldBeNil)
				_, err = store.Get(ctx, third.ID)
				So(err, ShouldBeNil)
			})
		})

		Convey("When the generator yields an empty id", func() {
			broken := repository.NewMemoryStore(ctx,
				repository.WithIDGenerator(func() string { return "" }),
			)
			defer func() { _ = broken.Close() }()
			_, err := broken.Create(ctx, types.DefaultState())

			Convey("Then Create should fail", func() {
				So(errors.Is(err, repository.ErrInvalidID), ShouldBeTrue)
			})
		})
	})
}

func TestMemoryStore_Concurrent(t *testing.T) {
	Convey("Given many goroutines updating their own sessions", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		store := repository.NewMemoryStore(ctx)

		const workers = 32
		ids := make([]string, workers)
		for i := range ids {
			s, err := store.Create(ctx, types.DefaultState())
			So(err, ShouldBeNil)
			ids[i] = s.ID
		}

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				for j := 0; j <= i; j++ {
					_, _ = store.Update(ctx, ids[i], func(s *types.State) {
						s.Parameters.RiskThreshold = j
					})
				}
			}(i)
		}
		wg.Wait()

		Convey("Then every session should hold its own last value", func() {
			for i, id := range ids {
				s, err := store.Get(ctx, id)
				So(err, ShouldBeNil)
				So(s.State.Parameters.RiskThreshold, ShouldEqual, i)
			}
		})
	})
}
