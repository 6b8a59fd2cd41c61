package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/foliolabs/folio/internal/app"
	"github.com/foliolabs/folio/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func waitForOutcome(ctx context.Context, t *testing.T, svc *app.Service, id string) model.Outcome {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		out, err := svc.Outcome(ctx, id)
		if err == nil {
			return out
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("request %s never reached a terminal state", id)
	return model.Outcome{}
}

func TestServiceLifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given an unstarted service", t, func() {
		svc := app.New(app.WithCatalog(newFakeCatalog()))

		Convey("Then submissions are rejected until Start", func() {
			_, err := svc.Submit(ctx, "Dune", "Frank Herbert", "kay")
			So(err, ShouldEqual, app.ErrNotStarted)
		})

		Convey("Then Stop before Start is an error", func() {
			So(svc.Stop(ctx), ShouldEqual, app.ErrNotStarted)
		})
	})

	Convey("Given a service without a catalog", t, func() {
		svc := app.New()

		Convey("Then Start refuses", func() {
			So(svc.Start(ctx), ShouldEqual, app.ErrNoCatalog)
		})
	})
}

func TestServicePipeline(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started single-worker service", t, func() {
		f := newFakeCatalog()
		svc := app.New(
			app.WithCatalog(f),
			app.WithWorkerCount(1),
			app.WithQueueSize(8),
			app.WithResolverOptions(app.WithSettlePolicy(time.Millisecond, 1.0, 1)),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("Then an accepted request reaches a terminal outcome", func() {
			req, err := svc.Submit(ctx, "Dune", "Frank Herbert", "kay")
			So(err, ShouldBeNil)
			So(req.ID, ShouldNotBeEmpty)

			out := waitForOutcome(ctx, t, svc, req.ID)
			So(out.Status, ShouldEqual, model.StatusNotFound)
			So(out.Reason, ShouldEqual, model.FailureAuthorNotFound)
			So(out.CompletedAt.IsZero(), ShouldBeFalse)
		})

		Convey("Then blank titles are rejected", func() {
			_, err := svc.Submit(ctx, "   ", "Frank Herbert", "kay")
			So(err, ShouldEqual, app.ErrEmptyTitle)
		})

		Convey("Then finished requests appear in the recent listing", func() {
			req, err := svc.Submit(ctx, "Dune", "Frank Herbert", "kay")
			So(err, ShouldBeNil)
			waitForOutcome(ctx, t, svc, req.ID)

			recent, err := svc.Recent(ctx, 10)
			So(err, ShouldBeNil)
			So(len(recent), ShouldBeGreaterThanOrEqualTo, 1)
			So(recent[0].RequestID, ShouldEqual, req.ID)
		})

		Convey("Then stats expose the pipeline gauges", func() {
			stats := svc.Stats(ctx)
			So(stats, ShouldContainKey, "workers")
			So(stats["workers"], ShouldEqual, 1)
			So(stats, ShouldContainKey, "queue_depth")
			So(stats, ShouldContainKey, "inflight")
		})

		Convey("Then double Start is refused", func() {
			So(svc.Start(ctx), ShouldEqual, app.ErrAlreadyStarted)
		})
	})
}

func TestServiceDeduplication(t *testing.T) {
	ctx := context.Background()

	Convey("Given a worker stalled inside the backend", t, func() {
		f := newFakeCatalog()
		f.enterLookup = make(chan struct{}, 8)
		f.blockLookup = make(chan struct{})

		svc := app.New(
			app.WithCatalog(f),
			app.WithWorkerCount(1),
			app.WithQueueSize(1),
			app.WithResolverOptions(app.WithSettlePolicy(time.Millisecond, 1.0, 1)),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		req, err := svc.Submit(ctx, "Dune", "Frank Herbert", "kay")
		So(err, ShouldBeNil)

		// Wait until the worker holds the request inside the lookup.
		select {
		case <-f.enterLookup:
		case <-time.After(2 * time.Second):
			t.Fatal("worker never picked the request up")
		}

		Convey("Then the same pair is rejected while in flight", func() {
			_, err := svc.Submit(ctx, "DUNE", "frank herbert", "other")
			So(err, ShouldEqual, app.ErrDuplicateRequest)

			close(f.blockLookup)
			waitForOutcome(ctx, t, svc, req.ID)
		})

		Convey("Then a full queue applies backpressure", func() {
			_, err := svc.Submit(ctx, "Hyperion", "Dan Simmons", "kay")
			So(err, ShouldBeNil) // occupies the single queue slot

			_, err = svc.Submit(ctx, "Ubik", "Philip K. Dick", "kay")
			So(err, ShouldEqual, app.ErrQueueFull)

			close(f.blockLookup)
			waitForOutcome(ctx, t, svc, req.ID)
		})

		Convey("Then the pair frees up once resolution finishes", func() {
			close(f.blockLookup)
			waitForOutcome(ctx, t, svc, req.ID)

			deadline := time.Now().Add(5 * time.Second)
			for {
				_, err := svc.Submit(ctx, "Dune", "Frank Herbert", "again")
				if err == nil {
					break
				}
				if !errors.Is(err, app.ErrDuplicateRequest) {
					t.Fatalf("unexpected submit error: %v", err)
				}
				if time.Now().After(deadline) {
					t.Fatal("in-flight key was never released")
				}
				time.Sleep(10 * time.Millisecond)
			}
		})
	})
}
