package repository_test

import (
	"context"
	"testing"

	"github.com/foliolabs/folio/internal/adapters/repository"
	"github.com/foliolabs/folio/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an in-memory outcome store", t, func() {
		s := repository.NewMemStore()

		Convey("Then recorded outcomes are retrievable by request id", func() {
			So(s.Record(ctx, model.Outcome{RequestID: "a", Status: model.StatusResolved}), ShouldBeNil)

			got, err := s.Get(ctx, "a")
			So(err, ShouldBeNil)
			So(got.Status, ShouldEqual, model.StatusResolved)
			So(s.Count(ctx), ShouldEqual, 1)
		})

		Convey("Then an unknown id yields ErrNotFound", func() {
			_, err := s.Get(ctx, "ghost")
			So(err, ShouldEqual, repository.ErrNotFound)
		})

		Convey("Then re-recording replaces without growing the store", func() {
			So(s.Record(ctx, model.Outcome{RequestID: "a", Status: model.StatusError}), ShouldBeNil)
			So(s.Record(ctx, model.Outcome{RequestID: "a", Status: model.StatusResolved}), ShouldBeNil)

			got, err := s.Get(ctx, "a")
			So(err, ShouldBeNil)
			So(got.Status, ShouldEqual, model.StatusResolved)
			So(s.Count(ctx), ShouldEqual, 1)
		})

		Convey("Then Recent returns newest first", func() {
			So(s.Record(ctx, model.Outcome{RequestID: "1"}), ShouldBeNil)
			So(s.Record(ctx, model.Outcome{RequestID: "2"}), ShouldBeNil)
			So(s.Record(ctx, model.Outcome{RequestID: "3"}), ShouldBeNil)

			recent, err := s.Recent(ctx, 2)
			So(err, ShouldBeNil)
			So(len(recent), ShouldEqual, 2)
			So(recent[0].RequestID, ShouldEqual, "3")
			So(recent[1].RequestID, ShouldEqual, "2")
		})

		Convey("Then Recent rejects a non-positive limit", func() {
			_, err := s.Recent(ctx, 0)
			So(err, ShouldEqual, repository.ErrInvalidLimit)
		})
	})

	Convey("Given a store bounded to two outcomes", t, func() {
		s := repository.NewMemStore(repository.WithMaxEntries(2))

		Convey("Then overflow evicts the oldest outcome", func() {
			So(s.Record(ctx, model.Outcome{RequestID: "old"}), ShouldBeNil)
			So(s.Record(ctx, model.Outcome{RequestID: "mid"}), ShouldBeNil)
			So(s.Record(ctx, model.Outcome{RequestID: "new"}), ShouldBeNil)

			So(s.Count(ctx), ShouldEqual, 2)
			_, err := s.Get(ctx, "old")
			So(err, ShouldEqual, repository.ErrNotFound)
		})
	})
}
