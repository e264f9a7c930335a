package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/freethrow/internal/domain/model"
	"github.com/okian/freethrow/pkg/logger"
)

type recordingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *recordingLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, msg)
}

func (l *recordingLogger) Info(_ context.Context, msg string, _ ...logger.Field)  { l.record(msg) }
func (l *recordingLogger) Error(_ context.Context, msg string, _ ...logger.Field) { l.record(msg) }
func (l *recordingLogger) Debug(_ context.Context, msg string, _ ...logger.Field) { l.record(msg) }
func (l *recordingLogger) Warn(_ context.Context, msg string, _ ...logger.Field)  { l.record(msg) }
func (l *recordingLogger) Fatal(_ context.Context, msg string, _ ...logger.Field) { l.record(msg) }
func (l *recordingLogger) Named(string) logger.Logger                             { return l }

func TestSQLiteStoreOptions(t *testing.T) {
	Convey("Given a sqlite store opened with an explicit logger", t, func() {
		ctx := context.Background()
		rec := &recordingLogger{}
		var s *SQLiteStore
		var err error

		So(func() {
			s, err = OpenSQLite(ctx, ":memory:", WithLogger(rec), WithBusyTimeout(250))
		}, ShouldNotPanic)
		So(err, ShouldBeNil)
		defer func() { _ = s.Close() }()

		Convey("Then the options are applied", func() {
			So(s.busyTimeoutMs, ShouldEqual, 250)
			So(rec.msgs, ShouldContain, "sqlite store opened")
		})

		Convey("When a run is saved", func() {
			So(s.Save(ctx, testRun(time.Now().UTC(), summary(1, "0001", model.Made, 1.0))), ShouldBeNil)

			Convey("Then it logs through the supplied logger", func() {
				So(rec.msgs, ShouldContain, "run saved")
			})
		})
	})
}
