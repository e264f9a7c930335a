package publish

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/freethrow/internal/domain/model"
	"github.com/okian/freethrow/pkg/logger"
)

type fakeToken struct {
	err     error
	stalled bool
}

func (t *fakeToken) Wait() bool                     { return !t.stalled }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.stalled }
func (t *fakeToken) Error() error                   { return t.err }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if !t.stalled {
		close(ch)
	}
	return ch
}

type message struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeClient struct {
	sent         []message
	failOn       string
	stallOn      string
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	if topic == c.stallOn {
		return &fakeToken{stalled: true}
	}
	if topic == c.failOn {
		return &fakeToken{err: errors.New("not authorized")}
	}
	c.sent = append(c.sent, message{topic: topic, qos: qos, retained: retained, payload: payload.([]byte)})
	return &fakeToken{}
}

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func fixture() ([]model.TrialSummary, model.Groups) {
	made := model.TrialSummary{Number: 1, ParticipantID: "P0001", TrialID: "0001", Outcome: model.Made, Frames: 2,
		Deviation: map[model.Joint]model.Summary{model.Elbow: {Count: 2, Mean: model.Some(1), Spread: model.Some(0), Max: model.Some(1)}}}
	missed := model.TrialSummary{Number: 2, ParticipantID: "P0001", TrialID: "0002", Outcome: model.Missed, Frames: 0,
		Deviation: map[model.Joint]model.Summary{model.Elbow: {}}}
	return []model.TrialSummary{made, missed}, model.Groups{Made: []model.TrialSummary{made}, Missed: []model.TrialSummary{missed}}
}

func TestPublisher(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	ctx := context.Background()

	Convey("Given a publisher on a fake client", t, func() {
		client := &fakeClient{}
		p := New(client, "freethrow", WithQoS(0), WithRetained(false), WithTimeout(time.Second))
		summaries, groups := fixture()

		Convey("When a run is published", func() {
			err := p.Publish(ctx, "P0001", summaries, groups)

			Convey("Then every trial and the groups are sent in order", func() {
				So(err, ShouldBeNil)
				So(len(client.sent), ShouldEqual, 3)
				So(client.sent[0].topic, ShouldEqual, "freethrow/P0001/0001")
				So(client.sent[1].topic, ShouldEqual, "freethrow/P0001/0002")
				So(client.sent[2].topic, ShouldEqual, "freethrow/P0001/groups")
				So(client.sent[0].qos, ShouldEqual, 0)
				So(client.sent[0].retained, ShouldBeFalse)
			})

			Convey("Then missing statistics are encoded as null", func() {
				var decoded map[string]any
				So(json.Unmarshal(client.sent[1].payload, &decoded), ShouldBeNil)
				So(decoded["result"], ShouldEqual, "missed")
				elbow := decoded["deviation"].(map[string]any)["elbow"].(map[string]any)
				So(elbow["mean"], ShouldBeNil)
				So(elbow["count"], ShouldEqual, 0.0)
			})
		})

		Convey("When the broker rejects a trial", func() {
			client.failOn = "freethrow/P0001/0002"
			err := p.Publish(ctx, "P0001", summaries, groups)

			Convey("Then publishing stops with ErrPublish", func() {
				So(errors.Is(err, ErrPublish), ShouldBeTrue)
				So(len(client.sent), ShouldEqual, 1)
			})
		})

		Convey("When the broker never acknowledges", func() {
			client.stallOn = "freethrow/P0001/groups"
			err := p.Publish(ctx, "P0001", summaries, groups)

			Convey("Then the publish times out", func() {
				So(errors.Is(err, ErrTimeout), ShouldBeTrue)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			err := p.Publish(cctx, "P0001", summaries, groups)

			Convey("Then nothing is sent", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(client.sent, ShouldBeEmpty)
			})
		})

		Convey("When the publisher is closed", func() {
			p.Close()

			Convey("Then the client is disconnected", func() {
				So(client.disconnected, ShouldBeTrue)
			})
		})
	})
}
