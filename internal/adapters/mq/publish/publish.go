// Package publish sends trial summaries to an MQTT broker.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/okian/freethrow/internal/domain/model"
	"github.com/okian/freethrow/pkg/logger"
	"github.com/okian/freethrow/pkg/metrics"
)

// Client is the subset of mqtt.Client used by the Publisher.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Publisher writes each TrialSummary to <topic>/<participant>/<trial_id> and
// the outcome groups to <topic>/<participant>/groups.
type Publisher struct {
	client   Client
	topic    string
	qos      byte
	retained bool
	timeout  time.Duration
	logger   logger.Logger
}

// New wraps an already connected client.
func New(client Client, topic string, opts ...Option) *Publisher {
	p := &Publisher{
		client:   client,
		topic:    topic,
		qos:      1,
		retained: true,
		timeout:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("publish")
	}
	return p
}

// Dial connects to broker and returns a Publisher on top of the connection.
func Dial(broker, clientID, topic string, opts ...Option) (*Publisher, error) {
	p := New(nil, topic, opts...)

	copts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(p.timeout)
	client := mqtt.NewClient(copts)

	token := client.Connect()
	if !token.WaitTimeout(p.timeout) {
		return nil, fmt.Errorf("%w: connect %s", ErrTimeout, broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnect, broker, err)
	}
	p.client = client
	return p, nil
}

// TrialTopic returns the topic a trial summary is published to.
func (p *Publisher) TrialTopic(participantID, trialID string) string {
	return path.Join(p.topic, participantID, trialID)
}

// GroupsTopic returns the topic the outcome groups are published to.
func (p *Publisher) GroupsTopic(participantID string) string {
	return path.Join(p.topic, participantID, "groups")
}

// Publish sends every summary and then the groups. It stops at the first failure.
func (p *Publisher) Publish(ctx context.Context, participantID string, summaries []model.TrialSummary, groups model.Groups) error {
	for i := range summaries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.send(p.TrialTopic(participantID, summaries[i].TrialID), summaries[i]); err != nil {
			return err
		}
	}
	if err := p.send(p.GroupsTopic(participantID), groups); err != nil {
		return err
	}
	p.logger.Info(ctx, "summaries published",
		logger.String("participant", participantID),
		logger.Int("trials", len(summaries)),
	)
	return nil
}

func (p *Publisher) send(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		metrics.RecordPublish("error")
		return fmt.Errorf("%w: encode %s: %w", ErrPublish, topic, err)
	}
	token := p.client.Publish(topic, p.qos, p.retained, payload)
	if !token.WaitTimeout(p.timeout) {
		metrics.RecordPublish("timeout")
		return fmt.Errorf("%w: publish %s", ErrTimeout, topic)
	}
	if err := token.Error(); err != nil {
		metrics.RecordPublish("error")
		return fmt.Errorf("%w: %s: %w", ErrPublish, topic, err)
	}
	metrics.RecordPublish("ok")
	return nil
}

// Close disconnects from the broker, allowing in-flight work 250ms to finish.
func (p *Publisher) Close() {
	if p.client != nil {
		p.client.Disconnect(250)
	}
}
