package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taitfuller/feedr-backend/internal/domain"
	pkgkafka "github.com/taitfuller/feedr-backend/pkg/kafka"
	"github.com/taitfuller/feedr-backend/pkg/logger"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func newTestProducer(w *fakeWriter) *Producer {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewProducer(pkgkafka.NewProducerWithWriter(w, []string{"localhost:9092"}, l), l)
}

func decodeOnly(t *testing.T, w *fakeWriter) (kafka.Message, *pkgkafka.Event) {
	t.Helper()
	require.Len(t, w.msgs, 1)
	evt, err := pkgkafka.DecodeEvent(w.msgs[0].Value)
	require.NoError(t, err)
	return w.msgs[0], evt
}

func TestPublishReviewFlagged(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)

	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	ctx = logger.WithUserID(ctx, "user-1")

	err := p.PublishReviewFlagged(ctx, &domain.Review{ID: "r1", FeedID: "f1", Flag: true})
	require.NoError(t, err)

	msg, evt := decodeOnly(t, w)
	assert.Equal(t, TopicReview, msg.Topic)
	assert.Equal(t, "r1", string(msg.Key))
	assert.Equal(t, TypeReviewFlagged, evt.Type)
	assert.Equal(t, "review", evt.SubjectKind)
	assert.Equal(t, Source, evt.Source)
	assert.Equal(t, "user-1", evt.ActorID)
	assert.Equal(t, "corr-1", evt.CorrelationID)

	var data ReviewFlaggedData
	require.NoError(t, evt.DecodePayload(&data))
	assert.Equal(t, ReviewFlaggedData{ReviewID: "r1", FeedID: "f1", Flag: true}, data)
}

func TestPublishReviewTopicRemoved(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)

	err := p.PublishReviewTopicRemoved(context.Background(), &domain.Review{ID: "r2"}, "t9")
	require.NoError(t, err)

	_, evt := decodeOnly(t, w)
	assert.Equal(t, TypeReviewTopicRemoved, evt.Type)
	assert.Empty(t, evt.ActorID)

	var data ReviewTopicRemovedData
	require.NoError(t, evt.DecodePayload(&data))
	assert.Equal(t, "t9", data.TopicID)
}

func TestPublishFeedCreated(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)

	feed := &domain.Feed{ID: "f1", AppName: "acme", RepoName: "acme/app", CreatedAt: time.Now()}
	require.NoError(t, p.PublishFeedCreated(context.Background(), feed, 42))

	msg, evt := decodeOnly(t, w)
	assert.Equal(t, TopicFeed, msg.Topic)
	assert.Equal(t, "feed", evt.SubjectKind)

	var data FeedCreatedData
	require.NoError(t, evt.DecodePayload(&data))
	assert.Equal(t, 42, data.Reviews)
	assert.Equal(t, "acme/app", data.RepoName)
}

func TestPublish_WriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	p := newTestProducer(w)

	err := p.PublishReviewFlagged(context.Background(), &domain.Review{ID: "r1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish feedr.review.flagged event")
}
