package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stored struct {
	userID  uint64
	message string
}

type fakeStore struct {
	got []stored
	err error
}

func (f *fakeStore) Create(_ context.Context, userID uint64, message string) error {
	if f.err != nil {
		return f.err
	}
	f.got = append(f.got, stored{userID, message})
	return nil
}

func TestHandleStoresNotification(t *testing.T) {
	store := &fakeStore{}
	c := NewConsumer("amqp://unused", store, zap.NewNop())

	body, err := json.Marshal(ApplicationEvent{
		Type: EventApplicationSubmitted, ApplicationID: 11, UserID: 7, JobID: 3, JobTitle: "백엔드 개발자",
	})
	require.NoError(t, err)

	require.NoError(t, c.Handle(context.Background(), body))
	require.Len(t, store.got, 1)
	assert.Equal(t, uint64(7), store.got[0].userID)
	assert.Equal(t, "'백엔드 개발자' 지원이 완료되었습니다.", store.got[0].message)
}

func TestHandleRejectsBadMessages(t *testing.T) {
	store := &fakeStore{}
	c := NewConsumer("amqp://unused", store, zap.NewNop())

	assert.ErrorIs(t, c.Handle(context.Background(), []byte("{not json")), ErrMalformedEvent)
	assert.ErrorIs(t, c.Handle(context.Background(), []byte(`{"type":"application.submitted"}`)), ErrMalformedEvent)
	assert.Empty(t, store.got)
}

func TestHandleSurfacesStoreError(t *testing.T) {
	c := NewConsumer("amqp://unused", &fakeStore{err: errors.New("db down")}, zap.NewNop())
	body := []byte(`{"type":"application.withdrawn","user_id":7,"job_id":3}`)
	assert.ErrorContains(t, c.Handle(context.Background(), body), "db down")
}

type fakeDelivery struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (d *fakeDelivery) Ack(bool) error {
	d.acked = true
	return nil
}

func (d *fakeDelivery) Nack(_, requeue bool) error {
	d.nacked, d.requeued = true, requeue
	return nil
}

func TestSettleRequeuesStoreFailures(t *testing.T) {
	prev := requeueDelay
	requeueDelay = 0
	t.Cleanup(func() { requeueDelay = prev })
	body := []byte(`{"type":"application.withdrawn","user_id":7,"job_id":3}`)

	ok := &fakeDelivery{}
	NewConsumer("amqp://unused", &fakeStore{}, zap.NewNop()).settle(context.Background(), ok, body)
	assert.True(t, ok.acked)
	assert.False(t, ok.nacked)

	down := &fakeDelivery{}
	NewConsumer("amqp://unused", &fakeStore{err: errors.New("db down")}, zap.NewNop()).settle(context.Background(), down, body)
	assert.False(t, down.acked)
	assert.True(t, down.nacked)
	assert.True(t, down.requeued)

	bad := &fakeDelivery{}
	NewConsumer("amqp://unused", &fakeStore{}, zap.NewNop()).settle(context.Background(), bad, []byte("{not json"))
	assert.True(t, bad.nacked)
	assert.False(t, bad.requeued)
}

func TestEventMessages(t *testing.T) {
	assert.Equal(t, "채용공고 #3 지원이 취소되었습니다.",
		ApplicationEvent{Type: EventApplicationWithdrawn, JobID: 3}.Message())
	assert.Equal(t, "'Go' 면접 상태가 'completed'(으)로 변경되었습니다.",
		ApplicationEvent{Type: EventInterviewUpdated, JobTitle: "Go", InterviewStatus: "completed"}.Message())
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewConsumer("amqp://127.0.0.1:1/", &fakeStore{}, zap.NewNop())
	assert.ErrorIs(t, c.Run(ctx), context.Canceled)
}
