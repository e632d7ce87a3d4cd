package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"price-sync/core/reconcile"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_BatchCommitted(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisherWith(w, time.Second, nil)

	p.BatchDone(context.Background(), reconcile.BatchResult{
		Source: "paged", Job: "promotions", Partition: "3", Seq: 2,
		Outcome:        reconcile.OutcomeCommitted,
		PricesInserted: 1,
		Prices: []*reconcile.Price{{
			ProductCode: 10, BranchID: 3, Type: reconcile.Combo,
			Value:     "4,00!@#3!@#10,00!@#Leve 3",
			ValidFrom: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		}},
	})

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "paged/promotions/3", string(w.msgs[0].Key))

	var ev Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &ev))
	assert.Equal(t, TypeBatchCommitted, ev.Type)
	require.Len(t, ev.Prices, 1)
	assert.Equal(t, 3, ev.Prices[0].Terms.Quantity)
	assert.Equal(t, "10,00", ev.Prices[0].Terms.Promotional)
	assert.Equal(t, "Leve 3", ev.Prices[0].Terms.Name)
	assert.Equal(t, "2024-03-01", ev.Prices[0].ValidFrom)
	assert.Equal(t, 2, ev.Result.Seq)
}

func TestPublisher_SkipsUninterestingBatches(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisherWith(w, time.Second, nil)
	ctx := context.Background()

	p.BatchDone(ctx, reconcile.BatchResult{Outcome: reconcile.OutcomeRolledBack, Prices: []*reconcile.Price{{}}})
	p.BatchDone(ctx, reconcile.BatchResult{Outcome: reconcile.OutcomeCommitted})

	assert.Empty(t, w.msgs)
}

func TestPublisher_StreamTruncated(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisherWith(w, time.Second, nil)

	p.StreamTruncated(context.Background(), reconcile.RunSummary{Source: "s", Job: "j", Partition: "all", Batches: 4}, errors.New("gave up"))

	require.Len(t, w.msgs, 1)
	var ev Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &ev))
	assert.Equal(t, TypeStreamTruncated, ev.Type)
	assert.Equal(t, "gave up", ev.Error)
	assert.Equal(t, 4, ev.Summary.Batches)
}

func TestPublisher_WriteFailureIsSwallowed(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newPublisherWith(w, time.Second, nil)

	assert.NotPanics(t, func() {
		p.StreamTruncated(context.Background(), reconcile.RunSummary{}, nil)
	})
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewPublisher(t *testing.T) {
	p := NewPublisher(Config{Brokers: "a:9092, b:9092,", Topic: "t"}, nil)
	kw, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "t", kw.Topic)
	assert.Equal(t, 10*time.Second, p.timeout)
}
