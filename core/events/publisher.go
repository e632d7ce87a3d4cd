package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"price-sync/core/pricing"
	"price-sync/core/reconcile"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Config holds configuration for the kafka publisher.
type Config struct {
	// Enabled registers the publisher as a run observer.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Brokers is a comma-separated list of host:port.
	Brokers string `mapstructure:"brokers" default:"localhost:9092"`
	// Topic receives one message per committed batch.
	Topic string `mapstructure:"topic" default:"price-sync.batches"`
	// TimeoutSeconds bounds one publish.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
}

// Event types.
const (
	TypeBatchCommitted  = "batch.committed"
	TypeStreamTruncated = "stream.truncated"
)

// messageWriter abstracts kafka.Writer for testability.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PriceChange is one written price, with its composite value decoded.
type PriceChange struct {
	ProductCode int64                    `json:"product_code"`
	ProductID   int64                    `json:"product_id"`
	BranchID    int                      `json:"branch_id"`
	Type        reconcile.CommercialType `json:"commercial_type"`
	Value       string                   `json:"value"`
	Terms       pricing.Terms            `json:"terms"`
	ValidFrom   string                   `json:"valid_from,omitempty"`
	ValidTo     string                   `json:"valid_to,omitempty"`
}

// Event is the message payload.
type Event struct {
	Type      string                 `json:"type"`
	At        time.Time              `json:"at"`
	Result    *reconcile.BatchResult `json:"result,omitempty"`
	Summary   *reconcile.RunSummary  `json:"summary,omitempty"`
	Prices    []PriceChange          `json:"prices,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Partition string                 `json:"partition"`
}

// Publisher publishes batch outcomes to kafka. It implements
// reconcile.Observer; publish failures are logged and never fail a batch.
type Publisher struct {
	writer  messageWriter
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewPublisher creates a publisher writing to cfg.Topic.
func NewPublisher(cfg Config, logger *zap.Logger) *Publisher {
	addrs := strings.Split(cfg.Brokers, ",")
	brokers := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a = strings.TrimSpace(a); a != "" {
			brokers = append(brokers, a)
		}
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}
	return newPublisherWith(w, time.Duration(cfg.TimeoutSeconds)*time.Second, logger)
}

func newPublisherWith(w messageWriter, timeout time.Duration, logger *zap.Logger) *Publisher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{writer: w, timeout: timeout, logger: logger, now: time.Now}
}

// BatchDone implements reconcile.Observer. Only committed batches with
// written prices are published.
func (p *Publisher) BatchDone(ctx context.Context, res reconcile.BatchResult) {
	if res.Outcome != reconcile.OutcomeCommitted || len(res.Prices) == 0 {
		return
	}
	changes := make([]PriceChange, 0, len(res.Prices))
	for _, pr := range res.Prices {
		changes = append(changes, changeOf(pr))
	}
	result := res
	p.publish(ctx, key(res.Source, res.Job, res.Partition), Event{
		Type:      TypeBatchCommitted,
		At:        p.now(),
		Result:    &result,
		Prices:    changes,
		Partition: res.Partition,
	})
}

// StreamTruncated implements reconcile.Observer.
func (p *Publisher) StreamTruncated(ctx context.Context, summary reconcile.RunSummary, err error) {
	ev := Event{
		Type:      TypeStreamTruncated,
		At:        p.now(),
		Summary:   &summary,
		Partition: summary.Partition,
	}
	if err != nil {
		ev.Error = err.Error()
	}
	p.publish(ctx, key(summary.Source, summary.Job, summary.Partition), ev)
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func (p *Publisher) publish(ctx context.Context, k string, ev Event) {
	b, err := json.Marshal(&ev)
	if err != nil {
		p.logger.Error("Failed to encode event", zap.String("type", ev.Type), zap.Error(err))
		return
	}

	// the run context may already be canceled; a batch that committed is still reported
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(k), Value: b}); err != nil {
		p.logger.Error("Failed to publish event", zap.String("type", ev.Type), zap.String("key", k), zap.Error(err))
	}
}

func changeOf(p *reconcile.Price) PriceChange {
	c := PriceChange{
		ProductCode: p.ProductCode,
		ProductID:   p.ProductID,
		BranchID:    p.BranchID,
		Type:        p.Type,
		Value:       p.Value,
		Terms:       pricing.Decode(p.Value),
	}
	if !p.ValidFrom.IsZero() {
		c.ValidFrom = pricing.FormatDate(p.ValidFrom)
	}
	if !p.ValidTo.IsZero() {
		c.ValidTo = pricing.FormatDate(p.ValidTo)
	}
	return c
}

func key(source, job, partition string) string {
	return fmt.Sprintf("%s/%s/%s", source, job, partition)
}
