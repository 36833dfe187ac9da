package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"catalog-service/models"
	"catalog-service/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSNS struct {
	topic string
	body  []byte
	err   error
}

func (r *recordingSNS) Publish(ctx context.Context, topicArn string, message []byte) error {
	r.topic, r.body = topicArn, message
	return r.err
}

type recordingSQS struct {
	queue string
	body  []byte
}

func (r *recordingSQS) SendMessage(ctx context.Context, queueURL string, body []byte) error {
	r.queue, r.body = queueURL, body
	return nil
}

func TestEventPublisher_FansOutToSNSAndSQS(t *testing.T) {
	sns, sqs := &recordingSNS{}, &recordingSQS{}
	pub := services.NewEventPublisher(sns, "arn:aws:sns:us-east-1:000000000000:catalog", sqs, "http://localhost:4566/queue/catalog", zap.NewNop())

	stock := 5
	pub.Publish(context.Background(), models.CatalogEvent{
		EventType:      models.EventStockUpdated,
		VariationID:    "v-1",
		RemainingStock: &stock,
		Timestamp:      time.Now(),
	})

	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:catalog", sns.topic)
	assert.Equal(t, "http://localhost:4566/queue/catalog", sqs.queue)
	assert.Equal(t, sns.body, sqs.body)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(sns.body, &decoded))
	assert.Equal(t, "stock_updated", decoded["event_type"])
	assert.Equal(t, float64(5), decoded["remaining_stock"])
}

func TestEventPublisher_SkipsUnconfiguredTargets(t *testing.T) {
	sns := &recordingSNS{}
	pub := services.NewEventPublisher(sns, "", nil, "", zap.NewNop())

	pub.Publish(context.Background(), models.CatalogEvent{EventType: models.EventGoodCreated})
	assert.Nil(t, sns.body)
}

func TestEventPublisher_FailuresAreSwallowed(t *testing.T) {
	sns := &recordingSNS{err: errors.New("throttled")}
	sqs := &recordingSQS{}
	pub := services.NewEventPublisher(sns, "arn", sqs, "queue", zap.NewNop())

	assert.NotPanics(t, func() {
		pub.Publish(context.Background(), models.CatalogEvent{EventType: models.EventGoodDeleted})
	})
	assert.NotNil(t, sqs.body)
}
