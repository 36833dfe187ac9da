package services

import (
	"context"
	"encoding/json"

	"catalog-service/models"
	aws_pkg "catalog-service/pkg/aws"

	"go.uber.org/zap"
)

// EventPublisher delivers catalog events. Delivery failures are the
// publisher's problem; callers never see them.
type EventPublisher interface {
	Publish(ctx context.Context, event models.CatalogEvent)
}

type awsEventPublisher struct {
	snsClient   aws_pkg.SNSPublisher
	snsTopicArn string
	sqsClient   aws_pkg.SQSSender
	queueURL    string
	logger      *zap.Logger
}

// NewEventPublisher fans events out to an SNS topic and/or an SQS queue.
// Either side is skipped when its client or target is empty.
func NewEventPublisher(
	snsClient aws_pkg.SNSPublisher,
	snsTopicArn string,
	sqsClient aws_pkg.SQSSender,
	queueURL string,
	logger *zap.Logger,
) EventPublisher {
	return &awsEventPublisher{
		snsClient:   snsClient,
		snsTopicArn: snsTopicArn,
		sqsClient:   sqsClient,
		queueURL:    queueURL,
		logger:      logger,
	}
}

func (p *awsEventPublisher) Publish(ctx context.Context, event models.CatalogEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal catalog event", zap.String("event_type", event.EventType), zap.Error(err))
		return
	}

	if p.snsClient != nil && p.snsTopicArn != "" {
		if err := p.snsClient.Publish(ctx, p.snsTopicArn, body); err != nil {
			p.logger.Warn("Failed to publish catalog event to SNS",
				zap.String("event_type", event.EventType), zap.Error(err))
		}
	}
	if p.sqsClient != nil && p.queueURL != "" {
		if err := p.sqsClient.SendMessage(ctx, p.queueURL, body); err != nil {
			p.logger.Warn("Failed to send catalog event to SQS",
				zap.String("event_type", event.EventType), zap.Error(err))
		}
	}
}
