package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQSSender sends raw message bodies to a queue.
type SQSSender interface {
	SendMessage(ctx context.Context, queueURL string, body []byte) error
}

type SQSClient struct {
	client *sqs.Client
}

func NewSQSClient(cfg sdkaws.Config) *SQSClient {
	return &SQSClient{client: sqs.NewFromConfig(cfg)}
}

// SendMessage sends one message to the queue at queueURL.
func (c *SQSClient) SendMessage(ctx context.Context, queueURL string, body []byte) error {
	if queueURL == "" {
		return fmt.Errorf("empty queueURL")
	}
	_, err := c.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    sdkaws.String(queueURL),
		MessageBody: sdkaws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("sqs send failed for queue %s: %w", queueURL, err)
	}
	return nil
}
