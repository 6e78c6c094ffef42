package cloud

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQSAPI is the subset of the SQS client the queue adapter uses.
type SQSAPI interface {
	CreateQueue(ctx context.Context, params *sqs.CreateQueueInput, optFns ...func(*sqs.Options)) (*sqs.CreateQueueOutput, error)
	DeleteQueue(ctx context.Context, params *sqs.DeleteQueueInput, optFns ...func(*sqs.Options)) (*sqs.DeleteQueueOutput, error)
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Message is one received queue entry.
type Message struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// Queue is an SQS-compatible message queue adapter.
type Queue struct {
	client SQSAPI
}

// QueueOption configures the queue adapter.
type QueueOption func(*Queue)

// WithSQSClient sets a custom SQS client (for testing).
func WithSQSClient(client SQSAPI) QueueOption {
	return func(q *Queue) {
		q.client = client
	}
}

// NewQueue builds the adapter from a session factory config.
func NewQueue(cfg aws.Config, opts ...QueueOption) *Queue {
	q := &Queue{}
	for _, opt := range opts {
		opt(q)
	}
	if q.client == nil {
		q.client = sqs.NewFromConfig(cfg)
	}
	return q
}

// Create creates the queue and returns its URL. Creating an existing queue
// with the same attributes returns the existing URL.
func (q *Queue) Create(ctx context.Context, name string, attributes map[string]string) (string, error) {
	input := &sqs.CreateQueueInput{QueueName: aws.String(name)}
	if len(attributes) > 0 {
		input.Attributes = attributes
	}

	out, err := q.client.CreateQueue(ctx, input)
	if err != nil {
		return "", fmt.Errorf("creating queue %s: %w", name, err)
	}
	return aws.ToString(out.QueueUrl), nil
}

// Delete deletes the queue.
func (q *Queue) Delete(ctx context.Context, queueURL string) error {
	if _, err := q.client.DeleteQueue(ctx, &sqs.DeleteQueueInput{QueueUrl: aws.String(queueURL)}); err != nil {
		return fmt.Errorf("deleting queue: %w", err)
	}
	return nil
}

// URL looks up the queue URL by name.
func (q *Queue) URL(ctx context.Context, name string) (string, error) {
	out, err := q.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(name)})
	if err != nil {
		return "", fmt.Errorf("looking up queue %s: %w", name, err)
	}
	return aws.ToString(out.QueueUrl), nil
}

// Send puts a message on the queue and returns the message ID.
func (q *Queue) Send(ctx context.Context, queueURL, body string) (string, error) {
	out, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(body),
	})
	if err != nil {
		return "", fmt.Errorf("sending message: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}

// Receive fetches up to max messages, long-polling for wait when non-zero.
func (q *Queue) Receive(ctx context.Context, queueURL string, max int32, wait time.Duration) ([]Message, error) {
	if max < 1 {
		max = 1
	}

	out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(queueURL),
		MaxNumberOfMessages: max,
		WaitTimeSeconds:     int32(wait / time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("receiving messages: %w", err)
	}

	messages := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		messages = append(messages, Message{
			ID:            aws.ToString(m.MessageId),
			Body:          aws.ToString(m.Body),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
		})
	}
	return messages, nil
}

// DeleteMessage acknowledges a received message.
func (q *Queue) DeleteMessage(ctx context.Context, queueURL, receiptHandle string) error {
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("deleting message: %w", err)
	}
	return nil
}
