// Package sqsx provides the SQS client used by manager/alerts: when a
// sink's internal buffer overflows and events are dropped, the manager
// enqueues a lost-events notice here instead of only counting it locally.
//
//	w, _ := connect.ParseWiring(ctx)
//	notifier, err := sqsx.NewNotifier(ctx, w.Egress("alerts"))
package sqsx

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/matgreaves/evtrace/connect"
)

// Notifier sends short JSON notices to a single SQS queue.
type Notifier struct {
	client   *sqs.Client
	queueURL string
}

// NewNotifier builds a Notifier from a resolved endpoint. Region is read
// from AWS_REGION; the endpoint's Attributes must set SQS_QUEUE_URL.
func NewNotifier(ctx context.Context, ep connect.Endpoint) (*Notifier, error) {
	queueURL, ok := connect.SQSQueueURL.Get(ep)
	if !ok || queueURL == "" {
		return nil, fmt.Errorf("sqsx: endpoint missing SQS_QUEUE_URL attribute")
	}
	region, _ := connect.AWSRegion.Get(ep)

	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sqsx: load aws config: %w", err)
	}
	return &Notifier{client: sqs.NewFromConfig(cfg), queueURL: queueURL}, nil
}

// Send enqueues body as a single SQS message.
func (n *Notifier) Send(ctx context.Context, body string) error {
	_, err := n.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    &n.queueURL,
		MessageBody: &body,
	})
	return err
}
