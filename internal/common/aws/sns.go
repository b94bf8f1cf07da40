// internal/common/aws/sns.go
package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	"figma-to-fsd/internal/models"
)

type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSClient struct {
	client SNSPublisher
}

func NewSNSClient(ctx context.Context, region string) (*SNSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SNSClient{client: sns.NewFromConfig(cfg)}, nil
}

func (s *SNSClient) Publish(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return s.client.Publish(ctx, input, optFns...)
}

// SNSNotifier publishes terminal run events to a topic. Other events are ignored.
type SNSNotifier struct {
	client   SNSPublisher
	topicARN string
}

func NewSNSNotifier(client SNSPublisher, topicARN string) *SNSNotifier {
	return &SNSNotifier{client: client, topicARN: topicARN}
}

func (n *SNSNotifier) Name() string {
	return "sns"
}

func (n *SNSNotifier) Publish(ctx context.Context, ev models.Event) error {
	if !ev.Terminal() {
		return nil
	}

	_, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(n.topicARN),
		Subject:  awssdk.String(subject(ev)),
		Message:  awssdk.String(body(ev)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"eventType": {DataType: awssdk.String("String"), StringValue: awssdk.String(string(ev.Type))},
			"runId":     {DataType: awssdk.String("String"), StringValue: awssdk.String(ev.RunID)},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish failed: %w", err)
	}
	return nil
}
