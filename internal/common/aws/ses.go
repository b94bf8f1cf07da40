// internal/common/aws/ses.go
package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"figma-to-fsd/internal/models"
)

type SESSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESClient struct {
	client SESSender
}

func NewSESClient(ctx context.Context, region string) (*SESClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SESClient{client: ses.NewFromConfig(cfg)}, nil
}

func (s *SESClient) SendEmail(ctx context.Context, input *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return s.client.SendEmail(ctx, input, optFns...)
}

// SESNotifier emails terminal run events to the configured recipients plus
// any addresses the request asked to notify.
type SESNotifier struct {
	client     SESSender
	from       string
	recipients []string
}

func NewSESNotifier(client SESSender, from string, recipients []string) *SESNotifier {
	return &SESNotifier{client: client, from: from, recipients: recipients}
}

func (n *SESNotifier) Name() string {
	return "ses"
}

func (n *SESNotifier) Publish(ctx context.Context, ev models.Event) error {
	if !ev.Terminal() {
		return nil
	}

	to := dedupe(append(append([]string{}, n.recipients...), notifyEmails(ev)...))
	if len(to) == 0 {
		return nil
	}

	text := body(ev)
	_, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: to,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: awssdk.String(subject(ev))},
			Body: &types.Body{
				Text: &types.Content{Data: awssdk.String(text)},
			},
		},
		Source: awssdk.String(n.from),
	})
	if err != nil {
		return fmt.Errorf("ses send failed: %w", err)
	}
	return nil
}

func dedupe(addrs []string) []string {
	seen := make(map[string]bool, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}
