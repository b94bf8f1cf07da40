package workflow

import (
	"context"
	"fmt"

	"figma-to-fsd/internal/common/aws"
	"figma-to-fsd/internal/common/config"
	"figma-to-fsd/internal/common/confluence"
	"figma-to-fsd/internal/common/database"
	apperrors "figma-to-fsd/internal/common/errors"
	"figma-to-fsd/internal/common/figma"
	httpclient "figma-to-fsd/internal/common/http"
	"figma-to-fsd/internal/common/jira"
	"figma-to-fsd/internal/common/llm"
	"figma-to-fsd/internal/common/logger"
	"figma-to-fsd/internal/common/observability"
	"figma-to-fsd/internal/models"
)

// NewFromConfig wires the orchestrator to the real Figma, Jira, Confluence and
// model APIs.
func NewFromConfig(cfg *config.Config, obs *observability.Observability, log logger.Logger, sinks ...EventSink) *Orchestrator {
	figmaHTTP := httpclient.NewClient(config.GetDuration(cfg.Figma.Timeout))
	atlassianHTTP := httpclient.NewClient(config.GetDuration(cfg.Atlassian.Timeout))

	return New(Dependencies{
		Config: cfg,
		Figma:  figma.NewClient(cfg.Figma.BaseURL, figmaHTTP),
		LLM:    llm.NewProvider(cfg.LLM),
		Issues: func(creds models.AtlassianCredentials) IssueCreator {
			return jira.NewClient(creds, atlassianHTTP)
		},
		Pages: func(creds models.AtlassianCredentials) PagePublisher {
			return confluence.NewClient(creds, atlassianHTTP)
		},
		Sinks:         sinks,
		Observability: obs,
		Logger:        log,
	})
}

// SinksFromConfig builds the enabled event sinks. The returned close function
// releases their connections.
func SinksFromConfig(ctx context.Context, cfg *config.Config, log logger.Logger) ([]EventSink, func(), error) {
	var (
		sinks   []EventSink
		closers []func() error
	)
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn("Failed to close event sink", map[string]interface{}{"error": err.Error()})
			}
		}
	}

	if r := cfg.Database.Redis; r.Enabled {
		client, err := database.NewRedis(r)
		if err != nil {
			return nil, closeAll, fmt.Errorf("redis sink: %w", err)
		}
		if err := client.Ping(ctx); err != nil {
			client.Close()
			return nil, closeAll, fmt.Errorf("redis sink: %w", err)
		}
		closers = append(closers, client.Close)
		sinks = append(sinks, database.NewRedisEventSink(client, config.GetDuration(r.StreamTTL), r.MaxLen))
		log.Info("Redis event stream enabled", map[string]interface{}{"address": r.Address})
	}

	n := cfg.Notifications
	if n.SNS.Enabled {
		client, err := aws.NewSNSClient(ctx, n.AWS.Region)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("sns notifier: %w", err)
		}
		sinks = append(sinks, aws.NewSNSNotifier(client, n.SNS.TopicARN))
		log.Info("SNS notifications enabled", map[string]interface{}{"topicArn": n.SNS.TopicARN})
	}
	if n.SES.Enabled {
		client, err := aws.NewSESClient(ctx, n.AWS.Region)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("ses notifier: %w", err)
		}
		sinks = append(sinks, aws.NewSESNotifier(client, n.SES.FromEmail, n.SES.Recipients))
		log.Info("SES notifications enabled", map[string]interface{}{"from": n.SES.FromEmail})
	}

	return sinks, closeAll, nil
}

// Await drains events, passing each to fn when fn is non-nil, and returns the
// run's result or its error. It returns when the channel closes, so the event
// sinks have seen the terminal event by then.
func Await(events <-chan models.Event, fn func(models.Event)) (*models.GenerationResult, error) {
	var (
		result   *models.GenerationResult
		err      error
		terminal bool
	)
	for ev := range events {
		if fn != nil {
			fn(ev)
		}
		if terminal {
			continue
		}
		switch ev.Type {
		case models.EventComplete:
			result, terminal = ev.Result, true
		case models.EventError:
			terminal = true
			if ev.Error != nil {
				err = ev.Error
			} else {
				err = apperrors.NewRunCancelledError(fmt.Errorf("%s", ev.Message))
			}
		}
	}
	if !terminal {
		return nil, apperrors.NewRunCancelledError(context.Canceled)
	}
	return result, err
}
