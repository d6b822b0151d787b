package sns

import (
	"context"
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/brnno-tech/brnno-api/internal/config"
	"github.com/brnno-tech/brnno-api/internal/domain"
)

// PushSender delivers a mobile push message to a single FCM device token.
type PushSender interface {
	SendPush(ctx context.Context, token, title, body string, data map[string]string) (string, error)
}

type sender struct {
	client         *sns.Client
	platformAppARN string
}

// NewSender builds a PushSender over an SNS platform application that fronts
// FCM. Returns an error when the platform application ARN is unset — push
// has no fallback tier, so the caller decides whether that is fatal.
func NewSender(cfg *config.Config) (PushSender, error) {
	if cfg.SNSPlatformAppARN == "" {
		return nil, fmt.Errorf("SNS platform application not configured: %w", domain.ErrUnavailable)
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &sender{
		client:         sns.NewFromConfig(awsCfg),
		platformAppARN: cfg.SNSPlatformAppARN,
	}, nil
}

// fcmMessage is the GCM/FCM payload SNS forwards verbatim.
type fcmMessage struct {
	Notification struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	} `json:"notification"`
	Data map[string]string `json:"data,omitempty"`
}

// SendPush registers a platform endpoint for the token and publishes to it.
// CreatePlatformEndpoint is idempotent for an unchanged token, so the
// register-then-publish pair is safe to repeat per delivery.
func (s *sender) SendPush(ctx context.Context, token, title, body string, data map[string]string) (string, error) {
	ep, err := s.client.CreatePlatformEndpoint(ctx, &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: &s.platformAppARN,
		Token:                  &token,
	})
	if err != nil {
		return "", fmt.Errorf("create platform endpoint: %w", err)
	}

	var msg fcmMessage
	msg.Notification.Title = title
	msg.Notification.Body = body
	msg.Data = data
	gcm, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(map[string]string{
		"default": body,
		"GCM":     string(gcm),
	})
	if err != nil {
		return "", err
	}

	structure := "json"
	message := string(payload)
	out, err := s.client.Publish(ctx, &sns.PublishInput{
		TargetArn:        ep.EndpointArn,
		Message:          &message,
		MessageStructure: &structure,
	})
	if err != nil {
		return "", fmt.Errorf("publish push: %w", err)
	}
	if out.MessageId == nil {
		return "", nil
	}
	return *out.MessageId, nil
}
