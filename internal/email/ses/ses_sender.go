package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"knowbase/internal/config"
	"knowbase/internal/email"
	"knowbase/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	from        string
	frontendURL string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(cfg *config.EmailConfig) (port.EmailSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesSender{
		client:      sesv2.NewFromConfig(awsCfg),
		from:        fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress),
		frontendURL: cfg.FrontendURL,
	}, nil
}

func (s *sesSender) SendAssignmentEmail(ctx context.Context, msg port.AssignmentEmail) error {
	rendered := email.RenderAssignment(msg, s.frontendURL)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &s.from,
		Destination: &types.Destination{
			ToAddresses: []string{msg.ToEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &rendered.Subject},
				Body: &types.Body{
					Html: &types.Content{Data: &rendered.HTML},
					Text: &types.Content{Data: &rendered.Text},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}
