package notify

import (
	"context"
	"fmt"

	"FieldMonitorAPI/internal/config"
	"FieldMonitorAPI/internal/logger"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioSender sends SMS alerts through the Twilio REST API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
	log    *logger.Logger
}

func NewTwilioSender(cfg *config.TwilioConfig, log *logger.Logger) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &TwilioSender{
		client: client,
		from:   cfg.FromNumber,
		log:    log,
	}
}

func (s *TwilioSender) SendSMS(ctx context.Context, to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send to %s failed: %w", to, err)
	}

	if resp.Sid != nil {
		s.log.Debug("SMS sent to %s (sid %s)", to, *resp.Sid)
	}

	return nil
}
