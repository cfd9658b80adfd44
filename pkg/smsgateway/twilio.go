package smsgateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioName identifies the Twilio gateway
const TwilioName = "TWILIO"

// TwilioGateway sends SMS through Twilio's REST API
type TwilioGateway struct {
	client     *twilio.RestClient
	fromNumber string
}

// NewTwilioGateway creates a new Twilio gateway
func NewTwilioGateway(accountSID, authToken, fromNumber string) *TwilioGateway {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioGateway{
		client:     client,
		fromNumber: fromNumber,
	}
}

// SendSMS sends an SMS and returns the message SID
func (g *TwilioGateway) SendSMS(ctx context.Context, to, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	params := &api.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(g.fromNumber)
	params.SetBody(message)

	resp, err := g.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio send failed: %w", err)
	}
	if resp.Sid == nil {
		return "", &ProviderError{Gateway: TwilioName, Message: "response carried no message sid"}
	}
	return *resp.Sid, nil
}

// GetDeliveryStatus fetches the message status from Twilio
func (g *TwilioGateway) GetDeliveryStatus(ctx context.Context, messageID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, err := g.client.Api.FetchMessage(messageID, &api.FetchMessageParams{})
	if err != nil {
		return "", fmt.Errorf("failed to fetch message status: %w", err)
	}
	if resp.Status == nil {
		return StatusUnknown, nil
	}
	switch strings.ToLower(string(*resp.Status)) {
	case "delivered":
		return StatusDelivered, nil
	case "sent", "queued", "accepted", "sending":
		return StatusSent, nil
	default:
		return strings.ToUpper(string(*resp.Status)), nil
	}
}
