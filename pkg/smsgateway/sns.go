package smsgateway

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snsTypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSName identifies the AWS SNS gateway
const SNSName = "SNS"

// SNSPublisher is the subset of the SNS client used here
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSGateway sends transactional SMS through AWS SNS
type SNSGateway struct {
	client   SNSPublisher
	senderID string
}

// NewSNSGateway creates a gateway using the default AWS credential chain
func NewSNSGateway(ctx context.Context, region, senderID string) (*SNSGateway, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewSNSGatewayWithClient(sns.NewFromConfig(cfg), senderID), nil
}

// NewSNSGatewayWithClient wraps an existing publisher
func NewSNSGatewayWithClient(client SNSPublisher, senderID string) *SNSGateway {
	return &SNSGateway{client: client, senderID: senderID}
}

// SendSMS publishes the message directly to a phone number
func (g *SNSGateway) SendSMS(ctx context.Context, to, message string) (string, error) {
	attrs := map[string]snsTypes.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		},
	}
	if g.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = snsTypes.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(g.senderID),
		}
	}

	resp, err := g.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(to),
		Message:           aws.String(message),
		MessageAttributes: attrs,
	})
	if err != nil {
		return "", fmt.Errorf("sns publish failed: %w", err)
	}
	return aws.ToString(resp.MessageId), nil
}

// GetDeliveryStatus is unavailable without CloudWatch delivery logs
func (g *SNSGateway) GetDeliveryStatus(context.Context, string) (string, error) {
	return StatusUnknown, nil
}
