package smsgateway

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	input *sns.PublishInput
}

func (f *fakePublisher) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = in
	return &sns.PublishOutput{MessageId: aws.String("sns-1")}, nil
}

func TestSNSGateway_SendSMS(t *testing.T) {
	pub := &fakePublisher{}
	g := NewSNSGatewayWithClient(pub, "AidHub")

	id, err := g.SendSMS(context.Background(), "+970599000001", "hello")
	require.NoError(t, err)
	assert.Equal(t, "sns-1", id)
	assert.Equal(t, "+970599000001", aws.ToString(pub.input.PhoneNumber))
	assert.Equal(t, "hello", aws.ToString(pub.input.Message))
	assert.Equal(t, "AidHub", aws.ToString(pub.input.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))
}

func TestMockGateway_Records(t *testing.T) {
	g := NewMockGateway("TEST")
	_, err := g.SendSMS(context.Background(), "1", "a")
	require.NoError(t, err)
	_, err = g.SendSMS(context.Background(), "2", "b")
	require.NoError(t, err)

	sent := g.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "2", sent[1].To)
	assert.NotEqual(t, sent[0].ID, sent[1].ID)
}
