package ses

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SendEmail delivers a rendered notification and returns the provider's
// message ID. Both bodies are attached when present so clients pick their
// preferred part.
func (c *Client) SendEmail(ctx context.Context, from, to, subject, htmlBody, textBody string) (string, error) {
	body := &types.Body{}
	if htmlBody != "" {
		body.Html = &types.Content{Data: aws.String(htmlBody)}
	}
	if textBody != "" {
		body.Text = &types.Content{Data: aws.String(textBody)}
	}

	output, err := c.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body:    body,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("sending email: %w", err)
	}

	messageID := ""
	if output.MessageId != nil {
		messageID = *output.MessageId
	}
	return messageID, nil
}
