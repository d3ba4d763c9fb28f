package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// NotifyService delivers portal notifications via Amazon SES. Delivery is
// best-effort; callers log failures rather than failing the triggering
// operation.
type NotifyService struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	enabled   bool
}

// NewNotifyService creates a new notification service. An empty fromEmail
// returns a disabled service that silently skips all sends.
func NewNotifyService(awsRegion, fromEmail, fromName string) (*NotifyService, error) {
	if fromEmail == "" {
		log.Println("Notification service disabled: SES_FROM_EMAIL not configured")
		return &NotifyService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Notification service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &NotifyService{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
	}, nil
}

// Enabled reports whether the service can deliver
func (s *NotifyService) Enabled() bool {
	return s.enabled
}

// SendReviewDecision notifies a parent that their association request was
// approved or rejected
func (s *NotifyService) SendReviewDecision(toEmail, parentName, childName string, approved bool, notes string) error {
	var subject, body string
	if approved {
		subject = "Your child link request was approved"
		body = fmt.Sprintf("Hi %s,\n\nYour request to be linked with %s has been approved. You can now see their programs and enrollments in the portal.\n", parentName, childName)
	} else {
		subject = "Your child link request was not approved"
		body = fmt.Sprintf("Hi %s,\n\nYour request to be linked with %s was not approved.\n", parentName, childName)
	}
	if notes != "" {
		body += fmt.Sprintf("\nReviewer notes: %s\n", notes)
	}

	return s.send([]string{toEmail}, subject, body)
}

// SendBulkNotice sends the same message to a set of users as part of an
// administrator bulk notify action
func (s *NotifyService) SendBulkNotice(toEmails []string, subject, body string) error {
	if len(toEmails) == 0 {
		return nil
	}
	return s.send(toEmails, subject, body)
}

func (s *NotifyService) send(to []string, subject, body string) error {
	if !s.enabled {
		log.Printf("Notification skipped (service disabled): %s", subject)
		return nil
	}

	from := s.fromEmail
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: to,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data: aws.String(subject),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data: aws.String(body),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(context.TODO(), input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
