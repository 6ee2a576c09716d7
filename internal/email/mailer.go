package email

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends the account lifecycle mails. Implementations are best-effort;
// callers never wait on delivery.
type Mailer interface {
	SendWelcome(to, name string) error
	SendCancellation(to, name string) error
}

// SendGridMailer delivers through the SendGrid v3 API.
type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendGridMailer(apiKey, fromAddress string) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("Task App", fromAddress),
	}
}

func (m *SendGridMailer) send(to, subject, body string) error {
	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail("", to), body, "")
	resp, err := m.client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid responded %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func (m *SendGridMailer) SendWelcome(to, name string) error {
	return m.send(to, "Thanks for joining",
		fmt.Sprintf("Welcome to the App, %s. I hope you have fun!", name))
}

func (m *SendGridMailer) SendCancellation(to, name string) error {
	return m.send(to, "We couldn't have been here without you!!",
		fmt.Sprintf("Hi %s, we just want you to know we feel sad to see you go and look forward to having you back with us soon.(:", name))
}
