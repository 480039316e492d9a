// Package mail sends tenant-facing notification email over SMTP and records
// each attempt as a message row.
package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/reclaimr/reclaimr"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const provider = "smtp"

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
}

// Sender notifies an account's default sender identity when one of its
// leads is created. Delivery is fire-and-forget: it runs off the request
// path and only the messages table records the outcome.
type Sender struct {
	cfg      Config
	messages reclaimr.MessageService
	log      *zap.SugaredLogger
}

func NewSender(cfg Config, messages reclaimr.MessageService, log *zap.SugaredLogger) *Sender {
	return &Sender{
		cfg:      cfg,
		messages: messages,
		log:      log,
	}
}

// LeadCreated queues a notification for the account and sends it on a
// separate goroutine.
func (s *Sender) LeadCreated(account reclaimr.Account, contact reclaimr.Contact, lead reclaimr.Lead) {
	subject, body := notification(account, contact, lead)

	msg := reclaimr.Message{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		ContactID: contact.ID,
		LeadID:    lead.ID,
		Channel:   reclaimr.ChannelEmail,
		Direction: reclaimr.DirectionOut,
		Subject:   subject,
		Body:      body,
		Provider:  provider,
		Status:    reclaimr.MessageQueued,
		CreatedAt: time.Now().UTC(),
	}

	// Recording the queued row uses the store; if that fails we still try
	// to deliver, there is just no audit trail for this one.
	recorded := true
	if err := s.messages.Create(context.Background(), msg); err != nil {
		recorded = false
		s.log.Warnw("mail", "status", "message row not recorded", "lead", lead.ID, "error", err.Error())
	}

	go s.deliver(account, msg, recorded)
}

func (s *Sender) deliver(account reclaimr.Account, msg reclaimr.Message, recorded bool) {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", account.SenderEmail, account.SenderName)
	m.SetHeader("To", account.SenderEmail)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Password)

	status := reclaimr.MessageSent
	errMsg := ""
	now := time.Now().UTC()
	sentAt := &now

	if err := d.DialAndSend(m); err != nil {
		status = reclaimr.MessageFailed
		errMsg = err.Error()
		sentAt = nil
		s.log.Warnw("mail", "status", "delivery failed", "lead", msg.LeadID, "error", err.Error())
	}

	if !recorded {
		return
	}
	if err := s.messages.SetStatus(context.Background(), msg.ID, status, errMsg, sentAt); err != nil {
		s.log.Warnw("mail", "status", "message status not recorded", "message", msg.ID, "error", err.Error())
	}
}

// notification builds the subject and plain-text body for a new-lead email.
func notification(account reclaimr.Account, contact reclaimr.Contact, lead reclaimr.Lead) (string, string) {
	who := contact.Email
	if who == "" {
		who = contact.Phone
	}

	subject := fmt.Sprintf("New lead: %s (%s)", who, lead.Source)
	body := fmt.Sprintf(
		"A new lead was captured for %s.\n\nContact: %s\nSource: %s\nLead ID: %s\n",
		account.Name, who, lead.Source, lead.ID,
	)
	return subject, body
}
