package notifier

import (
	"context"
	"fmt"
	"net/smtp"

	"storefront-backend/models"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPNotifier struct {
	cfg      Config
	sendMail sendMailFunc
}

func NewSMTPNotifier(cfg Config) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, sendMail: smtp.SendMail}
}

func (n *SMTPNotifier) OrderPlaced(_ context.Context, order models.Order) error {
	if order.Email == "" {
		return fmt.Errorf("recipient email address is empty")
	}
	msg := orderPlacedMessage(order)

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		n.cfg.From, order.Email, msg.Subject)

	var auth smtp.Auth
	if n.cfg.SMTPUsername != "" && n.cfg.SMTPPassword != "" {
		auth = smtp.PlainAuth("", n.cfg.SMTPUsername, n.cfg.SMTPPassword, n.cfg.SMTPHost)
	}

	addr := n.cfg.SMTPHost + ":" + n.cfg.SMTPPort
	if err := n.sendMail(addr, auth, n.cfg.From, []string{order.Email}, []byte(headers+msg.HTML)); err != nil {
		return fmt.Errorf("send order confirmation: %w", err)
	}
	return nil
}
