package notifier

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	"storefront-backend/models"
)

// Notifier tells a customer that their order was placed.
type Notifier interface {
	OrderPlaced(ctx context.Context, order models.Order) error
}

// Config selects and configures a notifier. SES wins over SMTP when both are set.
type Config struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	From         string

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
}

// New returns the notifier matching cfg, falling back to logging only.
func New(ctx context.Context, cfg Config) Notifier {
	if cfg.AWSRegion != "" && cfg.From != "" {
		n, err := NewSESNotifier(ctx, cfg)
		if err == nil {
			return n
		}
		log.Printf("Warning: SES notifier disabled: %v", err)
	}
	if cfg.SMTPHost != "" && cfg.SMTPPort != "" && cfg.From != "" {
		return NewSMTPNotifier(cfg)
	}
	return LogNotifier{}
}

// LogNotifier only records the order in the service log.
type LogNotifier struct{}

func (LogNotifier) OrderPlaced(_ context.Context, order models.Order) error {
	log.Printf("Order %s placed by %s (total %s)", order.OrderNumber, order.Email, order.Total.StringFixed(2))
	return nil
}

type message struct {
	Subject string
	HTML    string
	Text    string
}

func orderPlacedMessage(order models.Order) message {
	first := strings.Split(strings.TrimSpace(order.FirstName), " ")[0]
	total := order.Total.StringFixed(2)

	var lines strings.Builder
	for _, item := range order.Items {
		title := item.Product.Title
		if title == "" {
			title = item.ProductID.String()
		}
		fmt.Fprintf(&lines, "<li>%d x %s: %s</li>", item.Quantity, html.EscapeString(title), item.Total.StringFixed(2))
	}

	return message{
		Subject: fmt.Sprintf("Order Confirmed - %s", order.OrderNumber),
		HTML: fmt.Sprintf(`<h2>Order Confirmed!</h2>
<p>Hi %s,</p>
<p>Your order <strong>%s</strong> has been placed successfully.</p>
<ul>%s</ul>
<p>Order total: <strong>%s</strong></p>
<p>We'll notify you when your order ships.</p>`, html.EscapeString(first), html.EscapeString(order.OrderNumber), lines.String(), total),
		Text: fmt.Sprintf("Hi %s,\n\nYour order %s has been placed successfully.\nOrder total: %s\n\nWe'll notify you when your order ships.",
			first, order.OrderNumber, total),
	}
}
