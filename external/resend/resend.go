package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"time"

	"MusicStoreAPI/internal/model"
)

const defaultBaseURL = "https://api.resend.com"

// ResendMailer emails payment notices to the shop inbox.
type ResendMailer struct {
	apiKey  string
	from    string
	to      string
	client  *http.Client
	BaseURL string
}

func NewResendMailer(apiKey, from, to string) (*ResendMailer, error) {
	if apiKey == "" {
		return nil, errors.New("RESEND_API_KEY not set")
	}
	if to == "" {
		return nil, errors.New("NOTICE_TO not set")
	}

	return &ResendMailer{
		apiKey: apiKey,
		from:   from,
		to:     to,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		BaseURL: defaultBaseURL,
	}, nil
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (m *ResendMailer) SendPaymentNotice(ctx context.Context, n model.PaymentNotice) error {
	body := sendRequest{
		From:    m.from,
		To:      []string{m.to},
		ReplyTo: n.Email,
		Subject: fmt.Sprintf("Payment notice for order %s", n.OrderNumber),
		HTML: fmt.Sprintf(`
			<p><strong>%s</strong> (%s) reports a payment.</p>
			<p>Order: %s<br>Amount paid: %s</p>
			<p>%s</p>
		`,
			html.EscapeString(n.Name),
			html.EscapeString(n.Email),
			html.EscapeString(n.OrderNumber),
			html.EscapeString(n.AmountPaid),
			html.EscapeString(n.Message),
		),
	}

	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.BaseURL+"/emails", bytes.NewBuffer(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		return errors.New("failed to send payment notice: " + buf.String())
	}

	return nil
}
