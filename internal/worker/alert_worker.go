package worker

// alert_worker.go
// Processes sold-out alert jobs from QueueAlerts: sends the notification
// e-mail to the configured address. Delivery is best-effort — a failed send
// is logged and dropped, never retried, never surfaced to the request path.

import (
	"context"
	"encoding/json"

	"github.com/DrgGomes/cft-estoque-fast/internal/infra"

	"github.com/rs/zerolog/log"
)

// AlertEmailPayload is the job envelope sent to QueueAlerts.
type AlertEmailPayload struct {
	ToEmail     string `json:"to_email"`
	ProductName string `json:"product_name"`
	Color       string `json:"color"`
	Size        string `json:"size"`
}

type AlertEmailWorker struct {
	mailer *infra.Mailer
}

func NewAlertEmailWorker(mailer *infra.Mailer) *AlertEmailWorker {
	return &AlertEmailWorker{mailer: mailer}
}

func (w *AlertEmailWorker) Process(_ context.Context, raw json.RawMessage) {
	var payload AlertEmailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alert_worker: invalid payload")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("alert_worker: no alert e-mail configured — skipping")
		return
	}

	subject := "Sold out: " + payload.ProductName
	body := payload.ProductName + " (" + payload.Color + " / " + payload.Size + ") just reached zero stock."

	if err := w.mailer.Send(payload.ToEmail, subject, body); err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("alert_worker: failed to send alert e-mail")
		return
	}
	log.Info().Str("product", payload.ProductName).Msg("alert_worker: alert e-mail sent")
}
