package service

import (
	"context"
	"time"

	"github.com/DrgGomes/cft-estoque-fast/internal/dto"
	"github.com/DrgGomes/cft-estoque-fast/internal/model"
	"github.com/DrgGomes/cft-estoque-fast/internal/repository"
	"github.com/DrgGomes/cft-estoque-fast/internal/worker"

	"github.com/rs/zerolog/log"
)

// Notifier delivers a system notification. Fire-and-forget: failures are
// logged and swallowed, never surfaced to the dispatch path.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// SoundPlayer plays a short alert sound on the watching client.
type SoundPlayer interface {
	Play(ctx context.Context, soundID string) error
}

// AlertService turns zero-crossing events into alert log entries plus
// best-effort side effects. It performs no de-duplication — the diff
// detector already guarantees at most one event per product per transition.
type AlertService interface {
	// Dispatch appends one alert per sold-out product. Callers only invoke
	// it with a non-empty set.
	Dispatch(ctx context.Context, soldOut []model.Product) error
	List(ctx context.Context, limit int) (*dto.AlertListResponse, error)
}

type alertService struct {
	alerts     repository.AlertRepository
	dispatcher *worker.Dispatcher
	notifier   Notifier    // may be nil
	sound      SoundPlayer // may be nil
	alertEmail string
	now        func() time.Time
}

func NewAlertService(
	alerts repository.AlertRepository,
	dispatcher *worker.Dispatcher,
	notifier Notifier,
	sound SoundPlayer,
	alertEmail string,
) AlertService {
	return &alertService{
		alerts:     alerts,
		dispatcher: dispatcher,
		notifier:   notifier,
		sound:      sound,
		alertEmail: alertEmail,
		now:        time.Now,
	}
}

func (s *alertService) Dispatch(ctx context.Context, soldOut []model.Product) error {
	if len(soldOut) == 0 {
		return nil
	}

	var firstErr error
	for _, p := range soldOut {
		alert := &model.StockAlert{
			ProductID:   p.ID,
			ProductName: p.Name,
			Color:       p.Color,
			Size:        p.Size,
			DetectedAt:  s.now(),
		}
		// The log append is the one mandatory effect; side effects below
		// must not prevent it and must not raise to the caller.
		if err := s.alerts.Create(ctx, alert); err != nil {
			log.Error().Err(err).Str("product", p.Name).Msg("alert: failed to append alert log")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		title := "Sold out"
		body := p.Name + " (" + p.Color + " / " + p.Size + ")"

		if s.notifier != nil {
			if err := s.notifier.Notify(ctx, title, body); err != nil {
				log.Warn().Err(err).Str("product", p.Name).Msg("alert: notification failed")
			}
		}
		if s.sound != nil {
			if err := s.sound.Play(ctx, "sold-out"); err != nil {
				log.Warn().Err(err).Msg("alert: sound failed")
			}
		}
		if s.dispatcher != nil {
			payload := worker.AlertEmailPayload{
				ToEmail:     s.alertEmail,
				ProductName: p.Name,
				Color:       p.Color,
				Size:        p.Size,
			}
			if err := s.dispatcher.Enqueue(ctx, worker.QueueAlerts, worker.JobTypeAlertEmail, payload); err != nil {
				log.Warn().Err(err).Str("product", p.Name).Msg("alert: failed to enqueue e-mail job")
			}
		}

		log.Info().Str("product", p.Name).Str("color", p.Color).Str("size", p.Size).
			Msg("sold-out alert dispatched")
	}
	return firstErr
}

func (s *alertService) List(ctx context.Context, limit int) (*dto.AlertListResponse, error) {
	alerts, total, err := s.alerts.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	resp := &dto.AlertListResponse{Data: make([]dto.AlertResponse, len(alerts)), Total: total}
	for i, a := range alerts {
		resp.Data[i] = dto.AlertResponse{
			ID:          a.ID.String(),
			ProductID:   a.ProductID.String(),
			ProductName: a.ProductName,
			Color:       a.Color,
			Size:        a.Size,
			DetectedAt:  a.DetectedAt.Format(time.RFC3339),
		}
	}
	return resp, nil
}
