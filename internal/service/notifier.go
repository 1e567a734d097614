package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Kerhoff/hearth/internal/models"
)

// NotifyCallback sends a due-task message to a household's chat.
type NotifyCallback func(chatID int64, text string)

// StartDueNotifier runs a background loop that checks for due tasks every
// interval and invokes the callback for each one. It blocks until the
// context is cancelled, so it should be launched in a separate goroutine.
func (s *Service) StartDueNotifier(ctx context.Context, interval time.Duration, callback NotifyCallback) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Due-task notifier started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Due-task notifier stopped")
			return
		case <-ticker.C:
			s.ProcessDueTasks(ctx, callback)
		}
	}
}

// ProcessDueTasks fires the callback for every flagged task whose due time
// has passed and stamps it so it is sent only once.
func (s *Service) ProcessDueTasks(ctx context.Context, callback NotifyCallback) {
	tasks, err := s.Tasks.DueForNotification(ctx)
	if err != nil {
		s.logger.Errorf("Failed to get due tasks: %v", err)
		return
	}

	households := map[int64]*models.Household{}
	for _, t := range tasks {
		h, ok := households[t.HouseholdID]
		if !ok {
			h, err = s.Households.GetByID(ctx, t.HouseholdID)
			if err != nil {
				s.logger.Errorf("Failed to get household %d: %v", t.HouseholdID, err)
				continue
			}
			households[t.HouseholdID] = h
		}
		if h == nil {
			continue
		}

		now := s.now().In(h.Location())
		due, ok := t.DueAt(h.Location())
		if !ok || now.Before(due) {
			continue
		}

		callback(h.ChatID, fmt.Sprintf("⏰ *Due now*\n%s", t.Title))

		t.NotifiedAt = &now
		if _, err := s.Tasks.Update(ctx, t); err != nil {
			s.logger.Errorf("Failed to update task %d: %v", t.ID, err)
		}
	}
}
