package formstate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"AidDesk/internal/cli/amount"
	"AidDesk/internal/cli/api"
	"AidDesk/internal/cli/model"
	"AidDesk/internal/cli/validation"
	"AidDesk/internal/metrics"
)

// Outcome — итог вызова Submit.
type Outcome string

const (
	OutcomeSubmitted        Outcome = "submitted"
	OutcomeFailed           Outcome = "failed"
	OutcomeCancelled        Outcome = "cancelled"
	OutcomeAuthRequired     Outcome = "auth_required"
	OutcomeAckMissing       Outcome = "ack_missing"
	OutcomeInvalid          Outcome = "invalid"
	OutcomeActivityRequired Outcome = "activity_required"
	OutcomeBusy             Outcome = "busy"
)

// Сообщения для пользователя.
const (
	MsgInvalidForm    = "Проверьте правильность заполнения формы"
	MsgNoPhotos       = "Добавьте хотя бы одно фото"
	MsgReviewRequired = "Сначала оставьте отзыв о предыдущем сборе"
	MsgCooldown       = "Можно подать только одну заявку в 24 часа"
	MsgRateLimited    = "Слишком много заявок. Попробуйте позже"
	MsgSubmitFailed   = "Не удалось отправить заявку"
	MsgCancelled      = "Отправка отменена"
)

// Submit проверяет форму, загружает фото и создаёт заявку.
// Ошибки не возвращаются: они попадают в Snapshot().Error, а поля формы
// остаются нетронутыми.
func (s *Session) Submit(ctx context.Context) Outcome {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return OutcomeBusy
	}
	s.errMsg = ""
	s.activity = nil
	s.authRedirect = nil

	if s.user == nil {
		s.authRedirect = &AuthRedirect{Next: s.next}
		s.mu.Unlock()
		s.metrics.Submission(metrics.OutcomeAuthRequired)
		return OutcomeAuthRequired
	}
	if !s.trustAck || !s.policies {
		s.ackErr = true
		s.mu.Unlock()
		s.metrics.Submission(metrics.OutcomeAckMissing)
		return OutcomeAckMissing
	}
	s.ackErr = false
	if len(s.photos) == 0 {
		s.failLocked(MsgNoPhotos)
		s.scrollLocked(validation.FieldPhotos)
		s.mu.Unlock()
		s.metrics.Submission(metrics.OutcomeInvalid)
		return OutcomeInvalid
	}
	if f, bad := validation.FirstInvalid(validation.Errors(s.validationInputLocked())); bad {
		s.failLocked(MsgInvalidForm)
		s.scrollLocked(f)
		s.mu.Unlock()
		s.metrics.Submission(metrics.OutcomeInvalid)
		return OutcomeInvalid
	}

	s.submitting = true
	s.status = StatusUploading
	s.cooldownMs = nil
	photos := append([]model.Photo(nil), s.photos...)
	d := s.draft
	trustAck, policies := s.trustAck, s.policies
	started := s.startedAt
	key := s.userKey
	s.mu.Unlock()

	begin := time.Now()
	outcome := s.submit(ctx, key, d, photos, trustAck, policies, started)
	s.metrics.ObserveSubmit(time.Since(begin))

	s.mu.Lock()
	s.submitting = false
	s.mu.Unlock()
	return outcome
}

func (s *Session) submit(ctx context.Context, key string, d model.Draft, photos []model.Photo, trustAck, policies bool, started int64) Outcome {
	urls, err := s.uploader.Upload(ctx, photos)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return s.redirectToAuth()
		}
		if isCancel(ctx, err) {
			return s.cancelled()
		}
		s.log.Warnw("photo upload failed", "user", key, "error", err)
		return s.failed(err.Error(), metrics.OutcomeFailed)
	}

	s.mu.Lock()
	s.status = StatusCreating
	s.mu.Unlock()

	p, err := s.payload(d, urls, trustAck, policies, started)
	if err != nil {
		s.log.Warnw("application payload rejected", "user", key, "error", err)
		return s.failed(MsgInvalidForm, metrics.OutcomeInvalid)
	}
	err = s.api.CreateApplication(ctx, p)
	if err == nil {
		s.succeeded(ctx, key)
		return OutcomeSubmitted
	}
	return s.classify(ctx, key, p, err)
}

// errBadAmount — сумма черновика не читается как целое число.
var errBadAmount = errors.New("amount is not an integer")

func (s *Session) payload(d model.Draft, urls []string, trustAck, policies bool, started int64) (model.ApplicationPayload, error) {
	n, ok := amount.Parse(d.Amount)
	if !ok {
		return model.ApplicationPayload{}, fmt.Errorf("%w: %q", errBadAmount, d.Amount)
	}
	var filled int64
	if started > 0 {
		filled = s.now().UnixMilli() - started
		if filled < 0 {
			filled = 0
		}
	}
	return model.ApplicationPayload{
		SubmissionID:      uuid.NewString(),
		Title:             d.Title,
		Summary:           d.Summary,
		Story:             d.Story,
		Amount:            n,
		Payment:           paymentText(d.BankName, d.Payment),
		ImageURLs:         urls,
		TrustAcknowledged: trustAck,
		PoliciesAccepted:  policies,
		ClientMeta:        model.ClientMeta{FilledMs: filled},
	}, nil
}

// classify разбирает отказ сервера при создании заявки.
func (s *Session) classify(ctx context.Context, key string, p model.ApplicationPayload, err error) Outcome {
	if errors.Is(err, api.ErrUnauthorized) {
		return s.redirectToAuth()
	}
	if isCancel(ctx, err) {
		return s.cancelled()
	}

	var se *api.StatusError
	if !errors.As(err, &se) {
		s.log.Warnw("application create failed", "user", key, "error", err)
		return s.failed(MsgSubmitFailed, metrics.OutcomeFailed)
	}
	text := se.Body.Text()

	switch {
	case se.Status == http.StatusForbidden && se.Body.RequiresActivity:
		if err := s.bridge.Save(context.WithoutCancel(ctx), p); err != nil {
			s.log.Warnw("pending application not saved", "error", err)
		}
		s.mu.Lock()
		s.activity = &ActivityPrompt{Type: se.Body.ActivityType, Message: text}
		s.status = StatusRedirectedPending
		s.mu.Unlock()
		s.metrics.Submission(metrics.OutcomeActivityRequired)
		s.log.Infow("activity required", "user", key, "activityType", se.Body.ActivityType)
		return OutcomeActivityRequired

	case se.Status == http.StatusForbidden && se.Body.RequiresReview:
		return s.failed(orDefault(text, MsgReviewRequired), metrics.OutcomeReviewRequired)

	case se.Status == http.StatusTooManyRequests:
		if se.Body.LeftMs != nil {
			left := *se.Body.LeftMs
			s.mu.Lock()
			s.cooldownMs = &left
			s.mu.Unlock()
			return s.failed(MsgCooldown, metrics.OutcomeRateLimited)
		}
		return s.failed(orDefault(text, MsgRateLimited), metrics.OutcomeRateLimited)
	}

	s.log.Warnw("application rejected", "user", key, "status", se.Status, "error", text)
	return s.failed(orDefault(text, MsgSubmitFailed), metrics.OutcomeFailed)
}

func (s *Session) succeeded(ctx context.Context, key string) {
	s.mu.Lock()
	s.resetLocked(s.user, key)
	s.status = StatusSubmitted
	s.mu.Unlock()

	s.storage.Clear(context.WithoutCancel(ctx), key)
	s.metrics.Submission(metrics.OutcomeSubmitted)
	s.log.Infow("application submitted", "user", key)
}

// redirectToAuth — сессия истекла: это переход ко входу, а не ошибка.
func (s *Session) redirectToAuth() Outcome {
	s.mu.Lock()
	s.authRedirect = &AuthRedirect{Next: s.next}
	s.status = StatusEditing
	s.mu.Unlock()
	s.metrics.Submission(metrics.OutcomeAuthRequired)
	return OutcomeAuthRequired
}

func (s *Session) failed(msg, outcome string) Outcome {
	s.mu.Lock()
	s.failLocked(msg)
	s.mu.Unlock()
	s.metrics.Submission(outcome)
	return OutcomeFailed
}

func (s *Session) cancelled() Outcome {
	s.mu.Lock()
	s.failLocked(MsgCancelled)
	s.mu.Unlock()
	s.metrics.Submission(metrics.OutcomeCancelled)
	return OutcomeCancelled
}

func (s *Session) failLocked(msg string) {
	s.errMsg = msg
	s.status = StatusError
}

func (s *Session) scrollLocked(f validation.Field) {
	s.scrollTo = f
	s.scrollSignal++
}

func isCancel(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// ResumePending повторно отправляет отложенную заявку после выполненного
// действия и открывает форму заново, чтобы показать результат.
func (s *Session) ResumePending(ctx context.Context) error {
	if err := s.bridge.Resume(ctx, s.api); err != nil {
		return err
	}
	s.Mount(ctx)
	return nil
}
