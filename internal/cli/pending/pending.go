// Package pending — одноместный мост для заявки, отправка которой прервана
// требованием выполнить действие на другой странице.
package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"AidDesk/internal/cli/model"
	"AidDesk/internal/cli/store"

	"go.uber.org/zap"
)

// Ключи не привязаны к пользователю: слот один на клиента.
const (
	PayloadKey = "pendingApplication"
	SuccessKey = "pendingApplicationSuccess"
)

// ErrNothingPending — в слоте нет сохранённой заявки.
var ErrNothingPending = errors.New("no pending application")

// Record — сохранённая заявка.
type Record struct {
	Payload model.ApplicationPayload `json:"payload"`
	SavedAt int64                    `json:"savedAt"`
}

// Creator создаёт заявку на сервере.
type Creator interface {
	CreateApplication(ctx context.Context, p model.ApplicationPayload) error
}

// Bridge — единственный слот отложенной заявки в долговременном хранилище.
type Bridge struct {
	kv  store.KeyValueStore
	log *zap.SugaredLogger
	now func() time.Time
}

// New создаёт мост поверх долговременного хранилища.
func New(kv store.KeyValueStore, log *zap.SugaredLogger) *Bridge {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Bridge{kv: kv, log: log, now: time.Now}
}

// Save записывает заявку в слот. Предыдущая несохранённая заявка перезаписывается.
func (b *Bridge) Save(ctx context.Context, p model.ApplicationPayload) error {
	raw, err := json.Marshal(Record{Payload: p, SavedAt: b.now().UnixMilli()})
	if err != nil {
		return fmt.Errorf("encode pending application: %w", err)
	}
	if err := b.kv.Set(ctx, PayloadKey, string(raw)); err != nil {
		return fmt.Errorf("save pending application: %w", err)
	}
	b.log.Infow("pending application saved", "submissionId", p.SubmissionID)
	return nil
}

// Load читает заявку из слота, не удаляя её.
func (b *Bridge) Load(ctx context.Context) (Record, bool) {
	raw, ok, err := b.kv.Get(ctx, PayloadKey)
	if err != nil {
		b.log.Warnw("pending application read failed", "error", err)
		return Record{}, false
	}
	if !ok || raw == "" {
		return Record{}, false
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		b.log.Warnw("pending application is malformed", "error", err)
		return Record{}, false
	}
	return rec, true
}

// MarkSuccess ставит отметку об успешном завершении отложенной заявки.
func (b *Bridge) MarkSuccess(ctx context.Context) error {
	if err := b.kv.Set(ctx, SuccessKey, "1"); err != nil {
		return fmt.Errorf("mark pending success: %w", err)
	}
	return nil
}

// ConsumeSuccess читает и удаляет отметку об успехе.
func (b *Bridge) ConsumeSuccess(ctx context.Context) bool {
	v, ok, err := b.kv.Get(ctx, SuccessKey)
	if err != nil {
		b.log.Warnw("pending success read failed", "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := b.kv.Remove(ctx, SuccessKey); err != nil {
		b.log.Warnw("pending success remove failed", "error", err)
	}
	return v == "1"
}

// Discard очищает слот заявки.
func (b *Bridge) Discard(ctx context.Context) {
	if err := b.kv.Remove(ctx, PayloadKey); err != nil {
		b.log.Warnw("pending application remove failed", "error", err)
	}
}

// Resume повторно отправляет сохранённую заявку. При успехе слот очищается
// и ставится отметка, которую заберёт следующее открытие формы.
func (b *Bridge) Resume(ctx context.Context, c Creator) error {
	rec, ok := b.Load(ctx)
	if !ok {
		return ErrNothingPending
	}
	if err := c.CreateApplication(ctx, rec.Payload); err != nil {
		return err
	}
	b.Discard(ctx)
	if err := b.MarkSuccess(ctx); err != nil {
		return err
	}
	b.log.Infow("pending application resumed", "submissionId", rec.Payload.SubmissionID)
	return nil
}
