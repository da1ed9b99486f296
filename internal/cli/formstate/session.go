// Package formstate — состояние формы подачи заявки: восстановление черновика,
// сохранение изменений, проверка и двухфазная отправка.
package formstate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"AidDesk/internal/cli/amount"
	"AidDesk/internal/cli/draft"
	"AidDesk/internal/cli/model"
	"AidDesk/internal/cli/pending"
	"AidDesk/internal/cli/trust"
	"AidDesk/internal/cli/upload"
	"AidDesk/internal/cli/validation"
	"AidDesk/internal/metrics"
)

// Status — этап жизненного цикла формы.
type Status string

const (
	StatusIdle              Status = "idle"
	StatusRestoring         Status = "restoring"
	StatusEditing           Status = "editing"
	StatusUploading         Status = "uploading"
	StatusCreating          Status = "creating"
	StatusSubmitted         Status = "submitted"
	StatusError             Status = "error"
	StatusRedirectedPending Status = "redirected_pending"
)

// DefaultDebounce — задержка сохранения черновика после изменения поля.
const DefaultDebounce = 250 * time.Millisecond

// ErrTooManyPhotos — попытка добавить фото сверх лимита.
var ErrTooManyPhotos = fmt.Errorf("Можно добавить не больше %d фото", validation.MaxPhotos)

// API — серверные вызовы, нужные форме.
type API interface {
	trust.Source
	upload.Transport
	Me(ctx context.Context) (*model.User, error)
	CreateApplication(ctx context.Context, p model.ApplicationPayload) error
}

// AuthRedirect — нужно открыть окно входа и затем вернуться на Next.
type AuthRedirect struct {
	Next string
}

// ActivityPrompt — сервер требует выполнить действие перед созданием заявки.
type ActivityPrompt struct {
	Type    string
	Message string
}

// Deps — зависимости сессии. Обязательны API, Storage и Bridge.
type Deps struct {
	API        API
	Storage    *draft.Storage
	Bridge     *pending.Bridge
	Scheduler  amount.Scheduler
	Metrics    *metrics.Metrics
	Logger     *zap.SugaredLogger
	Debounce   time.Duration
	ReturnPath string
	Now        func() time.Time
}

// Session — одна открытая форма.
type Session struct {
	api      API
	storage  *draft.Storage
	bridge   *pending.Bridge
	uploader *upload.Uploader
	metrics  *metrics.Metrics
	log      *zap.SugaredLogger
	debounce time.Duration
	next     string
	now      func() time.Time
	amountIn *amount.Input

	mu        sync.Mutex
	mountGen  uint64
	status    Status
	user      *model.User
	userKey   string
	draft     model.Draft
	photos    []model.Photo
	trustAck  bool
	policies  bool
	introAck  bool
	startedAt int64
	caret     int

	trust         trust.State
	trustResolved bool
	trustDone     chan struct{}

	errMsg       string
	ackErr       bool
	scrollSignal int
	scrollTo     validation.Field
	activity     *ActivityPrompt
	cooldownMs   *int64
	authRedirect *AuthRedirect
	submitting   bool

	saveTimer *time.Timer
	saveGen   uint64
	dirty     bool
}

// New создаёт сессию в состоянии idle. Перед работой нужен Mount.
func New(d Deps) *Session {
	if d.Logger == nil {
		d.Logger = zap.NewNop().Sugar()
	}
	if d.Debounce <= 0 {
		d.Debounce = DefaultDebounce
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.ReturnPath == "" {
		d.ReturnPath = "/applications/new"
	}
	if d.Scheduler == nil {
		d.Scheduler = &amount.QueueScheduler{}
	}
	s := &Session{
		api:       d.API,
		storage:   d.Storage,
		bridge:    d.Bridge,
		uploader:  upload.New(d.API, d.Metrics),
		metrics:   d.Metrics,
		log:       d.Logger,
		debounce:  d.Debounce,
		next:      d.ReturnPath,
		now:       d.Now,
		status:    StatusIdle,
		userKey:   model.AnonUser,
		trust:     trust.Unresolved(),
		trustDone: make(chan struct{}),
	}
	s.amountIn = amount.NewInput(d.Scheduler, s, s.commitAmount)
	return s
}

// Mount открывает форму: определяет пользователя, восстанавливает черновик
// и подтверждения, забирает отметку об успехе отложенной заявки и запускает
// определение уровня доверия в фоне. Повторный Mount открывает форму заново.
func (s *Session) Mount(ctx context.Context) {
	s.Flush()

	s.mu.Lock()
	s.mountGen++
	gen := s.mountGen
	s.status = StatusRestoring
	s.trust = trust.Unresolved()
	s.trustResolved = false
	s.trustDone = make(chan struct{})
	done := s.trustDone
	s.mu.Unlock()

	user, err := s.api.Me(ctx)
	if err != nil {
		s.log.Warnw("auth probe failed, continuing anonymously", "error", err)
		user = nil
	}
	key := user.StorageKey()

	if s.bridge.ConsumeSuccess(ctx) {
		s.storage.Clear(ctx, key)
		s.mu.Lock()
		s.resetLocked(user, key)
		s.introAck = s.storage.IntroAcknowledged(ctx, key)
		s.status = StatusSubmitted
		s.mu.Unlock()
		s.log.Infow("pending application completed", "user", key)
	} else {
		d := s.storage.Load(ctx, key)
		trustAck := s.storage.TrustAcknowledged(ctx, key)
		policies := s.storage.PoliciesAccepted(ctx, key)
		intro := s.storage.IntroAcknowledged(ctx, key)
		started := s.storage.EnsureFormStarted(ctx, key, s.now())

		s.mu.Lock()
		s.resetLocked(user, key)
		s.draft = d
		s.trustAck = trustAck
		s.policies = policies
		s.introAck = intro
		s.startedAt = started
		s.status = StatusEditing
		s.mu.Unlock()
	}

	if user == nil {
		close(done)
		return
	}
	resolver := trust.NewResolver(s.api, s.log)
	go func() {
		st := resolver.Resolve(ctx)
		s.mu.Lock()
		if gen == s.mountGen {
			s.trust = st
			s.trustResolved = true
		}
		s.mu.Unlock()
		close(done)
	}()
}

// WaitTrust ждёт окончания определения уровня доверия.
func (s *Session) WaitTrust(ctx context.Context) error {
	s.mu.Lock()
	done := s.trustDone
	s.mu.Unlock()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// resetLocked сбрасывает всё состояние формы, кроме статуса.
func (s *Session) resetLocked(user *model.User, key string) {
	s.user = user
	s.userKey = key
	s.draft = model.Draft{}
	s.photos = nil
	s.trustAck = false
	s.policies = false
	s.startedAt = 0
	s.caret = 0
	s.errMsg = ""
	s.ackErr = false
	s.scrollTo = ""
	s.activity = nil
	s.cooldownMs = nil
	s.authRedirect = nil
	s.cancelSaveLocked()
	// хранилище уже очищено, пустой черновик записывать нельзя
	s.dirty = false
}

func (s *Session) SetTitle(v string)    { s.edit(func(d *model.Draft) { d.Title = v }) }
func (s *Session) SetSummary(v string)  { s.edit(func(d *model.Draft) { d.Summary = v }) }
func (s *Session) SetStory(v string)    { s.edit(func(d *model.Draft) { d.Story = v }) }
func (s *Session) SetPayment(v string)  { s.edit(func(d *model.Draft) { d.Payment = v }) }
func (s *Session) SetBankName(v string) { s.edit(func(d *model.Draft) { d.BankName = v }) }

// SetAmountInput обрабатывает ввод в поле суммы: raw — текст поля,
// caret — позиция каретки в символах. Возвращает сохранённые цифры.
// Каретка выставляется после следующей отрисовки через Scheduler.
func (s *Session) SetAmountInput(raw string, caret int) string {
	s.mu.Lock()
	limit := s.trust.InputLimit(s.user.IsAdmin())
	s.mu.Unlock()
	return s.amountIn.Change(raw, caret, limit)
}

// SetCaret запоминает позицию каретки в поле суммы.
func (s *Session) SetCaret(pos int) {
	s.mu.Lock()
	s.caret = pos
	s.mu.Unlock()
}

func (s *Session) commitAmount(digits string) {
	s.edit(func(d *model.Draft) { d.Amount = digits })
}

// AddPhoto добавляет фото в конец списка.
func (s *Session) AddPhoto(f model.PhotoFile) error {
	if f == nil {
		return errors.New("photo file is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.photos) >= validation.MaxPhotos {
		return ErrTooManyPhotos
	}
	s.photos = append(s.photos, model.Photo{File: f, PreviewURL: "blob:" + uuid.NewString()})
	s.touchLocked()
	return nil
}

// RemovePhoto удаляет фото по индексу.
func (s *Session) RemovePhoto(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.photos) {
		return fmt.Errorf("photo index %d out of range", i)
	}
	s.photos = append(s.photos[:i:i], s.photos[i+1:]...)
	s.touchLocked()
	return nil
}

// SetTrustAcknowledged сохраняет подтверждение условий доверия (сессионное).
func (s *Session) SetTrustAcknowledged(ctx context.Context, v bool) {
	s.mu.Lock()
	s.trustAck = v
	s.clearAckErrLocked()
	key := s.userKey
	s.mu.Unlock()
	s.storage.SetTrustAcknowledged(ctx, key, v)
}

// SetPoliciesAccepted сохраняет согласие с правилами (сессионное).
func (s *Session) SetPoliciesAccepted(ctx context.Context, v bool) {
	s.mu.Lock()
	s.policies = v
	s.clearAckErrLocked()
	key := s.userKey
	s.mu.Unlock()
	s.storage.SetPoliciesAccepted(ctx, key, v)
}

// AcknowledgeIntro закрывает вводное окно навсегда для этого пользователя.
func (s *Session) AcknowledgeIntro(ctx context.Context) {
	s.mu.Lock()
	s.introAck = true
	key := s.userKey
	s.mu.Unlock()
	s.storage.SetIntroAcknowledged(ctx, key, true)
}

func (s *Session) clearAckErrLocked() {
	if s.trustAck && s.policies {
		s.ackErr = false
	}
}

// Reset очищает форму и хранилище черновика, начиная новый черновик.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	user, key := s.user, s.userKey
	s.resetLocked(user, key)
	s.status = StatusEditing
	s.mu.Unlock()

	s.storage.Clear(ctx, key)
	started := s.storage.EnsureFormStarted(ctx, key, s.now())

	s.mu.Lock()
	s.startedAt = started
	s.mu.Unlock()
}

// Flush немедленно записывает отложенное сохранение черновика.
func (s *Session) Flush() {
	s.mu.Lock()
	if !s.dirty {
		s.cancelSaveLocked()
		s.mu.Unlock()
		return
	}
	s.cancelSaveLocked()
	s.dirty = false
	key, d := s.userKey, s.draft
	s.mu.Unlock()

	s.save(key, d)
}

func (s *Session) edit(fn func(d *model.Draft)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.draft)
	s.touchLocked()
	s.dirty = true
	s.scheduleSaveLocked()
}

// touchLocked переводит форму в редактирование после правки.
func (s *Session) touchLocked() {
	if s.submitting {
		return
	}
	switch s.status {
	case StatusSubmitted, StatusError, StatusRedirectedPending, StatusIdle:
		s.status = StatusEditing
	}
	if s.startedAt == 0 {
		s.startedAt = s.storage.EnsureFormStarted(context.Background(), s.userKey, s.now())
	}
}

func (s *Session) scheduleSaveLocked() {
	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	s.saveGen++
	gen := s.saveGen
	s.saveTimer = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		if gen != s.saveGen || !s.dirty {
			s.mu.Unlock()
			return
		}
		s.dirty = false
		s.saveTimer = nil
		key, d := s.userKey, s.draft
		s.mu.Unlock()
		s.save(key, d)
	})
}

// cancelSaveLocked отменяет запланированное сохранение; уже запущенный
// таймер увидит новое поколение и ничего не запишет.
func (s *Session) cancelSaveLocked() {
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
	s.saveGen++
}

func (s *Session) save(key string, d model.Draft) {
	s.metrics.DraftSaved()
	s.storage.Save(context.Background(), key, d)
}

func (s *Session) validationInputLocked() validation.Input {
	admin := s.user.IsAdmin()
	return validation.Input{
		Draft:            s.draft,
		PhotoCount:       len(s.photos),
		IsAdmin:          admin,
		WithinTrustRange: s.trust.WithinTrustRange(s.draft.Amount, admin),
		TrustLimits:      s.trust.Limits,
	}
}

// paymentText добавляет банк в начало реквизитов.
func paymentText(bank, payment string) string {
	bank = strings.TrimSpace(bank)
	if bank == "" {
		return payment
	}
	return "Банк: " + bank + "\n" + payment
}
