// Package draft хранит черновик заявки, флаги подтверждений и время начала
// заполнения формы. Хранение best-effort: ошибки логируются и не
// пробрасываются вызывающему коду.
package draft

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"AidDesk/internal/cli/model"
	"AidDesk/internal/cli/store"

	"go.uber.org/zap"
)

// Базовые имена ключей; полный ключ — "{base}:{user}".
const (
	DraftKey       = "applicationDraft"
	TrustAckKey    = "applicationTrustAck"
	PoliciesAckKey = "applicationPoliciesAck"
	IntroAckKey    = "applicationIntroAck"
	FormStartedKey = "applicationFormStartedAt"
)

const flagOn = "1"

// Key собирает ключ хранилища для пользователя ("anon" для пустого).
func Key(base, user string) string {
	if user == "" {
		user = model.AnonUser
	}
	return base + ":" + user
}

// Storage — адаптер двух уровней хранилища: долговременного и сессионного.
type Storage struct {
	durable store.KeyValueStore
	session store.KeyValueStore
	log     *zap.SugaredLogger
}

// New создаёт адаптер.
func New(durable, session store.KeyValueStore, log *zap.SugaredLogger) *Storage {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Storage{durable: durable, session: session, log: log}
}

// Load читает черновик. Отсутствующий или битый JSON даёт пустой черновик,
// нестроковые значения полей заменяются пустой строкой.
func (s *Storage) Load(ctx context.Context, user string) model.Draft {
	raw, ok := s.get(ctx, s.durable, Key(DraftKey, user))
	if !ok || raw == "" {
		return model.Draft{}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		s.log.Warnw("malformed draft in storage", "user", user, "error", err)
		return model.Draft{}
	}
	str := func(k string) string {
		if v, ok := m[k].(string); ok {
			return v
		}
		return ""
	}
	return model.Draft{
		Title:    str("title"),
		Summary:  str("summary"),
		Story:    str("story"),
		Amount:   str("amount"),
		Payment:  str("payment"),
		BankName: str("bankName"),
	}
}

// Save сериализует и записывает черновик.
func (s *Storage) Save(ctx context.Context, user string, d model.Draft) {
	b, err := json.Marshal(d)
	if err != nil {
		s.log.Warnw("draft marshal failed", "user", user, "error", err)
		return
	}
	s.set(ctx, s.durable, Key(DraftKey, user), string(b))
}

// TrustAcknowledged — подтверждение правил доверия (сессионное).
func (s *Storage) TrustAcknowledged(ctx context.Context, user string) bool {
	return s.flag(ctx, s.session, Key(TrustAckKey, user))
}

// SetTrustAcknowledged записывает или снимает подтверждение правил доверия.
func (s *Storage) SetTrustAcknowledged(ctx context.Context, user string, v bool) {
	s.setFlag(ctx, s.session, Key(TrustAckKey, user), v)
}

// PoliciesAccepted — согласие с правилами площадки (сессионное).
func (s *Storage) PoliciesAccepted(ctx context.Context, user string) bool {
	return s.flag(ctx, s.session, Key(PoliciesAckKey, user))
}

// SetPoliciesAccepted записывает или снимает согласие с правилами площадки.
func (s *Storage) SetPoliciesAccepted(ctx context.Context, user string, v bool) {
	s.setFlag(ctx, s.session, Key(PoliciesAckKey, user), v)
}

// IntroAcknowledged читает долговременный флаг; сессионное значение
// (старый двойной формат записи) учитывается, только если долговременного нет.
func (s *Storage) IntroAcknowledged(ctx context.Context, user string) bool {
	key := Key(IntroAckKey, user)
	if v, ok := s.get(ctx, s.durable, key); ok {
		return v == flagOn
	}
	return s.flag(ctx, s.session, key)
}

// SetIntroAcknowledged пишет только в долговременный уровень.
func (s *Storage) SetIntroAcknowledged(ctx context.Context, user string, v bool) {
	s.setFlag(ctx, s.durable, Key(IntroAckKey, user), v)
}

// FormStartedAt возвращает момент начала заполнения (epoch ms).
func (s *Storage) FormStartedAt(ctx context.Context, user string) (int64, bool) {
	raw, ok := s.get(ctx, s.durable, Key(FormStartedKey, user))
	if !ok {
		return 0, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms <= 0 {
		return 0, false
	}
	return ms, true
}

// EnsureFormStarted ставит отметку времени, если её ещё нет, и возвращает действующую.
func (s *Storage) EnsureFormStarted(ctx context.Context, user string, now time.Time) int64 {
	if ms, ok := s.FormStartedAt(ctx, user); ok {
		return ms
	}
	ms := now.UnixMilli()
	s.set(ctx, s.durable, Key(FormStartedKey, user), strconv.FormatInt(ms, 10))
	return ms
}

// Clear удаляет черновик, оба сессионных подтверждения и время начала.
// Подтверждение вступления переживает отправку заявки.
func (s *Storage) Clear(ctx context.Context, user string) {
	s.remove(ctx, s.durable, Key(DraftKey, user))
	s.remove(ctx, s.session, Key(TrustAckKey, user))
	s.remove(ctx, s.session, Key(PoliciesAckKey, user))
	s.remove(ctx, s.durable, Key(FormStartedKey, user))
}

func (s *Storage) flag(ctx context.Context, kv store.KeyValueStore, key string) bool {
	v, ok := s.get(ctx, kv, key)
	return ok && v == flagOn
}

func (s *Storage) setFlag(ctx context.Context, kv store.KeyValueStore, key string, v bool) {
	if v {
		s.set(ctx, kv, key, flagOn)
		return
	}
	s.remove(ctx, kv, key)
}

func (s *Storage) get(ctx context.Context, kv store.KeyValueStore, key string) (string, bool) {
	if kv == nil {
		return "", false
	}
	v, ok, err := kv.Get(ctx, key)
	if err != nil {
		s.log.Warnw("storage read failed", "key", key, "error", err)
		return "", false
	}
	return v, ok
}

func (s *Storage) set(ctx context.Context, kv store.KeyValueStore, key, value string) {
	if kv == nil {
		return
	}
	if err := kv.Set(ctx, key, value); err != nil {
		s.log.Warnw("storage write failed", "key", key, "error", err)
	}
}

func (s *Storage) remove(ctx context.Context, kv store.KeyValueStore, key string) {
	if kv == nil {
		return
	}
	if err := kv.Remove(ctx, key); err != nil {
		s.log.Warnw("storage remove failed", "key", key, "error", err)
	}
}
