package formstate

import (
	"AidDesk/internal/cli/amount"
	"AidDesk/internal/cli/model"
	"AidDesk/internal/cli/trust"
	"AidDesk/internal/cli/validation"
)

// View — копия состояния формы для отрисовки.
type View struct {
	Status     Status
	User       *model.User
	Draft      model.Draft
	Photos     []model.Photo
	Submitting bool

	TrustAcknowledged bool
	PoliciesAccepted  bool
	IntroOpen         bool
	FormStartedAt     int64

	AmountDisplay string
	Caret         int

	Trust             trust.State
	TrustResolved     bool
	WithinTrustRange  bool
	ExceedsTrustLimit bool

	Errors       validation.FieldErrors
	Valid        bool
	FilledFields int
	Progress     int

	Error        string
	AckError     bool
	ScrollSignal int
	ScrollTo     validation.Field
	Activity     *ActivityPrompt
	CooldownMs   *int64
	AuthRedirect *AuthRedirect
}

// Snapshot возвращает текущее состояние формы.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	in := s.validationInputLocked()
	errs := validation.Errors(in)
	admin := s.user.IsAdmin()

	v := View{
		Status:            s.status,
		Draft:             s.draft,
		Photos:            append([]model.Photo(nil), s.photos...),
		Submitting:        s.submitting,
		TrustAcknowledged: s.trustAck,
		PoliciesAccepted:  s.policies,
		IntroOpen:         !s.introAck,
		FormStartedAt:     s.startedAt,
		AmountDisplay:     amount.FormatAmountRu(s.draft.Amount),
		Caret:             s.caret,
		Trust:             s.trust,
		TrustResolved:     s.trustResolved,
		WithinTrustRange:  s.trust.WithinTrustRange(s.draft.Amount, admin),
		ExceedsTrustLimit: s.trust.ExceedsTrustLimit(s.draft.Amount, admin),
		Errors:            errs,
		Valid:             len(errs) == 0,
		FilledFields:      validation.FilledFieldsCount(in),
		Progress:          validation.ProgressPercentage(in),
		Error:             s.errMsg,
		AckError:          s.ackErr,
		ScrollSignal:      s.scrollSignal,
		ScrollTo:          s.scrollTo,
	}
	if s.user != nil {
		u := *s.user
		v.User = &u
	}
	if s.activity != nil {
		a := *s.activity
		v.Activity = &a
	}
	if s.cooldownMs != nil {
		c := *s.cooldownMs
		v.CooldownMs = &c
	}
	if s.authRedirect != nil {
		r := *s.authRedirect
		v.AuthRedirect = &r
	}
	return v
}

// UserKey — суффикс ключей хранилища для текущего пользователя.
func (s *Session) UserKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userKey
}
