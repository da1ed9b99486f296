// Package trust определяет уровень доверия пользователя и допустимый
// диапазон суммы сбора для этого уровня.
package trust

import (
	"context"

	"AidDesk/internal/cli/amount"
	"AidDesk/internal/cli/model"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source — источник данных для определения доверия.
type Source interface {
	ProfileStats(ctx context.Context) (model.ProfileStats, error)
	ReviewStatus(ctx context.Context) (model.ReviewStatus, error)
}

// levelMax — верхняя граница суммы по уровням доверия.
var levelMax = []int{1000, 2000, 3000, 4000, model.MaxAmount}

// LevelForApprovedCount — уровень доверия по числу одобренных заявок.
func LevelForApprovedCount(n int) int {
	switch {
	case n >= 10:
		return 4
	case n >= 6:
		return 3
	case n >= 3:
		return 2
	case n >= 1:
		return 1
	default:
		return 0
	}
}

// LimitsForLevel — диапазон суммы для уровня.
func LimitsForLevel(level int) model.Limits {
	if level < 0 {
		level = 0
	}
	if level >= len(levelMax) {
		level = len(levelMax) - 1
	}
	return model.Limits{Min: model.MinAmount, Max: levelMax[level]}
}

// State — результат определения доверия. Нулевое значение означает
// "ещё не известно" и ничего не блокирует.
type State struct {
	// ApprovedKnown — удалось узнать число одобренных заявок.
	ApprovedKnown bool
	ApprovedCount int
	Level         int
	Limits        model.Limits
	Snapshot      *model.TrustSnapshot

	ReviewKnown bool
	HasReview   bool
}

// Unresolved — состояние до ответа сервера.
func Unresolved() State {
	return State{Limits: model.Limits{Min: model.MinAmount, Max: model.MaxAmount}}
}

// FromStats выводит уровень и лимиты из статистики профиля.
func FromStats(st model.ProfileStats) State {
	s := Unresolved()
	if st.ApprovedCount != nil {
		s.ApprovedKnown = true
		s.ApprovedCount = *st.ApprovedCount
	}
	switch {
	case st.Trust != nil:
		s.Snapshot = st.Trust
		s.Level = st.Trust.TrustLevel
		s.Limits = LimitsForLevel(s.Level)
		if st.Trust.Limits != nil {
			s.Limits = s.Limits.Intersect(*st.Trust.Limits)
		}
		// снимок сервера сам по себе означает, что число заявок известно
		s.ApprovedKnown = true
	case s.ApprovedKnown:
		s.Level = LevelForApprovedCount(s.ApprovedCount)
		s.Limits = LimitsForLevel(s.Level)
	}
	return s
}

// WithinTrustRange: админам можно всё; пока число заявок неизвестно — тоже;
// иначе сумма должна лежать в лимитах уровня.
func (s State) WithinTrustRange(digits string, isAdmin bool) bool {
	if isAdmin || !s.ApprovedKnown {
		return true
	}
	n, ok := amount.Parse(digits)
	if !ok {
		return false
	}
	return s.Limits.Contains(n)
}

// ExceedsTrustLimit — сумма известна и больше лимита уровня (для предупреждения).
func (s State) ExceedsTrustLimit(digits string, isAdmin bool) bool {
	if isAdmin || !s.ApprovedKnown {
		return false
	}
	n, ok := amount.Parse(digits)
	return ok && n > s.Limits.Max
}

// InputLimit — верхняя граница для поля ввода суммы.
func (s State) InputLimit(isAdmin bool) amount.Limit {
	if isAdmin {
		return amount.Limit{Max: model.MaxAmount, Unlimited: true}
	}
	if s.ApprovedKnown {
		return amount.Limit{Max: s.Limits.Max}
	}
	return amount.Limit{Max: model.MaxAmount}
}

// Resolver опрашивает статистику и отзывы параллельно. Ошибки каждого
// запроса логируются и не мешают другому.
type Resolver struct {
	src Source
	log *zap.SugaredLogger
}

// NewResolver создаёт резолвер.
func NewResolver(src Source, log *zap.SugaredLogger) *Resolver {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Resolver{src: src, log: log}
}

// Resolve возвращает состояние доверия; при ошибках — частично заполненное.
func (r *Resolver) Resolve(ctx context.Context) State {
	var (
		stats    model.ProfileStats
		statsOK  bool
		review   model.ReviewStatus
		reviewOK bool
	)
	var g errgroup.Group
	g.Go(func() error {
		st, err := r.src.ProfileStats(ctx)
		if err != nil {
			r.log.Warnw("profile stats unavailable", "error", err)
			return nil
		}
		stats, statsOK = st, true
		return nil
	})
	g.Go(func() error {
		rv, err := r.src.ReviewStatus(ctx)
		if err != nil {
			r.log.Warnw("review status unavailable", "error", err)
			return nil
		}
		review, reviewOK = rv, true
		return nil
	})
	_ = g.Wait()

	s := Unresolved()
	if statsOK {
		s = FromStats(stats)
	}
	if reviewOK {
		s.ReviewKnown = true
		s.HasReview = review.HasReview
	}
	return s
}
