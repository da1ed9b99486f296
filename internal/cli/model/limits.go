package model

// Глобальные границы суммы сбора (в рублях).
const (
	MinAmount = 50
	MaxAmount = 5000
)

// Limits — допустимый диапазон суммы для уровня доверия.
type Limits struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains проверяет, что сумма лежит в [Min, Max] включительно.
func (l Limits) Contains(amount int) bool {
	return amount >= l.Min && amount <= l.Max
}

// Intersect возвращает более узкий из двух диапазонов.
func (l Limits) Intersect(o Limits) Limits {
	res := l
	if o.Min > res.Min {
		res.Min = o.Min
	}
	if o.Max > 0 && o.Max < res.Max {
		res.Max = o.Max
	}
	return res
}

// TrustSnapshot — уровень доверия, посчитанный сервером.
type TrustSnapshot struct {
	TrustLevel                    int     `json:"trustLevel"`
	Limits                        *Limits `json:"limits,omitempty"`
	EffectiveApprovedApplications *int    `json:"effectiveApprovedApplications,omitempty"`
	ApprovedApplications          *int    `json:"approvedApplications,omitempty"`
}

// ProfileStats — нормализованный ответ /api/profile/stats.
// ApprovedCount == nil, если сервер не прислал количество одобренных заявок.
type ProfileStats struct {
	Trust         *TrustSnapshot
	ApprovedCount *int
}

// ReviewStatus — ответ /api/reviews в части текущего пользователя.
type ReviewStatus struct {
	HasReview bool
}
