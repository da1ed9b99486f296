package amount

import (
	"sync"
	"unicode/utf8"
)

// Scheduler откладывает вызов до окончания ближайшей отрисовки.
type Scheduler interface {
	AfterRender(fn func())
}

// CaretTarget — поле ввода, в котором выставляется каретка.
type CaretTarget interface {
	SetCaret(pos int)
}

// Limit — верхняя граница для поля суммы.
type Limit struct {
	Max       int
	Unlimited bool // админы
}

// Input связывает сырое значение поля с состоянием цифр и положением каретки.
// Сначала фиксируются цифры (commit), затем, после отрисовки, ставится каретка.
// Отложенные вызовы от устаревших изменений игнорируются.
type Input struct {
	mu     sync.Mutex
	gen    uint64
	sched  Scheduler
	target CaretTarget
	commit func(digits string)
}

// NewInput создаёт обработчик изменения поля суммы.
func NewInput(sched Scheduler, target CaretTarget, commit func(digits string)) *Input {
	return &Input{sched: sched, target: target, commit: commit}
}

// Change обрабатывает новое значение поля и позицию каретки (в символах).
// Возвращает цифры, которые были зафиксированы.
func (in *Input) Change(raw string, caret int, limit Limit) string {
	before := raw
	if caret >= 0 && caret < utf8.RuneCountInString(raw) {
		before = string([]rune(raw)[:caret])
	}
	digitIndex := CountDigits(before)
	digits := Clamp(StripNonDigits(raw), limit.Max, limit.Unlimited)
	if digitIndex > len(digits) {
		digitIndex = len(digits)
	}

	in.mu.Lock()
	in.gen++
	gen := in.gen
	in.mu.Unlock()

	if in.commit != nil {
		in.commit(digits)
	}
	if in.sched == nil || in.target == nil {
		return digits
	}
	in.sched.AfterRender(func() {
		in.mu.Lock()
		stale := gen != in.gen
		in.mu.Unlock()
		if stale {
			return
		}
		in.target.SetCaret(CaretPosForDigitIndex(FormatAmountRu(digits), digitIndex))
	})
	return digits
}

// QueueScheduler копит отложенные вызовы до Flush. Терминальный клиент
// вызывает Flush после вывода формы.
type QueueScheduler struct {
	mu      sync.Mutex
	pending []func()
}

var _ Scheduler = (*QueueScheduler)(nil)

func (q *QueueScheduler) AfterRender(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// Flush выполняет накопленные вызовы в порядке постановки.
func (q *QueueScheduler) Flush() {
	q.mu.Lock()
	pending := q.pending
	q.pending = nil
	q.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

// Len — число ожидающих вызовов.
func (q *QueueScheduler) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
