// Package validation — чистые правила проверки формы заявки.
package validation

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"AidDesk/internal/cli/amount"
	"AidDesk/internal/cli/model"

	"github.com/PuerkitoBio/goquery"
)

// Field — ключ поля формы.
type Field string

const (
	FieldTitle    Field = "title"
	FieldSummary  Field = "summary"
	FieldStory    Field = "story"
	FieldAmount   Field = "amount"
	FieldBankName Field = "bankName"
	FieldPayment  Field = "payment"
	FieldPhotos   Field = "photos"
)

// FieldOrder — порядок проверки и показа ошибок.
var FieldOrder = []Field{FieldTitle, FieldSummary, FieldStory, FieldAmount, FieldBankName, FieldPayment, FieldPhotos}

const (
	TitleMax   = 40
	SummaryMax = 60
	StoryMin   = 10
	StoryMax   = 3000
	PaymentMin = 10
	PaymentMax = 200
	MaxPhotos  = 5
)

// Input — всё, от чего зависит валидность формы.
type Input struct {
	Draft            model.Draft
	PhotoCount       int
	IsAdmin          bool
	WithinTrustRange bool
	TrustLimits      model.Limits
}

// FieldErrors — первая ошибка по каждому невалидному полю.
type FieldErrors map[Field]string

// StoryTextLen — длина текста истории без тегов и пробельных символов.
func StoryTextLen(html string) int {
	if strings.TrimSpace(html) == "" {
		return 0
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0
	}
	n := 0
	for _, r := range doc.Text() {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

func runeLen(s string) int { return utf8.RuneCountInString(strings.TrimSpace(s)) }

// Errors проверяет поля в порядке FieldOrder; по каждому полю — только первая ошибка.
func Errors(in Input) FieldErrors {
	errs := FieldErrors{}
	d := in.Draft

	switch n := runeLen(d.Title); {
	case n == 0:
		errs[FieldTitle] = "Укажите заголовок"
	case n > TitleMax:
		errs[FieldTitle] = fmt.Sprintf("Заголовок — не больше %d символов", TitleMax)
	}

	switch n := runeLen(d.Summary); {
	case n == 0:
		errs[FieldSummary] = "Укажите краткое описание"
	case n > SummaryMax:
		errs[FieldSummary] = fmt.Sprintf("Краткое описание — не больше %d символов", SummaryMax)
	}

	switch n := StoryTextLen(d.Story); {
	case n < StoryMin:
		errs[FieldStory] = fmt.Sprintf("История — минимум %d символов", StoryMin)
	case n > StoryMax:
		errs[FieldStory] = fmt.Sprintf("История — не больше %d символов", StoryMax)
	}

	if msg := amountError(in); msg != "" {
		errs[FieldAmount] = msg
	}

	if strings.TrimSpace(d.BankName) == "" {
		errs[FieldBankName] = "Укажите банк"
	}

	switch n := runeLen(d.Payment); {
	case n < PaymentMin:
		errs[FieldPayment] = fmt.Sprintf("Реквизиты — минимум %d символов", PaymentMin)
	case n > PaymentMax && !in.IsAdmin:
		errs[FieldPayment] = fmt.Sprintf("Реквизиты — не больше %d символов", PaymentMax)
	}

	switch {
	case in.PhotoCount < 1:
		errs[FieldPhotos] = "Добавьте хотя бы одно фото"
	case in.PhotoCount > MaxPhotos:
		errs[FieldPhotos] = fmt.Sprintf("Не больше %d фото", MaxPhotos)
	}
	return errs
}

func amountError(in Input) string {
	raw := strings.TrimSpace(in.Draft.Amount)
	if raw == "" {
		return "Укажите сумму"
	}
	n, ok := amount.Parse(raw)
	if !ok {
		// без верхнего предела у админа сумма всё равно должна помещаться в int
		if amount.CountDigits(raw) == len(raw) {
			return "Сумма слишком большая"
		}
		return "Сумма должна быть целым числом"
	}
	if n < model.MinAmount {
		return fmt.Sprintf("Минимальная сумма — %s ₽", amount.FormatAmountRu(fmt.Sprint(model.MinAmount)))
	}
	if !in.IsAdmin && n > model.MaxAmount {
		return fmt.Sprintf("Максимальная сумма — %s ₽", amount.FormatAmountRu(fmt.Sprint(model.MaxAmount)))
	}
	if !in.WithinTrustRange {
		return fmt.Sprintf("Для вашего уровня доверия доступна сумма от %s до %s ₽",
			amount.FormatAmountRu(fmt.Sprint(in.TrustLimits.Min)),
			amount.FormatAmountRu(fmt.Sprint(in.TrustLimits.Max)))
	}
	return ""
}

// IsValid — все правила выполнены.
func IsValid(in Input) bool {
	return len(Errors(in)) == 0
}

// FirstInvalid — первое невалидное поле в порядке формы.
func FirstInvalid(errs FieldErrors) (Field, bool) {
	for _, f := range FieldOrder {
		if _, ok := errs[f]; ok {
			return f, true
		}
	}
	return "", false
}

// FilledFieldsCount — сколько из семи полей заполнено (без учёта валидности).
func FilledFieldsCount(in Input) int {
	d := in.Draft
	n := 0
	for _, filled := range []bool{
		strings.TrimSpace(d.Title) != "",
		strings.TrimSpace(d.Summary) != "",
		StoryTextLen(d.Story) > 0,
		strings.TrimSpace(d.Amount) != "",
		strings.TrimSpace(d.BankName) != "",
		strings.TrimSpace(d.Payment) != "",
		in.PhotoCount > 0,
	} {
		if filled {
			n++
		}
	}
	return n
}

// ProgressPercentage — доля заполненных полей в процентах, округлённая.
func ProgressPercentage(in Input) int {
	return int(math.Round(float64(FilledFieldsCount(in)) / float64(len(FieldOrder)) * 100))
}
