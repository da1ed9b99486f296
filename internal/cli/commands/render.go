package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"AidDesk/internal/cli/amount"
	"AidDesk/internal/cli/bootstrap"
	"AidDesk/internal/cli/formstate"
	"AidDesk/internal/cli/validation"
)

var fieldLabels = map[validation.Field]string{
	validation.FieldTitle:    "Заголовок",
	validation.FieldSummary:  "Кратко",
	validation.FieldStory:    "История",
	validation.FieldAmount:   "Сумма",
	validation.FieldBankName: "Банк",
	validation.FieldPayment:  "Реквизиты",
	validation.FieldPhotos:   "Фото",
}

func check(v bool) string {
	if v {
		return "[x]"
	}
	return "[ ]"
}

// render печатает форму и выполняет отложенные после отрисовки вызовы.
func render(w io.Writer, app *bootstrap.App) {
	v := app.Form.Snapshot()

	fmt.Fprintf(w, "Статус: %s\n", v.Status)
	if v.User != nil {
		fmt.Fprintf(w, "Пользователь: %s (%s)\n", v.User.ID, v.User.Role)
	} else {
		fmt.Fprintln(w, "Пользователь: не выполнен вход")
	}
	if v.IntroOpen {
		fmt.Fprintln(w, "Перед началом прочитайте, как работают сборы, и выполните intro-ok")
	}

	fmt.Fprintf(w, "%s: %s\n", fieldLabels[validation.FieldTitle], v.Draft.Title)
	fmt.Fprintf(w, "%s: %s\n", fieldLabels[validation.FieldSummary], v.Draft.Summary)
	fmt.Fprintf(w, "%s: %d симв.\n", fieldLabels[validation.FieldStory], validation.StoryTextLen(v.Draft.Story))
	fmt.Fprintf(w, "%s: %s ₽", fieldLabels[validation.FieldAmount], v.AmountDisplay)
	if v.TrustResolved {
		fmt.Fprintf(w, " (уровень %d: %s–%s ₽)", v.Trust.Level,
			amount.FormatAmountRu(fmt.Sprint(v.Trust.Limits.Min)),
			amount.FormatAmountRu(fmt.Sprint(v.Trust.Limits.Max)))
	}
	fmt.Fprintln(w)
	if v.ExceedsTrustLimit {
		fmt.Fprintln(w, "  сумма больше лимита вашего уровня доверия")
	}
	fmt.Fprintf(w, "%s: %s\n", fieldLabels[validation.FieldBankName], v.Draft.BankName)
	fmt.Fprintf(w, "%s: %s\n", fieldLabels[validation.FieldPayment], v.Draft.Payment)

	names := make([]string, 0, len(v.Photos))
	for i, p := range v.Photos {
		names = append(names, fmt.Sprintf("%d:%s", i, p.File.Name()))
	}
	fmt.Fprintf(w, "%s: %d/%d %s\n", fieldLabels[validation.FieldPhotos], len(v.Photos), validation.MaxPhotos, strings.Join(names, " "))

	fmt.Fprintf(w, "Доверие %s  Правила %s\n", check(v.TrustAcknowledged), check(v.PoliciesAccepted))
	fmt.Fprintf(w, "Заполнено: %d/%d (%d%%)\n", v.FilledFields, len(validation.FieldOrder), v.Progress)

	if len(v.Errors) > 0 {
		fmt.Fprintln(w, "Нужно исправить:")
		for _, f := range validation.FieldOrder {
			if msg, ok := v.Errors[f]; ok {
				fmt.Fprintf(w, "  %s: %s\n", fieldLabels[f], msg)
			}
		}
	}
	renderNotices(w, v)

	app.Scheduler.Flush()
}

func renderNotices(w io.Writer, v formstate.View) {
	if v.AckError {
		fmt.Fprintln(w, "Подтвердите условия доверия и правила: ack trust, ack policies")
	}
	if v.Error != "" {
		fmt.Fprintf(w, "Ошибка: %s\n", v.Error)
	}
	if v.ScrollTo != "" && v.Status == formstate.StatusError {
		fmt.Fprintf(w, "Перейдите к полю: %s\n", fieldLabels[v.ScrollTo])
	}
	if v.CooldownMs != nil {
		left := time.Duration(*v.CooldownMs) * time.Millisecond
		fmt.Fprintf(w, "Повторить можно через %s\n", left.Round(time.Minute))
	}
	if v.AuthRedirect != nil {
		fmt.Fprintf(w, "Нужно войти: login <token>, затем вернитесь на %s\n", v.AuthRedirect.Next)
	}
	if v.Activity != nil {
		fmt.Fprintf(w, "Требуется действие %s", v.Activity.Type)
		if v.Activity.Message != "" {
			fmt.Fprintf(w, ": %s", v.Activity.Message)
		}
		fmt.Fprintln(w, "\nПосле выполнения: activity-done")
	}
	if v.Status == formstate.StatusSubmitted {
		fmt.Fprintln(w, "Заявка отправлена")
	}
}
