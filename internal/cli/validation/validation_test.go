package validation

import (
	"strings"
	"testing"

	"AidDesk/internal/cli/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() Input {
	return Input{
		Draft: model.Draft{
			Title:    "Помощь Маше",
			Summary:  "Сбор на реабилитацию",
			Story:    "<p>Маше нужна <b>реабилитация</b> после операции.</p>",
			Amount:   "1500",
			Payment:  "2200 7000 1234 5678",
			BankName: "Т-Банк",
		},
		PhotoCount:       1,
		WithinTrustRange: true,
		TrustLimits:      model.Limits{Min: 50, Max: 2000},
	}
}

func TestStoryTextLen(t *testing.T) {
	assert.Equal(t, 0, StoryTextLen(""))
	assert.Equal(t, 0, StoryTextLen("<p>  </p>"))
	assert.Equal(t, 6, StoryTextLen("<p>при <i>вет</i></p>"))
	assert.Equal(t, 6, StoryTextLen("abc\n\t def"))
}

func TestErrors_ValidInput(t *testing.T) {
	in := validInput()
	assert.Empty(t, Errors(in))
	assert.True(t, IsValid(in))
}

func TestErrors_EachField(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*Input)
		field Field
		msg   string
	}{
		{"empty title", func(in *Input) { in.Draft.Title = "  " }, FieldTitle, "Укажите заголовок"},
		{"long title", func(in *Input) { in.Draft.Title = strings.Repeat("я", 41) }, FieldTitle, "Заголовок — не больше 40 символов"},
		{"empty summary", func(in *Input) { in.Draft.Summary = "" }, FieldSummary, "Укажите краткое описание"},
		{"long summary", func(in *Input) { in.Draft.Summary = strings.Repeat("a", 61) }, FieldSummary, "Краткое описание — не больше 60 символов"},
		{"short story", func(in *Input) { in.Draft.Story = "<p>коротко</p>" }, FieldStory, "История — минимум 10 символов"},
		{"long story", func(in *Input) { in.Draft.Story = strings.Repeat("x", 3001) }, FieldStory, "История — не больше 3000 символов"},
		{"empty amount", func(in *Input) { in.Draft.Amount = "" }, FieldAmount, "Укажите сумму"},
		{"below min", func(in *Input) { in.Draft.Amount = "49" }, FieldAmount, "Минимальная сумма — 50 ₽"},
		{"above max", func(in *Input) { in.Draft.Amount = "5001" }, FieldAmount, "Максимальная сумма — 5 000 ₽"},
		{"outside trust", func(in *Input) { in.WithinTrustRange = false }, FieldAmount, "Для вашего уровня доверия доступна сумма от 50 до 2 000 ₽"},
		{"empty bank", func(in *Input) { in.Draft.BankName = " " }, FieldBankName, "Укажите банк"},
		{"short payment", func(in *Input) { in.Draft.Payment = "123" }, FieldPayment, "Реквизиты — минимум 10 символов"},
		{"long payment", func(in *Input) { in.Draft.Payment = strings.Repeat("1", 201) }, FieldPayment, "Реквизиты — не больше 200 символов"},
		{"no photos", func(in *Input) { in.PhotoCount = 0 }, FieldPhotos, "Добавьте хотя бы одно фото"},
		{"too many photos", func(in *Input) { in.PhotoCount = 6 }, FieldPhotos, "Не больше 5 фото"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mut(&in)
			errs := Errors(in)
			require.Len(t, errs, 1, "%v", errs)
			assert.Equal(t, tc.msg, errs[tc.field])
			assert.False(t, IsValid(in))
		})
	}
}

func TestErrors_AmountShortCircuits(t *testing.T) {
	in := validInput()
	in.Draft.Amount = "6000"
	in.WithinTrustRange = false
	// выше глобального максимума — сообщение о доверии не показывается
	assert.Equal(t, "Максимальная сумма — 5 000 ₽", Errors(in)[FieldAmount])
}

func TestErrors_AdminBypass(t *testing.T) {
	in := validInput()
	in.IsAdmin = true
	in.Draft.Amount = "250000"
	in.Draft.Payment = strings.Repeat("1", 500)
	in.WithinTrustRange = true
	assert.Empty(t, Errors(in))

	in.Draft.Amount = "10"
	assert.Equal(t, "Минимальная сумма — 50 ₽", Errors(in)[FieldAmount])
}

func TestErrors_AdminAmountMustFitInt(t *testing.T) {
	in := validInput()
	in.IsAdmin = true
	in.Draft.Amount = "10000000000000000000"
	assert.Equal(t, "Сумма слишком большая", Errors(in)[FieldAmount])
	assert.False(t, IsValid(in))

	in.Draft.Amount = "12a"
	assert.Equal(t, "Сумма должна быть целым числом", Errors(in)[FieldAmount])

	in.Draft.Amount = "999999999999999999"
	assert.Empty(t, Errors(in))
}

func TestErrors_TitleCountsRunes(t *testing.T) {
	in := validInput()
	in.Draft.Title = strings.Repeat("ж", 40)
	assert.True(t, IsValid(in))
}

func TestErrorsAndIsValidAgree(t *testing.T) {
	inputs := []Input{validInput(), {}, {Draft: model.Draft{Title: "x"}}}
	for _, amt := range []string{"", "49", "50", "5000", "5001", "abc"} {
		in := validInput()
		in.Draft.Amount = amt
		inputs = append(inputs, in)
	}
	for _, in := range inputs {
		assert.Equal(t, len(Errors(in)) == 0, IsValid(in))
	}
}

func TestFirstInvalid(t *testing.T) {
	_, ok := FirstInvalid(FieldErrors{})
	assert.False(t, ok)
	f, ok := FirstInvalid(FieldErrors{FieldPhotos: "x", FieldAmount: "y", FieldPayment: "z"})
	assert.True(t, ok)
	assert.Equal(t, FieldAmount, f)
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0, FilledFieldsCount(Input{}))
	assert.Equal(t, 0, ProgressPercentage(Input{}))

	in := validInput()
	assert.Equal(t, 7, FilledFieldsCount(in))
	assert.Equal(t, 100, ProgressPercentage(in))

	// заполненное, но невалидное поле тоже считается
	partial := Input{Draft: model.Draft{Title: "x", Amount: "1"}}
	assert.False(t, IsValid(partial))
	assert.Equal(t, 2, FilledFieldsCount(partial))
	assert.Equal(t, 29, ProgressPercentage(partial))

	partial.Draft.Summary = "y"
	assert.Equal(t, 43, ProgressPercentage(partial))
}
