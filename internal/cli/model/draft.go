package model

import "strings"

// Draft — незавершённая заявка пользователя. Все поля хранятся строками,
// Amount — только цифры без разделителей, Story — HTML.
type Draft struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Story    string `json:"story"`
	Amount   string `json:"amount"`
	Payment  string `json:"payment"`
	BankName string `json:"bankName"`
}

// IsEmpty сообщает, что ни одно поле черновика не заполнено.
func (d Draft) IsEmpty() bool {
	return strings.TrimSpace(d.Title) == "" &&
		strings.TrimSpace(d.Summary) == "" &&
		strings.TrimSpace(d.Story) == "" &&
		d.Amount == "" &&
		strings.TrimSpace(d.Payment) == "" &&
		strings.TrimSpace(d.BankName) == ""
}
