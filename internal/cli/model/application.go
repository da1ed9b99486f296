package model

// ClientMeta — клиентские метаданные заявки (сигнал против ботов).
type ClientMeta struct {
	FilledMs int64 `json:"filledMs"`
}

// ApplicationPayload — тело POST /api/applications.
type ApplicationPayload struct {
	SubmissionID      string     `json:"submissionId"`
	Title             string     `json:"title"`
	Summary           string     `json:"summary"`
	Story             string     `json:"story"`
	Amount            int        `json:"amount"`
	Payment           string     `json:"payment"`
	ImageURLs         []string   `json:"imageUrls"`
	Website           string     `json:"website"` // honeypot, у людей всегда пустой
	TrustAcknowledged bool       `json:"trustAcknowledged"`
	PoliciesAccepted  bool       `json:"policiesAccepted"`
	ClientMeta        ClientMeta `json:"clientMeta"`
}
