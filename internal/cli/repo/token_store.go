// Package repo описывает хранилища клиента, не связанные с формой заявки.
package repo

// TokenStore хранит auth-токен между запусками клиента.
// Load возвращает ошибку, если токена нет: для API-клиента это значит
// "запрос без cookie", а не сбой. Clear идемпотентен.
type TokenStore interface {
	Save(token string) error
	Load() (string, error)
	Clear() error
}
