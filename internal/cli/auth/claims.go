// Package auth разбирает сохранённый токен, чтобы показать, чей он.
// Подпись не проверяется: это делает сервер.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptyToken — токен не задан.
var ErrEmptyToken = errors.New("empty token")

// Claims — поля токена, интересные клиенту.
type Claims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// Expired сообщает, истёк ли токен к моменту now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Inspect читает claims без проверки подписи.
func Inspect(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrEmptyToken
	}
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, fmt.Errorf("parse token: %w", err)
	}
	var c Claims
	c.Subject, _ = mc.GetSubject()
	c.Role, _ = mc["role"].(string)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}
