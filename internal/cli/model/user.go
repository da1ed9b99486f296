package model

import (
	"bytes"
	"encoding/json"
)

// AnonUser — суффикс ключей хранилища до авторизации.
const AnonUser = "anon"

// UserID принимает id пользователя и строкой, и числом.
type UserID string

// UnmarshalJSON декодирует id из строки или числа.
func (id *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = UserID(n.String())
	return nil
}

// User — текущий пользователь из /api/profile/me.
type User struct {
	ID    UserID `json:"id"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

// IsAdmin — админы не ограничены лимитами суммы.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == "admin"
}

// StorageKey возвращает суффикс ключей хранилища для пользователя.
func (u *User) StorageKey() string {
	if u == nil || u.ID == "" {
		return AnonUser
	}
	return string(u.ID)
}
