package models

import "time"

// Account представляет учетную запись в системе
type Account struct {
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	VerificationCode *VerificationCode `json:"-"`          // не более одного активного кода
	ID               string            `json:"id"`         // UUID учетной записи
	Identity         string            `json:"identity"`   // уникальный email-подобный идентификатор
	SecretHash       string            `json:"-"`          // хеш секрета (bcrypt или argon2id)
	FirstName        string            `json:"first_name"` // имя
	LastName         string            `json:"last_name"`  // фамилия
	Roles            []Role            `json:"roles"`      // минимум одна роль
	Enabled          bool              `json:"enabled"`    // false до успешной верификации
}

// RoleTags returns the tags of all roles assigned to the account
func (a *Account) RoleTags() []string {
	tags := make([]string, 0, len(a.Roles))
	for _, r := range a.Roles {
		tags = append(tags, r.Tag)
	}
	return tags
}

// Role представляет роль, назначаемую учетной записи
type Role struct {
	ID   int64  `json:"id"`
	Tag  string `json:"tag"`  // ADMIN, MANAGER, DEVELOPER, TESTER
	Name string `json:"name"` // человекочитаемое название
}

// VerificationCode представляет одноразовый код подтверждения email
type VerificationCode struct {
	ExpiresAt time.Time `json:"expires_at"` // время истечения
	Code      string    `json:"code"`       // ровно 6 цифр
}

// IsExpired reports whether the code is past its expiry at now
func (c *VerificationCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
