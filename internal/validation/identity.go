package validation

import (
	"fmt"
	"regexp"
)

// IdentityPattern определяет допустимый формат идентификатора (email)
var IdentityPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// RoleTagPattern определяет формат тега роли: заглавные латинские буквы и подчеркивание
var RoleTagPattern = regexp.MustCompile(`^[A-Z][A-Z_]{1,31}$`)

// CodePattern определяет формат кода подтверждения: ровно 6 цифр
var CodePattern = regexp.MustCompile(`^[0-9]{6}$`)

const (
	// MaxIdentityLen максимальная длина идентификатора (RFC 5321)
	MaxIdentityLen = 254
	// MinSecretLen минимальная длина секрета
	MinSecretLen = 6
	// MaxSecretLen максимальная длина секрета (ограничение bcrypt)
	MaxSecretLen = 72
	// MaxNameLen максимальная длина имени и фамилии
	MaxNameLen = 100
)

// ValidateIdentity проверяет, что идентификатор похож на email
func ValidateIdentity(identity string) error {
	if identity == "" {
		return fmt.Errorf("identity cannot be empty")
	}

	if len(identity) > MaxIdentityLen {
		return fmt.Errorf("identity must not exceed %d characters", MaxIdentityLen)
	}

	if !IdentityPattern.MatchString(identity) {
		return fmt.Errorf("identity must be a valid email address")
	}

	return nil
}

// ValidateSecret проверяет минимальные требования к секрету
func ValidateSecret(secret string) error {
	if secret == "" {
		return fmt.Errorf("secret cannot be empty")
	}

	if len(secret) < MinSecretLen {
		return fmt.Errorf("secret must be at least %d characters long", MinSecretLen)
	}

	if len(secret) > MaxSecretLen {
		return fmt.Errorf("secret must not exceed %d bytes", MaxSecretLen)
	}

	return nil
}

// ValidateRoleTag проверяет формат тега роли
func ValidateRoleTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("role cannot be empty")
	}

	if !RoleTagPattern.MatchString(tag) {
		return fmt.Errorf("role must contain only uppercase letters and underscores")
	}

	return nil
}

// ValidateCode проверяет формат кода подтверждения
func ValidateCode(code string) error {
	if !CodePattern.MatchString(code) {
		return fmt.Errorf("code must be exactly 6 digits")
	}
	return nil
}

// ValidateName проверяет длину имени или фамилии
func ValidateName(field, value string) error {
	if len(value) > MaxNameLen {
		return fmt.Errorf("%s must not exceed %d characters", field, MaxNameLen)
	}
	return nil
}
