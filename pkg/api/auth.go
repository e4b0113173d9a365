package api

import "time"

// RegisterRequest представляет запрос на регистрацию учетной записи
type RegisterRequest struct {
	Identity  string `json:"identity"`   // email-подобный идентификатор
	Secret    string `json:"secret"`     // пароль в открытом виде (только по TLS)
	FirstName string `json:"first_name"` // имя
	LastName  string `json:"last_name"`  // фамилия
	Role      string `json:"role"`       // тег роли: ADMIN, MANAGER, DEVELOPER, TESTER
}

// RegisterResponse представляет ответ на успешную регистрацию
type RegisterResponse struct {
	AccountID string `json:"account_id"` // UUID учетной записи
	Identity  string `json:"identity"`
	Message   string `json:"message"`
	Enabled   bool   `json:"enabled"` // всегда false до верификации
}

// VerifyRequest представляет запрос на подтверждение email кодом
type VerifyRequest struct {
	Identity string `json:"identity"`
	Code     string `json:"code"` // 6 цифр
}

// ResendRequest представляет запрос на повторную отправку кода
type ResendRequest struct {
	Identity string `json:"identity"`
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Identity string `json:"identity"`
	Secret   string `json:"secret"`
}

// TokenResponse представляет ответ с токенами доступа
type TokenResponse struct {
	AccessToken  string `json:"access_token"`  // JWT access token
	RefreshToken string `json:"refresh_token"` // JWT refresh token
	ExpiresIn    int64  `json:"expires_in"`    // время жизни access token в секундах
}

// MeResponse описывает владельца access токена
type MeResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
	Subject   string    `json:"subject"`
	Roles     []string  `json:"roles"`
}

// MessageResponse представляет ответ с информационным сообщением
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Version string `json:"version,omitempty"`
}
