// Package mail delivers verification codes to account owners.
package mail

import (
	"fmt"
	"time"
)

// VerificationMessage renders subject and body of a verification mail
func VerificationMessage(code string, window time.Duration) (string, string) {
	subject := "Your verification code"
	body := fmt.Sprintf(
		"Your verification code is %s.\r\n\r\nThe code is valid for %d minutes. "+
			"If it expires, request a new one.\r\n",
		code, int(window.Minutes()),
	)
	return subject, body
}
