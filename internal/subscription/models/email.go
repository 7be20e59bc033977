package models

import (
	"strings"

	"github.com/asaskevich/govalidator"

	dErrors "bulletin/pkg/domain-errors"
)

// SubscriberEmail is an email address that passed syntax validation. The zero
// value is invalid; construct through ParseSubscriberEmail.
type SubscriberEmail struct {
	value string
}

// ParseSubscriberEmail validates raw input into a SubscriberEmail. The check
// requires an @ with a non-empty local part and RFC-style syntax.
func ParseSubscriberEmail(raw string) (SubscriberEmail, error) {
	if strings.TrimSpace(raw) == "" {
		return SubscriberEmail{}, dErrors.New(dErrors.CodeValidation, "subscriber email must not be empty")
	}
	at := strings.IndexByte(raw, '@')
	if at <= 0 {
		return SubscriberEmail{}, dErrors.New(dErrors.CodeValidation, "subscriber email must have a local part and domain")
	}
	if !govalidator.IsEmail(raw) {
		return SubscriberEmail{}, dErrors.New(dErrors.CodeValidation, "subscriber email is not a valid address")
	}
	return SubscriberEmail{value: raw}, nil
}

func (e SubscriberEmail) String() string {
	return e.value
}
