package models

import (
	"strings"

	"github.com/asaskevich/govalidator"

	dErrors "bulletin/pkg/domain-errors"
)

// SubscriberName is a display name that passed validation. The zero value is
// invalid; construct through ParseSubscriberName.
type SubscriberName struct {
	value string
}

// Characters that could break out of HTML or SQL contexts downstream.
const forbiddenNameCharacters = `/()"<>\{}`

// ParseSubscriberName validates raw input into a SubscriberName. It rejects
// empty or whitespace-only input, names longer than 256 characters, and any
// of the forbidden characters.
func ParseSubscriberName(raw string) (SubscriberName, error) {
	if strings.TrimSpace(raw) == "" {
		return SubscriberName{}, dErrors.New(dErrors.CodeValidation, "subscriber name must not be empty")
	}
	if !govalidator.StringLength(raw, "1", "256") {
		return SubscriberName{}, dErrors.New(dErrors.CodeValidation, "subscriber name must not exceed 256 characters")
	}
	if strings.ContainsAny(raw, forbiddenNameCharacters) {
		return SubscriberName{}, dErrors.New(dErrors.CodeValidation, "subscriber name contains forbidden characters")
	}
	return SubscriberName{value: raw}, nil
}

func (n SubscriberName) String() string {
	return n.value
}
