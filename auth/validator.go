package auth

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=32,excludesall=<>"`
}

func ValidateRegister(req RegisterRequest) error {
	return validate.Struct(req)
}

// ValidateFrame rejects, when maxLength is positive, messages longer than maxLength runes.
// An empty message is valid and counts as one token.
func ValidateFrame(frame domain.InboundFrame, maxLength int) error {
	if maxLength <= 0 {
		return nil
	}
	if err := validate.Var(frame.Message, fmt.Sprintf("max=%d", maxLength)); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidFrame, err)
	}
	return nil
}

// ValidateDocument checks an entry before it reaches the recommendation index.
func ValidateDocument(document domain.Document) error {
	return validate.Struct(document)
}
