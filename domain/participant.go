// Package domain contains core concepts of the chat relay.
// This file defines Participant identity rules.
// No runtime, network, or UI logic should be added here.
package domain

import "chat-relay/errors"

// CheckParticipant accepts any non-empty identity.
// Nothing else is validated here; identity is established by the web layer.
func CheckParticipant(id string) error {
	if id == "" {
		return errors.ErrInvalidIdentity
	}
	return nil
}
