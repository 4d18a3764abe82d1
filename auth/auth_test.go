package auth

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestToken_Generate_And_Validate(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("a-secret-long-enough-for-hs256", time.Hour)

	token, err := issuer.GenerateToken("alice")
	req.NoError(err)

	claims, err := issuer.ValidateToken(token)
	req.NoError(err)
	req.Equal("alice", claims.Username)
	req.Equal("alice", claims.Subject)
}

func TestToken_Rejected(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("a-secret-long-enough-for-hs256", time.Hour)
	token, err := issuer.GenerateToken("alice")
	req.NoError(err)

	// Signed with another secret
	_, err = NewTokenIssuer("another-secret", time.Hour).ValidateToken(token)
	req.ErrorIs(err, errors.ErrInvalidToken)

	// Garbage
	_, err = issuer.ValidateToken("not.a.token")
	req.ErrorIs(err, errors.ErrInvalidToken)

	// Expired
	expired := NewTokenIssuer("a-secret-long-enough-for-hs256", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.GenerateToken("alice")
	req.NoError(err)
	_, err = issuer.ValidateToken(old)
	req.ErrorIs(err, errors.ErrInvalidToken)
}

func TestRegistrationValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"Valid request", RegisterRequest{"alice"}, false},
		{"Korean nickname", RegisterRequest{"골든리트리버"}, false},
		{"Missing username", RegisterRequest{""}, true},
		{"Markup in username", RegisterRequest{"<b>alice</b>"}, true},
		{"Username too long", RegisterRequest{strings.Repeat("a", 33)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestFrameValidation(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateFrame(domain.InboundFrame{Message: "hello"}, 0))
	req.NoError(ValidateFrame(domain.InboundFrame{Message: "안녕"}, 2))
	req.NoError(ValidateFrame(domain.InboundFrame{Message: ""}, 0))
	req.NoError(ValidateFrame(domain.InboundFrame{Message: ""}, 3))
	req.ErrorIs(ValidateFrame(domain.InboundFrame{Message: "hello"}, 3), errors.ErrInvalidFrame)
}

func TestDocumentValidation(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateDocument(domain.Document{URL: "https://example.com/a", Title: "A"}))
	req.Error(ValidateDocument(domain.Document{URL: "example", Title: "A"}))
	req.Error(ValidateDocument(domain.Document{URL: "https://example.com/a"}))
}
