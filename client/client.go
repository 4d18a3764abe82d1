// Package client talks to a running relay the way the browser page does:
// register for an identity cookie, then exchange JSON frames over the chat WebSocket.
package client

import (
	"chat-relay/auth"
	"chat-relay/domain"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gookit/color"
)

type Session struct {
	conn *websocket.Conn
}

// Register asks the relay for an identity and returns the cookie carrying it.
func Register(ctx context.Context, httpClient *http.Client, baseURL, username string) (*http.Cookie, error) {
	body := strings.NewReader(fmt.Sprintf(`{"username":%q}`, username))
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(baseURL, "/")+"/api/register", body)
	if err != nil {
		return nil, err
	}
	r.Header.Set("Content-Type", "application/json")
	resp, err := httpClient.Do(r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("register %q: unexpected status %s", username, resp.Status)
	}
	for _, c := range resp.Cookies() {
		if c.Name == auth.CookieName {
			return c, nil
		}
	}
	return nil, fmt.Errorf("register %q: no %s cookie in response", username, auth.CookieName)
}

// Dial opens the chat WebSocket with the given identity cookie.
func Dial(ctx context.Context, baseURL string, cookie *http.Cookie) (*Session, error) {
	header := http.Header{}
	header.Add("Cookie", cookie.String())
	url := "ws" + strings.TrimPrefix(strings.TrimSuffix(baseURL, "/"), "http") + "/api/chat"
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Session{conn: conn}, nil
}

func (s *Session) Say(ctx context.Context, message string) error {
	return wsjson.Write(ctx, s.conn, domain.InboundFrame{Message: message})
}

// Next blocks until the relay broadcasts something.
func (s *Session) Next(ctx context.Context) (domain.WireEnvelope, error) {
	var envelope domain.WireEnvelope
	err := wsjson.Read(ctx, s.conn, &envelope)
	return envelope, err
}

func (s *Session) Close() error {
	return s.conn.Close(websocket.StatusNormalClosure, "")
}

// Render formats an envelope for a terminal. Summaries and recommendations
// come from the relay itself and stand out when colours are on.
func Render(envelope domain.WireEnvelope, colours bool) string {
	var b strings.Builder
	switch envelope.Location {
	case domain.LocationPresence:
		fmt.Fprintf(&b, "* %s %s", envelope.Sender, envelope.Message)
	case domain.LocationSummary, domain.LocationRecommend:
		fmt.Fprintf(&b, "[%s] %s: %s", envelope.Location, envelope.Sender,
			strings.ReplaceAll(envelope.Message, "<br>", "\n  "))
		for _, source := range envelope.Sources {
			fmt.Fprintf(&b, "\n  - %s (%s)", source.Title, source.URL)
		}
	default:
		fmt.Fprintf(&b, "%s: %s", envelope.Sender, envelope.Message)
	}

	if !colours {
		return b.String()
	}
	switch envelope.Location {
	case domain.LocationPresence:
		return color.New(color.FgGray).Render(b.String())
	case domain.LocationSummary:
		return color.New(color.BgBlack, color.FgGreen).Render(b.String())
	case domain.LocationRecommend:
		return color.New(color.BgBlack, color.FgCyan).Render(b.String())
	}
	return b.String()
}
