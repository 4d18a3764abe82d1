package web

import (
	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/mocks"
	"chat-relay/observability"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/services"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestServer(t *testing.T) (*httptest.Server, *auth.TokenIssuer) {
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store, err := repositories.NewMessageRepository(db, log)
	require.NoError(t, err)

	manager := runtime.NewBroadcastManager(log, runtime.NewRegistry(), store,
		mocks.NewMockSummarizer(ctrl), mocks.NewMockRecommender(ctrl), runtime.DefaultSettings())
	chatService := services.NewChatService(log, manager, observability.NewMonitoringManager(log, manager), nil, 200)
	tokens := auth.NewTokenIssuer("a-secret-long-enough-for-hs256", time.Hour)

	server := httptest.NewServer(NewServer(log, chatService, tokens, time.Hour, 4096).Handler())
	t.Cleanup(server.Close)
	return server, tokens
}

func register(t *testing.T, server *httptest.Server, username string) *http.Cookie {
	resp, err := http.Post(server.URL+"/api/register", "application/json",
		strings.NewReader(`{"username":"`+username+`"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == auth.CookieName {
			require.True(t, c.HttpOnly)
			return c
		}
	}
	require.FailNow(t, "identity cookie not set")
	return nil
}

func dial(t *testing.T, ctx context.Context, server *httptest.Server, cookie *http.Cookie) *websocket.Conn {
	header := http.Header{}
	header.Add("Cookie", cookie.String())
	c, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(server.URL, "http")+"/api/chat",
		&websocket.DialOptions{HTTPHeader: header})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.CloseNow() })
	return c
}

func read(t *testing.T, ctx context.Context, c *websocket.Conn) domain.WireEnvelope {
	var envelope domain.WireEnvelope
	require.NoError(t, wsjson.Read(ctx, c, &envelope))
	return envelope
}

func TestServer_Register_And_Current_User(t *testing.T) {
	req := require.New(t)
	server, _ := newTestServer(t)

	cookie := register(t, server, "alice")

	r, err := http.NewRequest(http.MethodGet, server.URL+"/api/current_user", nil)
	req.NoError(err)
	r.AddCookie(cookie)
	resp, err := http.DefaultClient.Do(r)
	req.NoError(err)
	defer resp.Body.Close()

	var username string
	req.Equal(http.StatusOK, resp.StatusCode)
	req.NoError(json.NewDecoder(resp.Body).Decode(&username))
	req.Equal("alice", username)
}

func TestServer_Register_Invalid_Username(t *testing.T) {
	req := require.New(t)
	server, _ := newTestServer(t)

	resp, err := http.Post(server.URL+"/api/register", "application/json", strings.NewReader(`{"username":""}`))
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestServer_Current_User_Without_Cookie(t *testing.T) {
	req := require.New(t)
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/current_user")
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_Chat_Rejects_Anonymous_Before_Upgrade(t *testing.T) {
	req := require.New(t)
	server, _ := newTestServer(t)

	_, resp, err := websocket.Dial(context.Background(), "ws"+strings.TrimPrefix(server.URL, "http")+"/api/chat", nil)

	req.Error(err)
	req.NotNil(resp)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_Chat_Page_Redirects_Anonymous(t *testing.T) {
	req := require.New(t)
	server, _ := newTestServer(t)
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}

	resp, err := client.Get(server.URL + "/chat")
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusSeeOther, resp.StatusCode)
	req.Equal("/", resp.Header.Get("Location"))
}

func TestServer_Chat_Relays_Between_Participants(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server, tokens := newTestServer(t)

	bobToken, err := tokens.GenerateToken("bob")
	req.NoError(err)
	bob := dial(t, ctx, server, auth.IdentityCookie(bobToken, 3600))
	req.Equal(domain.WireEnvelope{Location: domain.LocationPresence, Sender: "bob", Message: "joined"}, read(t, ctx, bob))

	alice := dial(t, ctx, server, register(t, server, "alice"))
	req.Equal(domain.WireEnvelope{Location: domain.LocationPresence, Sender: "alice", Message: "joined"}, read(t, ctx, alice))
	req.Equal(domain.WireEnvelope{Location: domain.LocationPresence, Sender: "alice", Message: "joined"}, read(t, ctx, bob))

	// When alice sends garbage, then a frame pretending to be bob
	req.NoError(alice.Write(ctx, websocket.MessageText, []byte("not json")))
	req.NoError(wsjson.Write(ctx, alice, domain.InboundFrame{Sender: "bob", Message: "hi bob"}))

	// Then both see the message, attributed to alice
	expected := domain.WireEnvelope{Location: domain.LocationChat, Sender: "alice", Message: "hi bob"}
	req.Equal(expected, read(t, ctx, bob))
	req.Equal(expected, read(t, ctx, alice))

	// When alice leaves
	req.NoError(alice.Close(websocket.StatusNormalClosure, ""))

	// Then bob is told
	req.Equal(domain.WireEnvelope{Location: domain.LocationPresence, Sender: "alice", Message: "left"}, read(t, ctx, bob))
}

func TestServer_Status(t *testing.T) {
	req := require.New(t)
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/status")
	req.NoError(err)
	defer resp.Body.Close()

	var stats observability.RelayStats
	req.Equal(http.StatusOK, resp.StatusCode)
	req.NoError(json.NewDecoder(resp.Body).Decode(&stats))
	req.Zero(stats.Participants)
	req.Zero(stats.PendingTokens)
}
