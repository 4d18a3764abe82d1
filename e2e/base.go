package e2e

import (
	"chat-relay/client"
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

type BaseRelaySuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseRelaySuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.RelayURL == "" {
		s.T().Skip("E2E_RELAY_URL not set")
	}
}

func (s *BaseRelaySuite) step(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// WithSession registers username, joins the room and hands the session to fn.
func (s *BaseRelaySuite) WithSession(name, username string, fn func(ctx context.Context, session *client.Session)) {
	s.step(s.T(), name)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cookie, err := client.Register(ctx, http.DefaultClient, s.Config.RelayURL, username)
	s.Require().NoError(err, "Failed to register "+username)
	session, err := client.Dial(ctx, s.Config.RelayURL, cookie)
	s.Require().NoError(err, "Failed to join the room at "+s.Config.RelayURL)
	defer session.Close()

	fn(ctx, session)
}

// WithHealth provides a gRPC health client on the relay's health port.
func (s *BaseRelaySuite) WithHealth(name string, fn func(ctx context.Context, client grpc_health_v1.HealthClient)) {
	s.step(s.T(), name)
	conn, err := grpc.NewClient(s.Config.HealthAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	s.Require().NoError(err, "Failed to connect to gRPC server at "+s.Config.HealthAddr)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	fn(ctx, grpc_health_v1.NewHealthClient(conn))
}
