// Package web exposes the service's HTTP surface: the inbound-call
// webhook that answers with stream markup, and the websocket endpoint
// the telephony provider connects to with the call's audio.
package web

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/technvi/voicebridge/internal/log"
	"github.com/technvi/voicebridge/pkg/dispatch"
	"github.com/technvi/voicebridge/pkg/directory"
	"github.com/technvi/voicebridge/pkg/realtime"
	"github.com/technvi/voicebridge/pkg/relay"
	"github.com/technvi/voicebridge/pkg/session"
	"github.com/technvi/voicebridge/pkg/telephony"
)

// Options configures the server.
type Options struct {
	Port       string
	Store      *session.Store
	Directory  directory.Service
	Dispatcher *dispatch.Dispatcher
	PostCall   relay.PostCallProcessor

	// DialAI opens the AI-session leg for one call. Defaults to
	// dialing the Realtime API with OpenAIAPIKey.
	DialAI       func() (relay.AIConn, error)
	OpenAIAPIKey string
}

// Server is the voicebridge HTTP/websocket server.
type Server struct {
	app  *fiber.App
	opts Options
}

// NewServer creates the server and registers its routes.
func NewServer(opts Options) *Server {
	if opts.DialAI == nil {
		opts.DialAI = func() (relay.AIConn, error) {
			client := realtime.NewClient(opts.OpenAIAPIKey)
			if err := client.Connect(); err != nil {
				return nil, err
			}
			return client, nil
		}
	}

	s := &Server{opts: opts}

	app := fiber.New(fiber.Config{
		AppName:               "voicebridge",
		DisableStartupMessage: true,
	})

	app.All("/webhook", s.handleWebhook)

	app.Use("/media-stream", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/media-stream/:callUUID", websocket.New(s.handleMediaStream))

	s.app = app
	return s
}

// Start starts the server. It blocks.
func (s *Server) Start() error {
	log.Info("voicebridge listening", "port", s.opts.Port)
	return s.app.Listen(":" + s.opts.Port)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// handleMediaStream owns the telephony websocket for one call and runs
// the relay until the call ends.
func (s *Server) handleMediaStream(conn *websocket.Conn) {
	callID := conn.Params("callUUID")
	log.Info("media stream connected", "call_id", callID)

	ai, err := s.opts.DialAI()
	if err != nil {
		// No AI leg means no conversation; still run post-call so the
		// session record cannot leak.
		log.Error("AI session connect failed", "call_id", callID, "error", err)
		s.opts.PostCall.Process(context.Background(), callID)
		conn.Close()
		return
	}

	r := &relay.Relay{
		CallID:     callID,
		Store:      s.opts.Store,
		AI:         ai,
		Tel:        telephony.NewConn(conn),
		Dispatcher: s.opts.Dispatcher,
		Directory:  s.opts.Directory,
		PostCall:   s.opts.PostCall,
	}
	r.Run(context.Background())
}
