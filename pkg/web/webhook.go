package web

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/technvi/voicebridge/internal/log"
	"github.com/technvi/voicebridge/pkg/directory"
	"github.com/technvi/voicebridge/pkg/relay"
	"github.com/technvi/voicebridge/pkg/session"
)

// Greetings spoken before the media stream opens.
const (
	greetingKnown     = "Hey %s! Welcome back to Technvi AI. How can I help you today?"
	greetingDefault   = "Welcome to Technvi AI! How can I help you today?"
	greetingNewCaller = "Welcome to Technvi AI! I see you're a new caller. Are you a contractor or a customer?"
)

// handleWebhook answers an inbound-call notification: it looks the
// caller up, creates the call session, and returns stream markup that
// speaks a greeting and connects the media stream back to this host.
func (s *Server) handleWebhook(c *fiber.Ctx) error {
	caller := requestValue(c, "From", "unknown")
	called := requestValue(c, "To", "unknown")
	callUUID := requestValue(c, "CallUUID", "")

	if callUUID == "" {
		log.Error("webhook without call UUID")
		return answerXML(c, errorXML())
	}

	log.Info("incoming call", "caller", caller, "called", called, "call_id", callUUID)

	ctx := c.Context()

	exists, err := s.opts.Directory.Exists(ctx, caller)
	if err != nil {
		log.Error("directory lookup failed", "caller", caller, "error", err)
		exists = false
	}

	greeting := greetingNewCaller
	instructions := relay.NewCallerInstructions
	var details *directory.Details

	if exists {
		instructions = relay.StandardInstructions
		greeting = greetingDefault

		details, err = s.opts.Directory.Details(ctx, caller)
		if err != nil {
			log.Error("profile lookup failed", "caller", caller, "error", err)
		} else if details.Status == directory.StatusSuccess && details.Data.Name != "" {
			greeting = fmt.Sprintf(greetingKnown, details.Data.Name)
			log.Info("existing caller", "name", details.Data.Name, "email", details.Data.Email)
		}
	} else {
		log.Info("new caller", "caller", caller)
	}

	sess := session.New(callUUID, caller, called)
	sess.UserExists = exists
	sess.UserDetails = details
	sess.Instructions = instructions
	s.opts.Store.Create(sess)

	return answerXML(c, streamXML(greeting, c.Hostname(), callUUID))
}

// requestValue reads a request parameter from the form body or, for GET
// webhooks, the query string.
func requestValue(c *fiber.Ctx, key, def string) string {
	if v := c.FormValue(key); v != "" {
		return v
	}
	if v := c.Query(key); v != "" {
		return v
	}
	return def
}

func answerXML(c *fiber.Ctx, body string) error {
	c.Set(fiber.HeaderContentType, "application/xml")
	return c.SendString(body)
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// streamXML builds the answer markup: speak the greeting, then open a
// bidirectional mu-law media stream back to this host.
func streamXML(greeting, host, callUUID string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<Response>
    <Speak voice="Polly.Amy">%s</Speak>
    <Stream streamTimeout="86400" keepCallAlive="true" bidirectional="true" contentType="audio/x-mulaw;rate=8000" audioTrack="inbound" >
        ws://%s/media-stream/%s
    </Stream>
</Response>`, xmlEscaper.Replace(greeting), host, callUUID)
}

// errorXML apologizes and hangs up.
func errorXML() string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<Response>
    <Speak>Sorry, there was a technical issue. Please try calling again later.</Speak>
    <Hangup/>
</Response>`
}
