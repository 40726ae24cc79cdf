package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-assistant/internal/intent"
	"github.com/BruksfildServices01/barber-assistant/internal/notifier"
)

// InboundRouter is satisfied by *intent.Router.
type InboundRouter interface {
	HandleInboundMessage(ctx context.Context, phone, displayName, text string) ([]intent.OutboundMessage, error)
}

// ======================================================
// HANDLER
// ======================================================

// WebhookHandler speaks the WhatsApp Cloud API webhook format.
type WebhookHandler struct {
	router      InboundRouter
	sender      notifier.Sender
	verifyToken string
	log         *zap.Logger
}

func NewWebhookHandler(
	router InboundRouter,
	sender notifier.Sender,
	verifyToken string,
	log *zap.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		router:      router,
		sender:      sender,
		verifyToken: verifyToken,
		log:         log,
	}
}

// ======================================================
// PAYLOAD
// ======================================================

type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Contacts []struct {
					WaID    string `json:"wa_id"`
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
				} `json:"contacts"`
				Messages []struct {
					ID   string `json:"id"`
					From string `json:"from"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// ======================================================
// VERIFY
// ======================================================

func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "" || token == "" {
		c.String(http.StatusBadRequest, "Invalid request")
		return
	}
	if mode != "subscribe" || h.verifyToken == "" || token != h.verifyToken {
		h.log.Warn("webhook verification failed")
		c.String(http.StatusForbidden, "Verification token mismatch")
		return
	}

	h.log.Info("webhook verified")
	c.String(http.StatusOK, challenge)
}

// ======================================================
// RECEIVE
// ======================================================

// Receive answers every message in the payload. Replies go out through
// the channel sender and are echoed in the response body.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid_payload"})
		return
	}

	ctx := c.Request.Context()
	replies := make([]intent.OutboundMessage, 0)

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			names := make(map[string]string, len(change.Value.Contacts))
			for _, ct := range change.Value.Contacts {
				names[ct.WaID] = ct.Profile.Name
			}

			for _, msg := range change.Value.Messages {
				log := h.log.With(zap.String("message_id", msg.ID), zap.String("from", msg.From))

				var out []intent.OutboundMessage
				if msg.Type == "text" {
					var err error
					out, err = h.router.HandleInboundMessage(ctx, msg.From, names[msg.From], msg.Text.Body)
					if err != nil {
						log.Warn("inbound message rejected", zap.Error(err))
						continue
					}
				} else {
					log.Info("non-text message", zap.String("type", msg.Type))
					out = []intent.OutboundMessage{{
						To:   strings.TrimSpace(msg.From),
						Body: "I received your " + msg.Type + ", but I can only process text messages at the moment. Please send a text message with your request.",
					}}
				}

				for _, o := range out {
					if err := h.sender.Send(ctx, o.To, o.Body); err != nil {
						log.Error("deliver reply", zap.Error(err))
					}
				}
				replies = append(replies, out...)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"replies": replies,
	})
}
