package interpreter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/BruksfildServices01/barber-assistant/internal/apperr"
)

const chatPrompt = `You are the friendly assistant of %s, a barbershop. Answer briefly in plain text.
You cannot book or cancel appointments yourself: tell customers to send BOOK to book,
CANCEL to cancel, SERVICES for prices, BARBERS for our team and HOURS for opening hours.
Today is %s.`

const extractPrompt = `Extract booking details from the customer's message. Reply with a JSON object
with the string fields "service_type", "date" (YYYY-MM-DD), "time" (HH:MM, 24h) and "barber".
Leave a field empty when the message does not mention it. Today is %s.`

// GeminiInterpreter answers with one chat call and extracts entities with
// a second, JSON-mode call.
type GeminiInterpreter struct {
	client       *genai.Client
	model        string
	businessName string
	now          func() time.Time
	log          *zap.Logger
}

func NewGeminiInterpreter(
	ctx context.Context,
	apiKey string,
	model string,
	businessName string,
	now func() time.Time,
	log *zap.Logger,
) (*GeminiInterpreter, error) {

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiInterpreter{
		client:       client,
		model:        model,
		businessName: businessName,
		now:          now,
		log:          log,
	}, nil
}

func (g *GeminiInterpreter) Close() error {
	return g.client.Close()
}

func (g *GeminiInterpreter) Interpret(
	ctx context.Context,
	text string,
	history []Message,
) (Result, error) {

	today := g.now().Format("Monday, 2006-01-02")

	// -------- reply --------
	chat := g.client.GenerativeModel(g.model)
	chat.SetTemperature(0.4)
	chat.SystemInstruction = genai.NewUserContent(genai.Text(fmt.Sprintf(chatPrompt, g.businessName, today)))

	session := chat.StartChat()
	session.History = toContents(history)

	resp, err := session.SendMessage(ctx, genai.Text(text))
	if err != nil {
		return Result{}, apperr.Upstream("gemini_chat", err)
	}
	reply := textOf(resp)
	if reply == "" {
		return Result{}, apperr.Upstream("gemini_chat", errors.New("empty response"))
	}

	// -------- entities --------
	entities, err := g.extractEntities(ctx, text, today)
	if err != nil {
		g.log.Warn("entity extraction failed", zap.Error(err))
	}

	return Result{Text: reply, Entities: entities}, nil
}

func (g *GeminiInterpreter) extractEntities(ctx context.Context, text, today string) (Entities, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = genai.NewUserContent(genai.Text(fmt.Sprintf(extractPrompt, today)))

	resp, err := model.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return Entities{}, err
	}

	var out Entities
	if err := json.Unmarshal([]byte(textOf(resp)), &out); err != nil {
		return Entities{}, fmt.Errorf("decode entities: %w", err)
	}
	return out, nil
}

func toContents(history []Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return out
}

func textOf(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return strings.TrimSpace(sb.String())
}
