package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"rag/model"
	"rag/types"
)

const systemPrompt = `You are an AI assistant that provides information about the Constitution of Nepal 2072.
Be knowledgeable, helpful, friendly, and accurate in providing information based on the document's content.

Important rules:
0. You can greet users and provide information about the Constitution of Nepal 2072.
1. Answer questions related to the Constitution of Nepal 2072.
2. If a question is not about the Constitution, politely refuse to answer.
3. Base your answers solely on the provided context.
4. If the context doesn't contain relevant information, say you don't have enough information to answer accurately.
5. Do not make up or infer information that's not in the context.
6. Your responses must be directly related to the Constitution of Nepal 2072.`

const (
	// DeflectionMessage replaces answers below the confidence threshold.
	DeflectionMessage = "I lack sufficient confidence to answer. Could you rephrase or ask about a different aspect of Nepal's 2072 Constitution?"
	// ParseApologyMessage is returned when the model reply could not be
	// decoded. The triggering turn is not recorded into the conversation.
	ParseApologyMessage = "I'm unable to provide a proper answer. Could you restate your question?"
)

// Result is the outcome of one fully resolved query.
type Result struct {
	Answer     string
	Confidence float64
	Sources    []types.SearchResult
}

// Generator runs the grounded-answer pipeline for one conversation:
// sanitize, retrieve, assemble the prompt, invoke the chat model, parse the
// structured reply, apply the confidence gate and update history.
//
// The conversation is in-memory only and append-only: turns alternate
// user/assistant in submission order and are never reordered or deleted.
type Generator struct {
	logger    *slog.Logger
	chat      model.ChatModel
	retriever *Retriever
	threshold float64

	mu      sync.Mutex
	history []types.Message
}

func NewGenerator(chat model.ChatModel, retriever *Retriever, threshold float64) *Generator {
	return &Generator{
		logger:    slog.Default(),
		chat:      chat,
		retriever: retriever,
		threshold: threshold,
	}
}

// Ask resolves one query end to end. Queries on the same Generator are
// serialized: no two model invocations for one conversation are in flight
// at once.
//
// Retrieval or chat-model failures return a non-nil error and leave the
// conversation untouched. A malformed model reply returns the fixed parse
// apology (nil error) and also leaves the conversation untouched. A
// low-confidence reply returns the deflection message, which is recorded
// into the conversation as the assistant's answer.
func (g *Generator) Ask(ctx context.Context, question string) (*Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sanitized := Sanitize(question)

	contextText, results, err := g.retriever.Context(ctx, sanitized)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	messages := g.buildMessages(contextText, sanitized)

	raw, err := g.chat.Complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	parsed, err := model.ParseStructuredAnswer(raw)
	if err != nil {
		if errors.Is(err, model.ErrParse) {
			g.logger.Warn("could not parse model reply", "error", err)
			return &Result{Answer: ParseApologyMessage}, nil
		}
		return nil, err
	}

	answer := parsed.Answer
	if parsed.Confidence < g.threshold {
		g.logger.Info("confidence below threshold, deflecting",
			"confidence", parsed.Confidence, "threshold", g.threshold)
		answer = DeflectionMessage
	}

	// The deflection, not the suppressed raw answer, becomes part of the
	// conversation, so later turns see what the user actually saw.
	g.history = append(g.history,
		types.Message{Role: types.RoleUser, Content: sanitized},
		types.Message{Role: types.RoleAssistant, Content: answer},
	)

	return &Result{
		Answer:     answer,
		Confidence: parsed.Confidence,
		Sources:    results,
	}, nil
}

func (g *Generator) buildMessages(contextText, question string) []types.Message {
	human := fmt.Sprintf(`Current context:
%s


Question: %s
%s


Remember to follow the important rules outlined in your instructions.`, contextText, question, model.FormatInstructions)

	messages := make([]types.Message, 0, len(g.history)+2)
	messages = append(messages, types.Message{Role: types.RoleSystem, Content: systemPrompt})
	messages = append(messages, g.history...)
	messages = append(messages, types.Message{Role: types.RoleUser, Content: human})
	return messages
}

// History returns a copy of the conversation turns in submission order.
func (g *Generator) History() []types.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]types.Message, len(g.history))
	copy(out, g.history)
	return out
}
