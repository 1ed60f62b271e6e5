package api

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"rag/agent"
	"rag/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AskHandler serves the query path over HTTP. Each session ID owns one
// conversation; queries within a session are serialized by the generator.
type AskHandler struct {
	logger       *slog.Logger
	newGenerator func() *agent.Generator

	mu       sync.Mutex
	sessions map[string]*agent.Generator
}

func NewAskHandler(newGenerator func() *agent.Generator) *AskHandler {
	return &AskHandler{
		logger:       slog.Default(),
		newGenerator: newGenerator,
		sessions:     make(map[string]*agent.Generator),
	}
}

func (h *AskHandler) HandleAsk(c *fiber.Ctx) error {
	var params types.AskParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	if errors := types.Validate(&params); len(errors) > 0 {
		return types.NewValidationError(errors)
	}

	sessionID := params.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	generator := h.session(sessionID)

	res, err := generator.Ask(c.Context(), params.Prompt)
	if err != nil {
		h.logger.Error("failed to resolve query", "session", sessionID, "error", err)
		return NewError(fiber.StatusBadGateway, "failed to generate an answer, please try again")
	}

	sources := make([]types.Source, 0, len(res.Sources))
	for _, s := range res.Sources {
		sources = append(sources, types.Source{
			Source: s.Source,
			Page:   s.Page,
			Score:  s.Score,
		})
	}

	return c.JSON(&types.AskResponse{
		SessionID:  sessionID,
		Answer:     res.Answer,
		Confidence: res.Confidence,
		Sources:    sources,
		Timestamp:  time.Now(),
	})
}

// HandleUpload drops a PDF into the corpus directory for the next
// ingestion run.
func (h *AskHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return ErrBadRequest()
	}
	if !strings.HasSuffix(strings.ToLower(file.Filename), ".pdf") {
		return NewError(fiber.StatusBadRequest, "only PDF files are accepted")
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	path := filepath.Join(dataDir, filepath.Base(file.Filename))
	if err := c.SaveFile(file, path); err != nil {
		return fmt.Errorf("save uploaded file: %w", err)
	}
	h.logger.Info("file saved to corpus directory", "path", path)

	return c.JSON(fiber.Map{"result": "ok", "path": path})
}

func (h *AskHandler) session(id string) *agent.Generator {
	h.mu.Lock()
	defer h.mu.Unlock()

	generator, ok := h.sessions[id]
	if !ok {
		generator = h.newGenerator()
		h.sessions[id] = generator
	}
	return generator
}
