package service

import (
	"context"
	"strings"

	"workstation/internal/aiworker"
	"workstation/internal/models"
	"workstation/internal/observability"
	"workstation/internal/repository"
	"workstation/internal/validation"
)

const maxAIMessageLength = 4000

// AIWorkerService runs conversations with the canned assistant personas.
type AIWorkerService struct {
	repo    repository.AIWorkerRepository
	catalog *aiworker.Catalog
}

func NewAIWorkerService(repo repository.AIWorkerRepository, catalog *aiworker.Catalog) *AIWorkerService {
	return &AIWorkerService{repo: repo, catalog: catalog}
}

// SyncCatalog upserts the catalog personas and tools.
func (s *AIWorkerService) SyncCatalog(ctx context.Context) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "aiworker", "SyncCatalog")
	defer func() { observability.EndSpan(span, err) }()

	if err = s.repo.UpsertWorkers(ctx, s.catalog.WorkerModels()); err != nil {
		return err
	}
	return s.repo.UpsertTools(ctx, s.catalog.ToolModels())
}

func (s *AIWorkerService) ListWorkers(ctx context.Context) ([]models.AIWorker, error) {
	return s.repo.ListWorkers(ctx)
}

func (s *AIWorkerService) ListTools(ctx context.Context) ([]models.AITool, error) {
	return s.repo.ListTools(ctx)
}

// StartConversation opens a conversation with the worker of workerType.
func (s *AIWorkerService) StartConversation(ctx context.Context, userID uint, workerType, title string) (*models.AIConversation, error) {
	worker, err := s.repo.GetWorkerByType(ctx, strings.TrimSpace(workerType))
	if err != nil {
		return nil, err
	}

	title = validation.Truncate(validation.SanitizeText(title), 200)
	if title == "" {
		title = "Chat with " + worker.Name
	}
	conv := &models.AIConversation{UserID: userID, WorkerID: worker.ID, Title: title}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}
	conv.Worker = worker
	return conv, nil
}

// SendAIMessage stores the user's message and the persona reply.
func (s *AIWorkerService) SendAIMessage(ctx context.Context, userID, conversationID uint, content string) (_ []models.AIMessage, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "aiworker", "SendAIMessage")
	defer func() { observability.EndSpan(span, err) }()

	text, verr := validation.RequireText("Message", content, maxAIMessageLength)
	if verr != nil {
		return nil, models.NewValidationError(verr.Error())
	}
	conv, err := s.owned(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.Worker == nil {
		return nil, models.NewNotFoundError("AI worker", conv.WorkerID)
	}
	persona, ok := s.catalog.Persona(conv.Worker.WorkerType)
	if !ok {
		return nil, models.NewValidationError("This AI worker is no longer available")
	}

	turn, err := s.repo.CountMessages(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	userMsg := &models.AIMessage{Sender: models.AIMessageSenderUser, Content: text}
	reply := &models.AIMessage{Sender: models.AIMessageSenderAI, Content: persona.Reply(text, int(turn/2))}
	if err = s.repo.AppendMessages(ctx, conv.ID, userMsg, reply); err != nil {
		return nil, err
	}
	return []models.AIMessage{*userMsg, *reply}, nil
}

func (s *AIWorkerService) ListConversations(ctx context.Context, userID uint) ([]models.AIConversation, error) {
	return s.repo.ListConversations(ctx, userID)
}

// GetConversation returns a conversation owned by userID with its messages.
func (s *AIWorkerService) GetConversation(ctx context.Context, userID, conversationID uint) (*models.AIConversation, error) {
	return s.owned(ctx, userID, conversationID)
}

func (s *AIWorkerService) DeleteConversation(ctx context.Context, userID, conversationID uint) error {
	if _, err := s.owned(ctx, userID, conversationID); err != nil {
		return err
	}
	return s.repo.DeleteConversation(ctx, conversationID)
}

// owned hides other users' conversations behind NotFound.
func (s *AIWorkerService) owned(ctx context.Context, userID, conversationID uint) (*models.AIConversation, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.UserID != userID {
		return nil, models.NewNotFoundError("AI conversation", conversationID)
	}
	return conv, nil
}
