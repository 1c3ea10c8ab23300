package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/PabloGalante/eva-assistant/internal/app/conversation"
	"github.com/PabloGalante/eva-assistant/internal/domain"
)

type Server struct {
	svc *conversation.Service
	hub *Hub
}

// NewServer exposes the assistant session to the UI shell. hub may be nil,
// in which case /events is not served.
func NewServer(svc *conversation.Service, hub *Hub) http.Handler {
	s := &Server{svc: svc, hub: hub}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)

	mux.HandleFunc("GET /participants", s.handleListParticipants)
	mux.HandleFunc("POST /agents/select", s.handleSelectAgent)

	mux.HandleFunc("GET /conversations", s.handleListConversations)
	mux.HandleFunc("POST /conversations", s.handleCreateConversation)
	mux.HandleFunc("GET /conversations/active", s.handleActiveConversation)
	mux.HandleFunc("POST /conversations/{id}/select", s.handleSelectConversation)

	mux.HandleFunc("POST /messages", s.handleSendMessage)
	mux.HandleFunc("GET /suggestions", s.handleSuggestions)

	mux.HandleFunc("GET /tasks", s.handleListTasks)
	mux.HandleFunc("POST /tasks", s.handleCreateTask)
	mux.HandleFunc("POST /tasks/{id}/discuss", s.handleDiscussTask)

	if hub != nil {
		mux.Handle("GET /events", hub)
	}

	return chainMiddlewares(mux, withCORS, withLogging, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type selectAgentRequest struct {
	ParticipantID string `json:"participant_id"`
}

type createConversationRequest struct {
	Title string `json:"title,omitempty"`
}

type conversationSummary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	PreviewText   string    `json:"preview_text"`
	IsSelected    bool      `json:"is_selected"`
	ParticipantID string    `json:"participant_id"`
	TaskID        string    `json:"task_id,omitempty"`
	MessageCount  int       `json:"message_count"`
	State         string    `json:"state"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type conversationResponse struct {
	conversationSummary
	Messages []domain.Message `json:"messages"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type sendMessageResponse struct {
	ConversationID string `json:"conversation_id"`
	State          string `json:"state"`
}

type createTaskRequest struct {
	Title          string                 `json:"title"`
	Description    string                 `json:"description,omitempty"`
	AssignedTo     []string               `json:"assigned_to,omitempty"`
	HumanAssignees []domain.HumanAssignee `json:"human_assignees,omitempty"`
	Priority       string                 `json:"priority,omitempty"`
	DueDate        *time.Time             `json:"due_date,omitempty"`
}

type createTaskResponse struct {
	Task         domain.Task          `json:"task"`
	Conversation *conversationSummary `json:"conversation,omitempty"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"participants": s.svc.ListParticipants(),
		"active_agent": s.svc.ActiveAgent().ID,
	})
}

func (s *Server) handleSelectAgent(w http.ResponseWriter, r *http.Request) {
	var req selectAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.ParticipantID == "" {
		badRequest(w, "participant_id is required")
		return
	}

	if !s.svc.SelectAgent(r.Context(), domain.ParticipantID(req.ParticipantID)) {
		notFound(w, "unknown participant")
		return
	}
	writeJSON(w, http.StatusOK, s.svc.ActiveAgent())
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	convs := s.svc.Conversations()
	out := make([]conversationSummary, 0, len(convs))
	for _, c := range convs {
		out = append(out, s.toSummary(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": out})
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
	}

	conv := s.svc.NewConversation(r.Context(), strings.TrimSpace(req.Title))
	writeJSON(w, http.StatusCreated, s.toResponse(conv))
}

func (s *Server) handleActiveConversation(w http.ResponseWriter, r *http.Request) {
	conv, ok := s.svc.ActiveConversation()
	if !ok {
		notFound(w, "no active conversation")
		return
	}
	writeJSON(w, http.StatusOK, s.toResponse(conv))
}

func (s *Server) handleSelectConversation(w http.ResponseWriter, r *http.Request) {
	id := domain.ConversationID(r.PathValue("id"))
	if !s.svc.SelectConversation(r.Context(), id) {
		notFound(w, "conversation not found")
		return
	}

	conv, _ := s.svc.ActiveConversation()
	writeJSON(w, http.StatusOK, s.toResponse(conv))
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}

	if !s.svc.SendMessage(r.Context(), req.Text) {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "conversation is awaiting a reply",
		})
		return
	}

	conv, _ := s.svc.ActiveConversation()
	writeJSON(w, http.StatusAccepted, sendMessageResponse{
		ConversationID: string(conv.ID),
		State:          string(s.svc.State(conv.ID)),
	})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": nonNil(s.svc.Suggestions())})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks := s.svc.Tasks()
	if tasks == nil {
		tasks = []domain.Task{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	in := domain.TaskInput{
		Title:          req.Title,
		Description:    req.Description,
		HumanAssignees: req.HumanAssignees,
		Priority:       parsePriority(req.Priority),
		DueDate:        req.DueDate,
	}
	for _, id := range req.AssignedTo {
		in.AssignedTo = append(in.AssignedTo, domain.ParticipantID(id))
	}

	task, ok := s.svc.CreateTask(r.Context(), in)
	if !ok {
		badRequest(w, "title is required")
		return
	}

	resp := createTaskResponse{Task: task}
	if conv, ok := s.svc.ActiveConversation(); ok && conv.TaskID == task.ID {
		sum := s.toSummary(conv)
		resp.Conversation = &sum
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleDiscussTask(w http.ResponseWriter, r *http.Request) {
	id := domain.TaskID(r.PathValue("id"))
	conv, ok := s.svc.FindOrOpenTaskConversation(r.Context(), id)
	if !ok {
		notFound(w, "task not found or has no agent assignee")
		return
	}
	writeJSON(w, http.StatusOK, s.toResponse(conv))
}

// ─────────────────────────────────────────────
// Conversation Helpers
// ─────────────────────────────────────────────

func (s *Server) toSummary(c domain.Conversation) conversationSummary {
	return conversationSummary{
		ID:            string(c.ID),
		Title:         c.Title,
		PreviewText:   c.PreviewText,
		IsSelected:    c.Selected,
		ParticipantID: string(c.ParticipantID),
		TaskID:        string(c.TaskID),
		MessageCount:  len(c.Messages),
		State:         string(s.svc.State(c.ID)),
		UpdatedAt:     c.LastMessage().Timestamp,
	}
}

func (s *Server) toResponse(c domain.Conversation) conversationResponse {
	return conversationResponse{
		conversationSummary: s.toSummary(c),
		Messages:            c.Messages,
	}
}

func parsePriority(p string) domain.TaskPriority {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "low":
		return domain.PriorityLow
	case "high":
		return domain.PriorityHigh
	case "medium":
		return domain.PriorityMedium
	default:
		return ""
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func notFound(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": msg,
	})
}
