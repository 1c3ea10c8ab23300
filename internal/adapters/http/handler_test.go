package httpadapter_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/PabloGalante/eva-assistant/internal/adapters/http"
	"github.com/PabloGalante/eva-assistant/internal/adapters/llm"
	"github.com/PabloGalante/eva-assistant/internal/adapters/storage/memory"
	"github.com/PabloGalante/eva-assistant/internal/app/conversation"
	"github.com/PabloGalante/eva-assistant/internal/domain"
)

// queueScheduler holds reply callbacks until flush is called.
type queueScheduler struct {
	mu    sync.Mutex
	queue []func()
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }

func (q *queueScheduler) AfterFunc(_ time.Duration, f func()) conversation.Timer {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queue = append(q.queue, f)
	return noopTimer{}
}

func (q *queueScheduler) flush() {
	q.mu.Lock()
	queued := q.queue
	q.queue = nil
	q.mu.Unlock()
	for _, f := range queued {
		f()
	}
}

type testEnv struct {
	handler http.Handler
	sched   *queueScheduler
	hub     *httpadapter.Hub
	svc     *conversation.Service
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()

	sched := &queueScheduler{}
	hub := httpadapter.NewHub()
	svc := conversation.NewService(
		memory.NewConversationStore(llm.WelcomeMessage),
		memory.NewTaskStore(),
		conversation.Options{Scheduler: sched, Events: hub},
	)
	t.Cleanup(func() {
		svc.Close()
		hub.Close()
	})

	return &testEnv{
		handler: httpadapter.NewServer(svc, hub),
		sched:   sched,
		hub:     hub,
		svc:     svc,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	env := newTestServer(t)
	w := env.do(t, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	env := newTestServer(t)
	w := env.do(t, http.MethodOptions, "/messages", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSendMessageAndReadReply(t *testing.T) {
	env := newTestServer(t)

	w := env.do(t, http.MethodPost, "/messages", `{"text":"hello"}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	sent := decode[map[string]string](t, w)
	assert.Equal(t, string(domain.ThreadAwaitingReply), sent["state"])

	w = env.do(t, http.MethodPost, "/messages", `{"text":"again"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	env.sched.flush()

	w = env.do(t, http.MethodGet, "/conversations/active", "")
	require.Equal(t, http.StatusOK, w.Code)
	active := decode[struct {
		ID          string           `json:"id"`
		PreviewText string           `json:"preview_text"`
		Messages    []domain.Message `json:"messages"`
	}](t, w)
	require.Len(t, active.Messages, 3)
	assert.Equal(t, "hello", active.PreviewText)
	assert.Equal(t, sent["conversation_id"], active.ID)

	w = env.do(t, http.MethodGet, "/suggestions", "")
	sugg := decode[map[string][]string](t, w)
	assert.Len(t, sugg["suggestions"], llm.SuggestionCount)
}

func TestSendMessageRejectsBlank(t *testing.T) {
	env := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/messages", `{"text":"   "}`).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/messages", `not json`).Code)
}

func TestConversationLifecycle(t *testing.T) {
	env := newTestServer(t)

	w := env.do(t, http.MethodPost, "/agents/select", `{"participant_id":"eva-market"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/agents/select", `{"participant_id":"ghost"}`).Code)

	w = env.do(t, http.MethodPost, "/conversations", `{"title":"Comps"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[map[string]any](t, w)
	assert.Equal(t, "eva-market", created["participant_id"])
	assert.Equal(t, true, created["is_selected"])

	w = env.do(t, http.MethodGet, "/conversations", "")
	list := decode[struct {
		Conversations []struct {
			ID         string `json:"id"`
			IsSelected bool   `json:"is_selected"`
		} `json:"conversations"`
	}](t, w)
	require.Len(t, list.Conversations, 2)
	first := list.Conversations[0].ID

	w = env.do(t, http.MethodPost, "/conversations/"+first+"/select", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first, decode[map[string]any](t, w)["id"])

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/conversations/nope/select", "").Code)
}

func TestCreateTaskEndpoint(t *testing.T) {
	env := newTestServer(t)

	w := env.do(t, http.MethodPost, "/tasks", `{"title":"Review financials","assigned_to":["eva-risk"],"priority":"HIGH"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[struct {
		Task         domain.Task `json:"task"`
		Conversation *struct {
			TaskID       string `json:"task_id"`
			MessageCount int    `json:"message_count"`
		} `json:"conversation"`
	}](t, w)
	assert.Equal(t, domain.TaskPending, resp.Task.Status)
	assert.Equal(t, domain.PriorityHigh, resp.Task.Priority)
	require.NotNil(t, resp.Conversation)
	assert.Equal(t, string(resp.Task.ID), resp.Conversation.TaskID)
	assert.GreaterOrEqual(t, resp.Conversation.MessageCount, 3)

	w = env.do(t, http.MethodPost, "/tasks", `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/tasks", "")
	tasks := decode[map[string][]domain.Task](t, w)
	assert.Len(t, tasks["tasks"], 1)

	w = env.do(t, http.MethodPost, "/tasks/"+string(resp.Task.ID)+"/discuss", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/tasks/missing/discuss", "").Code)
}

func TestParticipantsEndpoint(t *testing.T) {
	env := newTestServer(t)
	env.svc.SetCustomAgents([]domain.CustomAgentConfig{{ID: "cre-bot", Name: "CRE", FullName: "CRE Pricing Bot"}})

	w := env.do(t, http.MethodGet, "/participants", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[struct {
		Participants []domain.Participant `json:"participants"`
		ActiveAgent  string               `json:"active_agent"`
	}](t, w)
	require.NotEmpty(t, resp.Participants)
	assert.Equal(t, "eva", resp.ActiveAgent)
	assert.True(t, resp.Participants[len(resp.Participants)-1].IsCustom)
}

func TestEventStream(t *testing.T) {
	env := newTestServer(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return env.hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	require.True(t, env.svc.SendMessage(t.Context(), "hello"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev domain.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, domain.EventMessageAppended, ev.Kind)
	require.NotNil(t, ev.Message)
	assert.Equal(t, "hello", ev.Message.Text)
}
