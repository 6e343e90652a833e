package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supportbot/consultbot-go/internal/client"
	"github.com/supportbot/consultbot-go/internal/corpus"
	"github.com/supportbot/consultbot-go/internal/model"
	"github.com/supportbot/consultbot-go/internal/service"
	"go.uber.org/zap"
)

// stubLLM OpenAI 兼容接口的桩服务
type stubLLM struct {
	srv   *httptest.Server
	reply string
	delay time.Duration
	calls atomic.Int32
}

func newStubLLM(t *testing.T, reply string, delay time.Duration) *stubLLM {
	s := &stubLLM{reply: reply, delay: delay}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		if s.delay > 0 {
			select {
			case <-time.After(s.delay):
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": s.reply}},
			},
		})
	}))
	t.Cleanup(s.srv.Close)
	return s
}

type testEnv struct {
	router *gin.Engine
	llm    *stubLLM
	store  *corpus.Store
	conns  *service.ConnectionService
}

func newTestEnv(t *testing.T, llm *stubLLM, allowReload bool, corpusPaths ...string) *testEnv {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	store := corpus.NewStore(corpusPaths, logger)
	if len(corpusPaths) > 0 {
		require.NoError(t, store.Load())
	}

	llmClient := client.NewInferenceClient(llm.srv.URL, "test-token", "test-model", 5*time.Second, logger)
	classifier := service.NewClassifierService()
	assembler := service.NewContextService(nil, store, nil, 2, time.Second, logger)
	inference := service.NewInferenceService(llmClient, 300*time.Millisecond, logger)
	chat := service.NewChatService(classifier, assembler, inference, logger)
	conns := service.NewConnectionService(time.Minute, logger)

	router := NewRouter(Handlers{
		Chat:      NewChatHandler(chat, classifier, logger),
		System:    NewSystemHandler("consult-bot", store, conns, nil, allowReload, logger),
		WebSocket: NewWebSocketHandler(conns, chat, logger),
	}, logger)

	return &testEnv{router: router, llm: llm, store: store, conns: conns}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	e.router.ServeHTTP(w, req)
	return w
}

func decodeChat(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp model.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Response
}

func TestChat_RoundTrip(t *testing.T) {
	env := newTestEnv(t, newStubLLM(t, "핵심역량은 책임감입니다.", 0), false)

	w := env.do(http.MethodPost, "/chat", `{"message":"이 공고 핵심역량이 뭔가요","context":"[현재 공고 정보]\n기업명: 한전"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "핵심역량은 책임감입니다.", decodeChat(t, w))
	assert.Equal(t, int32(1), env.llm.calls.Load())
}

func TestChat_ContextOptional(t *testing.T) {
	env := newTestEnv(t, newStubLLM(t, "반갑습니다", 0), false)

	w := env.do(http.MethodPost, "/chat", `{"message":"안녕하세요"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "반갑습니다", decodeChat(t, w))
}

func TestChat_Insult(t *testing.T) {
	env := newTestEnv(t, newStubLLM(t, "unused", 0), false)

	w := env.do(http.MethodPost, "/chat", `{"message":"시발 뭐 이래"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.InsultReply, decodeChat(t, w))
	assert.Zero(t, env.llm.calls.Load())
}

func TestChat_MalformedBody(t *testing.T) {
	env := newTestEnv(t, newStubLLM(t, "unused", 0), false)

	for _, body := range []string{`{not json`, `{"message": 5}`, ``} {
		w := env.do(http.MethodPost, "/chat", body)
		assert.Equal(t, http.StatusOK, w.Code, body)
		assert.Equal(t, GenericErrorReply, decodeChat(t, w), body)
	}
	assert.Zero(t, env.llm.calls.Load())
}

func TestChat_InferenceTimeout(t *testing.T) {
	env := newTestEnv(t, newStubLLM(t, "too late", 2*time.Second), false)

	w := env.do(http.MethodPost, "/chat", `{"message":"자기소개서 첨삭 방법이 궁금합니다"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeChat(t, w)
	assert.NotEmpty(t, resp)
	assert.True(t, strings.HasPrefix(resp, service.FallbackPrefix), resp)
}

func TestClassify(t *testing.T) {
	env := newTestEnv(t, newStubLLM(t, "unused", 0), false)

	w := env.do(http.MethodGet, "/api/classify?message="+url.QueryEscape("[데이터 분석 요청] 분석해줘"), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"category":"CONSULTING","subCase":"DATA_ANALYSIS_REQUEST"}`, w.Body.String())

	w = env.do(http.MethodGet, "/api/classify", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSystemEndpoints(t *testing.T) {
	env := newTestEnv(t, newStubLLM(t, "unused", 0), false)

	w := env.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, LivenessText, w.Body.String())

	w = env.do(http.MethodGet, "/robots.txt", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User-agent: *\nAllow: /\n", w.Body.String())

	w = env.do(http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var health model.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "UP", health.Status)
	assert.Equal(t, "consult-bot", health.Service)
	assert.Equal(t, 1, health.Corpus)
	assert.False(t, health.KeepAlive.Enabled)
}

func TestReloadCorpus(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db1.json")
	require.NoError(t, os.WriteFile(path, []byte(`["리더십 사례"]`), 0o644))

	disabled := newTestEnv(t, newStubLLM(t, "unused", 0), false, path)
	assert.Equal(t, http.StatusForbidden, disabled.do(http.MethodPost, "/api/corpus/reload", "").Code)

	env := newTestEnv(t, newStubLLM(t, "unused", 0), true, path)
	require.NoError(t, os.WriteFile(path, []byte(`["리더십 사례", "협업 사례"]`), 0o644))

	w := env.do(http.MethodPost, "/api/corpus/reload", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"count":2}`, w.Body.String())

	require.NoError(t, os.Remove(path))
	w = env.do(http.MethodPost, "/api/corpus/reload", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"没有可用的语料文件","count":2}`, w.Body.String())
	assert.Equal(t, 2, env.store.Len())
}

func TestWebSocketChat(t *testing.T) {
	env := newTestEnv(t, newStubLLM(t, "웹소켓 답변", 0), false)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(model.ChatRequest{Message: "자기소개서 첨삭 방법이 궁금합니다"}))
	var resp model.ChatResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "웹소켓 답변", resp.Response)
	assert.Equal(t, 1, env.conns.Count())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{broken")))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, GenericErrorReply, resp.Response)

	require.NoError(t, conn.WriteJSON(model.ChatRequest{Message: "시발"}))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, service.InsultReply, resp.Response)

	conn.Close()
	assert.Eventually(t, func() bool { return env.conns.Count() == 0 }, 2*time.Second, 20*time.Millisecond)
}

func TestWebSocketChat_SameRequestIDKeepsConnectionsApart(t *testing.T) {
	env := newTestEnv(t, newStubLLM(t, "답변", 0), false)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat"
	header := http.Header{}
	header.Set("X-Request-ID", "shared-id")

	first, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	second, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer second.Close()

	assert.Eventually(t, func() bool { return env.conns.Count() == 2 }, 2*time.Second, 20*time.Millisecond)

	first.Close()
	assert.Eventually(t, func() bool { return env.conns.Count() == 1 }, 2*time.Second, 20*time.Millisecond)

	// 剩下的连接仍然可用
	require.NoError(t, second.WriteJSON(model.ChatRequest{Message: "자기소개서 첨삭 방법이 궁금합니다"}))
	var resp model.ChatResponse
	require.NoError(t, second.ReadJSON(&resp))
	assert.Equal(t, "답변", resp.Response)
}
