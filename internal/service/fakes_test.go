package service

import (
	"context"
	"sync"
	"time"

	"github.com/supportbot/consultbot-go/internal/client"
	"go.uber.org/zap"
)

type fakeSearcher struct {
	mu      sync.Mutex
	calls   int
	queries []string
	limit   int
	results []client.SearchResult
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, query string, limit int) ([]client.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.queries = append(f.queries, query)
	f.limit = limit
	return f.results, f.err
}

type fakeEvidence struct {
	calls    int
	keywords []string
	entries  map[string]string
}

func (f *fakeEvidence) Sample(keyword string) string {
	f.calls++
	f.keywords = append(f.keywords, keyword)
	return f.entries[keyword]
}

type fakeLLM struct {
	mu       sync.Mutex
	calls    int
	system   string
	user     string
	maxToken int
	reply    string
	err      error
	delay    time.Duration
}

func (f *fakeLLM) SimpleChat(ctx context.Context, systemPrompt, userMessage string, maxTokens int, _ float64) (string, error) {
	f.mu.Lock()
	f.calls++
	f.system, f.user, f.maxToken = systemPrompt, userMessage, maxTokens
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

type fixture struct {
	searcher *fakeSearcher
	evidence *fakeEvidence
	llm      *fakeLLM
	chat     *ChatService
}

func newFixture() *fixture {
	f := &fixture{
		searcher: &fakeSearcher{},
		evidence: &fakeEvidence{entries: map[string]string{}},
		llm:      &fakeLLM{reply: "모델 답변"},
	}
	logger := zap.NewNop()
	assembler := NewContextService(f.searcher, f.evidence, nil, 2, time.Second, logger)
	inference := NewInferenceService(f.llm, 200*time.Millisecond, logger)
	f.chat = NewChatService(NewClassifierService(), assembler, inference, logger)
	return f
}
