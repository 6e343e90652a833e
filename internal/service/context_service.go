package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/supportbot/consultbot-go/internal/cache"
	"github.com/supportbot/consultbot-go/internal/client"
	"github.com/supportbot/consultbot-go/internal/model"
	"go.uber.org/zap"
)

const (
	// SearchEmptyText 搜索没有结果时的文本
	SearchEmptyText = "최신 정보를 찾을 수 없습니다."
	// SearchErrorPrefix 搜索失败时的文本前缀，后面跟失败原因
	SearchErrorPrefix = "검색 시스템 일시 오류: "
)

var ErrSearchUnavailable = errors.New("未配置网页搜索")

// WebSearcher 网页搜索
type WebSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]client.SearchResult, error)
}

// EvidenceSource 合格数据来源
type EvidenceSource interface {
	Sample(keyword string) string
}

// ContextService 上下文组装服务：根据分类决定给模型看的参考资料
type ContextService struct {
	searcher   WebSearcher
	evidence   EvidenceSource
	cache      cache.SearchCache
	maxResults int
	timeout    time.Duration
	logger     *zap.Logger
}

// NewContextService 创建上下文组装服务
func NewContextService(searcher WebSearcher, evidence EvidenceSource, searchCache cache.SearchCache,
	maxResults int, timeout time.Duration, logger *zap.Logger) *ContextService {
	if searchCache == nil {
		searchCache = cache.Nop{}
	}
	return &ContextService{
		searcher:   searcher,
		evidence:   evidence,
		cache:      searchCache,
		maxResults: maxResults,
		timeout:    timeout,
		logger:     logger,
	}
}

// Assemble 组装上下文。外部调用失败不会向上返回错误，而是转换成可直接使用的文本。
func (s *ContextService) Assemble(ctx context.Context, category model.IntentCategory, callerContext, message string) string {
	switch category {
	case model.CategorySearch:
		return s.searchSummary(ctx, message)
	case model.CategoryConsulting:
		if callerContext != "" {
			return callerContext
		}
		return s.evidenceFor(message)
	default:
		// INSULT 不会走到这里，CHAT 不需要上下文
		return ""
	}
}

// evidenceFor 取消息的第一个词作为关键词，在语料中随机挑一条
func (s *ContextService) evidenceFor(message string) string {
	fields := strings.Fields(message)
	if len(fields) == 0 {
		return ""
	}
	evidence := s.evidence.Sample(fields[0])
	s.logger.Debug("合格数据检索",
		zap.String("keyword", fields[0]),
		zap.Bool("found", evidence != ""))
	return evidence
}

func (s *ContextService) searchSummary(ctx context.Context, query string) string {
	if cached, ok := s.cache.Get(ctx, query); ok {
		s.logger.Debug("搜索缓存命中", zap.String("query", query))
		return cached
	}

	if s.searcher == nil {
		return SearchErrorPrefix + ErrSearchUnavailable.Error()
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results, err := s.searcher.Search(ctx, query, s.maxResults)
	if err != nil {
		s.logger.Warn("网页搜索失败", zap.String("query", query), zap.Error(err))
		return SearchErrorPrefix + err.Error()
	}
	if len(results) == 0 {
		return SearchEmptyText
	}

	summary := RenderSearchResults(results, s.maxResults)
	s.cache.Set(ctx, query, summary)
	return summary
}

// RenderSearchResults 每条结果渲染成 "- 标题: 摘要"
func RenderSearchResults(results []client.SearchResult, limit int) string {
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = fmt.Sprintf("- %s: %s", r.Title, r.Snippet)
	}
	return strings.Join(lines, "\n")
}
