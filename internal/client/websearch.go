package client

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SearchResult 网页搜索结果
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// WebSearchClient DuckDuckGo HTML 搜索客户端
type WebSearchClient struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewWebSearchClient 创建网页搜索客户端
func NewWebSearchClient(endpoint string, timeout time.Duration, logger *zap.Logger) *WebSearchClient {
	return &WebSearchClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

var (
	reResultTitle   = regexp.MustCompile(`(?s)<a[^>]*class="result__a"[^>]*href="([^"]*)"[^>]*>(.*?)</a>|<a[^>]*href="([^"]*)"[^>]*class="result__a"[^>]*>(.*?)</a>`)
	reResultSnippet = regexp.MustCompile(`(?s)class="result__snippet"[^>]*>(.*?)</(?:a|div|td)>`)
	reTag           = regexp.MustCompile(`(?s)<[^>]+>`)
	reSpaces        = regexp.MustCompile(`\s+`)
)

// Search 搜索 query，最多返回 limit 条
func (c *WebSearchClient) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	form := url.Values{}
	form.Set("q", query)
	form.Set("kl", "kr-kr")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	// 没有 UA 会被直接拦截
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("搜索返回错误: %d", resp.StatusCode)
	}

	results := ParseResults(string(body), limit)
	c.logger.Debug("网页搜索完成",
		zap.String("query", query),
		zap.Int("count", len(results)))
	return results, nil
}

// ParseResults 从 DuckDuckGo HTML 页面提取标题和摘要
func ParseResults(page string, limit int) []SearchResult {
	titles := reResultTitle.FindAllStringSubmatch(page, -1)
	snippets := reResultSnippet.FindAllStringSubmatch(page, -1)

	results := make([]SearchResult, 0, limit)
	for i, m := range titles {
		if limit > 0 && len(results) >= limit {
			break
		}
		href, title := m[1], m[2]
		if href == "" && title == "" {
			href, title = m[3], m[4]
		}
		r := SearchResult{
			Title: cleanText(title),
			URL:   html.UnescapeString(href),
		}
		if i < len(snippets) {
			r.Snippet = cleanText(snippets[i][1])
		}
		if r.Title == "" {
			continue
		}
		results = append(results, r)
	}
	return results
}

func cleanText(s string) string {
	s = reTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}
