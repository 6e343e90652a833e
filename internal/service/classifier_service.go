package service

import (
	"strings"
	"unicode/utf8"

	"github.com/supportbot/consultbot-go/internal/model"
	"github.com/supportbot/consultbot-go/internal/prompt"
)

var (
	insultWords = []string{"시발", "병신", "개새끼", "꺼져", "죽어", "미친", "ㅗ", "씨발", "놈", "새끼"}
	searchWords = []string{"주가", "날씨", "뉴스", "정보", "검색", "전망", "연봉", "이슈", "동향"}
	chatWords   = []string{"안녕", "하이", "ㅎㅇ", "반가", "고마", "감사", "시작", "테스트"}

	requestMarkers = []string{prompt.DataAnalysisMarker, prompt.NewsDraftMarker}
)

// chatMinLength 少于这个字符数的消息视为闲聊
const chatMinLength = 5

// IntentRule 分类规则
type IntentRule struct {
	Name     string
	Category model.IntentCategory
	Match    func(message string) bool
}

// ClassifierService 意图分类服务。按固定顺序匹配规则，第一条命中即返回。
type ClassifierService struct {
	rules []IntentRule
}

// NewClassifierService 创建意图分类服务。
// 带请求标记的消息即使包含搜索关键词（新闻标记里的“뉴스”）也归为 CONSULTING。
func NewClassifierService() *ClassifierService {
	return &ClassifierService{
		// 顺序就是优先级，不能调整
		rules: []IntentRule{
			{Name: "insult", Category: model.CategoryInsult, Match: containsAny(insultWords)},
			// 新闻请求标记本身包含“뉴스”，必须先于搜索规则，否则该场景永远不可达
			{Name: "request-marker", Category: model.CategoryConsulting, Match: containsAny(requestMarkers)},
			{Name: "search", Category: model.CategorySearch, Match: containsAny(searchWords)},
			{Name: "chat", Category: model.CategoryChat, Match: func(message string) bool {
				return utf8.RuneCountInString(message) < chatMinLength || containsAny(chatWords)(message)
			}},
			{Name: "consulting", Category: model.CategoryConsulting, Match: func(string) bool { return true }},
		},
	}
}

// Classify 问题分类
func (s *ClassifierService) Classify(message string) model.IntentCategory {
	for _, rule := range s.rules {
		if rule.Match(message) {
			return rule.Category
		}
	}
	return model.CategoryConsulting
}

// ResolveSubCase 确定咨询子场景：标记优先，其次看是否带公告上下文
func (s *ClassifierService) ResolveSubCase(message, callerContext string) model.ConsultingSubCase {
	switch {
	case strings.Contains(message, prompt.DataAnalysisMarker):
		return model.SubCaseDataAnalysis
	case strings.Contains(message, prompt.NewsDraftMarker):
		return model.SubCaseNewsDraft
	case callerContext != "":
		return model.SubCaseContextGeneral
	default:
		return model.SubCaseDBGeneral
	}
}

// Rules 规则列表副本
func (s *ClassifierService) Rules() []IntentRule {
	out := make([]IntentRule, len(s.rules))
	copy(out, s.rules)
	return out
}

func containsAny(words []string) func(string) bool {
	return func(message string) bool {
		for _, w := range words {
			if strings.Contains(message, w) {
				return true
			}
		}
		return false
	}
}
