package model

// IntentCategory 意图分类
type IntentCategory string

const (
	CategoryInsult     IntentCategory = "INSULT"
	CategorySearch     IntentCategory = "SEARCH"
	CategoryChat       IntentCategory = "CHAT"
	CategoryConsulting IntentCategory = "CONSULTING"
)

// ConsultingSubCase 咨询子场景，仅在 CONSULTING 下有意义
type ConsultingSubCase string

const (
	SubCaseNone           ConsultingSubCase = ""
	SubCaseDataAnalysis   ConsultingSubCase = "DATA_ANALYSIS_REQUEST"
	SubCaseNewsDraft      ConsultingSubCase = "NEWS_DRAFT_REQUEST"
	SubCaseContextGeneral ConsultingSubCase = "CONTEXT_GENERAL"
	SubCaseDBGeneral      ConsultingSubCase = "DB_GENERAL"
)

// ChatState 请求处理状态
type ChatState string

const (
	StateReceived        ChatState = "RECEIVED"
	StateClassified      ChatState = "CLASSIFIED"
	StateContextResolved ChatState = "CONTEXT_RESOLVED"
	StatePrompted        ChatState = "PROMPTED"
	StateAnswered        ChatState = "ANSWERED"
)

// Structured 是否是三段式结构化回答场景
func (s ConsultingSubCase) Structured() bool {
	return s == SubCaseDataAnalysis || s == SubCaseNewsDraft
}
