package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supportbot/consultbot-go/internal/model"
)

func TestBuild_EveryTemplateHasLanguageConstraint(t *testing.T) {
	for _, k := range Keys() {
		pair, ok := Build(k.Category, k.SubCase, "ctx", "msg")
		require.True(t, ok, "%v", k)
		assert.True(t, strings.HasSuffix(pair.SystemPrompt, LanguageConstraint), "%v", k)
		assert.InDelta(t, Temperature, pair.Temperature, 1e-9)
	}
}

func TestBuild_InsultHasNoTemplate(t *testing.T) {
	_, ok := Build(model.CategoryInsult, model.SubCaseNone, "", "시발")
	assert.False(t, ok)
}

func TestBuild_ContextGeneralContainsContextVerbatim(t *testing.T) {
	ctx := "[현재 공고 정보]\n기업명: 한국전력공사\n공고제목: 2025 신입 채용"
	pair, ok := Build(model.CategoryConsulting, model.SubCaseContextGeneral, ctx, "자소서 어떻게 써요?")
	require.True(t, ok)

	assert.Contains(t, pair.UserPrompt, ctx)
	assert.Equal(t, "[현재 채용공고]:\n"+ctx+"\n\n[사용자 질문]: 자소서 어떻게 써요?", pair.UserPrompt)
	assert.Contains(t, pair.SystemPrompt, ConsultLink)
	assert.Equal(t, DefaultMaxTokens, pair.MaxTokens)
}

func TestBuild_DBGeneralWithEmptyEvidence(t *testing.T) {
	pair, ok := Build(model.CategoryConsulting, model.SubCaseDBGeneral, "", "리더십 경험 쓰는 법")
	require.True(t, ok)
	assert.Equal(t, "[참고 합격DB]:\n\n\n[사용자 질문]: 리더십 경험 쓰는 법", pair.UserPrompt)
}

func TestBuild_ChatIsMessageOnly(t *testing.T) {
	pair, ok := Build(model.CategoryChat, model.SubCaseNone, "ignored", "안녕")
	require.True(t, ok)
	assert.Equal(t, "안녕", pair.UserPrompt)
}

func TestBuild_SubCaseIgnoredOutsideConsulting(t *testing.T) {
	a, _ := Build(model.CategorySearch, model.SubCaseNone, "- a: b", "날씨")
	b, _ := Build(model.CategorySearch, model.SubCaseDataAnalysis, "- a: b", "날씨")
	assert.Equal(t, a, b)
}

func TestBuild_StructuredScenarios(t *testing.T) {
	tests := []struct {
		subCase  model.ConsultingSubCase
		closing  string
		sections []string
	}{
		{model.SubCaseDataAnalysis, DataAnalysisClosing, []string{"1. [강점 추출]", "2. [적용 전략]", "3. [마무리]"}},
		{model.SubCaseNewsDraft, NewsDraftClosing, []string{"1. [이슈 인사이트]", "2. [지원동기 초안]", "3. [마무리]"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.subCase), func(t *testing.T) {
			pair, ok := Build(model.CategoryConsulting, tt.subCase, "공고", "요청")
			require.True(t, ok)
			assert.Equal(t, StructuredMaxTokens, pair.MaxTokens)
			assert.Greater(t, pair.MaxTokens, DefaultMaxTokens)
			assert.Contains(t, pair.SystemPrompt, tt.closing)

			last := -1
			for _, s := range tt.sections {
				idx := strings.Index(pair.SystemPrompt, s)
				require.GreaterOrEqual(t, idx, 0, s)
				assert.Greater(t, idx, last, "sections out of order")
				last = idx
			}
		})
	}
}

func TestEnsureClosing(t *testing.T) {
	answer := "1. [강점 추출] 책임감\n2. [적용 전략] 현장 안전"
	got := EnsureClosing(model.CategoryConsulting, model.SubCaseDataAnalysis, answer)
	assert.True(t, strings.HasSuffix(got, DataAnalysisClosing))

	complete := answer + "\n3. [마무리] " + DataAnalysisClosing
	assert.Equal(t, complete, EnsureClosing(model.CategoryConsulting, model.SubCaseDataAnalysis, complete))

	assert.Equal(t, "그냥 답변", EnsureClosing(model.CategoryConsulting, model.SubCaseDBGeneral, "그냥 답변"))
	assert.Equal(t, "hi", EnsureClosing(model.CategoryChat, model.SubCaseNone, "hi"))
}
