package prompt

import (
	"fmt"
	"strings"

	"github.com/supportbot/consultbot-go/internal/model"
)

// Build 根据场景构建系统提示词和用户提示词。纯函数。
// 未注册的组合（INSULT）返回 false。
func Build(category model.IntentCategory, subCase model.ConsultingSubCase, context, message string) (model.PromptPair, bool) {
	tpl, ok := Lookup(category, subCase)
	if !ok {
		return model.PromptPair{}, false
	}

	return model.PromptPair{
		SystemPrompt: systemPrompt(tpl),
		UserPrompt:   userPrompt(tpl, context, message),
		MaxTokens:    tpl.MaxTokens,
		Temperature:  Temperature,
	}, true
}

func systemPrompt(tpl Template) string {
	var b strings.Builder
	b.WriteString(tpl.Persona)
	b.WriteString("\n\n")
	for _, c := range tpl.Constraints {
		b.WriteString("- ")
		b.WriteString(c)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(LanguageConstraint)
	return b.String()
}

// userPrompt 证据和问题分别放在带标签的段落里，模型才能区分参考资料和实际提问
func userPrompt(tpl Template, context, message string) string {
	if tpl.ContextLabel == "" {
		return message
	}
	return fmt.Sprintf("%s:\n%s\n\n%s: %s", tpl.ContextLabel, context, QuestionLabel, message)
}

// EnsureClosing 结构化场景下模型漏写结尾句时补上
func EnsureClosing(category model.IntentCategory, subCase model.ConsultingSubCase, answer string) string {
	tpl, ok := Lookup(category, subCase)
	if !ok || !tpl.Structured() {
		return answer
	}
	if strings.Contains(answer, tpl.Closing) {
		return answer
	}
	return strings.TrimRight(answer, "\n ") + "\n\n3. [마무리] " + tpl.Closing
}
