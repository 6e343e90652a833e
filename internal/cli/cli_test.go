package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supportbot/consultbot-go/internal/prompt"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	root := NewRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func TestClassifyCommand(t *testing.T) {
	assert.Contains(t, run(t, "classify", "안녕"), "category: CHAT")

	out := run(t, "classify", "[뉴스 기반 지원동기 작성 요청] 기업명: 한전")
	assert.Contains(t, out, "category: CONSULTING")
	assert.Contains(t, out, "subCase:  NEWS_DRAFT_REQUEST")
}

func TestPromptCommand(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "db1.json")
	require.NoError(t, os.WriteFile(corpusPath, []byte(`["리더십: 팀 프로젝트를 이끈 경험"]`), 0o644))
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("corpus:\n  files:\n    - "+corpusPath+"\n"), 0o644))

	out := run(t, "--config", cfgPath, "--env-file", filepath.Join(dir, "none.env"),
		"prompt", "리더십 경험을 어떻게 쓰나요")

	assert.Contains(t, out, "subCase:     DB_GENERAL")
	assert.Contains(t, out, "리더십: 팀 프로젝트를 이끈 경험")
	assert.Contains(t, out, prompt.LanguageConstraint)
}

func TestPromptCommand_Insult(t *testing.T) {
	dir := t.TempDir()
	out := run(t, "--config", filepath.Join(dir, "none.yaml"), "--env-file", filepath.Join(dir, "none.env"),
		"prompt", "꺼져")
	assert.Contains(t, out, "INSULT")
}
