package review_gpt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/meisai-checker/internal/intelligence/common"
)

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "明細", truncateRunes("明細書", 2))
	assert.Equal(t, "明細書", truncateRunes("明細書", 3))
	assert.Equal(t, "明細書", truncateRunes("明細書", 10))
	assert.Equal(t, "", truncateRunes("明細書", 0))
	assert.Equal(t, "", truncateRunes("", 5))
}

func TestBuildUserPrompt_Layout(t *testing.T) {
	p := BuildUserPrompt("本文", "基準")
	assert.True(t, strings.HasPrefix(p, "【参照資料（抜粋可）】\n基準\n\n【明細書（抜粋可）】\n本文\n\n"))
	assert.Contains(t, p, "[{id, category, severity, message, evidence, location:{paragraph_index,start,end}, suggested_fix, autofix}]")
	assert.True(t, strings.HasSuffix(p, "categoryは support|enablement|clarity|consistency 等を使用。"))
}

func TestBuildUserPrompt_Truncates(t *testing.T) {
	guidelines := strings.Repeat("基", MaxGuidelineRunes+50)
	text := strings.Repeat("文", MaxDocumentRunes+50)

	p := BuildUserPrompt(text, guidelines)

	assert.Equal(t, MaxGuidelineRunes, strings.Count(p, "基"))
	assert.Equal(t, MaxDocumentRunes, strings.Count(p, "文"))
	assert.True(t, utf8.ValidString(p))
}

func TestBuildMessages(t *testing.T) {
	msgs := BuildMessages("t", "g")
	require.Len(t, msgs, 2)
	assert.Equal(t, common.RoleSystem, msgs[0].Role)
	assert.Equal(t, SystemPrompt, msgs[0].Content)
	assert.Contains(t, msgs[0].Content, "実施可能要件・サポート要件・明確性")
	assert.Equal(t, common.RoleUser, msgs[1].Role)
}

//Personal.AI order the ending
