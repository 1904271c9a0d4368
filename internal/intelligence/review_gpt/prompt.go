package review_gpt

import (
	"strings"

	"github.com/turtacn/meisai-checker/internal/intelligence/common"
)

// Excerpt limits, in runes.
const (
	MaxGuidelineRunes = 4000
	MaxDocumentRunes  = 8000
)

// SystemPrompt sets the reviewer persona.
const SystemPrompt = "あなたは日本の特許実務に精通した品質管理アシスタントです。\n" +
	"ユーザーの明細書草案を、審査基準・特許法（実施可能要件・サポート要件・明確性等）\n" +
	"に照らしてレビューし、条文等の根拠とともに具体的な修正案をJSONで返してください。\n" +
	"必ず日本語で、locationは段落推定で十分です。"

const (
	guidelineHeader = "【参照資料（抜粋可）】\n"
	documentHeader  = "\n\n【明細書（抜粋可）】\n"
	schemaFooter    = "\n\n次のJSONスキーマの配列で返答してください。\n" +
		"[{id, category, severity, message, evidence, location:{paragraph_index,start,end}, suggested_fix, autofix}]\n" +
		"categoryは support|enablement|clarity|consistency 等を使用。"
)

// truncateRunes returns at most n runes of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// BuildUserPrompt assembles the user turn from the guideline excerpt and the
// document excerpt.
func BuildUserPrompt(text, guidelines string) string {
	var sb strings.Builder
	sb.WriteString(guidelineHeader)
	sb.WriteString(truncateRunes(guidelines, MaxGuidelineRunes))
	sb.WriteString(documentHeader)
	sb.WriteString(truncateRunes(text, MaxDocumentRunes))
	sb.WriteString(schemaFooter)
	return sb.String()
}

// BuildMessages returns the system and user turns in order.
func BuildMessages(text, guidelines string) []common.ChatMessage {
	return []common.ChatMessage{
		{Role: common.RoleSystem, Content: SystemPrompt},
		{Role: common.RoleUser, Content: BuildUserPrompt(text, guidelines)},
	}
}

//Personal.AI order the ending
