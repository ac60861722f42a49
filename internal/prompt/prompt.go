// Package prompt composes the generation prompt from the conversation
// history, the resolved procedure context and the user's question.
package prompt

import (
	"fmt"
	"strings"

	"egov-bot/internal/conversation"
)

// HistoryWindow is how many recent turns the prompt includes. Older turns
// are dropped to keep the prompt bounded regardless of session length.
const HistoryWindow = 10

const template = `Bạn là trợ lý eGov-Bot chuyên về dịch vụ công Việt Nam. Trả lời tiếng Việt, chính xác, dựa TRỌN VẸN vào DỮ LIỆU được cung cấp (nếu có). Luôn đính kèm các Nguồn (đường link) xuất hiện trong dữ liệu ở cuối.
Nếu KHÔNG tìm thấy thông tin rõ ràng trong DỮ LIỆU, trả lời: "Mình chưa có thông tin về [chủ đề]. Bạn hãy ghi rõ Thủ tục [chủ đề] để mình tìm chính xác hơn. Hoặc bạn có thể tham khảo thêm tại: [Cổng dịch vụ công quốc gia](https://dichvucong.gov.vn/p/home/dvc-trang-chu.html)".
Lịch sử trò chuyện:
%s
DỮ LIỆU (nếu có):
---
%s
---
CÂU HỎI: %s`

// Build renders the full generation prompt.
func Build(history []conversation.Turn, contextText, question string) string {
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}
	lines := make([]string, len(history))
	for i, turn := range history {
		lines[i] = fmt.Sprintf("%s: %s", turn.Role, turn.Content)
	}
	return fmt.Sprintf(template, strings.Join(lines, "\n"), contextText, question)
}
