package prompt

import (
	"fmt"
	"strings"
	"testing"

	"egov-bot/internal/conversation"
)

func TestBuildIncludesAllSections(t *testing.T) {
	history := []conversation.Turn{
		{Role: conversation.RoleUser, Content: "Thủ tục cấp hộ chiếu cần gì?"},
		{Role: conversation.RoleModel, Content: "Bạn cần tờ khai và căn cước."},
	}
	got := Build(history, "Tên thủ tục:\nCấp hộ chiếu phổ thông", "Mất bao lâu?")

	for _, want := range []string{
		"user: Thủ tục cấp hộ chiếu cần gì?",
		"model: Bạn cần tờ khai và căn cước.",
		"Tên thủ tục:\nCấp hộ chiếu phổ thông",
		"CÂU HỎI: Mất bao lâu?",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("prompt is missing %q:\n%s", want, got)
		}
	}
}

func TestBuildWindowsHistory(t *testing.T) {
	var history []conversation.Turn
	for i := 0; i < 20; i++ {
		history = append(history, conversation.Turn{
			Role:    conversation.RoleUser,
			Content: fmt.Sprintf("câu %d", i),
		})
	}
	got := Build(history, "", "Mất bao lâu?")

	if strings.Contains(got, "câu 9") {
		t.Fatal("turns older than the window must be dropped")
	}
	if !strings.Contains(got, "câu 10") || !strings.Contains(got, "câu 19") {
		t.Fatal("the most recent turns must survive")
	}
}

func TestBuildEmptyHistory(t *testing.T) {
	got := Build(nil, "", "Xin chào")
	if !strings.Contains(got, "CÂU HỎI: Xin chào") {
		t.Fatalf("prompt missing the question:\n%s", got)
	}
}
