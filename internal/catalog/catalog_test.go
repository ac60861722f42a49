package catalog

import (
	"strings"
	"testing"

	"egov-bot/internal/storage"
)

func newTestCatalog() *Catalog {
	chunks := []storage.Chunk{
		{ID: "c1", ParentID: "P1", Source: "https://example.gov.vn/p1", Text: "hộ chiếu"},
		{ID: "c2", ParentID: "", Source: "https://example.gov.vn/p2", Text: "lái xe"},
	}
	procedures := []storage.Procedure{
		{
			Source:    "P1",
			Name:      "Cấp hộ chiếu phổ thông",
			Method:    "Nộp hồ sơ trực tiếp",
			Documents: "Tờ khai, CMND",
			Agency:    "Cục Quản lý xuất nhập cảnh",
		},
		{Source: "P2"},
	}
	return New(chunks, procedures)
}

func TestChunkLookup(t *testing.T) {
	c := newTestCatalog()

	chunk, ok := c.Chunk("c1")
	if !ok || chunk.Text != "hộ chiếu" {
		t.Fatalf("Chunk(c1) = %+v, %v", chunk, ok)
	}
	if _, ok := c.Chunk("stale-id"); ok {
		t.Fatal("unknown chunk id must not resolve")
	}
}

func TestChunkParentFallback(t *testing.T) {
	c := newTestCatalog()

	chunk, _ := c.Chunk("c1")
	if got := chunk.Parent(); got != "P1" {
		t.Fatalf("Parent() = %q, want P1", got)
	}

	chunk, _ = c.Chunk("c2")
	if got := chunk.Parent(); got != "https://example.gov.vn/p2" {
		t.Fatalf("Parent() fallback = %q, want source URL", got)
	}
}

func TestProcedureText(t *testing.T) {
	c := newTestCatalog()

	text := c.ProcedureText("P1")
	for _, want := range []string{"Tên thủ tục:\nCấp hộ chiếu phổ thông", "Thành phần hồ sơ:\nTờ khai, CMND", "Nguồn:\nP1"} {
		if !strings.Contains(text, want) {
			t.Fatalf("ProcedureText(P1) missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Trình tự thực hiện") {
		t.Fatal("empty fields must be omitted")
	}

	if got := c.ProcedureText(""); got != NotFoundText {
		t.Fatalf("ProcedureText(\"\") = %q", got)
	}
	if got := c.ProcedureText("missing"); got != NotFoundText {
		t.Fatalf("ProcedureText(missing) = %q", got)
	}
}

func TestProcedureName(t *testing.T) {
	c := newTestCatalog()

	name, ok := c.ProcedureName("P1")
	if !ok || name != "Cấp hộ chiếu phổ thông" {
		t.Fatalf("ProcedureName(P1) = %q, %v", name, ok)
	}
	if _, ok := c.ProcedureName("P2"); ok {
		t.Fatal("nameless procedure should not report a name")
	}
}
