package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"egov-bot/internal/catalog"
	"egov-bot/internal/service"
	"egov-bot/internal/service/mocks"
	"egov-bot/internal/storage"
	"egov-bot/internal/userdata"
	"egov-bot/internal/vectorstore"
)

type stubVectorStore struct{}

func (stubVectorStore) Search(context.Context, string, []float32, int) ([]vectorstore.SearchResult, error) {
	return nil, nil
}

func (stubVectorStore) CollectionExists(context.Context, string) (bool, error) {
	return true, nil
}

func newTestRouter(t *testing.T, svc service.ChatService) http.Handler {
	t.Helper()
	feedback, err := userdata.NewFeedbackStore(filepath.Join(t.TempDir(), "feedback.json"))
	if err != nil {
		t.Fatalf("NewFeedbackStore: %v", err)
	}
	return NewRouter(&Deps{
		ChatService:    svc,
		Feedback:       feedback,
		VectorStore:    stubVectorStore{},
		Catalog:        catalog.New([]storage.Chunk{{ID: "c1", ParentID: "P1", Text: "hộ chiếu"}}, nil),
		CollectionName: "procedures",
	})
}

func TestRouterRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockSvc := mocks.NewMockChatService(ctrl)
	mockSvc.EXPECT().ProcessChat(gomock.Any(), gomock.Any()).Return(service.ChatResponse{Answer: "trả lời"}, nil)
	mockSvc.EXPECT().ClearSession("s1").Return(true)

	router := newTestRouter(t, mockSvc)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodPost, "/chat", `{"question": "hộ chiếu?", "session_id": "s1"}`, http.StatusOK},
		{http.MethodPost, "/save_feedback", `{"new_feedback": "like", "previous_feedback": "no_change"}`, http.StatusOK},
		{http.MethodPost, "/clear_session", `{"session_id": "s1"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	router := newTestRouter(t, mocks.NewMockChatService(ctrl))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
