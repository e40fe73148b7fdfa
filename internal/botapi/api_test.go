package botapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/linktrack/linktrack/internal/logger"
)

type fakeNotifier struct {
	chatID      int64
	description string
	err         error
}

func (n *fakeNotifier) SendNotification(chatID int64, description string) error {
	n.chatID = chatID
	n.description = description
	return n.err
}

func newTestAPI(n *fakeNotifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	New(n, logger.NewDefault("test")).Register(engine)
	return engine
}

func post(engine *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/updates", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, req)
	return rr
}

func TestReceiveUpdate(t *testing.T) {
	n := &fakeNotifier{}
	engine := newTestAPI(n)

	rr := post(engine, `{"id": 42, "url": "u", "description": "d", "tgChatIds": [42]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}
	if n.chatID != 42 || n.description != "d" {
		t.Errorf("notifier got (%d, %q)", n.chatID, n.description)
	}
}

func TestReceiveUpdateBadBody(t *testing.T) {
	engine := newTestAPI(&fakeNotifier{})
	if rr := post(engine, "not json"); rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
}

func TestReceiveUpdateNotifierFailure(t *testing.T) {
	engine := newTestAPI(&fakeNotifier{err: errors.New("telegram down")})
	rr := post(engine, `{"id": 42, "url": "u", "description": "d"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Ошибка при отправке сообщения") {
		t.Errorf("body = %s", rr.Body.String())
	}
}
