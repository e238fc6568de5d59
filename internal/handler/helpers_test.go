package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"knowbase/internal/domain"
	"knowbase/internal/handler"
	"knowbase/internal/middleware"
	"knowbase/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newActor(role domain.UserRole) service.Actor {
	return service.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: role}
}

// newContext builds a test context with the auth keys the middleware would set.
func newContext(method, target string, body io.Reader, actor *service.Actor) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, body)
	if actor != nil {
		c.Set(middleware.ContextKeyTenantID, actor.TenantID)
		c.Set(middleware.ContextKeyUserID, actor.UserID)
		c.Set(middleware.ContextKeyRole, string(actor.Role))
	}
	return c, w
}

func newJSONContext(t *testing.T, method, target string, payload interface{}, actor *service.Actor) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	c, w := newContext(method, target, bytes.NewReader(body), actor)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func withID(c *gin.Context, id uuid.UUID) {
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decode(t, w)
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func ginParam(key, value string) gin.Param {
	return gin.Param{Key: key, Value: value}
}
