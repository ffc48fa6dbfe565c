package auth

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatorlink/platform/internal/database"
)

func protectedRouter(manager *Manager, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	chain := append([]gin.HandlerFunc{RequireAuth(manager)}, extra...)
	chain = append(chain, func(c *gin.Context) {
		c.String(http.StatusOK, fmt.Sprintf("user=%d role=%s", UserID(c), c.GetString(ContextRole)))
	})
	router.GET("/protected", chain...)
	return router
}

func doRequest(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestRequireAuth(t *testing.T) {
	manager := NewManager("middleware-secret", time.Hour)
	user := &database.User{ID: 42, Email: "c@example.com", Role: database.RoleCreator}

	t.Run("valid token sets identity", func(t *testing.T) {
		token, _, err := manager.GenerateToken(user)
		require.NoError(t, err)

		recorder := doRequest(protectedRouter(manager), token)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "user=42 role=creator", recorder.Body.String())
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		recorder := doRequest(protectedRouter(manager), "")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		recorder := doRequest(protectedRouter(manager), "not-a-token")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		forged, _, err := NewManager("other-secret", time.Hour).GenerateToken(user)
		require.NoError(t, err)

		recorder := doRequest(protectedRouter(manager), forged)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestRequireRole(t *testing.T) {
	manager := NewManager("middleware-secret", time.Hour)

	t.Run("matching role passes", func(t *testing.T) {
		admin := &database.User{ID: 1, Email: "a@example.com", Role: database.RoleAdmin}
		token, _, err := manager.GenerateToken(admin)
		require.NoError(t, err)

		recorder := doRequest(protectedRouter(manager, RequireRole(database.RoleAdmin)), token)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("other role is forbidden", func(t *testing.T) {
		creator := &database.User{ID: 2, Email: "c@example.com", Role: database.RoleCreator}
		token, _, err := manager.GenerateToken(creator)
		require.NoError(t, err)

		recorder := doRequest(protectedRouter(manager, RequireRole(database.RoleAdmin)), token)
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})
}
