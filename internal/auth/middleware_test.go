package auth_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/Kyz7/hub/internal/database"
	"github.com/Kyz7/hub/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTProtected(t *testing.T) {
	app := testutils.SetupTestApp(t)
	editor := testutils.CreateTestUser(t, database.DB, "editor@example.com", "password123", "editor")

	withHeader := func(t *testing.T, header string) (int, string) {
		req := httptest.NewRequest("GET", "/pages", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		var body testutils.StandardResponse
		_ = json.NewDecoder(resp.Body).Decode(&body)
		code := ""
		if body.Error != nil {
			code = body.Error.Code
		}
		return resp.StatusCode, code
	}

	t.Run("Success - Valid token loads the principal", func(t *testing.T) {
		status, _ := withHeader(t, "Bearer "+testutils.GetAuthToken(t, editor.ID, "editor"))
		assert.Equal(t, 200, status)
	})

	t.Run("Error - Missing header", func(t *testing.T) {
		status, code := withHeader(t, "")
		assert.Equal(t, 401, status)
		assert.Equal(t, "UNAUTHORIZED", code)
	})

	t.Run("Error - Wrong scheme", func(t *testing.T) {
		status, code := withHeader(t, "Token abc")
		assert.Equal(t, 401, status)
		assert.Equal(t, "INVALID_TOKEN_FORMAT", code)
	})

	t.Run("Error - Bearer without token", func(t *testing.T) {
		status, code := withHeader(t, "Bearer ")
		assert.Equal(t, 401, status)
		assert.Equal(t, "INVALID_TOKEN_FORMAT", code)
	})

	t.Run("Error - Tampered token", func(t *testing.T) {
		status, code := withHeader(t, "Bearer not.a.jwt")
		assert.Equal(t, 401, status)
		assert.Equal(t, "INVALID_TOKEN", code)
	})

	t.Run("Error - Inactive user", func(t *testing.T) {
		dormant := testutils.CreateTestUser(t, database.DB, "dormant@example.com", "password123", "editor")
		database.DB.Model(dormant).Update("status", "inactive")

		status, code := withHeader(t, "Bearer "+testutils.GetAuthToken(t, dormant.ID, "editor"))
		assert.Equal(t, 403, status)
		assert.Equal(t, "FORBIDDEN", code)
	})
}

func TestRoleProtected(t *testing.T) {
	app := testutils.SetupTestApp(t)

	admin := testutils.CreateTestUser(t, database.DB, "admin@example.com", "password123", "admin")
	publisher := testutils.CreateTestUser(t, database.DB, "publisher@example.com", "password123", "publisher")

	resp, err := testutils.MakeRequest(app, "GET", "/roles", nil, testutils.GetAuthToken(t, admin.ID, "admin"))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Code)

	// The role claim in the token is not trusted; the stored role decides.
	resp, err = testutils.MakeRequest(app, "GET", "/roles", nil, testutils.GetAuthToken(t, publisher.ID, "admin"))
	require.NoError(t, err)
	assert.Equal(t, 403, resp.Code)
	testutils.AssertError(t, resp, "FORBIDDEN")
}
