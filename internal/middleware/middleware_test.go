package middleware_test

import (
	"fmt"
	"testing"

	"github.com/Kyz7/hub/internal/database"
	"github.com/Kyz7/hub/internal/middleware"
	"github.com/Kyz7/hub/internal/models"
	"github.com/Kyz7/hub/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ========== ROLE MANAGEMENT TESTS ==========

func TestCreateRoleHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)

	admin := testutils.CreateTestUser(t, database.DB, "admin@test.com", "password", "admin")
	token := testutils.GetAuthToken(t, admin.ID, admin.Role.Name)

	t.Run("Success - Create role with hub capabilities", func(t *testing.T) {
		body := map[string]interface{}{
			"name":        "translator_uk",
			"description": "Drafts Ukrainian updates",
			"permissions": []map[string]interface{}{
				{"module": "hub", "action": "request_update_uk"},
				{"action": "add_content"},
			},
		}

		resp, err := testutils.MakeRequest(app, "POST", "/roles", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		assert.True(t, result.Success)

		role := result.Data.(map[string]interface{})
		perms := role["permissions"].([]interface{})
		assert.Len(t, perms, 2)
		for _, p := range perms {
			assert.Equal(t, "hub", p.(map[string]interface{})["module"], "module defaults to hub")
		}
	})

	t.Run("Fail - Duplicate role name", func(t *testing.T) {
		body := map[string]interface{}{"name": "editor"}

		resp, err := testutils.MakeRequest(app, "POST", "/roles", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 409, resp.Code)
		testutils.AssertError(t, resp, "CONFLICT")
	})

	t.Run("Fail - Missing name", func(t *testing.T) {
		body := map[string]interface{}{"description": "nameless"}

		resp, err := testutils.MakeRequest(app, "POST", "/roles", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 422, resp.Code)
		testutils.AssertError(t, resp, "VALIDATION_ERROR")
	})

	t.Run("Fail - Non-admin cannot manage roles", func(t *testing.T) {
		editor := testutils.CreateTestUser(t, database.DB, "editor@test.com", "password", "editor")
		editorToken := testutils.GetAuthToken(t, editor.ID, editor.Role.Name)

		resp, err := testutils.MakeRequest(app, "POST", "/roles", map[string]interface{}{"name": "x"}, editorToken)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)
	})
}

func TestUpdateRoleHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)

	admin := testutils.CreateTestUser(t, database.DB, "admin@test.com", "password", "admin")
	token := testutils.GetAuthToken(t, admin.ID, admin.Role.Name)

	var viewer models.Role
	require.NoError(t, database.DB.Where("name = ?", "viewer").First(&viewer).Error)

	body := map[string]interface{}{
		"name":        "viewer",
		"description": "Viewer that may reorder",
		"permissions": []map[string]interface{}{
			{"action": models.CapReorderSection},
		},
	}
	resp, err := testutils.MakeRequest(app, "PUT", fmt.Sprintf("/roles/%d", viewer.ID), body, token)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Code)

	var perms []models.Permission
	database.DB.Where("role_id = ?", viewer.ID).Find(&perms)
	require.Len(t, perms, 1)
	assert.Equal(t, models.CapReorderSection, perms[0].Action)
}

func TestDeleteRoleHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)

	admin := testutils.CreateTestUser(t, database.DB, "admin@test.com", "password", "admin")
	token := testutils.GetAuthToken(t, admin.ID, admin.Role.Name)

	t.Run("Fail - Role still assigned", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "DELETE", fmt.Sprintf("/roles/%d", admin.RoleID), nil, token)
		assert.NoError(t, err)
		assert.Equal(t, 409, resp.Code)
	})

	t.Run("Success - Unused role", func(t *testing.T) {
		var role models.Role
		require.NoError(t, database.DB.Where("name = ?", "reviewer_uk").First(&role).Error)

		resp, err := testutils.MakeRequest(app, "DELETE", fmt.Sprintf("/roles/%d", role.ID), nil, token)
		assert.NoError(t, err)
		assert.Equal(t, 204, resp.Code)

		var count int64
		database.DB.Model(&models.Permission{}).Where("role_id = ?", role.ID).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("Fail - Not found", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "DELETE", "/roles/9999", nil, token)
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
	})
}

func TestAssignRoleToUserHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)

	admin := testutils.CreateTestUser(t, database.DB, "admin@test.com", "password", "admin")
	token := testutils.GetAuthToken(t, admin.ID, admin.Role.Name)
	target := testutils.CreateTestUser(t, database.DB, "someone@test.com", "password", "viewer")

	var publisher models.Role
	require.NoError(t, database.DB.Where("name = ?", "publisher").First(&publisher).Error)

	body := map[string]interface{}{"user_id": target.ID, "role_id": publisher.ID}
	resp, err := testutils.MakeRequest(app, "POST", "/roles/assign", body, token)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Code)

	var reloaded models.User
	database.DB.First(&reloaded, target.ID)
	assert.Equal(t, publisher.ID, reloaded.RoleID)

	resp, err = testutils.MakeRequest(app, "POST", "/roles/assign", map[string]interface{}{"user_id": target.ID}, token)
	assert.NoError(t, err)
	assert.Equal(t, 422, resp.Code)
}

// ========== PERMISSION MIDDLEWARE TESTS ==========

func TestPermissionProtected(t *testing.T) {
	app := testutils.SetupTestApp(t)

	manager := testutils.CreateTestUser(t, database.DB, "locations@test.com", "password", "location_manager")
	editor := testutils.CreateTestUser(t, database.DB, "editor@test.com", "password", "editor")

	t.Run("Capability holder passes", func(t *testing.T) {
		token := testutils.GetAuthToken(t, manager.ID, manager.Role.Name)
		resp, err := testutils.MakeRequest(app, "GET", "/locations/manage", nil, token)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)
	})

	t.Run("Missing capability is forbidden", func(t *testing.T) {
		token := testutils.GetAuthToken(t, editor.ID, editor.Role.Name)
		resp, err := testutils.MakeRequest(app, "GET", "/locations/manage", nil, token)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)
		testutils.AssertError(t, resp, "FORBIDDEN")
	})

	t.Run("No token is unauthorized", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", "/locations/manage", nil, "")
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)
	})

	t.Run("Deleted user is unauthorized", func(t *testing.T) {
		token := testutils.GetAuthToken(t, 4242, "viewer")
		resp, err := testutils.MakeRequest(app, "GET", "/pages", nil, token)
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)
	})
}

func TestHasPermission(t *testing.T) {
	role := &models.Role{
		Name: "reviewer_en",
		Permissions: []models.Permission{
			{Module: models.HubModule, Action: "confirm_update_en"},
			{Module: "other", Action: "confirm_update_uk"},
		},
	}
	user := &models.User{Role: role}

	assert.True(t, middleware.HasPermission(user, models.HubModule, "confirm_update_en"))
	assert.False(t, middleware.HasPermission(user, models.HubModule, "confirm_update_uk"), "module must match")
	assert.False(t, middleware.HasPermission(&models.User{}, models.HubModule, "confirm_update_en"), "no role")
	assert.False(t, middleware.HasPermission(nil, models.HubModule, "confirm_update_en"))

	admin := &models.User{Role: &models.Role{Name: middleware.AdminRole}}
	assert.True(t, middleware.HasPermission(admin, models.HubModule, "anything"))

	gate := middleware.RoleGate{}
	assert.True(t, gate.HasCapability(user, "confirm_update_en"))
	assert.False(t, gate.HasCapability(user, models.CapPublishSection))
}
