package role_test

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/Kyz7/hub/internal/database"
	"github.com/Kyz7/hub/internal/models"
	"github.com/Kyz7/hub/internal/role"
	"github.com/Kyz7/hub/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capabilities(t *testing.T, name string) []string {
	var r models.Role
	require.NoError(t, database.DB.Preload("Permissions").Where("name = ?", name).First(&r).Error)
	caps := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		assert.Equal(t, models.HubModule, p.Module)
		caps = append(caps, p.Action)
	}
	sort.Strings(caps)
	return caps
}

func TestSeedDefaultRoles(t *testing.T) {
	testutils.SetupTestApp(t)

	tests := []struct {
		role     string
		includes []string
		excludes []string
	}{
		{
			role:     "editor",
			includes: []string{"add_page", "add_content", "request_update", "request_update_en", "request_update_uk"},
			excludes: []string{"confirm_update_en", "publish_section"},
		},
		{
			role:     "reviewer_en",
			includes: []string{"confirm_update", "confirm_update_en", "reject_update", "reject_update_en"},
			excludes: []string{"confirm_update_uk", "request_update_en"},
		},
		{
			role:     "reviewer_uk",
			includes: []string{"confirm_update_uk", "reject_update_uk"},
			excludes: []string{"confirm_update_en", "confirm_update"},
		},
		{
			role:     "publisher",
			includes: []string{"publish_section", "unpublish_section", "display_content", "hide_content", "delete_page"},
			excludes: []string{"request_update_en", "confirm_update_uk"},
		},
		{
			role:     "location_manager",
			includes: []string{"manage_locations"},
			excludes: []string{"add_page"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			caps := capabilities(t, tt.role)
			for _, c := range tt.includes {
				assert.Contains(t, caps, c)
			}
			for _, c := range tt.excludes {
				assert.NotContains(t, caps, c)
			}
		})
	}

	t.Run("viewer and admin carry no rows", func(t *testing.T) {
		assert.Empty(t, capabilities(t, "viewer"))
		assert.Empty(t, capabilities(t, "admin"))
	})

	t.Run("seeding again adds nothing", func(t *testing.T) {
		var before, after int64
		database.DB.Model(&models.Permission{}).Count(&before)
		require.NoError(t, role.SeedDefaultRoles(database.DB))
		database.DB.Model(&models.Permission{}).Count(&after)
		assert.Equal(t, before, after)

		var roles int64
		database.DB.Model(&models.Role{}).Count(&roles)
		assert.Equal(t, int64(len(role.DefaultRoles)), roles)
	})

	t.Run("missing capabilities are restored", func(t *testing.T) {
		database.DB.Where("action = ?", "publish_section").Delete(&models.Permission{})
		require.NoError(t, role.SeedDefaultRoles(database.DB))
		assert.Contains(t, capabilities(t, "publisher"), "publish_section")
	})
}

func TestRoleCapabilityValidation(t *testing.T) {
	app := testutils.SetupTestApp(t)
	admin := testutils.CreateTestUser(t, database.DB, "admin@test.com", "password", "admin")
	token := testutils.GetAuthToken(t, admin.ID, "admin")

	t.Run("Error - Unknown hub capability", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "POST", "/roles", map[string]interface{}{
			"name":        "reviewer_fr",
			"permissions": []map[string]string{{"action": "confirm_update_fr"}},
		}, token)
		require.NoError(t, err)
		assert.Equal(t, 422, resp.Code)
		testutils.AssertError(t, resp, "VALIDATION_ERROR")

		var count int64
		database.DB.Model(&models.Role{}).Where("name = ?", "reviewer_fr").Count(&count)
		assert.Zero(t, count)
	})

	t.Run("Success - Other modules are stored as given", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "POST", "/roles", map[string]interface{}{
			"name":        "donations",
			"permissions": []map[string]string{{"module": "donations", "action": "view_reports"}},
		}, token)
		require.NoError(t, err)
		assert.Equal(t, 201, resp.Code)
	})

	t.Run("Error - Update to a taken name", func(t *testing.T) {
		var donations models.Role
		require.NoError(t, database.DB.Where("name = ?", "donations").First(&donations).Error)

		resp, err := testutils.MakeRequest(app, "PUT", fmt.Sprintf("/roles/%d", donations.ID),
			map[string]interface{}{"name": "publisher"}, token)
		require.NoError(t, err)
		assert.Equal(t, 409, resp.Code)
		testutils.AssertError(t, resp, "CONFLICT")
	})
}

func TestAdminRoleIsProtected(t *testing.T) {
	testutils.SetupTestApp(t)
	svc := role.NewService(database.DB)
	ctx := context.Background()

	var admin models.Role
	require.NoError(t, database.DB.Where("name = ?", "admin").First(&admin).Error)

	_, err := svc.Update(ctx, admin.ID, role.Input{Name: "superuser"})
	assert.Error(t, err)

	err = svc.Delete(ctx, admin.ID)
	assert.Error(t, err)

	var reloaded models.Role
	require.NoError(t, database.DB.First(&reloaded, admin.ID).Error)
	assert.Equal(t, "admin", reloaded.Name)
}

func TestDuplicateHubRole(t *testing.T) {
	app := testutils.SetupTestApp(t)
	admin := testutils.CreateTestUser(t, database.DB, "admin@test.com", "password", "admin")
	token := testutils.GetAuthToken(t, admin.ID, "admin")

	var reviewer models.Role
	require.NoError(t, database.DB.Where("name = ?", "reviewer_uk").First(&reviewer).Error)
	url := fmt.Sprintf("/roles/%d/duplicate", reviewer.ID)

	resp, err := testutils.MakeRequest(app, "POST", url, map[string]string{"name": "reviewer_uk_backup"}, token)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.Code)
	assert.Equal(t, capabilities(t, "reviewer_uk"), capabilities(t, "reviewer_uk_backup"))

	resp, err = testutils.MakeRequest(app, "POST", url, map[string]string{"name": "reviewer_uk_backup"}, token)
	require.NoError(t, err)
	assert.Equal(t, 409, resp.Code)

	resp, err = testutils.MakeRequest(app, "POST", url, map[string]string{}, token)
	require.NoError(t, err)
	assert.Equal(t, 422, resp.Code)

	resp, err = testutils.MakeRequest(app, "POST", "/roles/9999/duplicate", map[string]string{"name": "ghost"}, token)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.Code)
}

func TestAssignedRoleAppliesImmediately(t *testing.T) {
	app := testutils.SetupTestApp(t)
	admin := testutils.CreateTestUser(t, database.DB, "admin@test.com", "password", "admin")
	adminToken := testutils.GetAuthToken(t, admin.ID, "admin")

	staff := testutils.CreateTestUser(t, database.DB, "staff@test.com", "password", "viewer")
	staffToken := testutils.GetAuthToken(t, staff.ID, "viewer")

	resp, err := testutils.MakeRequest(app, "GET", "/locations/manage", nil, staffToken)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.Code)

	var manager models.Role
	require.NoError(t, database.DB.Where("name = ?", "location_manager").First(&manager).Error)
	resp, err = testutils.MakeRequest(app, "POST", "/roles/assign", map[string]interface{}{
		"user_id": staff.ID,
		"role_id": manager.ID,
	}, adminToken)
	require.NoError(t, err)
	require.Equal(t, 200, resp.Code)

	resp, err = testutils.MakeRequest(app, "GET", "/locations/manage", nil, staffToken)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Code, "the same token now carries the new role")

	resp, err = testutils.MakeRequest(app, "POST", "/roles/assign", map[string]interface{}{
		"user_id": 9999,
		"role_id": manager.ID,
	}, adminToken)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.Code)
}
