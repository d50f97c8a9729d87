package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/Kyz7/hub/internal/auth"
	"github.com/Kyz7/hub/internal/database"
	"github.com/Kyz7/hub/internal/models"
	"github.com/Kyz7/hub/internal/role"
	"github.com/Kyz7/hub/internal/server"
	"github.com/Kyz7/hub/internal/storage"
	"github.com/Kyz7/hub/internal/utils"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err, "Failed to create test database")

	// Every pooled connection to :memory: would get its own empty database.
	sqlDB, err := db.DB()
	assert.NoError(t, err, "Failed to get sql.DB")
	sqlDB.SetMaxOpenConns(1)

	err = database.Migrate(db)
	assert.NoError(t, err, "Failed to migrate test database")

	return db
}

// TestStorage keeps uploads in a directory removed when the test ends.
func TestStorage(t *testing.T) *storage.Local {
	store, err := storage.NewLocal(t.TempDir())
	assert.NoError(t, err, "Failed to initialize storage")
	return store
}

func SetupTestApp(t *testing.T) *fiber.App {
	db := TestDB(t)
	database.DB = db

	CreateTestRoles(t, db)
	auth.ConfigureGoogle("test-client-id", "test-client-secret", "")

	app := server.New(db, TestStorage(t), "*")
	return app
}

func CreateTestRoles(t *testing.T, db *gorm.DB) {
	err := role.SeedDefaultRoles(db)
	assert.NoError(t, err, "Failed to seed roles")
}

func CreateTestUser(t *testing.T, db *gorm.DB, email, password, roleName string) *models.User {
	hashedPassword, _ := utils.HashPassword(password)

	var userRole models.Role
	if err := db.Where("name = ?", roleName).First(&userRole).Error; err != nil {
		t.Fatalf("Failed to find role '%s': %v. Make sure CreateTestRoles was called.", roleName, err)
	}

	user := &models.User{
		Name:     "Test User",
		Email:    email,
		Password: hashedPassword,
		Status:   "active",
		RoleID:   userRole.ID,
	}

	err := db.Create(user).Error
	assert.NoError(t, err, "Failed to create test user")

	// Preload role with permissions
	db.Preload("Role.Permissions").First(user, user.ID)

	if user.Role == nil {
		t.Fatal("Role not loaded for user")
	}

	return user
}

func GetAuthToken(t *testing.T, userID uint, roleName string) string {
	token, err := utils.GenerateJWT(userID, roleName)
	assert.NoError(t, err, "Failed to generate test token")
	return token
}

func MakeRequest(app *fiber.App, method, url string, body interface{}, token string) (*httptest.ResponseRecorder, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, url, bodyReader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()

	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode

	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

func ParseResponse(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	if resp.Body.Len() == 0 {
		t.Log("Warning: Response body is empty")
		return
	}

	err := json.NewDecoder(resp.Body).Decode(v)
	if err != nil && err != io.EOF {
		t.Logf("Response body: %s", resp.Body.String())
		assert.NoError(t, err, "Failed to parse response")
	}
}

type StandardResponse struct {
	Success  bool         `json:"success"`
	Message  string       `json:"message"`
	Data     interface{}  `json:"data"`
	Warnings []string     `json:"warnings"`
	Redirect string       `json:"redirect"`
	Error    *ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

func AssertSuccess(t *testing.T, resp *httptest.ResponseRecorder) {
	var result StandardResponse
	ParseResponse(t, resp, &result)
	assert.True(t, result.Success, "Expected success response")
	assert.Empty(t, result.Error, "Expected no error")
}

func AssertError(t *testing.T, resp *httptest.ResponseRecorder, expectedCode string) {
	var result StandardResponse
	ParseResponse(t, resp, &result)
	assert.False(t, result.Success, "Expected error response")
	assert.NotNil(t, result.Error, "Expected error object")
	assert.Equal(t, expectedCode, result.Error.Code, "Error code mismatch")
}

func MakeMultipartRequest(app *fiber.App, method, url string, fields map[string]string, token string) (*httptest.ResponseRecorder, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, val := range fields {
		writer.WriteField(key, val)
	}

	contentType := writer.FormDataContentType()
	writer.Close()

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", contentType)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode
	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

func MakeMultipartRequestWithFile(app *fiber.App, method, url string, fields map[string]string, files map[string][]byte, token string) (*httptest.ResponseRecorder, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	// Add text fields
	for key, val := range fields {
		writer.WriteField(key, val)
	}

	// Add file fields
	for fieldName, fileContent := range files {
		part, err := writer.CreateFormFile(fieldName, fieldName+".pdf")
		if err != nil {
			return nil, err
		}
		part.Write(fileContent)
	}

	contentType := writer.FormDataContentType()
	writer.Close()

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", contentType)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode
	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

func MakeRedirectRequest(app *fiber.App, method, url string, token string) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(method, url, nil)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()

	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode

	for k, v := range resp.Header {
		for _, val := range v {
			rec.Header().Add(k, val)
		}
	}

	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}
