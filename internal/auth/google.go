package auth

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/Kyz7/hub/internal/database"
	"github.com/Kyz7/hub/internal/response"
	"github.com/Kyz7/hub/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var googleOauthConfig = &oauth2.Config{
	RedirectURL: "http://localhost:8080/auth/google/callback",
	Scopes:      []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
	Endpoint:    google.Endpoint,
}

var googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// ConfigureGoogle installs the OAuth client credentials. An empty redirect
// keeps the local default.
func ConfigureGoogle(clientID, clientSecret, redirectURL string) {
	googleOauthConfig.ClientID = clientID
	googleOauthConfig.ClientSecret = clientSecret
	if redirectURL != "" {
		googleOauthConfig.RedirectURL = redirectURL
	}
}

var (
	stateStore = make(map[string]time.Time)
	stateMutex sync.Mutex
)

func generateState() string {
	return utils.RandomString(43)
}

func storeState(state string) {
	stateMutex.Lock()
	defer stateMutex.Unlock()
	stateStore[state] = time.Now().Add(5 * time.Minute)

	for k, v := range stateStore {
		if time.Now().After(v) {
			delete(stateStore, k)
		}
	}
}

func validateState(state string) bool {
	stateMutex.Lock()
	defer stateMutex.Unlock()

	expiry, exists := stateStore[state]
	if !exists || time.Now().After(expiry) {
		return false
	}
	delete(stateStore, state)
	return true
}

func GoogleLogin(c *fiber.Ctx) error {
	state := generateState()
	storeState(state)
	return c.Redirect(googleOauthConfig.AuthCodeURL(state))
}

func GoogleCallback(c *fiber.Ctx) error {
	if !validateState(c.Query("state")) {
		return response.BadRequest(c, "Invalid state parameter", nil)
	}

	token, err := googleOauthConfig.Exchange(c.UserContext(), c.Query("code"))
	if err != nil {
		log.Warnf("google token exchange failed: %v", err)
		return response.Unauthorized(c, "Failed to exchange token")
	}

	client := googleOauthConfig.Client(c.UserContext(), token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return response.InternalError(c, "Failed to get user info")
	}
	defer resp.Body.Close()

	var info struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.Email == "" {
		return response.BadRequest(c, "Google did not return an email address", nil)
	}

	u, err := googleUser(database.DB, info.Email, info.Name)
	if err == ErrInactiveUser {
		return response.Forbidden(c, "User account is not active")
	}
	if err != nil {
		return response.InternalError(c, err.Error())
	}

	accessToken, refreshToken, err := issueTokens(database.DB, u)
	if err != nil {
		return response.InternalError(c, "Failed to issue tokens")
	}

	return response.Success(c, fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          u,
	}, "Login successful")
}
