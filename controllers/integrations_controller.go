package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/SaintVisionAi/saintsal-chat-sub001/config"
	"github.com/SaintVisionAi/saintsal-chat-sub001/utils"
	"github.com/gofiber/fiber/v2"
)

var integrationsClient = &http.Client{Timeout: 30 * time.Second}

// forwardJSON performs an outbound REST call and relays the decoded JSON
// body. Upstream failures come back as 502 with the upstream status.
func forwardJSON(c *fiber.Ctx, method, url string, headers map[string]string, body []byte) error {
	ctx, cancel := utils.GetLongContext()
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build request"})
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := integrationsClient.Do(req)
	if err != nil {
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "Upstream request failed"})
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "Failed to read upstream response"})
	}

	if resp.StatusCode >= 300 {
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{
			"error":           "Upstream returned an error",
			"upstream_status": resp.StatusCode,
		})
	}

	var decoded interface{}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "Upstream returned invalid JSON"})
	}
	return c.JSON(fiber.Map{"success": true, "data": decoded})
}

// GitHubRepos lists the repositories visible to the configured token.
func GitHubRepos(c *fiber.Ctx) error {
	token := config.GetEnv(config.GitHubTokenEnv, "")
	if token == "" {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "GitHub integration not configured: set GITHUB_TOKEN and restart the server",
		})
	}

	return forwardJSON(c, http.MethodGet,
		"https://api.github.com/user/repos?per_page=100&sort=updated",
		map[string]string{
			"Authorization": "Bearer " + token,
			"Accept":        "application/vnd.github+json",
		}, nil)
}

// VercelProjects lists projects for the configured Vercel token.
func VercelProjects(c *fiber.Ctx) error {
	token := config.GetEnv(config.VercelTokenEnv, "")
	if token == "" {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Vercel integration not configured: set VERCEL_TOKEN and restart the server",
		})
	}

	return forwardJSON(c, http.MethodGet,
		"https://api.vercel.com/v9/projects",
		map[string]string{"Authorization": "Bearer " + token}, nil)
}

// GHLCreateContact creates a contact in GoHighLevel.
func GHLCreateContact(c *fiber.Ctx) error {
	apiKey := config.GetEnv(config.GHLAPIKeyEnv, "")
	if apiKey == "" {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "GoHighLevel integration not configured: set GHL_API_KEY and restart the server",
		})
	}

	var contact struct {
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Phone     string `json:"phone"`
	}
	if err := c.BodyParser(&contact); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request format"})
	}
	if contact.Email == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Email is required"})
	}

	body, err := json.Marshal(contact)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to encode contact"})
	}

	return forwardJSON(c, http.MethodPost,
		"https://rest.gohighlevel.com/v1/contacts/",
		map[string]string{"Authorization": "Bearer " + apiKey}, body)
}
