package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/exp/slog"

	"geotrail/internal/app/client/config"
	"geotrail/internal/domain/project"
)

// ErrPermissionDenied marks a probe rejected by the server's
// authorization layer. Name resolution treats it as "project absent"
// and lets the subsequent write fail on its own if that was wrong.
var ErrPermissionDenied = errors.New("permission denied")

type apiClient struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	token     string
	userAgent string
}

func newAPIClient(cfg *config.Config, log *slog.Logger) *apiClient {
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	scheme := "http://"
	if cfg.EnableTLS {
		scheme = "https://"
	}

	return &apiClient{
		client:    client,
		log:       log.With("component", "api_client"),
		baseURL:   scheme + cfg.ServerAddress,
		userAgent: "GeoTrail-Client/1.0",
	}
}

func (c *apiClient) SetToken(token string) {
	c.token = token
}

func (c *apiClient) Health(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/health", nil)
	if err != nil {
		return err
	}
	return c.parseResponse(resp, nil)
}

func (c *apiClient) Register(ctx context.Context, login, password string) error {
	body := map[string]string{"login": login, "password": password}
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/user/register", body)
	if err != nil {
		return err
	}
	return c.parseResponse(resp, nil)
}

func (c *apiClient) Login(ctx context.Context, login, password string) (string, error) {
	body := map[string]string{"login": login, "password": password}
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/user/login", body)
	if err != nil {
		return "", err
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	if err := c.parseResponse(resp, &loginResp); err != nil {
		return "", err
	}
	c.SetToken(loginResp.Token)
	return loginResp.Token, nil
}

// ProjectExists probes the remote store for a project name.
// Authorization denials surface as ErrPermissionDenied so the caller
// can apply its probe policy; any other failure is returned as-is.
func (c *apiClient) ProjectExists(ctx context.Context, name string) (bool, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/projects/"+url.PathEscape(name), nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return false, ErrPermissionDenied
	default:
		return false, fmt.Errorf("probe project %q: status %d", name, resp.StatusCode)
	}
}

func (c *apiClient) Projects(ctx context.Context) ([]project.Project, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/projects", nil)
	if err != nil {
		return nil, err
	}

	var listResp struct {
		Projects []project.Project `json:"projects"`
	}
	if err := c.parseResponse(resp, &listResp); err != nil {
		return nil, err
	}
	return listResp.Projects, nil
}

// CreateProject writes one project record. The server assigns the
// creation time and returns the stored record.
func (c *apiClient) CreateProject(ctx context.Context, p project.Project) (*project.Project, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, "/api/projects/"+url.PathEscape(p.Name), p)
	if err != nil {
		return nil, err
	}

	var stored project.Project
	if err := c.parseResponse(resp, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (c *apiClient) UploadBlob(ctx context.Context, path string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/api/blobs/"+escapeBlobPath(path), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	c.setAuthHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload blob: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("upload blob %s: status %d", path, resp.StatusCode)
	}
	return nil
}

func (c *apiClient) DownloadBlob(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/blobs/"+escapeBlobPath(path), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setAuthHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download blob: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("download blob %s: status %d", path, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Blob paths contain slashes that must survive routing.
func escapeBlobPath(path string) string {
	return (&url.URL{Path: path}).EscapedPath()
}

func (c *apiClient) setAuthHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *apiClient) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuthHeaders(req)

	c.log.Debug("sending request", "method", method, "url", req.URL.String())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}

func (c *apiClient) parseResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil {
			if errResp.Error != "" {
				return fmt.Errorf("server error: %s", errResp.Error)
			}
			if errResp.Detail != "" {
				return fmt.Errorf("server error: %s", errResp.Detail)
			}
		}
		return fmt.Errorf("server error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
