// Package deploy holds the thin workspace collaborators: uploading a
// generated tree, creating or updating the app, polling status, and
// translating collection schemas into catalog DDL.
package deploy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ignorePatterns filters local artifacts that never belong in the workspace.
var ignorePatterns = []string{
	".git",
	".env",
	"__pycache__",
	".pyc",
	".pytest_cache",
	".coverage",
	"venv",
	".venv",
}

// Client is a minimal workspace REST client.
type Client struct {
	host  string
	token string
	http  *http.Client
	log   *zap.Logger
}

// NewClient creates a client for the given workspace host and token.
func NewClient(host, token string, log *zap.Logger) *Client {
	return &Client{
		host:  strings.TrimRight(host, "/"),
		token: token,
		http:  &http.Client{Timeout: 60 * time.Second},
		log:   log,
	}
}

// AppStatus is the observable state of a deployed app.
type AppStatus struct {
	Name    string `json:"name"`
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
	URL     string `json:"url,omitempty"`
}

// UploadTree copies the generated tree at localDir into the workspace under
// workspacePath, skipping ignored artifacts.
func (c *Client) UploadTree(ctx context.Context, localDir, workspacePath string) error {
	c.log.Info("uploading generated tree",
		zap.String("from", localDir),
		zap.String("to", workspacePath))

	if err := c.mkdirs(ctx, workspacePath); err != nil {
		return err
	}

	uploaded := 0
	err := filepath.WalkDir(localDir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || shouldIgnore(p) {
			return nil
		}
		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return err
		}
		remote := path.Join(workspacePath, filepath.ToSlash(rel))
		if dir := path.Dir(remote); dir != workspacePath {
			if err := c.mkdirs(ctx, dir); err != nil {
				return err
			}
		}
		raw, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		if err := c.importFile(ctx, remote, raw); err != nil {
			return fmt.Errorf("uploading %s: %w", rel, err)
		}
		uploaded++
		return nil
	})
	if err != nil {
		return err
	}

	c.log.Info("upload complete", zap.Int("files", uploaded))
	return nil
}

func shouldIgnore(p string) bool {
	for _, pattern := range ignorePatterns {
		if strings.Contains(p, pattern) {
			return true
		}
	}
	return false
}

func (c *Client) mkdirs(ctx context.Context, workspacePath string) error {
	body := map[string]string{"path": workspacePath}
	return c.do(ctx, http.MethodPost, "/api/2.0/workspace/mkdirs", body, nil)
}

func (c *Client) importFile(ctx context.Context, remote string, content []byte) error {
	endpoint := "/api/2.0/workspace-files/import-file/" + escapePath(strings.TrimPrefix(remote, "/")) + "?overwrite=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+endpoint, bytes.NewReader(content))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return apiError(resp)
	}
	return nil
}

// escapePath escapes each path segment individually so separators survive.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

type appConfig struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CreateOrUpdateApp ensures the named app exists and points at the uploaded
// tree. An existing app is updated in place.
func (c *Client) CreateOrUpdateApp(ctx context.Context, name, workspacePath, description string) (AppStatus, error) {
	cfg := appConfig{Name: name, Description: description}

	var existing AppStatus
	err := c.do(ctx, http.MethodGet, "/api/2.0/apps/"+url.PathEscape(name), nil, &existing)
	if err == nil {
		c.log.Info("updating existing app", zap.String("app", name))
		var status AppStatus
		if err := c.do(ctx, http.MethodPatch, "/api/2.0/apps/"+url.PathEscape(name), cfg, &status); err != nil {
			return AppStatus{}, fmt.Errorf("updating app %s: %w", name, err)
		}
		return status, nil
	}

	c.log.Info("creating app", zap.String("app", name))
	var status AppStatus
	if err := c.do(ctx, http.MethodPost, "/api/2.0/apps", cfg, &status); err != nil {
		return AppStatus{}, fmt.Errorf("creating app %s: %w", name, err)
	}
	return status, nil
}

// Status fetches the current state of the named app.
func (c *Client) Status(ctx context.Context, name string) (AppStatus, error) {
	var status AppStatus
	if err := c.do(ctx, http.MethodGet, "/api/2.0/apps/"+url.PathEscape(name), nil, &status); err != nil {
		return AppStatus{}, err
	}
	if status.URL == "" {
		status.URL = c.host + "/apps/" + name
	}
	return status, nil
}

// WaitReady polls until the app reports a running state, the timeout
// elapses, or the context is cancelled.
func (c *Client) WaitReady(ctx context.Context, name string, timeout, interval time.Duration) (AppStatus, error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := c.Status(ctx, name)
		if err != nil {
			c.log.Warn("status check failed, retrying", zap.Error(err))
		} else if strings.EqualFold(status.State, "RUNNING") {
			return status, nil
		}

		if time.Now().After(deadline) {
			return AppStatus{}, fmt.Errorf("app %s not ready after %s", name, timeout)
		}
		select {
		case <-ctx.Done():
			return AppStatus{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.host+endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func apiError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload struct {
		ErrorCode string `json:"error_code"`
		Message   string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Message != "" {
		return fmt.Errorf("workspace api: %s: %s", payload.ErrorCode, payload.Message)
	}
	return fmt.Errorf("workspace api: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
}
