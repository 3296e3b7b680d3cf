// Package jenkins is a client for the Jenkins remote access API,
// authenticated with a username/API-token pair.
package jenkins

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pipepilot/pipepilot/internal/config"
)

// Client performs read and write operations against one Jenkins instance.
type Client struct {
	baseURL  string
	username string
	token    string
	http     *http.Client
}

// New creates a Client from configuration.
func New(cfg config.Jenkins) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimSuffix(cfg.URL, "/"),
		username: cfg.Username,
		token:    cfg.Token,
		http:     &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the configured Jenkins URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// JobURL returns the browser URL of a job.
func (c *Client) JobURL(name string) string {
	return fmt.Sprintf("%s/job/%s/", c.baseURL, url.PathEscape(name))
}

// do performs one request and returns the body and headers. Transport
// failures are returned raw; callers wrap them in their error type.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	if c.username != "" && c.token != "" {
		req.SetBasicAuth(c.username, c.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.Header, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return respBody, resp.Header, fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, snippet(respBody))
	}
	return respBody, resp.Header, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// Version returns the Jenkins version from the X-Jenkins response header.
func (c *Client) Version(ctx context.Context) (string, error) {
	_, headers, err := c.do(ctx, http.MethodGet, "/api/json", "", nil)
	if err != nil {
		return "", &ConnectivityError{URL: c.baseURL, Err: err}
	}
	v := headers.Get("X-Jenkins")
	if v == "" {
		return "", &ConnectivityError{URL: c.baseURL, Err: fmt.Errorf("response missing X-Jenkins header")}
	}
	return v, nil
}

// InstalledPlugins returns the short name and version of every installed plugin.
func (c *Client) InstalledPlugins(ctx context.Context) (map[string]string, error) {
	body, _, err := c.do(ctx, http.MethodGet, "/pluginManager/api/json?depth=1", "", nil)
	if err != nil {
		return nil, &ConnectivityError{URL: c.baseURL, Err: err}
	}

	var parsed struct {
		Plugins []struct {
			ShortName string `json:"shortName"`
			Version   string `json:"version"`
		} `json:"plugins"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &ConnectivityError{URL: c.baseURL, Err: fmt.Errorf("parse plugin list: %w", err)}
	}

	plugins := make(map[string]string, len(parsed.Plugins))
	for _, p := range parsed.Plugins {
		plugins[p.ShortName] = p.Version
	}
	return plugins, nil
}

// ListJobs returns the names of all top-level jobs.
func (c *Client) ListJobs(ctx context.Context) ([]string, error) {
	body, _, err := c.do(ctx, http.MethodGet, "/api/json?tree=jobs[name]", "", nil)
	if err != nil {
		return nil, &ConnectivityError{URL: c.baseURL, Err: err}
	}

	var parsed struct {
		Jobs []struct {
			Name string `json:"name"`
		} `json:"jobs"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &ConnectivityError{URL: c.baseURL, Err: fmt.Errorf("parse job list: %w", err)}
	}

	names := make([]string, len(parsed.Jobs))
	for i, j := range parsed.Jobs {
		names[i] = j.Name
	}
	return names, nil
}

// JobExists reports whether a job with the given name exists.
func (c *Client) JobExists(ctx context.Context, name string) (bool, error) {
	jobs, err := c.ListJobs(ctx)
	if err != nil {
		return false, err
	}
	for _, j := range jobs {
		if j == name {
			return true, nil
		}
	}
	return false, nil
}

// CreateJob creates a new job from its config.xml document.
func (c *Client) CreateJob(ctx context.Context, name, configXML string) error {
	path := "/createItem?name=" + url.QueryEscape(name)
	if _, _, err := c.do(ctx, http.MethodPost, path, "application/xml", strings.NewReader(configXML)); err != nil {
		return &JobError{Job: name, Err: err}
	}
	return nil
}

// UpdateJob replaces the config.xml of an existing job.
func (c *Client) UpdateJob(ctx context.Context, name, configXML string) error {
	path := fmt.Sprintf("/job/%s/config.xml", url.PathEscape(name))
	if _, _, err := c.do(ctx, http.MethodPost, path, "application/xml", strings.NewReader(configXML)); err != nil {
		return &JobError{Job: name, Err: err}
	}
	return nil
}

// CreateOrUpdateJob updates a job in place when it already exists, and
// creates it otherwise. Returns true when an existing job was updated.
func (c *Client) CreateOrUpdateJob(ctx context.Context, name, configXML string) (updated bool, err error) {
	exists, err := c.JobExists(ctx, name)
	if err != nil {
		return false, &JobError{Job: name, Err: err}
	}
	if exists {
		return true, c.UpdateJob(ctx, name, configXML)
	}
	return false, c.CreateJob(ctx, name, configXML)
}

// InstallPlugin requests installation of one plugin by short name.
// Version pinning is not supported by the install endpoint; Jenkins
// installs the latest compatible release.
func (c *Client) InstallPlugin(ctx context.Context, name string) error {
	payload := fmt.Sprintf(`<jenkins><install plugin="%s@latest"/></jenkins>`, name)
	path := "/pluginManager/installNecessaryPlugins"
	if _, _, err := c.do(ctx, http.MethodPost, path, "text/xml", strings.NewReader(payload)); err != nil {
		return &PluginInstallError{Plugin: name, Err: err}
	}
	return nil
}
