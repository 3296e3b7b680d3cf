package jenkins

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pipepilot/pipepilot/internal/config"
)

func testClient(url string) *Client {
	return New(config.Jenkins{
		URL:            url,
		Username:       "admin",
		Token:          "secret",
		TimeoutSeconds: 5,
	})
}

func TestVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/json" {
			t.Errorf("path = %q, want /api/json", r.URL.Path)
		}
		user, token, ok := r.BasicAuth()
		if !ok || user != "admin" || token != "secret" {
			t.Errorf("basic auth = %q/%q/%v", user, token, ok)
		}
		w.Header().Set("X-Jenkins", "2.426.1")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	v, err := testClient(srv.URL).Version(context.Background())
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if v != "2.426.1" {
		t.Errorf("version = %q, want 2.426.1", v)
	}
}

func TestVersionUnreachable(t *testing.T) {
	c := testClient("http://127.0.0.1:1")
	_, err := c.Version(context.Background())
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}
	var connErr *ConnectivityError
	if !errors.As(err, &connErr) {
		t.Fatalf("error = %T, want *ConnectivityError", err)
	}
	if connErr.URL != "http://127.0.0.1:1" {
		t.Errorf("URL = %q", connErr.URL)
	}
}

func TestInstalledPlugins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pluginManager/api/json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("depth") != "1" {
			t.Errorf("depth = %q, want 1", r.URL.Query().Get("depth"))
		}
		w.Write([]byte(`{"plugins":[{"shortName":"git","version":"5.2.0"},{"shortName":"workflow-aggregator","version":"596.v8c21c963d92d"}]}`))
	}))
	defer srv.Close()

	plugins, err := testClient(srv.URL).InstalledPlugins(context.Background())
	if err != nil {
		t.Fatalf("InstalledPlugins: %v", err)
	}
	if len(plugins) != 2 {
		t.Fatalf("got %d plugins, want 2", len(plugins))
	}
	if plugins["git"] != "5.2.0" {
		t.Errorf("git version = %q", plugins["git"])
	}
}

func TestJobExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("tree"); got != "jobs[name]" {
			t.Errorf("tree = %q", got)
		}
		w.Write([]byte(`{"jobs":[{"name":"alpha"},{"name":"beta-pipeline"}]}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	exists, err := c.JobExists(context.Background(), "beta-pipeline")
	if err != nil {
		t.Fatalf("JobExists: %v", err)
	}
	if !exists {
		t.Error("beta-pipeline should exist")
	}
	exists, err = c.JobExists(context.Background(), "gamma")
	if err != nil {
		t.Fatalf("JobExists: %v", err)
	}
	if exists {
		t.Error("gamma should not exist")
	}
}

func TestCreateOrUpdateJobCreates(t *testing.T) {
	var createdXML string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/json":
			w.Write([]byte(`{"jobs":[]}`))
		case "/createItem":
			if r.Method != http.MethodPost {
				t.Errorf("method = %q", r.Method)
			}
			if got := r.URL.Query().Get("name"); got != "demo-pipeline" {
				t.Errorf("name = %q", got)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/xml" {
				t.Errorf("content type = %q", ct)
			}
			body, _ := io.ReadAll(r.Body)
			createdXML = string(body)
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer srv.Close()

	updated, err := testClient(srv.URL).CreateOrUpdateJob(context.Background(), "demo-pipeline", "<flow-definition/>")
	if err != nil {
		t.Fatalf("CreateOrUpdateJob: %v", err)
	}
	if updated {
		t.Error("updated = true, want create")
	}
	if createdXML != "<flow-definition/>" {
		t.Errorf("posted xml = %q", createdXML)
	}
}

func TestCreateOrUpdateJobUpdates(t *testing.T) {
	var updatePath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/json":
			w.Write([]byte(`{"jobs":[{"name":"demo-pipeline"}]}`))
		case r.Method == http.MethodPost:
			updatePath = r.URL.Path
		}
	}))
	defer srv.Close()

	updated, err := testClient(srv.URL).CreateOrUpdateJob(context.Background(), "demo-pipeline", "<flow-definition/>")
	if err != nil {
		t.Fatalf("CreateOrUpdateJob: %v", err)
	}
	if !updated {
		t.Error("updated = false, want update")
	}
	if updatePath != "/job/demo-pipeline/config.xml" {
		t.Errorf("update path = %q", updatePath)
	}
}

func TestCreateJobFailureIsJobError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "a job already exists with the name", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := testClient(srv.URL).CreateJob(context.Background(), "demo-pipeline", "<x/>")
	if err == nil {
		t.Fatal("expected error")
	}
	var jobErr *JobError
	if !errors.As(err, &jobErr) {
		t.Fatalf("error = %T, want *JobError", err)
	}
	if jobErr.Job != "demo-pipeline" {
		t.Errorf("Job = %q", jobErr.Job)
	}
}

func TestInstallPlugin(t *testing.T) {
	var posted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pluginManager/installNecessaryPlugins" {
			t.Errorf("path = %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		posted = string(body)
	}))
	defer srv.Close()

	if err := testClient(srv.URL).InstallPlugin(context.Background(), "docker-workflow"); err != nil {
		t.Fatalf("InstallPlugin: %v", err)
	}
	want := `<jenkins><install plugin="docker-workflow@latest"/></jenkins>`
	if posted != want {
		t.Errorf("posted = %q, want %q", posted, want)
	}
}

func TestInstallPluginFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	err := testClient(srv.URL).InstallPlugin(context.Background(), "docker-workflow")
	var installErr *PluginInstallError
	if !errors.As(err, &installErr) {
		t.Fatalf("error = %T, want *PluginInstallError", err)
	}
	if installErr.Plugin != "docker-workflow" {
		t.Errorf("Plugin = %q", installErr.Plugin)
	}
}
