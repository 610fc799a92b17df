package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"ApprovalBot/internal/config"
	"ApprovalBot/internal/platform/postgres"
	"ApprovalBot/internal/service"
	"ApprovalBot/internal/status"
	httptransport "ApprovalBot/internal/transport/http"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestE2EFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping e2e tests in short mode")
	}

	t.Run("pipeline approval", func(t *testing.T) {
		server := newTestServer(t)
		defer server.Close()

		client := server.Client()
		setupRoster(t, client, server.URL)

		addComment(t, client, server.URL, 1, "c1", "/approve")
		addComment(t, client, server.URL, 1, "outsider", "/reject")
		addComment(t, client, server.URL, 1, "m1", "LGTM\r\n/Approve")

		first := evaluate(t, client, server.URL, "/proposals/evaluate", 1, "pipeline")
		if first.Decision != "Approved" {
			t.Fatalf("expected Approved, got %s", first.Decision)
		}
		if first.CommentAction != string(status.ActionCreate) {
			t.Fatalf("expected create, got %s", first.CommentAction)
		}
		assertLabels(t, client, server.URL, 1, []string{"accepted"})

		second := evaluate(t, client, server.URL, "/proposals/evaluate", 1, "pipeline")
		if second.CommentAction != string(status.ActionNone) {
			t.Fatalf("expected no-op on re-run, got %s", second.CommentAction)
		}
	})

	t.Run("pipeline mixed votes stay pending", func(t *testing.T) {
		server := newTestServer(t)
		defer server.Close()

		client := server.Client()
		setupRoster(t, client, server.URL)

		addComment(t, client, server.URL, 2, "c1", "/approve")
		addComment(t, client, server.URL, 2, "c2", "/reject")

		out := evaluate(t, client, server.URL, "/proposals/evaluate", 2, "pipeline")
		if out.Decision != "Pending" {
			t.Fatalf("expected Pending, got %s", out.Decision)
		}
		assertLabels(t, client, server.URL, 2, []string{"proposed"})

		addComment(t, client, server.URL, 2, "c1", "on reflection\n/reject")
		out = evaluate(t, client, server.URL, "/proposals/evaluate", 2, "pipeline")
		if out.Decision != "Rejected" {
			t.Fatalf("expected Rejected after c1 changed vote, got %s", out.Decision)
		}
		if out.CommentAction != string(status.ActionUpdate) {
			t.Fatalf("expected update, got %s", out.CommentAction)
		}
		assertLabels(t, client, server.URL, 2, []string{"turned-down"})
	})

	t.Run("rfc timeout", func(t *testing.T) {
		server := newTestServer(t)
		defer server.Close()

		client := server.Client()
		setupRoster(t, client, server.URL)

		addComment(t, client, server.URL, 3, "c1", "/approve")

		out := evaluate(t, client, server.URL, "/proposals/timeout", 3, "rfc")
		if out.Decision != "TimedOut" {
			t.Fatalf("expected TimedOut, got %s", out.Decision)
		}
		assertLabels(t, client, server.URL, 3, []string{"timed-out"})

		out = evaluate(t, client, server.URL, "/proposals/timeout", 3, "rfc")
		if out.Decision != "TimedOut" {
			t.Fatalf("expected TimedOut on repeated timeout, got %s", out.Decision)
		}
		if out.CommentAction != string(status.ActionNone) {
			t.Fatalf("expected none on repeated timeout, got %s", out.CommentAction)
		}
	})

	t.Run("health", func(t *testing.T) {
		server := newTestServer(t)
		defer server.Close()

		resp, err := server.Client().Get(server.URL + "/health")
		if err != nil {
			t.Fatalf("health request: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("health status: %d", resp.StatusCode)
		}
	})
}

// Helpers

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	t.Cleanup(func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get postgres host: %v", err)
	}

	port, err := postgresContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get postgres port: %v", err)
	}

	pgConfig := config.PostgresConfig{
		Host:     host,
		Port:     port.Port(),
		User:     "test",
		Password: "test",
		DBName:   "test",
		SSLMode:  "disable",
		MaxConns: 4,
	}

	store, err := postgres.New(ctx, pgConfig)
	if err != nil {
		t.Fatalf("failed to create postgres store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(store, status.NewReconciler(""), logger)
	handler := httptransport.NewHandler(svc, "")

	return httptest.NewServer(handler.Router())
}

func setupRoster(t *testing.T, client *http.Client, baseURL string) {
	t.Helper()

	rosters := map[string][]string{
		"core":       {"c1", "c2", "c3"},
		"maintainer": {"m1", "m2", "c3"},
	}
	for role, members := range rosters {
		resp := doRequest(t, client, http.MethodPost, baseURL+"/roster/set", map[string]any{
			"role":    role,
			"members": members,
		})
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("set %s roster status: %d", role, resp.StatusCode)
		}
	}
}

func addComment(t *testing.T, client *http.Client, baseURL string, thread int, author, body string) {
	t.Helper()

	resp := doRequest(t, client, http.MethodPost, baseURL+"/comments/add", map[string]any{
		"thread": thread,
		"author": author,
		"body":   body,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add comment status: %d", resp.StatusCode)
	}
}

type outcomePayload struct {
	Decision      string   `json:"decision"`
	Labels        []string `json:"labels"`
	CommentAction string   `json:"comment_action"`
	Body          string   `json:"body"`
}

func evaluate(t *testing.T, client *http.Client, baseURL, path string, thread int, kind string) outcomePayload {
	t.Helper()

	resp := doRequest(t, client, http.MethodPost, baseURL+path, map[string]any{
		"thread": thread,
		"kind":   kind,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("evaluate status: %d: %s", resp.StatusCode, body)
	}

	var response struct {
		Outcome outcomePayload `json:"outcome"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		t.Fatalf("decode outcome: %v", err)
	}
	if !strings.HasPrefix(response.Outcome.Body, status.Marker) {
		t.Fatalf("status body missing marker: %q", response.Outcome.Body)
	}
	return response.Outcome
}

func assertLabels(t *testing.T, client *http.Client, baseURL string, thread int, want []string) {
	t.Helper()

	resp, err := client.Get(baseURL + "/labels/get?thread=" + strconv.Itoa(thread))
	if err != nil {
		t.Fatalf("get labels: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get labels status: %d", resp.StatusCode)
	}

	var payload struct {
		Labels []string `json:"labels"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode labels: %v", err)
	}
	if !reflect.DeepEqual(payload.Labels, want) {
		t.Fatalf("labels: got %v, want %v", payload.Labels, want)
	}
}

func doRequest(t *testing.T, client *http.Client, method, url string, payload any) *http.Response {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, &body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}

	return resp
}
