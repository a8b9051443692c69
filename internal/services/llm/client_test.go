package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func completionServer(t *testing.T, handler func(calls int, body map[string]any) (int, any)) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		status, payload := handler(calls, body)
		if status != http.StatusOK {
			w.WriteHeader(status)
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func messageContent(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": content}},
		},
	}
}

func TestClientHealthCheck(t *testing.T) {
	server, _ := completionServer(t, func(int, map[string]any) (int, any) {
		return http.StatusOK, messageContent(`{"ok":true}`)
	})
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestClientHealthCheckCodeFence(t *testing.T) {
	server, _ := completionServer(t, func(int, map[string]any) (int, any) {
		return http.StatusOK, messageContent("```json\n{\"ok\":true}\n```")
	})
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestClientHealthCheckFailure(t *testing.T) {
	server, calls := completionServer(t, func(int, map[string]any) (int, any) {
		return http.StatusUnauthorized, map[string]string{"error": "unauthorized"}
	})
	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"})
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health check to fail")
	}
	if *calls != 1 {
		t.Fatalf("expected no retries on 401, got %d calls", *calls)
	}
}

func TestClientTranslate(t *testing.T) {
	var captured map[string]any
	server, _ := completionServer(t, func(_ int, body map[string]any) (int, any) {
		captured = body
		return http.StatusOK, messageContent(`{"translation":" Bonjour le monde "}`)
	})
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})

	got, err := client.Translate(context.Background(), "Hello world", "auto", "fr")
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if got != "Bonjour le monde" {
		t.Fatalf("unexpected translation %q", got)
	}
	if captured["model"] != "demo-model" {
		t.Fatalf("unexpected model in request: %v", captured["model"])
	}
	messages, ok := captured["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("unexpected messages %v", captured["messages"])
	}
	user := messages[1].(map[string]any)["content"].(string)
	for _, want := range []string{`"text":"Hello world"`, `French (fr)`, `detect automatically`} {
		if !strings.Contains(user, want) {
			t.Fatalf("expected %q in user prompt %q", want, user)
		}
	}
}

func TestClientTranslateRejectsEmptyOutput(t *testing.T) {
	server, _ := completionServer(t, func(int, map[string]any) (int, any) {
		return http.StatusOK, messageContent(`{"translation":"   "}`)
	})
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL})
	if _, err := client.Translate(context.Background(), "Hi", "", "fr"); err == nil {
		t.Fatal("expected error for empty translation")
	}
	if _, err := client.Translate(context.Background(), "  ", "", "fr"); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestClientEmptyContentHasSnippet(t *testing.T) {
	server, calls := completionServer(t, func(int, map[string]any) (int, any) {
		return http.StatusOK, map[string]any{
			"choices": []any{
				map[string]any{"finish_reason": "stop", "message": map[string]any{"content": ""}},
			},
		}
	})
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithRetryBackoff(0, 0),
		WithSleeper(func(time.Duration) {}),
		WithRetryMaxAttempts(3),
	)
	_, err := client.Translate(context.Background(), "Hi", "", "fr")
	if err == nil {
		t.Fatal("expected translate to fail")
	}
	if !strings.Contains(err.Error(), "empty content") || !strings.Contains(err.Error(), "response_snippet=") {
		t.Fatalf("expected empty-content error to include snippet, got %v", err)
	}
	if *calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", *calls)
	}
}

func TestClientRetriesOnHTTP429(t *testing.T) {
	server, calls := completionServer(t, func(calls int, _ map[string]any) (int, any) {
		if calls == 1 {
			return http.StatusTooManyRequests, map[string]string{"error": "rate limited"}
		}
		return http.StatusOK, messageContent(`{"translation":"Merci"}`)
	})

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		WithRetryBackoff(2*time.Second, 10*time.Second),
		WithRetryMaxAttempts(5),
	)
	got, err := client.Translate(context.Background(), "Thanks", "", "fr")
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if got != "Merci" {
		t.Fatalf("unexpected translation %q", got)
	}
	if *calls != 2 {
		t.Fatalf("expected 2 calls, got %d", *calls)
	}
	if len(slept) != 1 || slept[0] != 2*time.Second {
		t.Fatalf("expected single sleep of 2s, got %v", slept)
	}
}

func TestClientSendsAttributionHeaders(t *testing.T) {
	var referer, title string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		referer = r.Header.Get("HTTP-Referer")
		title = r.Header.Get("X-Title")
		_ = json.NewEncoder(w).Encode(messageContent(`{"translation":"Bonjour"}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Referer: " https://example.test ", Title: "vidlingo"})
	if _, err := client.Translate(context.Background(), "Hello", "en", "fr"); err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if referer != "https://example.test" || title != "vidlingo" {
		t.Fatalf("unexpected headers referer=%q title=%q", referer, title)
	}
}

func TestCompleteJSONRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{})
	if _, err := client.CompleteJSON(context.Background(), "sys", "user"); err == nil {
		t.Fatal("expected api key error")
	}
}

func TestDecodeLLMJSON(t *testing.T) {
	var target struct {
		Translation string `json:"translation"`
	}
	if err := DecodeLLMJSON("Sure! {\"translation\":\"Bien\"} Hope that helps", &target); err != nil {
		t.Fatalf("DecodeLLMJSON returned error: %v", err)
	}
	if target.Translation != "Bien" {
		t.Fatalf("unexpected decode %q", target.Translation)
	}
	if err := DecodeLLMJSON("", &target); err == nil {
		t.Fatal("expected error for empty payload")
	}
}
