package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hugo-lorenzo-mato/flowrunner/internal/core"
	"github.com/hugo-lorenzo-mato/flowrunner/internal/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{Host: srv.URL, Model: "tinyllama"}, logging.NewNop())
}

func TestNew_Defaults(t *testing.T) {
	c := New(Config{}, nil)
	if c.Host() != DefaultHost {
		t.Errorf("Host() = %q, want %q", c.Host(), DefaultHost)
	}
	if c.Model() != DefaultModel {
		t.Errorf("Model() = %q, want %q", c.Model(), DefaultModel)
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New(Config{Host: "http://localhost:11434/"}, nil)
	if c.Host() != "http://localhost:11434" {
		t.Errorf("Host() = %q, want trailing slash removed", c.Host())
	}
}

func TestGenerate_Success(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "hi there"})
	})

	out, err := client.Generate(context.Background(), "Say hi")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out != "hi there" {
		t.Errorf("Generate() = %q, want %q", out, "hi there")
	}
	if gotPath != "/api/generate" {
		t.Errorf("request path = %q, want /api/generate", gotPath)
	}
	if gotBody["model"] != "tinyllama" {
		t.Errorf("request model = %v, want tinyllama", gotBody["model"])
	}
	if gotBody["prompt"] != "Say hi" {
		t.Errorf("request prompt = %v, want Say hi", gotBody["prompt"])
	}
	if stream, ok := gotBody["stream"].(bool); !ok || stream {
		t.Errorf("request stream = %v, want false", gotBody["stream"])
	}
}

func TestGenerate_MissingResponseField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"done": true}`))
	})

	out, err := client.Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out != "" {
		t.Errorf("Generate() = %q, want empty output for absent response field", out)
	}
}

func TestGenerate_BackendError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("model not loaded\n"))
	})

	_, err := client.Generate(context.Background(), "p")
	if !core.IsCode(err, core.CodeBackendError) {
		t.Fatalf("error = %v, want code %s", err, core.CodeBackendError)
	}
	if !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "model not loaded") {
		t.Errorf("error %q should carry status and trimmed body", err.Error())
	}
}

func TestGenerate_BackendUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection now refused

	client := New(Config{Host: srv.URL, Timeout: time.Second}, logging.NewNop())
	_, err := client.Generate(context.Background(), "p")
	if !core.IsCode(err, core.CodeBackendUnavailable) {
		t.Errorf("error = %v, want code %s", err, core.CodeBackendUnavailable)
	}
}

func TestGenerate_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	_, err := client.Generate(context.Background(), "p")
	if !core.IsCode(err, core.CodeBackendError) {
		t.Errorf("error = %v, want code %s", err, core.CodeBackendError)
	}
}

func TestGenerate_ContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server notices the client disconnect and
		// cancels the request context; otherwise this handler never returns
		// and srv.Close deadlocks in cleanup.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Generate(ctx, "p")
	if !core.IsCode(err, core.CodeBackendUnavailable) {
		t.Errorf("error = %v, want code %s", err, core.CodeBackendUnavailable)
	}
}

func TestModels(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("request path = %q, want /api/tags", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"models": [{"name": "tinyllama:latest"}, {"name": "phi3"}]}`))
	})

	models, err := client.Models(context.Background())
	if err != nil {
		t.Fatalf("Models() error = %v", err)
	}
	if len(models) != 2 || models[0] != "tinyllama:latest" || models[1] != "phi3" {
		t.Errorf("Models() = %v, want the two tag names", models)
	}
}

func TestHasModel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"models": [{"name": "tinyllama:latest"}]}`))
	})

	ok, err := client.HasModel(context.Background(), "tinyllama")
	if err != nil {
		t.Fatalf("HasModel() error = %v", err)
	}
	if !ok {
		t.Error("HasModel(tinyllama) = false, want tag base name to match")
	}

	ok, err = client.HasModel(context.Background(), "mistral")
	if err != nil {
		t.Fatalf("HasModel() error = %v", err)
	}
	if ok {
		t.Error("HasModel(mistral) = true, want false")
	}
}
