package generator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/resumefire/backend/go-services/internal/resume"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

func fakeOpenAI(t *testing.T, reply string, status int, seen *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		if seen != nil {
			require.NoError(t, json.Unmarshal(body, seen))
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream exploded","type":"server_error"}}`))
			return
		}
		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newGateway(t *testing.T, srv *httptest.Server) *OpenAIGateway {
	t.Helper()
	g, err := NewOpenAIGateway(OpenAIConfig{APIKey: "test-key", Model: "test-model", BaseURL: srv.URL + "/v1/"})
	require.NoError(t, err)
	return g
}

func sampleDoc() resume.Document {
	d := resume.NewDocument("u1", "ada")
	d.Summary = "secret summary"
	d.Skills = []string{"Go"}
	d.Education = []resume.Education{{ID: "ed1", Institution: "Imperial College"}}
	return d
}

func TestOpenAIGateway_Generate(t *testing.T) {
	var seen chatRequest
	srv := fakeOpenAI(t, "```json\n{\"summary\":\"tailored\"}\n```", http.StatusOK, &seen)
	g := newGateway(t, srv)

	in := Instructions{JobText: "Senior Go engineer", Intensity: 9, ProtectedKeys: []resume.SectionKey{resume.SectionSummary, resume.SectionEducation}}
	raw, err := g.Generate(context.Background(), sampleDoc(), in)
	require.NoError(t, err)
	require.JSONEq(t, `{"summary":"tailored"}`, string(raw))

	require.Equal(t, "test-model", seen.Model)
	require.NotNil(t, seen.ResponseFormat)
	require.Equal(t, "json_object", seen.ResponseFormat.Type)
	require.Len(t, seen.Messages, 1)
	prompt := seen.Messages[0].Content
	require.Contains(t, prompt, "Senior Go engineer")
	require.Contains(t, prompt, "9/10")
	require.Contains(t, prompt, "Rewrite the resume heavily")
	require.Contains(t, prompt, "MUST NOT be changed: summary, education.")
	require.NotContains(t, prompt, "secret summary")
	require.NotContains(t, prompt, "Imperial College")
	require.Contains(t, prompt, `"Go"`)
}

func TestOpenAIGateway_GenerateFailure(t *testing.T) {
	srv := fakeOpenAI(t, "", http.StatusInternalServerError, nil)
	g := newGateway(t, srv)

	_, err := g.Generate(context.Background(), sampleDoc(), Instructions{JobText: "x", Intensity: 1})
	var gerr *resume.GenerationError
	require.True(t, errors.As(err, &gerr))
	require.NotEmpty(t, gerr.Reason)
}

func TestOpenAIGateway_Summarize(t *testing.T) {
	var seen chatRequest
	srv := fakeOpenAI(t, "  I build reliable systems.  ", http.StatusOK, &seen)
	g := newGateway(t, srv)

	exp := []resume.Experience{{ID: "e1", JobTitle: "Dev", Company: "Acme", Description: "shipped"}}
	s, err := g.Summarize(context.Background(), "Backend Engineer", exp, []string{"Go", "SQL"})
	require.NoError(t, err)
	require.Equal(t, "I build reliable systems.", s)
	require.Contains(t, seen.Messages[0].Content, "- Dev at Acme: shipped")
	require.Contains(t, seen.Messages[0].Content, "Go, SQL")
	require.Nil(t, seen.ResponseFormat)
}

func TestNewOpenAIGateway_RequiresKey(t *testing.T) {
	_, err := NewOpenAIGateway(OpenAIConfig{})
	require.Error(t, err)
}

func TestUnavailable(t *testing.T) {
	_, err := Unavailable{}.Generate(context.Background(), sampleDoc(), Instructions{})
	var gerr *resume.GenerationError
	require.True(t, errors.As(err, &gerr))
	require.True(t, strings.Contains(gerr.Reason, "unavailable"))
}

func TestInstructionsValidate(t *testing.T) {
	require.NoError(t, Instructions{JobText: "x", Intensity: 5}.Validate())
	require.ErrorIs(t, Instructions{Intensity: 5}.Validate(), ErrInvalidInstructions)
	require.ErrorIs(t, Instructions{JobText: "x", Intensity: 0}.Validate(), ErrInvalidInstructions)
	require.ErrorIs(t, Instructions{JobText: "x", Intensity: 11}.Validate(), ErrInvalidInstructions)
	require.ErrorIs(t, Instructions{JobText: "x", Intensity: 3, ProtectedKeys: []resume.SectionKey{"hobbies"}}.Validate(), ErrInvalidInstructions)
	require.ErrorIs(t, Instructions{JobText: "x", Intensity: 3, ProtectedKeys: []resume.SectionKey{"skills", "skills"}}.Validate(), ErrInvalidInstructions)
}

func TestStripFences(t *testing.T) {
	require.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	require.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}```"))
	require.Equal(t, `{"a":1}`, stripFences("  {\"a\":1}  "))
}

func TestDegreeInstruction(t *testing.T) {
	require.Contains(t, degreeInstruction(1), "subtle")
	require.Contains(t, degreeInstruction(3), "subtle")
	require.Contains(t, degreeInstruction(4), "Significantly")
	require.Contains(t, degreeInstruction(7), "Significantly")
	require.Contains(t, degreeInstruction(8), "heavily")
}
