package llm

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectSummaryPromptIncludesInputs(t *testing.T) {
	p := ProjectSummaryPrompt([]string{"GET /users", "POST /login"}, "some context")
	assert.Contains(t, p, "GET /users")
	assert.Contains(t, p, "POST /login")
	assert.Contains(t, p, "some context")
}

func TestProjectSummaryPromptCapsEndpoints(t *testing.T) {
	endpoints := make([]string, 30)
	for i := range endpoints {
		endpoints[i] = fmt.Sprintf("GET /route/%d", i)
	}
	p := ProjectSummaryPrompt(endpoints, "ctx")
	assert.Contains(t, p, "GET /route/9")
	assert.NotContains(t, p, "GET /route/10\n")
	assert.NotContains(t, p, "GET /route/29")
}

func TestLanguageSummaryPromptCapsSampleCode(t *testing.T) {
	sample := strings.Repeat("x", maxSampleCodeBytes+500)
	p := LanguageSummaryPrompt([]string{"Go"}, "Gin/Fiber", sample, "ctx")
	assert.Less(t, strings.Count(p, "x"), maxSampleCodeBytes+100)
	assert.Contains(t, p, "Gin/Fiber")
}

func TestDependencyExplanationPromptNamesFile(t *testing.T) {
	p := DependencyExplanationPrompt("package.json", `{"name":"app"}`, "ctx")
	assert.Contains(t, p, "package.json")
	assert.Contains(t, p, `{"name":"app"}`)
}

func TestParseEndpointExplanationsValidJSON(t *testing.T) {
	text := `[{"endpoint":"GET /users","explanation":"Lists users."}]`
	got := ParseEndpointExplanations(text, []string{"GET /users"})
	require.Len(t, got, 1)
	assert.Equal(t, "GET /users", got[0].Endpoint)
	assert.Equal(t, "Lists users.", got[0].Explanation)
}

func TestParseEndpointExplanationsStripsCodeFence(t *testing.T) {
	text := "```json\n[{\"endpoint\":\"GET /a\",\"explanation\":\"A.\"}]\n```"
	got := ParseEndpointExplanations(text, []string{"GET /a"})
	require.Len(t, got, 1)
	assert.Equal(t, "A.", got[0].Explanation)
}

func TestParseEndpointExplanationsFallbackOnInvalidJSON(t *testing.T) {
	text := "The GET /users endpoint lists users; POST /login authenticates."
	endpoints := []string{"GET /users", "POST /login"}
	got := ParseEndpointExplanations(text, endpoints)
	require.Len(t, got, 2)
	assert.Equal(t, "GET /users", got[0].Endpoint)
	assert.Equal(t, text, got[0].Explanation)
	assert.Equal(t, text, got[1].Explanation)
}

func TestParseEndpointExplanationsEmptyEndpoints(t *testing.T) {
	got := ParseEndpointExplanations("not json", nil)
	assert.Empty(t, got)
}
