package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Prompt input caps. Hosted models bill by token; these bounds keep a
// large repository from blowing up a single request.
const (
	maxSummaryEndpoints    = 10
	maxExplainedEndpoints  = 50
	maxSampleCodeBytes     = 2000
	maxDependencyFileBytes = 6000
)

// ProjectSummaryPrompt asks for a three-sentence project summary from
// endpoints and retrieved context.
func ProjectSummaryPrompt(endpoints []string, context string) string {
	return fmt.Sprintf(`You are a software architect assistant.
Based on these API endpoints and the provided context, summarize in 3 sentences:
1. What this project does
2. Who might use it
3. Any potential improvements

Context:
%s

Endpoints:
%s
`, context, strings.Join(capList(endpoints, maxSummaryEndpoints), "\n"))
}

// EndpointExplanationsPrompt asks for a JSON array explaining each
// endpoint. Parse the response with ParseEndpointExplanations.
func EndpointExplanationsPrompt(endpoints []string, context string) string {
	return fmt.Sprintf(`You are a senior backend engineer.
Given these API endpoints and project context, explain what each endpoint does.
Provide your answer in JSON array format, with each element containing both the endpoint and its explanation.

Context:
%s

Endpoints:
%s

Expected JSON output format:
[
  {"endpoint": "GET /users", "explanation": "Fetches all users from database."},
  {"endpoint": "POST /login", "explanation": "Authenticates user and returns JWT token."}
]
`, context, strings.Join(capList(endpoints, maxExplainedEndpoints), "\n"))
}

// LanguageSummaryPrompt asks whether the project is frontend, backend,
// or full stack, and what each layer does.
func LanguageSummaryPrompt(languages []string, framework, sampleCode, context string) string {
	return fmt.Sprintf(`You are a software architect.
Given the following details, determine if this project is a frontend, backend, or full-stack app.

Languages: %s
Framework: %s

Sample Code:
%s

Context:
%s

Explain briefly what kind of project this is, what its layers do, and which technologies are responsible for each part.
`, strings.Join(languages, ", "), framework, capText(sampleCode, maxSampleCodeBytes), context)
}

// DependencyExplanationPrompt asks for an analysis of a dependency
// manifest (pom.xml, package.json, go.mod).
func DependencyExplanationPrompt(fileName, fileContent, context string) string {
	return fmt.Sprintf(`You are a build and dependency management expert.
Analyze this %s and provide a clear explanation:
- Describe the project version
- List major dependencies with purpose
- Mention build/plugin configurations and what they do
- Point out any outdated or risky versions

Context:
%s

%s:
%s
`, fileName, context, fileName, capText(fileContent, maxDependencyFileBytes))
}

// EndpointExplanation is one entry of the endpoint-explanations section.
type EndpointExplanation struct {
	Endpoint    string `json:"endpoint"`
	Explanation string `json:"explanation"`
}

// ParseEndpointExplanations parses the model's JSON response. Models
// often wrap JSON in markdown fences, so those are stripped first. If
// the text still is not valid JSON, the raw text is attached to every
// endpoint rather than discarded.
func ParseEndpointExplanations(text string, endpoints []string) []EndpointExplanation {
	cleaned := stripCodeFence(text)

	var parsed []EndpointExplanation
	if err := json.Unmarshal([]byte(cleaned), &parsed); err == nil && len(parsed) > 0 {
		return parsed
	}

	fallback := make([]EndpointExplanation, len(endpoints))
	for i, ep := range endpoints {
		fallback[i] = EndpointExplanation{Endpoint: ep, Explanation: text}
	}
	return fallback
}

// stripCodeFence removes a surrounding ```json ... ``` fence if present.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func capList(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}

func capText(text string, max int) string {
	if len(text) > max {
		return text[:max]
	}
	return text
}
