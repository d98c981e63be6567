// Package analyzer inspects repository files without an LLM: it extracts
// API endpoint declarations with per-framework regexes, classifies the
// project's languages and framework, and locates the dependency manifest.
package analyzer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/smartdocgen/repodoc/pkg/types"
)

// endpointPattern pairs a route-declaration regex with the capture-group
// indices for HTTP method and path. A method index of 0 means the
// pattern implies the method (fetch defaults to GET).
type endpointPattern struct {
	re         *regexp.Regexp
	methodIdx  int
	pathIdx    int
	methodFrom func(string) string
}

func identity(s string) string { return strings.ToUpper(s) }

// stripMapping turns Spring's annotation names into methods
// (GetMapping -> GET).
func stripMapping(s string) string {
	return strings.ToUpper(strings.TrimSuffix(s, "Mapping"))
}

var endpointPatterns = []endpointPattern{
	// Python decorators: FastAPI, Flask, Django REST
	{re: regexp.MustCompile(`@\w+\.(get|post|put|delete|patch)\(["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]\)`), methodIdx: 1, pathIdx: 2, methodFrom: identity},
	// Express.js route registration, variable-agnostic
	{re: regexp.MustCompile(`\b\w+\.(get|post|put|delete|patch)\(\s*['"` + "`" + `]([^'"` + "`" + `]+)['"` + "`" + `]`), methodIdx: 1, pathIdx: 2, methodFrom: identity},
	// Axios client calls
	{re: regexp.MustCompile(`axios\.(get|post|put|delete|patch)\(\s*['"` + "`" + `]([^'"` + "`" + `]+)['"` + "`" + `]`), methodIdx: 1, pathIdx: 2, methodFrom: identity},
	// Fetch API, method implied
	{re: regexp.MustCompile(`fetch\(\s*['"` + "`" + `]([^'"` + "`" + `]+)['"` + "`" + `]`), methodIdx: 0, pathIdx: 1},
	// Spring Boot mapping annotations
	{re: regexp.MustCompile(`@(GetMapping|PostMapping|PutMapping|DeleteMapping|PatchMapping)\(["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]\)`), methodIdx: 1, pathIdx: 2, methodFrom: stripMapping},
	// Gin and Fiber router registration
	{re: regexp.MustCompile(`\b(?:router|r|app|api)\.(GET|POST|PUT|DELETE|PATCH)\(["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]\)`), methodIdx: 1, pathIdx: 2, methodFrom: identity},
	// Rails routes.rb
	{re: regexp.MustCompile(`(?m)\b(get|post|put|delete|patch)\s+['"` + "`" + `]([^'"` + "`" + `]+)['"` + "`" + `]`), methodIdx: 1, pathIdx: 2, methodFrom: identity},
	// Laravel route facade
	{re: regexp.MustCompile(`Route::(get|post|put|delete|patch)\(\s*['"` + "`" + `]([^'"` + "`" + `]+)['"` + "`" + `]`), methodIdx: 1, pathIdx: 2, methodFrom: identity},
}

// ExtractEndpoints scans source texts for route declarations and returns
// deduplicated "METHOD /path" strings in sorted order.
func ExtractEndpoints(contents []string) []string {
	seen := make(map[string]bool)

	for _, code := range contents {
		for _, p := range endpointPatterns {
			for _, m := range p.re.FindAllStringSubmatch(code, -1) {
				method := "GET"
				if p.methodIdx > 0 {
					method = p.methodFrom(m[p.methodIdx])
				}
				seen[method+" "+m[p.pathIdx]] = true
			}
		}
	}

	endpoints := make([]string, 0, len(seen))
	for e := range seen {
		endpoints = append(endpoints, e)
	}
	sort.Strings(endpoints)
	return endpoints
}

// Classification describes a repository's detected languages and
// framework.
type Classification struct {
	Languages []string
	Framework string
}

// classifyContentPrefix bounds how much of each file feeds framework
// detection.
const classifyContentPrefix = 1000

var languageMarkers = []struct {
	exts []string
	name string
}{
	{[]string{".py"}, "Python"},
	{[]string{".ts", ".js"}, "TypeScript/JavaScript"},
	{[]string{".go"}, "Go"},
	{[]string{".java"}, "Java"},
	{[]string{".rb"}, "Ruby"},
	{[]string{".php"}, "PHP"},
	{[]string{".cs"}, "C#"},
}

// Classify detects the primary languages from file extensions and
// guesses the framework from path and content substrings. Unknowns come
// back as ["Unknown"] / "Unknown".
func Classify(docs []types.Document) Classification {
	var pathsBuilder, codeBuilder strings.Builder
	for _, d := range docs {
		pathsBuilder.WriteString(strings.ToLower(d.Path))
		pathsBuilder.WriteByte(' ')

		content := d.Content
		if len(content) > classifyContentPrefix {
			content = content[:classifyContentPrefix]
		}
		codeBuilder.WriteString(strings.ToLower(content))
		codeBuilder.WriteByte(' ')
	}
	paths := pathsBuilder.String()
	code := codeBuilder.String()

	var languages []string
	for _, marker := range languageMarkers {
		for _, ext := range marker.exts {
			if strings.Contains(paths, ext) {
				languages = append(languages, marker.name)
				break
			}
		}
	}
	if len(languages) == 0 {
		languages = []string{"Unknown"}
	}

	framework := "Unknown"
	switch {
	case strings.Contains(paths, "angular") || strings.Contains(paths, "component"):
		framework = "Angular"
	case strings.Contains(paths, "react"):
		framework = "React"
	case strings.Contains(code, "fastapi"):
		framework = "FastAPI"
	case strings.Contains(code, "flask"):
		framework = "Flask"
	case strings.Contains(code, "springboot") || strings.Contains(code, "@restcontroller"):
		framework = "Spring Boot"
	case strings.Contains(code, "express"):
		framework = "Express.js"
	case strings.Contains(code, "gin-gonic") || strings.Contains(code, "gofiber"):
		framework = "Gin/Fiber"
	}

	return Classification{Languages: languages, Framework: framework}
}

// dependencyManifests in priority order.
var dependencyManifests = []string{"pom.xml", "package.json", "go.mod"}

// FindDependencyFile returns the first dependency manifest found among
// the documents, in priority order pom.xml, package.json, go.mod.
func FindDependencyFile(docs []types.Document) (types.Document, bool) {
	for _, name := range dependencyManifests {
		for _, d := range docs {
			if d.Path == name || strings.HasSuffix(d.Path, "/"+name) {
				return d, true
			}
		}
	}
	return types.Document{}, false
}

// FilterSourceDocs keeps only documents whose extension marks them as
// source code eligible for endpoint extraction and classification.
func FilterSourceDocs(docs []types.Document, isSource func(string) bool) []types.Document {
	var out []types.Document
	for _, d := range docs {
		if isSource(d.Path) {
			out = append(out, d)
		}
	}
	return out
}
