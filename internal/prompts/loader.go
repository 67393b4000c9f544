// Package prompts serves the prompt templates embedded alongside it. Each
// JSON file maps a key to one template line.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// library parses every embedded file on first use.
var library = sync.OnceValues(func() (map[string]map[string]string, error) {
	entries, err := fs.ReadDir(promptFiles, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list prompt files: %w", err)
	}

	files := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		data, err := promptFiles.ReadFile(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", entry.Name(), err)
		}
		var templates map[string]string
		if err := json.Unmarshal(data, &templates); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", entry.Name(), err)
		}
		files[entry.Name()] = templates
	}
	return files, nil
})

// Get returns the template stored under key in filename (e.g. "summary.json").
func Get(filename, key string) (string, error) {
	files, err := library()
	if err != nil {
		return "", err
	}

	templates, ok := files[filename]
	if !ok {
		return "", fmt.Errorf("prompt file %s is not embedded", filename)
	}
	tmpl, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return tmpl, nil
}

// MustGet is Get for keys shipped in the embedded files; a miss panics.
func MustGet(filename, key string) string {
	tmpl, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return tmpl
}

// Format replaces {{.Key}} placeholders with values from data in a single
// pass, so values containing placeholder syntax are left as-is.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	pairs := make([]string, 0, len(data)*2)
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
