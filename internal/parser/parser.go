package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Note struct {
	Frontmatter map[string]any
	Title       string
	Body        string
	SourceFile  string
}

var (
	ErrNoFrontmatter = errors.New("no frontmatter found")
	ErrInvalidYAML   = errors.New("invalid YAML in frontmatter")
	ErrMissingTitle  = errors.New("frontmatter missing required 'title' field")
)

func ParseFile(path string) (*Note, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	note, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	note.SourceFile = path
	return note, nil
}

func Parse(content []byte) (*Note, error) {
	trimmed := bytes.TrimLeft(content, "\ufeff\n\r\t ")
	trimmed = bytes.ReplaceAll(trimmed, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(trimmed, []byte("---\n")) {
		return nil, ErrNoFrontmatter
	}

	rest := trimmed[len("---\n"):]
	end := bytes.Index(rest, []byte("\n---"))
	if end == -1 {
		return nil, ErrNoFrontmatter
	}

	yamlBytes := rest[:end+1]
	body := strings.TrimPrefix(string(rest[end+len("\n---"):]), "\n")

	var frontmatter map[string]any
	if err := yaml.Unmarshal(yamlBytes, &frontmatter); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	title, ok := frontmatter["title"].(string)
	if !ok || strings.TrimSpace(title) == "" {
		return nil, ErrMissingTitle
	}

	return &Note{
		Frontmatter: frontmatter,
		Title:       title,
		Body:        body,
	}, nil
}

// DecisionJSON renders the note as a decision import document. The body
// becomes the description unless the frontmatter already sets one.
func (n *Note) DecisionJSON() ([]byte, error) {
	doc := make(map[string]any, len(n.Frontmatter)+1)
	for k, v := range n.Frontmatter {
		doc[k] = v
	}
	if _, ok := doc["description"]; !ok {
		if body := strings.TrimSpace(n.Body); body != "" {
			doc["description"] = body
		}
	}
	for _, key := range []string{"criteria", "options"} {
		if _, ok := doc[key]; !ok {
			doc[key] = []any{}
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding decision note: %w", err)
	}
	return data, nil
}
