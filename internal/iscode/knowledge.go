package iscode

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed knowledge.yaml
var knowledgeYAML []byte

type Code struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
}

type Entry struct {
	Code         string   `yaml:"code"`
	Keyword      string   `yaml:"keyword"`
	CodeSection  string   `yaml:"codeSection"`
	Explanation  string   `yaml:"explanation"`
	RelatedCodes []string `yaml:"relatedCodes"`
}

// KnowledgeBase answers lookups offline from a fixed set of code extracts.
type KnowledgeBase struct {
	Codes   []Code  `yaml:"codes"`
	Entries []Entry `yaml:"entries"`
	Default Entry   `yaml:"default"`
}

// LoadKnowledgeBase parses the embedded knowledge base.
func LoadKnowledgeBase() (*KnowledgeBase, error) {
	return ParseKnowledgeBase(knowledgeYAML)
}

func ParseKnowledgeBase(data []byte) (*KnowledgeBase, error) {
	var kb KnowledgeBase
	if err := yaml.Unmarshal(data, &kb); err != nil {
		return nil, fmt.Errorf("parse knowledge base: %w", err)
	}
	if kb.Default.CodeSection == "" {
		return nil, fmt.Errorf("parse knowledge base: missing default entry")
	}
	return &kb, nil
}

// Find returns the first entry for the request's code whose keyword equals
// the topic or occurs in the search query, ignoring case. It falls back to
// the default entry.
func (kb *KnowledgeBase) Find(req Request) Result {
	topic := strings.TrimSpace(req.Topic)
	query := strings.ToLower(req.SearchQuery)
	for _, e := range kb.Entries {
		if !strings.EqualFold(e.Code, strings.TrimSpace(req.IsCode)) {
			continue
		}
		if strings.EqualFold(topic, e.Keyword) || (query != "" && strings.Contains(query, strings.ToLower(e.Keyword))) {
			return e.result()
		}
	}
	return kb.Default.result()
}

func (e Entry) result() Result {
	return Result{
		CodeSection:  e.CodeSection,
		Explanation:  e.Explanation,
		RelatedCodes: append([]string{}, e.RelatedCodes...),
		Source:       SourceKnowledgeBase,
	}
}
