// Package iscode looks up clauses of Indian Standard codes, through an LLM
// when one is configured and from an embedded knowledge base otherwise.
package iscode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"CiviAI/internal/chat"

	"github.com/rs/zerolog"
)

const (
	SourceLLM           = "llm"
	SourceKnowledgeBase = "knowledge-base"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	errUnparseable    = errors.New("reply has no code section")
)

type Request struct {
	IsCode      string `json:"isCode"`
	Topic       string `json:"topic,omitempty"`
	SearchQuery string `json:"searchQuery,omitempty"`
}

type Result struct {
	CodeSection  string   `json:"codeSection"`
	Explanation  string   `json:"explanation"`
	RelatedCodes []string `json:"relatedCodes"`
	Source       string   `json:"source"`
}

type Service struct {
	Backend   chat.Backend // optional
	Knowledge *KnowledgeBase
}

// Lookup asks the backend first. Backend failures and replies that cannot
// be parsed fall back to the knowledge base.
func (s *Service) Lookup(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.IsCode) == "" && strings.TrimSpace(req.SearchQuery) == "" {
		return Result{}, fmt.Errorf("%w: an IS code or a search query is required", ErrInvalidRequest)
	}
	log := zerolog.Ctx(ctx)
	if s.Backend != nil {
		reply, err := s.Backend.Complete(ctx, []chat.Message{{Role: chat.User, Content: Prompt(req)}})
		if err == nil {
			res, ok := Parse(reply)
			if ok {
				return res, nil
			}
			err = errUnparseable
		}
		log.Warn().Err(err).Str("is_code", req.IsCode).Msg("is-code lookup falling back to knowledge base")
	}
	return s.Knowledge.Find(req), nil
}

func Prompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are a civil engineering expert assistant. Provide detailed information about ")
	b.WriteString(req.IsCode)
	if req.Topic != "" {
		b.WriteString(" regarding " + req.Topic)
	}
	if req.SearchQuery != "" {
		b.WriteString(". The user is asking about: " + req.SearchQuery)
	}
	b.WriteString(`
Format your response in the following structure:
1. Code Section: Provide the exact section number and title
2. Content: The actual content of the code section
3. Explanation: A detailed explanation in simple terms
4. Related Codes: List at least 2 related code sections
`)
	return b.String()
}

// Parse splits a structured reply into its blocks. A block belongs to a
// heading when it starts with it, optionally numbered or emphasised as in
// "2. **Content**". Content is appended to the code section.
func Parse(reply string) (Result, bool) {
	var res Result
	var content string
	for _, block := range strings.Split(strings.ReplaceAll(reply, "\r\n", "\n"), "\n\n") {
		block = strings.TrimSpace(block)
		switch heading(block) {
		case "code section":
			res.CodeSection = block
		case "content":
			content = block
		case "explanation":
			res.Explanation = block
		case "related codes":
			for _, line := range strings.Split(block, "\n")[1:] {
				line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•"))
				if line != "" {
					res.RelatedCodes = append(res.RelatedCodes, line)
				}
			}
		}
	}
	if res.CodeSection == "" {
		return Result{}, false
	}
	if content != "" {
		res.CodeSection += "\n\n" + content
	}
	if res.RelatedCodes == nil {
		res.RelatedCodes = []string{}
	}
	res.Source = SourceLLM
	return res, true
}

var headings = []string{"code section", "content", "explanation", "related codes"}

func heading(block string) string {
	s := strings.ToLower(block)
	s = strings.TrimLeft(s, "#* \t")
	s = strings.TrimLeft(s, "0123456789")
	s = strings.TrimPrefix(s, ".")
	s = strings.TrimLeft(s, "* \t")
	for _, h := range headings {
		if strings.HasPrefix(s, h) {
			return h
		}
	}
	return ""
}
