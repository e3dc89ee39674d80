package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v2"

	rs "github.com/Serubin/AJD-Site/backend/internal/storage/recordstore"
	"github.com/Serubin/AJD-Site/shared/domain"
	"github.com/Serubin/AJD-Site/shared/logger"
)

const getInvolvedPage = "GetInvolved"

var (
	lineBreakTagRe = regexp.MustCompile(`(?i)<br\s*/?>`)
	codeFenceRe    = regexp.MustCompile("^```(?:\\w*\\n)?([\\s\\S]*?)```$")
)

type ContentService interface {
	Page(ctx context.Context, page string) (map[string]domain.Section, error)
	StatusContent(ctx context.Context) domain.StatusContent
}

type ContentStorage interface {
	PageRows(ctx context.Context, page string) ([]domain.ContentRow, error)
}

type MarkdownRenderer interface {
	Render(text string) (string, error)
}

type Content struct {
	storage  ContentStorage
	markdown MarkdownRenderer
}

// NewContent builds the CMS reader. A nil storage means CMS is not configured
// and every page is empty.
func NewContent(storage ContentStorage, markdown MarkdownRenderer) *Content {
	return &Content{storage: storage, markdown: markdown}
}

// Page returns the sections of page keyed by their sub name.
func (c *Content) Page(ctx context.Context, page string) (map[string]domain.Section, error) {
	sections := map[string]domain.Section{}
	if c.storage == nil {
		return sections, nil
	}
	rows, err := c.storage.PageRows(ctx, page)
	if stderrors.Is(err, rs.ErrNotConfigured) {
		return sections, nil
	}
	if err != nil {
		return nil, storeError("load cms page", err)
	}
	for _, row := range rows {
		sections[row.Sub] = c.section(row)
	}
	return sections, nil
}

func (c *Content) section(row domain.ContentRow) domain.Section {
	raw := lineBreakTagRe.ReplaceAllString(row.Content, "")
	typ := strings.ToLower(strings.TrimSpace(row.Type))
	if typ == "" {
		typ = domain.ContentMarkdown
	}
	s := domain.Section{Type: typ, Raw: raw}
	if raw == "" {
		return s
	}

	log := logger.Log.With("component", "cms", "page", row.Page, "sub", row.Sub)
	switch typ {
	case domain.ContentYAML:
		var v any
		if err := yaml.Unmarshal([]byte(unwrapCodeFence(raw)), &v); err != nil {
			log.Warn("failed to parse yaml section", "error", err)
			return s
		}
		s.Data = jsonCompatible(v)
	case domain.ContentJSON:
		var v any
		if err := json.Unmarshal([]byte(unwrapCodeFence(raw)), &v); err != nil {
			log.Warn("failed to parse json section", "error", err)
			return s
		}
		s.Data = v
	default:
		html, err := c.markdown.Render(raw)
		if err != nil {
			log.Warn("failed to render markdown section", "error", err)
			return s
		}
		s.HTML = html
	}
	return s
}

// unwrapCodeFence returns the body of a content value that is entirely one
// fenced code block, or the value unchanged.
func unwrapCodeFence(content string) string {
	if m := codeFenceRe.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return content
}

// jsonCompatible converts yaml.v2 maps, which are keyed by interface{}, into
// string keyed maps.
func jsonCompatible(v any) any {
	switch val := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[fmt.Sprint(k)] = jsonCompatible(item)
		}
		return m
	case []interface{}:
		for i, item := range val {
			val[i] = jsonCompatible(item)
		}
		return val
	}
	return v
}

// StatusContent merges the GetInvolved CMS page over the built-in texts. CMS
// problems are logged and the defaults used.
func (c *Content) StatusContent(ctx context.Context) domain.StatusContent {
	out := domain.DefaultStatusContent
	sections, err := c.Page(ctx, getInvolvedPage)
	if err != nil {
		logger.Log.Warn("using default status content", "component", "cms", "error", err)
		return out
	}
	override := func(sub string, title, body *string) {
		data, _ := sections[sub].Data.(map[string]any)
		if t, _ := data["title"].(string); t != "" {
			*title = t
		}
		if b, _ := data["body"].(string); b != "" {
			*body = b
		}
	}
	override("SignUpSuccess", &out.SignUpTitle, &out.SignUpBody)
	override("UpdateSuccess", &out.UpdateTitle, &out.UpdateBody)
	override("LinkSent", &out.LinkSentTitle, &out.LinkSentBody)
	return out
}
