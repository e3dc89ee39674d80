// Package markdown renders editor supplied markdown into sanitised HTML.
package markdown

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		// raw HTML is passed through here and removed by the policy below
		goldmark.WithRendererOptions(html.WithUnsafe(), html.WithHardWraps()),
	)

	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(false)
	p.AllowRelativeURLs(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	return &Renderer{md: md, policy: p}
}

// Render converts text to HTML and strips anything unsafe.
func (r *Renderer) Render(text string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(r.policy.Sanitize(buf.String())), nil
}
