package content

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer turns catalog markdown (sermon notes, blog posts) into HTML that
// is safe to inject into a page.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Typographer),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	p := bluemonday.UGCPolicy()
	p.AllowRelativeURLs(true)
	p.RequireNoFollowOnLinks(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	return &Renderer{md: md, policy: p}
}

// Render converts markdown to sanitized HTML. Raw HTML in the source is
// passed to the sanitizer rather than escaped, so editors may use simple
// inline tags.
func (r *Renderer) Render(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return r.policy.Sanitize(text)
	}
	return strings.TrimSpace(r.policy.Sanitize(buf.String()))
}
