package digest

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/paperboy-dev/paperboy-api/internal/domain"
)

// emailTemplate is the HTML body of a digest email. Paper fields pass
// through html/template's contextual escaping, so feed content cannot
// inject markup.
const emailTemplate = `<h1>Research Digest</h1>
{{range .Papers}}
<div style="margin-bottom: 20px; border-bottom: 1px solid #ccc; padding-bottom: 10px;">
    <h3><a href="{{.URL}}">{{.Title}}</a></h3>
    <p><strong>Authors:</strong> {{.AuthorList}}</p>
    <p><strong>Summary:</strong> {{.Synopsis}}</p>
    <p><strong>Source:</strong> {{.Source}} - {{.Published}}</p>
</div>
{{end}}`

// paperView is the template-facing shape of a paper.
type paperView struct {
	URL        string
	Title      string
	AuthorList string
	Synopsis   string
	Source     string
	Published  string
}

// Renderer turns a set of summarized papers into a digest email.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the digest email template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("digest").Parse(emailTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse digest template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render produces the subject line and HTML body for a digest containing
// the given papers. Papers without a synopsis fall back to their abstract.
func (r *Renderer) Render(papers []*domain.Paper) (subject, body string, err error) {
	views := make([]paperView, 0, len(papers))
	for _, p := range papers {
		synopsis := p.Abstract
		if p.Synopsis != nil && *p.Synopsis != "" {
			synopsis = *p.Synopsis
		}
		views = append(views, paperView{
			URL:        p.URL,
			Title:      p.Title,
			AuthorList: strings.Join(p.Authors, ", "),
			Synopsis:   synopsis,
			Source:     p.Source,
			Published:  p.PublishedAt.Format("2006-01-02"),
		})
	}

	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, struct{ Papers []paperView }{views}); err != nil {
		return "", "", fmt.Errorf("failed to render digest template: %w", err)
	}

	noun := "new papers"
	if len(papers) == 1 {
		noun = "new paper"
	}
	subject = fmt.Sprintf("Research Digest - %d %s", len(papers), noun)

	return subject, sb.String(), nil
}

// DedupByURL removes papers sharing a URL, keeping the first occurrence
// and preserving arrival order.
func DedupByURL(papers []domain.Paper) []domain.Paper {
	seen := make(map[string]struct{}, len(papers))
	unique := make([]domain.Paper, 0, len(papers))
	for _, p := range papers {
		if _, ok := seen[p.URL]; ok {
			continue
		}
		seen[p.URL] = struct{}{}
		unique = append(unique, p)
	}
	return unique
}
