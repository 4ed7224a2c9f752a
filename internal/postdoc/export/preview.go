package export

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"time"

	policy "github.com/agencia-site/postdoc/internal/postdoc/redactor-policy"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
)

const descriptionLength = 160

//go:embed templates/*
var templates embed.FS

var (
	previewTemplate = template.Must(template.ParseFS(templates, "templates/preview.html"))
	minifier        = minify.New()
)

func init() {
	minifier.AddFunc("text/html", html.Minify)
	minifier.AddFunc("text/css", css.Minify)
}

// PreviewPost - данные страницы превью. Content - сохраненная разметка поста,
// перед выводом она очищается.
type PreviewPost struct {
	Title     string
	Content   string
	Lang      string
	UpdatedAt time.Time
}

type previewData struct {
	Title       string
	Description string
	Lang        string
	UpdatedAt   time.Time
	Content     template.HTML
}

// Preview рендерит отдельную минифицированную HTML страницу поста.
func Preview(post PreviewPost, w io.Writer) error {
	content := policy.SanitizeContent(post.Content)
	data := previewData{
		Title:       post.Title,
		Description: truncate(policy.PlainText(content), descriptionLength),
		Lang:        post.Lang,
		UpdatedAt:   post.UpdatedAt,
		Content:     template.HTML(content),
	}
	if data.Lang == "" {
		data.Lang = "pt-BR"
	}

	var buf bytes.Buffer
	if err := previewTemplate.Execute(&buf, data); err != nil {
		return err
	}
	return minifier.Minify("text/html", w, &buf)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
