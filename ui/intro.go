package ui

import (
	"html/template"
	"os"

	"happydash/internal/errors"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// renderMarkdown converts the intro text to HTML
func renderMarkdown(md []byte) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank | html.SkipHTML,
	})
	return template.HTML(markdown.ToHTML(md, p, renderer))
}

// loadIntro reads path, or the embedded intro when path is empty
func loadIntro(path string) (template.HTML, error) {
	if path == "" {
		md, err := embeddedFiles.ReadFile("templates/intro.md")
		if err != nil {
			return "", errors.Wrap(err, "failed to read embedded intro")
		}
		return renderMarkdown(md), nil
	}
	md, err := os.ReadFile(path)
	if err != nil {
		return "", errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "failed to read INTRO_FILE %s", path))
	}
	return renderMarkdown(md), nil
}
