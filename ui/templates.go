package ui

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// pageCopy is the rendered prose for each page, keyed by content file name
type pageCopy map[string]template.HTML

var funcMap = template.FuncMap{
	"pct":   func(v float64) string { return fmt.Sprintf("%.2f%%", v*100) },
	"upper": strings.ToUpper,
	"add":   func(a, b int) int { return a + b },
}

// parseTemplates parses every embedded page template under its base name
func parseTemplates(files fs.FS) (*template.Template, error) {
	tmpl := template.New("").Funcs(funcMap)
	names, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob templates: %w", err)
	}
	for _, file := range names {
		content, err := fs.ReadFile(files, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", file, err)
		}
		if _, err := tmpl.New(path.Base(file)).Parse(string(content)); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", file, err)
		}
	}
	return tmpl, nil
}

// loadPageCopy renders every embedded markdown file to HTML
func loadPageCopy(files fs.FS) (pageCopy, error) {
	names, err := fs.Glob(files, "content/*.md")
	if err != nil {
		return nil, err
	}
	out := make(pageCopy, len(names))
	for _, file := range names {
		md, err := fs.ReadFile(files, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		out[strings.TrimSuffix(path.Base(file), ".md")] = renderMarkdown(md)
	}
	return out, nil
}

// renderMarkdown converts markdown to HTML; links open in a new tab
func renderMarkdown(md []byte) template.HTML {
	// parsers carry state, one per document
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return template.HTML(markdown.ToHTML(md, p, r))
}

// renderTemplate executes a template into a buffer so failures never write
// a partial page
func (s *Server) renderTemplate(c *gin.Context, templateName string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		log.Printf("Template error for %s: %v", templateName, err)
		c.AbortWithStatusJSON(500, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(200)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		log.Printf("Error writing template response: %v", err)
	}
}
