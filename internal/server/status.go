// ABOUTME: HTML status page showing catalog availability and recent invocations
// ABOUTME: Renders tool descriptions from Markdown via goldmark

package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/yuin/goldmark"
)

//go:embed templates/status.html
var templateFS embed.FS

type statusTool struct {
	Name        string
	Description template.HTML
}

type statusCategory struct {
	Name  string
	Tools []statusTool
}

type statusCollection struct {
	Name  string
	Tools []string
}

type statusInvocation struct {
	At        string
	Tool      string
	Action    string
	Success   bool
	Error     string
	ElapsedMS int64
}

// handleStatus renders the status page: available tools grouped by
// category, collection membership, and the most recent invocations.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := struct {
		Version     string
		ToolCount   int
		Categories  []statusCategory
		Collections []statusCollection
		Recent      []statusInvocation
	}{
		Version:     s.version,
		ToolCount:   len(s.registry.ListTools()),
		Categories:  s.statusCategories(),
		Collections: s.statusCollections(),
		Recent:      s.recentInvocations(r),
	}

	tmpl := template.Must(template.ParseFS(templateFS, "templates/status.html"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render status page", "error", err)
	}
}

func (s *Server) statusCategories() []statusCategory {
	var categories []statusCategory
	for _, category := range s.registry.Categories() {
		var tools []statusTool
		for _, name := range s.registry.ListCategory(category) {
			info, err := s.registry.Info(name)
			if err != nil {
				continue
			}
			tools = append(tools, statusTool{
				Name:        name,
				Description: s.renderMarkdown(info.Description),
			})
		}
		if len(tools) > 0 {
			categories = append(categories, statusCategory{Name: category, Tools: tools})
		}
	}
	return categories
}

func (s *Server) statusCollections() []statusCollection {
	var collections []statusCollection
	for _, name := range s.registry.Collections() {
		tools, err := s.registry.Toolset(name)
		if err != nil {
			continue
		}
		collections = append(collections, statusCollection{Name: name, Tools: tools})
	}
	return collections
}

func (s *Server) recentInvocations(r *http.Request) []statusInvocation {
	records, err := s.store.ListInvocations(r.Context(), 20)
	if err != nil {
		s.logger.Error("failed to list invocations", "error", err)
		return nil
	}

	invocations := make([]statusInvocation, 0, len(records))
	for _, rec := range records {
		invocations = append(invocations, statusInvocation{
			At:        rec.CreatedAt.Local().Format(time.DateTime),
			Tool:      rec.Tool,
			Action:    rec.Action,
			Success:   rec.Success,
			Error:     rec.Error,
			ElapsedMS: rec.ElapsedMS,
		})
	}
	return invocations
}

// renderMarkdown converts a tool description to HTML. Descriptions are
// authored in this repository, so the output is trusted.
func (s *Server) renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		s.logger.Error("failed to convert markdown", "error", err)
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}
