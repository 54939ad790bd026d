package ui

import (
	"html/template"
	"net/http"

	"gundash/domain/incident"
	"gundash/internal/dashboard"

	"github.com/gin-gonic/gin"
)

// pageData is shared by every HTML page
type pageData struct {
	Title   string
	Caption string
	Page    string
	Nav     string
	Copy    template.HTML
	Races   []string
	Sexes   []string
	Error   string
}

func (s *Server) handleIndex(c *gin.Context) {
	s.renderTemplate(c, "index.html", pageData{
		Title:   "Gun Violence in America Analysis",
		Caption: "Did you know? Each day 12 children die from gun violence in America. Another 32 are shot and injured.",
		Page:    dashboard.PageMain,
		Nav:     "main",
		Copy:    s.copy["main"],
	})
}

func (s *Server) handleInsights(c *gin.Context) {
	s.renderTemplate(c, "insights.html", pageData{
		Title: "Other Insights",
		Page:  dashboard.PageInsights,
		Nav:   "insights",
		Copy:  s.copy["insights"],
	})
}

// handleModelPage renders the trainer form; race options come from the dataset
func (s *Server) handleModelPage(c *gin.Context) {
	data := pageData{
		Title: "Intent Prediction Model",
		Page:  dashboard.PageModel,
		Nav:   "model",
		Copy:  s.copy["model"],
		Sexes: []string{"Male", "Female"},
	}
	if t, err := s.dataset.Get(c.Request.Context()); err != nil {
		data.Error = err.Error()
	} else {
		data.Races = t.Distinct(incident.FieldRace)
	}
	s.renderTemplate(c, "model.html", data)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
