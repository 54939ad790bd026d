package ui

import (
	"bytes"
	"net/http"
	"strconv"

	"gundash/adapters/plot"
	"gundash/domain/artifact"
	"gundash/domain/core"
	"gundash/internal/errors"
	"gundash/internal/intent"

	"github.com/gin-gonic/gin"
)

const defaultTrainAge = 30

type trainRequest struct {
	Age  *int   `json:"age"`
	Sex  string `json:"sex"`
	Race string `json:"race"`
}

type trainResponse struct {
	ModelID   string          `json:"model_id"`
	Accuracy  float64         `json:"accuracy"`
	Report    string          `json:"report"`
	Classes   []string        `json:"classes"`
	Inputs    artifact.Inputs `json:"inputs"`
	TrainRows int             `json:"train_rows"`
	TestRows  int             `json:"test_rows"`
	Reused    bool            `json:"reused"`
}

type predictRequest struct {
	ModelID string `json:"model_id"`
	intent.PredictRequest
}

// handleTrain fits (or reuses) a model for the posted inputs
func (s *Server) handleTrain(c *gin.Context) {
	var req trainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}
	inputs := artifact.Inputs{Age: defaultTrainAge, Sex: req.Sex, Race: req.Race}
	if req.Age != nil {
		inputs.Age = *req.Age
	}

	res, err := s.models.Ensure(c.Request.Context(), inputs)
	if err != nil {
		respondError(c, err)
		return
	}
	m := res.Model
	c.JSON(http.StatusOK, trainResponse{
		ModelID:   m.ID.String(),
		Accuracy:  m.Accuracy,
		Report:    m.Report,
		Classes:   m.Classes,
		Inputs:    m.Inputs,
		TrainRows: m.TrainRows,
		TestRows:  m.TestRows,
		Reused:    res.Reused,
	})
}

// handlePredict scores one victim; without model_id the latest model is used
func (s *Server) handlePredict(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}
	var id core.ModelID
	if req.ModelID != "" {
		parsed, err := core.ParseModelID(req.ModelID)
		if err != nil {
			respondError(c, errors.InvalidInput(err.Error()))
			return
		}
		id = parsed
	}

	m, pred, err := s.models.Predict(c.Request.Context(), id, req.PredictRequest)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"model_id":      m.ID.String(),
		"intent":        pred.Intent,
		"probabilities": pred.Probabilities,
		"filled":        pred.Filled,
	})
}

// handleLatestModel returns the newest model summary and its report
func (s *Server) handleLatestModel(c *gin.Context) {
	m, err := s.models.Latest(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, struct {
		artifact.Summary
		Report string `json:"report"`
	}{m.Summary(), m.Report})
}

// handleModelList returns stored model summaries, newest first
func (s *Server) handleModelList(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(c, errors.InvalidInput("limit must be a positive integer"))
			return
		}
		limit = n
	}
	models, err := s.models.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": models})
}

// handleModelDelete drops a stored model
func (s *Server) handleModelDelete(c *gin.Context) {
	id, err := core.ParseModelID(c.Param("id"))
	if err != nil {
		respondError(c, errors.InvalidInput(err.Error()))
		return
	}
	if err := s.models.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleModelPlot renders the Intent vs. Race count plot as PNG
func (s *Server) handleModelPlot(c *gin.Context) {
	t, ok := s.table(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := plot.IntentByRace().Render(&buf, t); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
