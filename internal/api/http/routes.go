package httpapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/stationlab/weather-agent/internal/analysis"
	"github.com/stationlab/weather-agent/internal/observations"
)

var validate = validator.New()

const (
	defaultAnalysisDays = 30
	healthProbeTimeout  = 10 * time.Second
)

// Meta describes the deployment, served by the informational endpoints.
type Meta struct {
	ServiceName string
	Version     string
	StationID   string
	ProjectID   string
	Dataset     string
	ModelID     string
}

// analyzeRequest is the body of POST /analyze.
type analyzeRequest struct {
	Days           int    `json:"days" validate:"min=7,max=90"`
	CustomQuestion string `json:"custom_question"`
}

// ErrorHandler renders every handler error as the JSON error envelope.
// Wire it into fiber.Config so tests and main agree on the error shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. probe is the
// uncached observation source backing the health connectivity check.
func RegisterRoutes(app *fiber.App, svc *analysis.Service, probe analysis.ObservationSource, meta Meta) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "online",
			"service": meta.ServiceName,
			"version": meta.Version,
			"endpoints": fiber.Map{
				"analyze":      "/analyze",
				"health":       "/health",
				"station_info": "/station-info",
			},
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthProbeTimeout)
		defer cancel()

		return c.JSON(fiber.Map{
			"status":              "healthy",
			"timestamp":           time.Now().UTC().Format(time.RFC3339),
			"bigquery_connection": observations.Probe(ctx, probe),
			"llm_model":           meta.ModelID,
			"station_id":          meta.StationID,
			"project_id":          meta.ProjectID,
		})
	})

	app.Post("/analyze", func(c *fiber.Ctx) error {
		// Absent fields keep their defaults; an explicit days value is validated.
		req := analyzeRequest{Days: defaultAnalysisDays}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		result, err := svc.Analyze(c.UserContext(), req.Days, req.CustomQuestion)
		if err != nil {
			switch {
			case errors.Is(err, analysis.ErrNoObservations):
				return fiber.NewError(fiber.StatusNotFound,
					fmt.Sprintf("no weather data found for station %s", meta.StationID))
			case errors.Is(err, analysis.ErrInsufficientData):
				return fiber.NewError(fiber.StatusInternalServerError,
					fmt.Sprintf("statistics calculation failed: %v", err))
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "analysis failed")
			}
		}

		return c.JSON(result)
	})

	app.Get("/station-info", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"station_id":  meta.StationID,
			"project_id":  meta.ProjectID,
			"data_source": "NOAA GSOD (BigQuery public dataset)",
			"dataset":     meta.Dataset,
		})
	})
}
