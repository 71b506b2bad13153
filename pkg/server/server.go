package server

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/helmcode/leafdoc/pkg/imaging"
	"github.com/helmcode/leafdoc/pkg/knowledge"
	"github.com/helmcode/leafdoc/pkg/model"
	"github.com/helmcode/leafdoc/pkg/storage"
)

// Diagnoser turns uploaded image bytes into a diagnosis.
type Diagnoser interface {
	Diagnose(ctx context.Context, data []byte) (*model.DiagnosisResult, error)
	Provider() string
	Model() string
	Simulated() bool
}

// Recorder persists predictions. A nil Recorder disables history.
type Recorder interface {
	Save(ctx context.Context, p *storage.Prediction) error
	Recent(ctx context.Context, limit int) ([]storage.Prediction, error)
	Stats(ctx context.Context) (*storage.Stats, error)
}

type Config struct {
	StaticDir string
	// BodyLimit is the maximum request body in bytes.
	BodyLimit int
}

type Server struct {
	app      *fiber.App
	diag     Diagnoser
	history  Recorder
	table    *knowledge.Table
	logger   *zap.Logger
	saveWait time.Duration
}

// ClassInfo is one entry of the class enumeration.
type ClassInfo struct {
	Class     knowledge.PlantClass `json:"class"`
	Plant     string               `json:"plant"`
	Condition string               `json:"condition"`
	Category  knowledge.Category   `json:"category"`
}

func New(cfg Config, diag Diagnoser, history Recorder, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = 10 * 1024 * 1024
	}

	s := &Server{
		diag:     diag,
		history:  history,
		table:    knowledge.Default,
		logger:   log,
		saveWait: 5 * time.Second,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "leafdoc",
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{
		Output: zap.NewStdLog(log.Named("http")).Writer(),
		Format: "${status} ${method} ${path} ${latency}\n",
	}))

	api := s.app.Group("/api")
	api.Post("/predict", s.handlePredict)
	api.Get("/stats", s.handleStats)
	api.Get("/history", s.handleHistory)
	api.Get("/classes", s.handleClasses)
	api.Get("/explanations/:class", s.handleExplanation)
	api.Get("/health", s.handleHealth)
	s.app.Post("/predict", s.handlePredict)

	if cfg.StaticDir != "" {
		s.app.Static("/", cfg.StaticDir)
	}

	return s
}

// App exposes the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start blocks serving on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("HTTP server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code == fiber.StatusRequestEntityTooLarge {
			return c.Status(fe.Code).JSON(fiber.Map{"error": "Image too large"})
		}
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	s.logger.Error("Unhandled request error", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}

func (s *Server) handlePredict(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		file, err = c.FormFile("image")
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file uploaded"})
	}

	f, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file uploaded"})
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file uploaded"})
	}

	reqID := uuid.New().String()
	log := s.logger.With(zap.String("request_id", reqID), zap.String("filename", file.Filename))

	result, err := s.diag.Diagnose(c.UserContext(), data)
	switch {
	case errors.Is(err, imaging.ErrEmptyImage):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file uploaded"})
	case errors.Is(err, imaging.ErrImageTooLarge):
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "Image too large"})
	case errors.Is(err, imaging.ErrNotImage):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unsupported file type"})
	case err != nil:
		log.Error("Diagnosis failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Diagnostic system failure",
			"details": err.Error(),
		})
	}

	log.Info("Diagnosis complete",
		zap.String("class", string(result.Class)),
		zap.String("reply_status", string(result.ReplyStatus)),
		zap.String("confidence", result.ConfidenceScore))

	s.record(result, file.Filename, log)

	return c.JSON(result)
}

// record saves the prediction; failures are logged and never reach the client.
func (s *Server) record(result *model.DiagnosisResult, filename string, log *zap.Logger) {
	if s.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.saveWait)
	defer cancel()

	p := storage.NewPrediction(result, storage.Meta{
		Filename: filename,
		Provider: s.diag.Provider(),
		Model:    s.diag.Model(),
	})
	if err := s.history.Save(ctx, p); err != nil {
		log.Warn("Failed to record prediction", zap.Error(err))
	}
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	stats := &storage.Stats{Categories: map[string]int{}}
	if s.history != nil {
		st, err := s.history.Stats(c.UserContext())
		if err != nil {
			s.logger.Warn("Failed to load stats", zap.Error(err))
		} else {
			stats = st
		}
	}

	return c.JSON(fiber.Map{
		"total_predictions": stats.TotalPredictions,
		"top_plant":         stats.TopPlant,
		"categories":        stats.Categories,
		"degraded_replies":  stats.Degraded,
		"status":            "Online",
		"source":            s.diag.Provider(),
	})
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	if s.history == nil {
		return c.JSON([]storage.Prediction{})
	}

	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be between 1 and 500"})
		}
		limit = n
	}

	items, err := s.history.Recent(c.UserContext(), limit)
	if err != nil {
		return err
	}
	if items == nil {
		items = []storage.Prediction{}
	}
	return c.JSON(items)
}

func (s *Server) handleClasses(c *fiber.Ctx) error {
	classes := s.table.Classes()
	out := make([]ClassInfo, 0, len(classes))
	for _, class := range classes {
		out = append(out, ClassInfo{
			Class:     class,
			Plant:     class.PlantName(),
			Condition: class.Condition(),
			Category:  s.table.Lookup(class).Category,
		})
	}
	return c.JSON(out)
}

func (s *Server) handleExplanation(c *fiber.Ctx) error {
	raw, err := url.PathUnescape(c.Params("class"))
	if err != nil {
		raw = c.Params("class")
	}
	class := knowledge.PlantClass(raw)
	if !s.table.Known(class) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown class"})
	}
	return c.JSON(s.table.Lookup(class))
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"provider":  s.diag.Provider(),
		"simulated": s.diag.Simulated(),
	})
}
