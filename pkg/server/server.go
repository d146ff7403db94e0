// Package server exposes slices over HTTP for remote displays.
package server

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"volslice/internal/logging"
	"volslice/internal/models"
	"volslice/internal/session"
	"volslice/pkg/config"
	"volslice/pkg/plane"
	"volslice/pkg/resample"
	"volslice/pkg/visualization"
)

// MaxSide bounds the width and height of a requested slice.
const MaxSide = 4096

// Server serves slices rendered by a session
type Server struct {
	app     *fiber.App
	cfg     *config.Config
	session *session.Session
}

// New builds the fiber app and registers every route.
func New(cfg *config.Config, sess *session.Session) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		AppName:      "volslice",
	})
	s := &Server{app: app, cfg: cfg, session: sess}

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}?${queryParams}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{fiber.MethodGet, fiber.MethodHead},
		ExposeHeaders: []string{
			"X-Slice-Width", "X-Slice-Height", "X-Slice-Version",
		},
	}))

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	// ============================================================
	// Volume Routes
	// ============================================================

	app.Get("/volumes", s.listVolumes)
	app.Get("/volumes/:dataset", s.volumeInfo)
	app.Get("/slice", s.slice)

	return s
}

// App returns the underlying fiber app, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on the configured address until Shutdown.
func (s *Server) Listen() error {
	logging.Infof("Starting slice server on %s", s.cfg.Server.Addr)
	return s.app.Listen(s.cfg.Server.Addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) listVolumes(c fiber.Ctx) error {
	out := make([]fiber.Map, 0, len(models.Datasets))
	for _, d := range models.Datasets {
		path, _ := s.cfg.DatasetPath(d)
		out = append(out, fiber.Map{"dataset": d.String(), "path": path})
	}
	return c.JSON(out)
}

func (s *Server) volumeInfo(c fiber.Ctx) error {
	d, err := models.ParseDataset(c.Params("dataset"))
	if err != nil {
		return fail(c, fiber.StatusNotFound, err)
	}
	vol, err := s.session.Volume(d)
	if err != nil {
		return fail(c, status(err), err)
	}

	ranges := make([]fiber.Map, vol.Components())
	for i := range ranges {
		r, _ := vol.Range(i)
		ranges[i] = fiber.Map{"min": r.Min, "max": r.Max}
	}
	ext := vol.Extents()
	sp := vol.Spacing()
	return c.JSON(fiber.Map{
		"dataset":    d.String(),
		"name":       vol.Name(),
		"extents":    []int{ext.X, ext.Y, ext.Z},
		"components": vol.Components(),
		"spacing":    []float64{sp.X, sp.Y, sp.Z},
		"ranges":     ranges,
		"size":       humanize.Bytes(uint64(vol.SizeBytes())),
	})
}

// slice renders GET /slice?dataset=&orientation=&offset=&rotation=&width=&height=&format=
func (s *Server) slice(c fiber.Ctx) error {
	st, err := s.parseState(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}
	width, err := intQuery(c, "width", s.cfg.Output.Width)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}
	height, err := intQuery(c, "height", s.cfg.Output.Height)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}
	if width > MaxSide || height > MaxSide {
		return fail(c, fiber.StatusBadRequest, fmt.Errorf("%w: %dx%d exceeds %d", resample.ErrBufferSize, width, height, MaxSide))
	}

	frame, err := s.session.Render(st, width, height)
	if err != nil {
		return fail(c, status(err), err)
	}

	c.Set("X-Slice-Width", strconv.Itoa(frame.Width))
	c.Set("X-Slice-Height", strconv.Itoa(frame.Height))
	c.Set("X-Slice-Version", strconv.FormatUint(frame.State.Version, 10))

	format := c.Query("format", s.cfg.Output.Format)
	if format == "raw" {
		c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
		return c.Send(frame.Bytes())
	}
	f, err := visualization.ParseFormat(format)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}
	img, err := frame.Image()
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err)
	}
	var buf bytes.Buffer
	if err := visualization.Encode(&buf, img, f); err != nil {
		return fail(c, fiber.StatusInternalServerError, err)
	}
	c.Set(fiber.HeaderContentType, f.ContentType())
	return c.Send(buf.Bytes())
}

// parseState applies the query parameters to the configured view in the
// same order a user would: dataset, orientation, offset, rotation.
func (s *Server) parseState(c fiber.Ctx) (session.State, error) {
	view := s.cfg.View
	st := session.Initial().WithDataset(view.Dataset)
	if name := c.Query("dataset"); name != "" {
		d, err := models.ParseDataset(name)
		if err != nil {
			return st, err
		}
		st = st.WithDataset(d)
	}

	orientation := view.Orientation
	if name := c.Query("orientation"); name != "" {
		o, err := plane.ParseOrientation(name)
		if err != nil {
			return st, err
		}
		orientation = o
	}
	st = st.WithOrientation(orientation)

	offset, err := floatQuery(c, "offset", view.Offset)
	if err != nil {
		return st, err
	}
	rotation, err := floatQuery(c, "rotation", view.Rotation)
	if err != nil {
		return st, err
	}
	return st.WithOffset(offset).WithRotation(rotation), nil
}

func intQuery(c fiber.Ctx, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, v)
	}
	return n, nil
}

func floatQuery(c fiber.Ctx, key string, def float64) (float64, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", key, v)
	}
	return f, nil
}

func status(err error) int {
	switch {
	case errors.Is(err, session.ErrUnknownDataset):
		return fiber.StatusNotFound
	case errors.Is(err, plane.ErrInvalidParams), errors.Is(err, plane.ErrDegeneratePlane),
		errors.Is(err, resample.ErrBufferSize):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func fail(c fiber.Ctx, code int, err error) error {
	if code >= fiber.StatusInternalServerError {
		logging.Errorf("%s %s: %v", c.Method(), c.OriginalURL(), err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
