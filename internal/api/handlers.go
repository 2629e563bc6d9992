package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youruser/cardforge/internal/channel"
	"github.com/youruser/cardforge/internal/fetch"
	"github.com/youruser/cardforge/internal/ideas"
	"github.com/youruser/cardforge/internal/render"
	"github.com/youruser/cardforge/internal/svgtpl"
)

// Server carries the handler dependencies: logger, asset root, the raster
// collaborators shared by every render, and the directory archived copies of
// rendered cards land in.
type Server struct {
	log       *zap.SugaredLogger
	assetsDir string
	outputDir string
	raster    svgtpl.Rasterizer
	canvas    svgtpl.Composer
}

// NewServer wires the default rasterizer and output canvas. An empty
// outputDir disables render archiving.
func NewServer(log *zap.SugaredLogger, assetsDir, outputDir string) *Server {
	return &Server{
		log:       log,
		assetsDir: assetsDir,
		outputDir: outputDir,
		raster:    render.SVGRasterizer{},
		canvas:    render.NewCanvas(),
	}
}

// archive writes a copy of a rendered card to the output directory so the
// downstream video pipeline can pick it up. Best effort: a failed write logs
// and the HTTP response still goes out.
func (s *Server) archive(channel string, png []byte) {
	if s.outputDir == "" {
		return
	}
	name := fmt.Sprintf("card_%s_%d.png", channel, time.Now().UnixNano())
	path := filepath.Join(s.outputDir, name)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		s.log.Warnw("render archive failed", "path", path, "err", err)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type renderRequest struct {
	Channel  string `json:"channel" binding:"required"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	ImageURL string `json:"image_url"`
	ImageB64 string `json:"image_b64"`
	Source   string `json:"source"`
}

// renderCard builds one card from explicit content and responds with the
// composed PNG.
func (s *Server) renderCard(c *gin.Context) {
	var req renderRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := channel.Load(s.assetsDir, req.Channel)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if cfg.TemplatePath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "channel has no template.svg"})
		return
	}

	img := s.resolveImage(req.ImageB64, req.ImageURL)

	builder := svgtpl.NewBuilder(s.log, cfg.FontBytes(), s.raster, s.canvas)
	png, err := builder.BuildCard(c.Request.Context(), svgtpl.CardRequest{
		TemplatePath: cfg.TemplatePath,
		Title:        req.Title,
		Body:         req.Body,
		Image:        img,
		Source:       req.Source,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	s.archive(req.Channel, png)
	c.Data(http.StatusOK, "image/png", png)
}

// renderIdea pulls the channel's next CSV idea, renders it and advances the
// consumed-row cursor.
func (s *Server) renderIdea(c *gin.Context) {
	var req struct {
		Channel string `json:"channel" binding:"required"`
		Count   int    `json:"count"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Count < 1 {
		req.Count = 1
	}

	cfg, err := channel.Load(s.assetsDir, req.Channel)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if cfg.TemplatePath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "channel has no template.svg"})
		return
	}

	all, err := ideas.Load(cfg.Dir)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	cursor := ideas.ReadCursor(cfg.Dir)
	batch, next := ideas.Next(all, cursor, req.Count)
	if len(batch) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "ideas exhausted", "cursor": cursor})
		return
	}

	idea := batch[0]
	img := s.resolveImage("", idea.ImageURL)

	builder := svgtpl.NewBuilder(s.log, cfg.FontBytes(), s.raster, s.canvas)
	png, err := builder.BuildCard(c.Request.Context(), svgtpl.CardRequest{
		TemplatePath: cfg.TemplatePath,
		Title:        idea.Title,
		Body:         idea.Body,
		Image:        img,
		Source:       idea.Source,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	if err := ideas.WriteCursor(cfg.Dir, next); err != nil {
		s.log.Warnw("cursor not persisted", "channel", req.Channel, "err", err)
	}
	s.archive(req.Channel, png)
	c.Data(http.StatusOK, "image/png", png)
}

// qr responds with a QR PNG for the given text, typically a card's source
// link.
func (s *Server) qr(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		text = "cardforge"
	}
	size := 400
	if v, err := strconv.Atoi(c.Query("size")); err == nil && v > 0 {
		size = v
	}
	b, err := render.QRPNG(text, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

// resolveImage turns the request's inline base64 or remote URL into raw
// bytes. Failures log and degrade to a text-only card.
func (s *Server) resolveImage(b64, url string) []byte {
	if b64 != "" {
		data, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			s.log.Warnw("bad image_b64, rendering without image", "err", err)
			return nil
		}
		return data
	}
	if url != "" {
		data, err := fetch.Bytes(url)
		if err != nil {
			s.log.Warnw("image download failed, rendering without image", "url", url, "err", err)
			return nil
		}
		return data
	}
	return nil
}

// fail maps pipeline errors to HTTP statuses: missing template 404, malformed
// template 422, anything else (rasterization included) 500.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, svgtpl.ErrTemplateNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, svgtpl.ErrMalformedTemplate):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		s.log.Errorw("card render failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
