package http

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/nestline/nestline/pkg/domain/post"
	"github.com/sirupsen/logrus"
)

type exportPostsHandler struct {
	logger *logrus.Logger
	repo   post.Repository
}

func NewExportPostsHandler(logger *logrus.Logger, repo post.Repository) Handler {
	return &exportPostsHandler{
		logger: logger,
		repo:   repo,
	}
}

// Handle @Summary Bulk export posts
// @Description Streams all posts as newline-delimited JSON, gzip-compressed when accepted
// @Tags Posts
// @Produce json
// @Success 200 {string} string "NDJSON payload"
// @Router /api/posts/export [get]
func (h *exportPostsHandler) Handle(c *fiber.Ctx) error {
	posts, err := h.repo.List(c.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to export posts")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to export posts"})
	}

	var buf bytes.Buffer
	for _, p := range posts {
		line, err := json.Marshal(p)
		if err != nil {
			h.logger.WithError(err).WithField("post_id", p.ID).Warn("skipping unserializable post")
			continue
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	c.Set(fiber.HeaderContentType, "application/x-ndjson")

	// AcceptsEncodings matches any offer when the header is absent, so
	// check the header itself before compressing.
	if strings.Contains(c.Get(fiber.HeaderAcceptEncoding), "gzip") {
		var compressed bytes.Buffer
		gw := gzip.NewWriter(&compressed)
		if _, err := gw.Write(buf.Bytes()); err == nil && gw.Close() == nil {
			c.Set(fiber.HeaderContentEncoding, "gzip")
			return c.Status(fiber.StatusOK).Send(compressed.Bytes())
		}
	}

	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}
