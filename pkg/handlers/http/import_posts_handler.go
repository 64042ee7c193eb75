package http

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/nestline/nestline/pkg/domain/post"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"
)

const maxImportLineBytes = 1 << 20

type importPostsHandler struct {
	logger       *logrus.Logger
	repo         post.Repository
	timeProvider func() time.Time
}

func NewImportPostsHandler(logger *logrus.Logger, repo post.Repository, timeProvider func() time.Time) Handler {
	if timeProvider == nil {
		timeProvider = time.Now
	}
	return &importPostsHandler{
		logger:       logger,
		repo:         repo,
		timeProvider: timeProvider,
	}
}

// Handle @Summary Bulk import posts
// @Description Reads newline-delimited JSON posts; malformed lines are skipped and counted
// @Tags Posts
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Import summary"
// @Router /api/posts/import [post]
func (h *importPostsHandler) Handle(c *fiber.Ctx) error {
	// BodyRaw keeps the payload as sent; c.Body() would already have
	// gunzipped it when Content-Encoding is set.
	var body io.Reader = bytes.NewReader(c.BodyRaw())
	if strings.EqualFold(c.Get(fiber.HeaderContentEncoding), "gzip") {
		gr, err := gzip.NewReader(body)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid gzip payload"})
		}
		defer gr.Close()
		body = gr
	}

	var parser fastjson.Parser
	imported, skipped := 0, 0

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), maxImportLineBytes)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		p, ok := h.parseLine(&parser, line)
		if !ok {
			skipped++
			continue
		}
		if err := h.repo.Save(c.Context(), p); err != nil {
			h.logger.WithError(err).Error("failed to store imported post")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store imported post"})
		}
		imported++
	}
	if err := scanner.Err(); err != nil {
		h.logger.WithError(err).Warn("import stream truncated")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "import payload could not be read"})
	}

	h.logger.WithFields(logrus.Fields{
		"imported": imported,
		"skipped":  skipped,
	}).Info("post import finished")

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"imported": imported,
		"skipped":  skipped,
	})
}

func (h *importPostsHandler) parseLine(parser *fastjson.Parser, line []byte) (*post.Post, bool) {
	v, err := parser.ParseBytes(line)
	if err != nil || v.Type() != fastjson.TypeObject {
		return nil, false
	}

	displayName := string(v.GetStringBytes("displayName"))
	content := string(v.GetStringBytes("content"))
	if displayName == "" || content == "" {
		return nil, false
	}

	p := &post.Post{
		ID:          string(v.GetStringBytes("id")),
		DisplayName: displayName,
		Handle:      string(v.GetStringBytes("handle")),
		Content:     content,
		Timestamp:   v.GetInt64("timestamp"),
		Reactions:   make(map[string]int),
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Timestamp == 0 {
		p.Timestamp = h.timeProvider().UnixMilli()
	}
	if reactions := v.GetObject("reactions"); reactions != nil {
		reactions.Visit(func(key []byte, value *fastjson.Value) {
			emoji := string(key)
			if post.IsValidReaction(emoji) {
				p.Reactions[emoji] = value.GetInt()
			}
		})
	}
	p.NormalizeReactions()
	return p, true
}
