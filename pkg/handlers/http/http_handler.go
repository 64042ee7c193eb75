package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(c *fiber.Ctx) error
}

type HandlerTransport interface {
	GetTransport() HandlerTransport
}

type HandlerTransportDTO struct {
	CreatePostHandler      Handler
	ListPostsHandler       Handler
	ReactPostHandler       Handler
	GetPostImageHandler    Handler
	ImportPostsHandler     Handler
	ExportPostsHandler     Handler
	DeletePostHandler      Handler
	ListBlacklistHandler   Handler
	BlacklistActionHandler Handler
	GetVersionHandler      Handler
}

func (t *HandlerTransportDTO) GetTransport() HandlerTransport {
	return t
}
