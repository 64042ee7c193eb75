package server

import (
	"fmt"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/nestline/nestline/pkg/config"
	handlers "github.com/nestline/nestline/pkg/handlers/http"
	wshandlers "github.com/nestline/nestline/pkg/handlers/websocket"
	"github.com/nestline/nestline/pkg/middleware"
)

type (
	ApiServerDI struct {
		MiddlewareTransport middleware.Transport
		HandlerTransport    handlers.HandlerTransport
		WSHandlerTransport  wshandlers.HandlerTransport
		Config              *config.Config
		Logger              *logrus.Logger
	}
	ApiServer struct {
		*BaseServer
		middlewareTransport middleware.Transport
		handlerTransport    handlers.HandlerTransport
		wsHandlerTransport  wshandlers.HandlerTransport
	}
)

func NewApiServer(di ApiServerDI) *ApiServer {
	return &ApiServer{
		BaseServer:          NewBaseServer(di.Config, di.Logger),
		middlewareTransport: di.MiddlewareTransport,
		handlerTransport:    di.HandlerTransport,
		wsHandlerTransport:  di.WSHandlerTransport,
	}
}

func (s *ApiServer) Run() error {
	s.setupRoutes()
	s.setupHealthCheck()
	s.setupMetricsEndpoint()
	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("starting api server")
	return s.Router.Listen(addr)
}

func (s *ApiServer) setupRoutes() {
	transport, ok := s.handlerTransport.(*handlers.HandlerTransportDTO)
	if !ok {
		s.Logger.Error("invalid http handler transport type")
		return
	}
	wsTransport, ok := s.wsHandlerTransport.(*wshandlers.HandlerTransportDTO)
	if !ok {
		s.Logger.Error("invalid websocket handler transport type")
		return
	}

	s.Router.Get("/version", transport.GetVersionHandler.Handle)

	api := s.Router.Group("/api",
		s.middlewareTransport.PanicRecoverMiddleware.Middleware(),
		s.middlewareTransport.CORSMiddleware.Middleware(),
		s.middlewareTransport.MetricsMiddleware.Middleware(),
		s.middlewareTransport.RateLimitMiddleware.Middleware(),
	)

	posts := api.Group("/posts")
	{
		posts.Post("", transport.CreatePostHandler.Handle)
		posts.Get("", transport.ListPostsHandler.Handle)
		posts.Post("/import", transport.ImportPostsHandler.Handle)
		posts.Get("/export", transport.ExportPostsHandler.Handle)
		posts.Post("/:post_id/reactions", transport.ReactPostHandler.Handle)
		posts.Get("/:post_id/image", transport.GetPostImageHandler.Handle)
	}

	api.Use("/live", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	api.Get("/live", websocket.New(
		wsTransport.LiveHandler.Handle,
		websocket.Config{
			HandshakeTimeout: 15 * time.Second,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
		},
	))

	admin := api.Group("/admin", s.middlewareTransport.AdminAuthMiddleware.Middleware())
	{
		admin.Delete("/posts/:post_id", transport.DeletePostHandler.Handle)
		admin.Get("/blacklist", transport.ListBlacklistHandler.Handle)
		admin.Post("/blacklist", transport.BlacklistActionHandler.Handle)
	}
}

func (s *ApiServer) Shutdown() error {
	return s.Router.Shutdown()
}
