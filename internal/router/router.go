package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/carepulse/hms-api/internal/middleware"
	"github.com/carepulse/hms-api/internal/model"
	"github.com/carepulse/hms-api/internal/ws"
)

// Handler registers routes on the authenticated API group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimit rate.Limit
	RateBurst int
	CORS      middleware.CORSConfig
}

type Router struct {
	engine *gin.Engine
}

// NewRouter assembles the HTTP surface: public auth and websocket endpoints,
// the authenticated /api/v1 group, and the operational endpoints.
func NewRouter(
	auth *middleware.AuthMiddleware,
	authH Handler,
	appointmentH Handler,
	notificationH Handler,
	healthTipH Handler,
	eventH Handler,
	wsH *ws.Handler,
	healthH interface{ RegisterRoutes(*gin.Engine) },
	cfg Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.Logger())
	engine.Use(middleware.Recovery())
	engine.Use(middleware.CORS(cfg.CORS))
	if cfg.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  cfg.RateLimit,
			Burst: cfg.RateBurst,
		})
		engine.Use(limiter.RateLimit())
	}

	// Operational endpoints and the websocket upgrade stay outside the JWT
	// boundary: socket identity comes from the connection query parameters.
	healthH.RegisterRoutes(engine)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	wsH.RegisterRoutes(engine)

	public := engine.Group("/api/v1")
	authH.RegisterRoutes(public)

	api := engine.Group("/api/v1")
	api.Use(auth.Authenticate())
	appointmentH.RegisterRoutes(api)
	notificationH.RegisterRoutes(api)
	eventH.RegisterRoutes(api)

	tips := engine.Group("/api/v1")
	tips.Use(auth.Authenticate(), auth.RequireRole(model.RoleAdmin))
	healthTipH.RegisterRoutes(tips)

	return &Router{engine: engine}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
