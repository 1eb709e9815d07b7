package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	_ "github.com/d60-Lab/pulsechat/docs"
	"github.com/d60-Lab/pulsechat/internal/api/handler"
	"github.com/d60-Lab/pulsechat/internal/api/middleware"
	"github.com/d60-Lab/pulsechat/internal/service"
)

// NewRouter 挂载全部路由。
// 读接口匿名可用（带 token 时附加 viewer 态），写接口一律要求登录。
func NewRouter(mode string, h *handler.Handler, authSvc service.AuthService) *gin.Engine {
	gin.SetMode(mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	r.Use(otelgin.Middleware("pulsechat"))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.RateLimit(rate.Limit(50), 100))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/nonce", h.Nonce)
		auth.POST("/login", h.Login)
	}

	public := v1.Group("")
	public.Use(middleware.OptionalAuth(authSvc))
	{
		public.GET("/feed/latest", h.LatestFeed)
		public.GET("/posts/:id", h.PostDetail)
		public.GET("/users/:address", h.GetProfile)
		public.GET("/users/:address/posts", h.UserPosts)
		public.GET("/users/:address/stats", h.GetStats)
		public.GET("/users/:address/following", h.ListFollowing)
		public.GET("/users/:address/followers", h.ListFollowers)
		public.GET("/stats/totals", h.GetTotals)
		public.GET("/leaderboard", h.Leaderboard)
	}

	private := v1.Group("")
	private.Use(middleware.RequireAuth(authSvc))
	{
		private.GET("/feed/timeline", h.Timeline)
		private.GET("/messages", h.MyMessages)

		private.POST("/engagement/likes/:id", h.ToggleLike)
		private.POST("/engagement/reposts/:id", h.ToggleRepost)
		private.GET("/engagement/status/:id", h.EngagementStatus)
		private.GET("/engagement/reposts", h.ListReposts)

		private.POST("/follow", h.Follow)
		private.GET("/follow/:address", h.FollowStatus)
		private.DELETE("/follow/:address", h.Unfollow)

		private.GET("/notifications", h.ListNotifications)
		private.GET("/notifications/unread", h.UnreadCount)
		private.POST("/notifications/:id/read", h.MarkNotificationRead)
		private.POST("/notifications/read-all", h.MarkAllNotificationsRead)
		private.DELETE("/notifications", h.ClearNotifications)

		tx := private.Group("/tx")
		{
			tx.POST("/post", h.PrepareCreatePost)
			tx.POST("/comment", h.PrepareComment)
			tx.POST("/quote", h.PrepareQuote)
			tx.POST("/like/:id", h.PrepareLike)
			tx.POST("/tip", h.PrepareTip)
			tx.POST("/message", h.PrepareMessage)
			tx.POST("/profile", h.PrepareSetProfile)
			tx.POST("/approve", h.PrepareApprove)
			tx.POST("/confirm", h.ConfirmTx)
		}
	}

	return r
}
