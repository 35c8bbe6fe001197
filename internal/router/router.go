package router

import (
	"net/http"
	"time"

	"github.com/RaysoLee/mindreshape/internal/config"
	"github.com/RaysoLee/mindreshape/internal/handlers"
	"github.com/RaysoLee/mindreshape/internal/services"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func rateLimitExceeded(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, try again later"})
}

func Setup(log *zap.Logger, quiz *services.QuizService, chat *services.ChatService) *gin.Engine {
	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	store := cookie.NewStore([]byte(config.Conf.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7,
	})
	router.Use(sessions.Sessions("mindreshape_session", store))

	// --- Now that sessions are initialized, other middleware can use them ---
	router.Use(CSRFProtection())
	router.Use(UserLoaderMiddleware(log))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			c.Abort()
			return
		}
	})

	// Handlers and routes
	authHandler := handlers.NewAuthHandler(log)
	assessmentHandler := handlers.NewAssessmentHandler(log, quiz)
	chatHandler := handlers.NewChatHandler(log, chat)
	practiceHandler := handlers.NewPracticeHandler(log)
	taskHandler := handlers.NewTaskHandler(log)
	statsHandler := handlers.NewStatsHandler(log)

	authLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 5,
	})
	authLimiter := ratelimit.RateLimiter(authLimitStore, &ratelimit.Options{
		ErrorHandler: rateLimitExceeded,
		KeyFunc:      keyFunc,
	})

	chatLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 20,
	})
	chatLimiter := ratelimit.RateLimiter(chatLimitStore, &ratelimit.Options{
		ErrorHandler: rateLimitExceeded,
		KeyFunc:      keyFunc,
	})

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.GET("/csrf", CSRFToken)
		auth.POST("/register", authLimiter, authHandler.Register)
		auth.POST("/login", authLimiter, authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
	}

	authorized := api.Group("/")
	authorized.Use(AuthRequired())
	{
		authorized.GET("/auth/me", authHandler.Me)
		authorized.PUT("/auth/profile", authHandler.UpdateProfile)
		authorized.PUT("/auth/password", authHandler.UpdatePassword)

		assessments := authorized.Group("/assessments")
		{
			assessments.GET("", assessmentHandler.List)
			assessments.GET("/:id", assessmentHandler.Get)
			assessments.POST("/:id/start", assessmentHandler.Start)
		}

		sessionRoutes := authorized.Group("/sessions")
		{
			sessionRoutes.PUT("/:id/answers", assessmentHandler.SaveAnswer)
			sessionRoutes.POST("/:id/submit", assessmentHandler.Submit)
			sessionRoutes.GET("/:id/result", assessmentHandler.Result)
			sessionRoutes.GET("/:id/result/chart", assessmentHandler.ResultChart)
		}

		conversations := authorized.Group("/conversations")
		{
			conversations.GET("", chatHandler.ListConversations)
			conversations.POST("", chatHandler.CreateConversation)
			conversations.GET("/:id", chatHandler.GetConversation)
			conversations.DELETE("/:id", chatHandler.DeleteConversation)
		}
		authorized.POST("/chat", chatLimiter, chatHandler.Chat)

		practice := authorized.Group("/practice")
		{
			practice.GET("", practiceHandler.List)
			practice.POST("", practiceHandler.Create)
			practice.GET("/:id", practiceHandler.Get)
			practice.PUT("/:id", practiceHandler.Update)
			practice.DELETE("/:id", practiceHandler.Delete)
		}

		tasks := authorized.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListCatalog)
			tasks.GET("/mine", taskHandler.ListDay)
			tasks.POST("/:id/assign", taskHandler.Assign)
		}
		authorized.PUT("/user-tasks/:id/status", taskHandler.UpdateStatus)

		authorized.GET("/stats", statsHandler.Get)
	}

	return router
}
