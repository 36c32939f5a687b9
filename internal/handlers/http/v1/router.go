package v1

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	gql "github.com/gfdmit/web-forum/posts-api/internal/handlers/http/v1/graphql"
	"github.com/gfdmit/web-forum/posts-api/internal/service"
)

type handler struct {
	svc *service.Service
}

func New(svc *service.Service) (*gin.Engine, error) {
	var (
		router = gin.New()
		h      = &handler{svc: svc}
	)

	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300 * time.Second,
	}))

	if err := registerValidators(); err != nil {
		return nil, err
	}

	gqlHandler, err := gql.New(svc)
	if err != nil {
		return nil, err
	}

	api := router.Group("/api")
	api.Use(gin.Logger())
	{
		api.GET("/db_healthchecker", h.dbHealth)
		api.GET("/kv_healthchecker", h.kvHealth)

		v1 := api.Group("/v1")
		{
			v1.POST("/graphql", gin.WrapH(gqlHandler))
			v1.GET("/ping", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})
		}

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signup", h.signup)
			authGroup.POST("/login", h.login)
			authGroup.GET("/refresh_token", h.refreshToken)
			authGroup.GET("/confirmed_email/:token", h.confirmedEmail)
			authGroup.POST("/request_email", h.requestEmail)
			authGroup.POST("/request_password_reset", h.requestPasswordReset)
			authGroup.GET("/reset_password/:token", h.resetPasswordForm)
			authGroup.POST("/reset-password", h.resetPassword)

			cache := authGroup.Group("/cache", h.authenticate)
			cache.POST("/set", h.setValue)
			cache.GET("/get/:key", h.getValue)
		}

		api.GET("/users/me", h.authenticate, h.me)

		posts := api.Group("/posts")
		{
			posts.GET("", h.listPosts)
			posts.GET("/censored", h.authenticate, h.listCensoredPosts)
			posts.GET("/:id", h.getPost)
			posts.POST("", h.authenticate, h.createPost)
			posts.PUT("/:id", h.authenticate, h.updatePost)
			posts.DELETE("/:id", h.authenticate, h.deletePost)
			posts.GET("/:id/comments", h.postComments)
			posts.GET("/:id/status", h.postStatus)
			posts.PUT("/:id/status", h.authenticate, h.updatePostStatus)
			posts.GET("/:id/media", h.listMedia)
			posts.POST("/:id/media", h.authenticate, h.uploadMedia)
		}

		comments := api.Group("/comments")
		{
			comments.GET("", h.listComments)
			comments.POST("", h.authenticate, h.createComment)
			comments.GET("/censored", h.authenticate, h.listCensoredComments)
			comments.GET("/:id", h.getComment)
			comments.PUT("/:id", h.authenticate, h.updateComment)
			comments.DELETE("/:id", h.authenticate, h.deleteComment)
		}

		api.GET("/analitics/daily-breakdown", h.authenticate, h.dailyBreakdown)
	}

	return router, nil
}
