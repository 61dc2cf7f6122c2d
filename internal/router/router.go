package router

import (
	"net/http"

	"github.com/codedocapi/backend/config"
	"github.com/codedocapi/backend/internal/handler"
	"github.com/codedocapi/backend/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

func Setup(
	cfg *config.Config,
	docHandler *handler.DocumentHandler,
	downloadHandler *handler.DownloadHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(middleware.RequestID())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.Origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	r.GET("/", usage)
	r.GET("/health", health)

	docs := r.Group("/docs")
	{
		docs.POST("/gen", docHandler.Generate)
		docs.POST("/from-upload", docHandler.GenerateFromUpload)
		docs.POST("/from-github", docHandler.GenerateFromGitHub)
		docs.POST("/download", downloadHandler.Download)
	}

	return r
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "Code Documentation API",
	})
}

func usage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to Code Documentation API",
		"usage": gin.H{
			"text_input": gin.H{
				"endpoint": "/docs/gen",
				"method":   "POST",
				"body": gin.H{
					"code":     "Your code here (any programming language)",
					"isBase64": "Optional boolean (default: false) to indicate if the code is base64 encoded",
				},
			},
			"file_upload": gin.H{
				"endpoint": "/docs/from-upload",
				"method":   "POST",
				"form":     "file: Upload a text file containing code",
			},
			"github_repo": gin.H{
				"endpoint": "/docs/from-github",
				"method":   "POST",
				"body": gin.H{
					"github_url": "GitHub repository URL",
					"max_files":  "Optional number (default: 10) to limit files processed",
				},
			},
			"download": gin.H{
				"endpoint": "/docs/download",
				"method":   "POST",
				"body": gin.H{
					"markdown_content": "Pre-generated markdown content from other endpoints",
					"filename_prefix":  "Optional filename prefix (default: 'documentation')",
					"source_type":      "Optional source indicator ('code', 'file', 'github')",
				},
			},
		},
	})
}
