package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"k8s.io/klog/v2"

	"github.com/codedocapi/backend/config"
	"github.com/codedocapi/backend/internal/handler"
	"github.com/codedocapi/backend/internal/pkg/database"
	"github.com/codedocapi/backend/internal/pkg/githubapi"
	"github.com/codedocapi/backend/internal/pkg/llm"
	"github.com/codedocapi/backend/internal/repository"
	"github.com/codedocapi/backend/internal/router"
	"github.com/codedocapi/backend/internal/service"
	"github.com/codedocapi/backend/internal/service/docwriter"
	"github.com/codedocapi/backend/internal/service/prioritizer"
	"github.com/codedocapi/backend/internal/service/repodoc"
)

func main() {
	// 初始化 klog
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	klog.V(6).Info("服务启动中...")

	cfg := config.GetConfig()

	if cfg.LLM.APIKey == "" {
		klog.Warning("未配置 GOOGLE_API_KEY，文档生成请求将失败")
	}

	// 初始化生成记录存储（缓存）
	var records repository.GenerationRepository
	if cfg.Cache.Enabled {
		if cfg.Database.Type != "mysql" {
			if err := os.MkdirAll(filepath.Dir(cfg.Database.DSN), 0755); err != nil {
				log.Fatalf("Failed to create data directory: %v", err)
			}
		}
		db, err := database.InitDB(cfg.Database.Type, cfg.Database.DSN)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		records = repository.NewGenerationRepository(db)
	} else {
		klog.V(6).Info("生成缓存已关闭")
	}

	// 初始化外部客户端
	githubClient := githubapi.NewClient(cfg.GitHub)

	writer, err := docwriter.New(cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize doc writer: %v", err)
	}

	// 评分器按配置选择模型评分或启发式
	var scorer prioritizer.Scorer
	if cfg.LLM.UseAIScorer {
		scorer = prioritizer.NewLLMScorer(llm.NewClient(cfg.LLM))
	} else {
		scorer = prioritizer.NewHeuristicScorer()
	}

	// 初始化 Service
	docService := service.NewDocumentService(cfg, writer)
	repoService := repodoc.New(cfg, githubClient, scorer, writer, records)

	// 初始化 Handler
	docHandler := handler.NewDocumentHandler(docService, repoService, cfg.Process.MaxFilesCap)
	downloadHandler := handler.NewDownloadHandler()

	// 设置路由
	r := router.Setup(cfg, docHandler, downloadHandler)

	log.Printf("Server starting on port %s...", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
