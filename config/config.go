package config

import (
	"os"
	"strconv"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	GitHub   GitHubConfig   `yaml:"github"`
	Process  ProcessConfig  `yaml:"process"`
	Cache    CacheConfig    `yaml:"cache"`
	CORS     CORSConfig     `yaml:"cors"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

type DatabaseConfig struct {
	Type string `yaml:"type"` // sqlite, mysql
	DSN  string `yaml:"dsn"`
}

type LLMConfig struct {
	APIURL      string        `yaml:"api_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"-"`             // 请求超时，由默认值控制
	MaxRetries  int           `yaml:"max_retries"`
	UseAIScorer bool          `yaml:"use_ai_scorer"` // 文件优先级评分是否走模型，false 时使用启发式
}

type GitHubConfig struct {
	APIURL  string        `yaml:"api_url"`
	Token   string        `yaml:"token"` // 可选，配置后提升 API 速率限额
	Timeout time.Duration `yaml:"-"`     // 请求超时，由默认值控制
}

type ProcessConfig struct {
	DefaultMaxFiles  int   `yaml:"default_max_files"`
	MaxFilesCap      int   `yaml:"max_files_cap"`
	MaxFileSize      int64 `yaml:"max_file_size"`     // 上传文件大小上限（字节）
	FileSizeCeiling  int64 `yaml:"file_size_ceiling"` // 仓库单文件抓取上限（字节），超限跳过
	FetchConcurrency int   `yaml:"fetch_concurrency"` // 文件内容并发抓取数
	MaxTreeDepth     int   `yaml:"max_tree_depth"`    // contents 递归回退的最大目录深度
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
}

type CORSConfig struct {
	Origins []string `yaml:"origins"`
}

var (
	cfg  *Config
	once sync.Once
)

func GetConfig() *Config {
	once.Do(func() {
		cfg = loadConfig()
	})
	return cfg
}

func loadConfig() *Config {
	config := &Config{
		Server: ServerConfig{
			Port: "8000",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			DSN:  "./data/app.db",
		},
		LLM: LLMConfig{
			APIURL:     "https://generativelanguage.googleapis.com/v1beta/openai",
			Model:      "gemma-3-12b-it",
			MaxTokens:  2048,
			Timeout:    2 * time.Minute,
			MaxRetries: 2,
		},
		GitHub: GitHubConfig{
			APIURL:  "https://api.github.com",
			Timeout: 30 * time.Second,
		},
		Process: ProcessConfig{
			DefaultMaxFiles:  10,
			MaxFilesCap:      50,
			MaxFileSize:      10 * 1024 * 1024,
			FileSizeCeiling:  256 * 1024,
			FetchConcurrency: 4,
			MaxTreeDepth:     8,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		CORS: CORSConfig{
			Origins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://127.0.0.1:3000",
				"http://127.0.0.1:5173",
			},
		},
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			klog.Errorf("解析配置文件 %s 失败: %v", configPath, err)
		}
	}

	// 环境变量优先级高于配置文件
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		config.Server.Mode = mode
	}

	if apiKey := os.Getenv("GOOGLE_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
	}
	if baseURL := os.Getenv("LLM_BASE_URL"); baseURL != "" {
		config.LLM.APIURL = baseURL
	}
	if model := os.Getenv("AI_MODEL"); model != "" {
		config.LLM.Model = model
	}

	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		config.GitHub.Token = token
	}
	if apiURL := os.Getenv("GITHUB_API_URL"); apiURL != "" {
		config.GitHub.APIURL = apiURL
	}

	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if dbDSN := os.Getenv("DB_DSN"); dbDSN != "" {
		config.Database.DSN = dbDSN
	}

	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			config.Cache.Enabled = enabled
		}
	}

	if config.Process.DefaultMaxFiles <= 0 {
		config.Process.DefaultMaxFiles = 10
	}
	if config.Process.MaxFilesCap <= 0 {
		config.Process.MaxFilesCap = 50
	}
	if config.Process.FetchConcurrency <= 0 {
		config.Process.FetchConcurrency = 4
	}

	return config
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
