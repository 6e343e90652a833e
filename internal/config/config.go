package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Inference InferenceConfig `yaml:"inference"`
	Search    SearchConfig    `yaml:"search"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	KeepAlive KeepAliveConfig `yaml:"keepAlive"`
	Cache     CacheConfig     `yaml:"cache"`
	Redis     RedisConfig     `yaml:"redis"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port          int           `yaml:"port"`
	Name          string        `yaml:"name"`
	Mode          string        `yaml:"mode"`          // debug, release, test
	WSIdleTimeout time.Duration `yaml:"wsIdleTimeout"` // websocket 空闲超过该时长会被关闭
}

// InferenceConfig 文本生成服务配置（OpenAI 兼容接口）
type InferenceConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	APIKey  string        `yaml:"apiKey"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// SearchConfig 网页搜索配置
type SearchConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	MaxResults int           `yaml:"maxResults"`
	Timeout    time.Duration `yaml:"timeout"`
}

// CorpusConfig 合格数据语料配置
type CorpusConfig struct {
	Files       []string      `yaml:"files"`
	Watch       bool          `yaml:"watch"`
	Debounce    time.Duration `yaml:"debounce"`
	AllowReload bool          `yaml:"allowReload"`
}

// KeepAliveConfig 保活配置
type KeepAliveConfig struct {
	Enabled  bool          `yaml:"enabled"`
	SelfURL  string        `yaml:"selfUrl"`
	Path     string        `yaml:"path"`
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

// CacheConfig 搜索结果缓存配置
type CacheConfig struct {
	Backend string        `yaml:"backend"` // memory, redis, none
	TTL     time.Duration `yaml:"ttl"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"` // debug, info, warn, error
	File       string `yaml:"file"`  // 为空时只输出到控制台
	MaxSize    int    `yaml:"maxSize"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAge     int    `yaml:"maxAge"`
	Compress   bool   `yaml:"compress"`
}

// Default 默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// LoadConfig 加载配置文件，文件不存在时使用默认配置
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	case os.IsNotExist(err):
		// 没有配置文件也可以启动，全部走默认值和环境变量
	default:
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	cfg.ApplyEnv()
	cfg.ApplyDefaults()
	return cfg, nil
}

// LoadEnvFile 加载 config.env，返回是否加载成功
func LoadEnvFile(path string) error {
	return godotenv.Load(path)
}

// ApplyEnv 环境变量覆盖
func (c *Config) ApplyEnv() {
	if v := os.Getenv("HF_TOKEN"); v != "" {
		c.Inference.APIKey = v
	}
	if v := os.Getenv("MODEL_ID"); v != "" {
		c.Inference.Model = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("SELF_URL"); v != "" {
		c.KeepAlive.SelfURL = v
		c.KeepAlive.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Backend = "redis"
		c.Redis.Host, c.Redis.Port = splitHostPort(v, c.Redis.Port)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// ApplyDefaults 填充默认值
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.Name == "" {
		c.Server.Name = "consult-bot"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Server.WSIdleTimeout == 0 {
		c.Server.WSIdleTimeout = 5 * time.Minute
	}

	if c.Inference.BaseURL == "" {
		c.Inference.BaseURL = "https://router.huggingface.co/v1"
	}
	if c.Inference.Model == "" {
		c.Inference.Model = "Qwen/Qwen2.5-7B-Instruct"
	}
	if c.Inference.Timeout == 0 {
		c.Inference.Timeout = 60 * time.Second
	}

	if c.Search.Endpoint == "" {
		c.Search.Endpoint = "https://html.duckduckgo.com/html/"
	}
	if c.Search.MaxResults == 0 {
		c.Search.MaxResults = 2
	}
	if c.Search.Timeout == 0 {
		c.Search.Timeout = 10 * time.Second
	}

	if len(c.Corpus.Files) == 0 {
		c.Corpus.Files = []string{"db1.json", "db2.json"}
	}
	if c.Corpus.Debounce == 0 {
		c.Corpus.Debounce = 500 * time.Millisecond
	}

	if c.KeepAlive.Path == "" {
		c.KeepAlive.Path = "/"
	}
	if c.KeepAlive.Interval == 0 {
		// Render 免费实例 15 分钟无请求会休眠
		c.KeepAlive.Interval = 10 * time.Minute
	}
	if c.KeepAlive.Timeout == 0 {
		c.KeepAlive.Timeout = 30 * time.Second
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 30 * time.Minute
	}

	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSize == 0 {
		c.Log.MaxSize = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 5
	}
	if c.Log.MaxAge == 0 {
		c.Log.MaxAge = 30
	}
}

// Addr 监听地址
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// Addr Redis 地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// splitHostPort 解析 host:port，端口缺失或非法时保留原端口
func splitHostPort(addr string, fallbackPort int) (string, int) {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			port, err := strconv.Atoi(addr[i+1:])
			if err != nil {
				return addr[:i], fallbackPort
			}
			return addr[:i], port
		}
	}
	return addr, fallbackPort
}
