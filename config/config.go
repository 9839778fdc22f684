package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "config/config.yaml"

type ServerConfig struct {
	Port         int      `yaml:"port"`
	Mode         string   `yaml:"mode"`
	AllowOrigins []string `yaml:"allow_origins"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	LogLevel string `yaml:"log_level"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	Database int    `yaml:"database"`
	// 快取存活秒數
	TTLSeconds int `yaml:"ttl_seconds"`
}

type JWTConfig struct {
	PrivateKeyPath string `yaml:"private_key_path"`
	PublicKeyPath  string `yaml:"public_key_path"`
	ExpireHours    int    `yaml:"expire_hours"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Environment string `yaml:"environment"`
	File        string `yaml:"file"`
	MaxSize     int    `yaml:"max_size"`
	MaxAge      int    `yaml:"max_age"`
	MaxBackups  int    `yaml:"max_backups"`
}

type UploadConfig struct {
	Dir               string   `yaml:"dir"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Log      LogConfig      `yaml:"log"`
	Upload   UploadConfig   `yaml:"upload"`
}

// LoadConfig 讀取設定檔，之後以環境變數覆蓋並補上預設值。
// 設定檔不存在時只使用環境變數與預設值。
func LoadConfig(filename string) (Config, error) {
	var config Config

	//.env 不存在不算錯誤
	_ = godotenv.Load()

	if filename == "" {
		filename = os.Getenv("CONFIG_FILE")
	}
	if filename == "" {
		filename = defaultConfigFile
	}

	file, err := os.Open(filename)
	if err != nil && !os.IsNotExist(err) {
		return config, err
	}
	if err == nil {
		defer file.Close()

		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(&config); err != nil {
			return config, err
		}
	}

	config.overrideFromEnv()
	config.setDefaults()

	return config, nil
}

func (c *Config) overrideFromEnv() {
	if val := os.Getenv("SERVER_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.Server.Port = port
		}
	}
	if val := os.Getenv("GIN_MODE"); val != "" {
		c.Server.Mode = val
	}
	if val := os.Getenv("CORS_ALLOW_ORIGINS"); val != "" {
		c.Server.AllowOrigins = strings.Split(val, ",")
	}

	if val := os.Getenv("DB_DRIVER"); val != "" {
		c.Database.Driver = val
	}
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		c.Database.Port = val
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.Username = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}

	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}
	if val := os.Getenv("REDIS_DB"); val != "" {
		if db, err := strconv.Atoi(val); err == nil {
			c.Redis.Database = db
		}
	}

	if val := os.Getenv("JWT_PRIVATE_KEY_PATH"); val != "" {
		c.JWT.PrivateKeyPath = val
	}
	if val := os.Getenv("JWT_PUBLIC_KEY_PATH"); val != "" {
		c.JWT.PublicKeyPath = val
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("APP_ENV"); val != "" {
		c.Log.Environment = val
	}
}

func (c *Config) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "debug"
	}
	if len(c.Server.AllowOrigins) == 0 {
		c.Server.AllowOrigins = []string{"http://localhost:3000"}
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == "" {
		if c.Database.Driver == "postgres" {
			c.Database.Port = "5432"
		} else {
			c.Database.Port = "3306"
		}
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.LogLevel == "" {
		c.Database.LogLevel = "warn"
	}

	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.TTLSeconds == 0 {
		c.Redis.TTLSeconds = 600
	}

	if c.JWT.PrivateKeyPath == "" {
		c.JWT.PrivateKeyPath = "jwt/private_key.pem"
	}
	if c.JWT.PublicKeyPath == "" {
		c.JWT.PublicKeyPath = "jwt/public_key.pem"
	}
	if c.JWT.ExpireHours == 0 {
		c.JWT.ExpireHours = 24
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Environment == "" {
		c.Log.Environment = "development"
	}
	if c.Log.MaxSize == 0 {
		c.Log.MaxSize = 100
	}
	if c.Log.MaxAge == 0 {
		c.Log.MaxAge = 30
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 5
	}

	if c.Upload.Dir == "" {
		c.Upload.Dir = "./uploads"
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		c.Upload.AllowedExtensions = []string{".jpg", ".jpeg", ".png"}
	}
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Redis.TTLSeconds) * time.Second
}

func (c *Config) TokenLifetime() time.Duration {
	return time.Duration(c.JWT.ExpireHours) * time.Hour
}

func (c *Config) IsAllowedUpload(ext string) bool {
	ext = strings.ToLower(ext)
	for _, allowExt := range c.Upload.AllowedExtensions {
		if ext == strings.ToLower(allowExt) {
			return true
		}
	}
	return false
}
