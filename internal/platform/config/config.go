package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// Database設定
	Database DatabaseConfig

	// API認証
	APIToken string

	// HTTPサーバ設定
	HTTPPort int

	// ログ設定
	LogLevel  string
	LogFormat string

	// シートブリッジ（レガシーストア）設定
	SheetsBridge SheetsBridgeConfig

	// 同期処理設定
	Sync SyncConfig
}

// DatabaseConfig はデータベース接続設定
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// SheetsBridgeConfig はスプレッドシートAPIブリッジの接続設定
type SheetsBridgeConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// SyncConfig は同期ジョブ処理のチューニング設定
type SyncConfig struct {
	// MaxAttempts はジョブが終端FAILEDになるまでの最大試行回数
	MaxAttempts int
	// BatchLimit は1パスで選択するジョブ数の上限
	BatchLimit int
	// ReconcileSampleSize は照合サンプリングのデフォルト件数
	ReconcileSampleSize int
	// WorkspaceCacheTTL はワークスペース設定キャッシュの有効期間
	WorkspaceCacheTTL time.Duration
}

// Load は環境変数または.envファイルから設定を読み込みます
func Load(envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "sheetsync"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "sheetsync"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		APIToken:  getEnv("SHEETSYNC_API_TOKEN", ""),
		HTTPPort:  getEnvAsInt("SHEETSYNC_HTTP_PORT", 8080),
		LogLevel:  getEnv("SHEETSYNC_LOG_LEVEL", "info"),
		LogFormat: getEnv("SHEETSYNC_LOG_FORMAT", "json"),
		SheetsBridge: SheetsBridgeConfig{
			BaseURL: getEnv("SHEETS_BRIDGE_URL", ""),
			Token:   getEnv("SHEETS_BRIDGE_TOKEN", ""),
			Timeout: time.Duration(getEnvAsInt("SHEETS_BRIDGE_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Sync: SyncConfig{
			MaxAttempts:         getEnvAsInt("SYNC_MAX_ATTEMPTS", 5),
			BatchLimit:          getEnvAsInt("SYNC_BATCH_LIMIT", 10),
			ReconcileSampleSize: getEnvAsInt("SYNC_RECONCILE_SAMPLE_SIZE", 50),
			WorkspaceCacheTTL:   time.Duration(getEnvAsInt("SYNC_WORKSPACE_CACHE_TTL_SECONDS", 60)) * time.Second,
		},
	}

	return cfg, nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
