// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // HTTPサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// セッション設定
	SessionSecret string // セッションクッキー署名用の秘密鍵（未設定ならプロセスごとにランダム生成）

	// ストレージ設定
	DatabasePath string // SQLiteデータベースファイルのパス

	// シードアカウント設定
	SeedUsername string // 初期投入するアカウントのユーザー名
	SeedPassword string // 初期投入するアカウントの平文パスワード（起動時にハッシュ化）

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{
		Port:    getEnv("PORT", "30083"),
		GinMode: getEnv("GIN_MODE", "debug"),

		SessionSecret: getEnv("SESSION_SECRET", ""),

		DatabasePath: getEnv("DATABASE_PATH", "booksaui.db"),

		SeedUsername: getEnv("SEED_USERNAME", "studentaui"),
		SeedPassword: getEnv("SEED_PASSWORD", "welcome"),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:30083"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	// ローカル開発ではセッション鍵は任意（未設定ならランダム生成される）
	// 本番環境では再起動でセッションが失効しないよう明示的な鍵を必須とする
	if c.GinMode == "release" {
		if c.SessionSecret == "" {
			return fmt.Errorf("SESSION_SECRET is required in release mode")
		}
		if c.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH is required in release mode")
		}
		if c.SeedUsername == "" {
			return fmt.Errorf("SEED_USERNAME is required in release mode")
		}
		if c.SeedPassword == "" {
			return fmt.Errorf("SEED_PASSWORD is required in release mode")
		}
	}

	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
