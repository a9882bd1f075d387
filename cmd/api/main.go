// Package main はカタログサーバーのエントリーポイントです。
package main

import (
	"context"
	"crypto/rand"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/book-aui/internal/auth"
	"github.com/yourusername/book-aui/internal/config"
	"github.com/yourusername/book-aui/internal/store"
	"github.com/yourusername/book-aui/internal/web"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// 構造化ロガーの初期化
	logger, err := newLogger(cfg.GinMode)
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// レコードストアを開き、初期データを投入する（冪等。起動のたびに呼んでよい）
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("path", cfg.DatabasePath), zap.Error(err))
	}
	defer func() { _ = st.Close() }()

	passwordHash, err := auth.HashPassword(cfg.SeedPassword)
	if err != nil {
		logger.Fatal("failed to hash seed password", zap.Error(err))
	}
	if err := st.SeedIfEmpty(context.Background(), cfg.SeedUsername, passwordHash); err != nil {
		logger.Fatal("failed to seed store", zap.Error(err))
	}

	router, err := newRouter(cfg, st, logger)
	if err != nil {
		logger.Fatal("failed to build router", zap.Error(err))
	}

	// サーバーの起動
	addr := ":" + cfg.Port
	logger.Info("starting catalog server", zap.String("addr", addr), zap.String("mode", cfg.GinMode))
	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// newRouter はミドルウェア・セッションストア・画面ハンドラーを配線した
// gin ルーターを作成します。
func newRouter(cfg *config.Config, st *store.Store, logger *zap.Logger) (*gin.Engine, error) {
	router := gin.New()
	router.Use(web.RequestLogger(logger))
	router.Use(gin.Recovery())

	// 画面テンプレートの読み込み（バイナリ埋め込み）
	templates, err := web.Templates()
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(templates)

	// セッションストアの設定。セッション本体はサーバー側（メモリ）に保持し、
	// クッキーには署名済みのセッションIDのみを載せる。ログアウトで
	// サーバー側の記録が消えるため、古いクッキーの再送では復元できない
	secret, err := sessionSecret(cfg, logger)
	if err != nil {
		return nil, err
	}
	sessionStore := memstore.NewStore(secret)
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   0, // ブラウザセッション限り。サーバー側の失効処理は持たない
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteStrictMode,
	})
	router.Use(sessions.Sessions(auth.SessionCookieName, sessionStore))

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// ルーティングの設定
	setupRoutes(router, st, logger)

	return router, nil
}

// sessionSecret はクッキー署名鍵を返します。未設定の場合はランダム生成するため、
// プロセス再起動で既存セッションは失効します（開発時のみ許容される挙動）。
func sessionSecret(cfg *config.Config, logger *zap.Logger) ([]byte, error) {
	if cfg.SessionSecret != "" {
		return []byte(cfg.SessionSecret), nil
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	logger.Warn("SESSION_SECRET not set, generated a random per-process secret")
	return secret, nil
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "book-aui",
		"version": "0.1.0",
	})
}

// setupRoutes は画面ハンドラーと認証周りの配線を行います。
func setupRoutes(router *gin.Engine, st *store.Store, logger *zap.Logger) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	authManager := auth.NewManager(logger)
	handlers := web.NewHandlers(st, authManager, logger)

	// ログイン前でも到達できるページ
	router.GET("/login", handlers.ShowLogin)
	router.POST("/login", handlers.SubmitLogin)
	router.GET("/logout", handlers.Logout)

	// 保護対象のページ。未認証は /login へリダイレクトされる
	protected := router.Group("")
	protected.Use(authManager.RequireLogin())
	{
		protected.GET("/", handlers.ListBooks)
		protected.GET("/book/:id", handlers.ShowBook)
	}
}

func newLogger(mode string) (*zap.Logger, error) {
	if mode == gin.ReleaseMode {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
