// Package web は書籍カタログの画面ハンドラーを提供します。
package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/book-aui/internal/auth"
	"github.com/yourusername/book-aui/internal/store"
)

// 認証失敗時のメッセージは、ユーザー名不在とパスワード不一致で
// 同一でなければなりません（ユーザー名の列挙を防ぐため）。
const genericLoginError = "Invalid credentials"

// フォーム検証失敗（CSRFトークン不一致・欠落、フィールド欠落）時のメッセージ。
const genericFormError = "Invalid request, please try again"

// Store は画面ハンドラーが必要とする問い合わせ群です。
type Store interface {
	FindAccountByUsername(ctx context.Context, username string) (*store.Account, error)
	ListBooks(ctx context.Context) ([]store.BookSummary, error)
	FindBookByID(ctx context.Context, id int64) (*store.Book, error)
}

// Handlers は画面ハンドラーと依存オブジェクトをまとめた構造体です。
type Handlers struct {
	store  Store
	auth   *auth.Manager
	logger *zap.Logger
}

// NewHandlers は画面ハンドラー群を作成します。
func NewHandlers(st Store, authManager *auth.Manager, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		store:  st,
		auth:   authManager,
		logger: logger,
	}
}

// ShowLogin は GET /login のハンドラーです。
// 描画ごとに新しい CSRF トークンを発行してフォームに埋め込みます。
func (h *Handlers) ShowLogin(c *gin.Context) {
	h.renderLogin(c, http.StatusOK, "")
}

// SubmitLogin は POST /login のハンドラーです。
// CSRF トークンとフォームフィールドの検証はストアへの問い合わせより前に行います。
func (h *Handlers) SubmitLogin(c *gin.Context) {
	if !h.auth.VerifyFormCSRF(c) {
		h.renderLogin(c, http.StatusBadRequest, genericFormError)
		return
	}

	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		h.renderLogin(c, http.StatusBadRequest, genericFormError)
		return
	}

	account, err := h.store.FindAccountByUsername(c.Request.Context(), username)
	if err != nil {
		h.logger.Error("account lookup failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	// アカウント不在でもダミーハッシュとの照合が走るため、
	// 不在とパスワード不一致は応答からもタイミングからも区別できない
	hash := ""
	if account != nil {
		hash = account.PasswordHash
	}
	if !auth.VerifyPassword(hash, password) {
		h.renderLogin(c, http.StatusUnauthorized, genericLoginError)
		return
	}

	if err := h.auth.Establish(c, account.Username); err != nil {
		h.logger.Error("failed to establish session", zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	// 303 にすることで / の再読み込みが認証情報を再送しない
	c.Redirect(http.StatusSeeOther, "/")
}

// ListBooks は GET / のハンドラーです。認証済みであることが前提です
// （RequireLogin ミドルウェアの内側に配線してください）。
func (h *Handlers) ListBooks(c *gin.Context) {
	books, err := h.store.ListBooks(c.Request.Context())
	if err != nil {
		h.logger.Error("book listing failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	items := make([]BookItem, 0, len(books))
	for _, b := range books {
		items = append(items, BookItem{ID: b.ID, Title: b.Title, Author: b.Author})
	}

	c.HTML(http.StatusOK, "home.html", homeView{
		Username: c.GetString(auth.ContextUserKey),
		Books:    items,
	})
}

// ShowBook は GET /book/:id のハンドラーです。認証済みであることが前提です。
// 存在しない id はサーバーエラーではなく not-found ページとして扱います。
func (h *Handlers) ShowBook(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.HTML(http.StatusOK, "notfound.html", nil)
		return
	}

	book, err := h.store.FindBookByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("book lookup failed", zap.Int64("bookId", id), zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if book == nil {
		c.HTML(http.StatusOK, "notfound.html", nil)
		return
	}

	c.HTML(http.StatusOK, "book.html", bookView{
		Title:   book.Title,
		Author:  book.Author,
		Content: book.Content,
	})
}

// Logout は GET /logout のハンドラーです。
// 事前の認証状態に関わらずセッションを破棄してログイン画面へ戻します。
func (h *Handlers) Logout(c *gin.Context) {
	if err := h.auth.Clear(c); err != nil {
		h.logger.Error("failed to clear session", zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	c.Redirect(http.StatusFound, auth.LoginPath)
}

func (h *Handlers) renderLogin(c *gin.Context, status int, errorMessage string) {
	token, err := h.auth.IssueCSRFToken(c)
	if err != nil {
		h.logger.Error("failed to issue csrf token", zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	c.HTML(status, "login.html", loginView{
		Error:     errorMessage,
		CSRFToken: token,
	})
}
