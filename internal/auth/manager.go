// Package auth は認証・認可機能を提供します。
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	SessionCookieName = "bookaui_session"
	sessionKeyUser    = "auth_user"
	sessionKeyCSRF    = "csrf_token"

	csrfFormField = "csrf_token"
)

// LoginPath は未認証のリクエストをリダイレクトするログイン画面のパスです。
const LoginPath = "/login"

// ContextUserKey は、ハンドラー間でログイン済みユーザー名を共有するためのキーです。
const ContextUserKey = "auth.user"

// dummyHash は存在しないユーザーに対する検証で使用する bcrypt ハッシュです。
// どの平文とも一致しませんが、実在ユーザーと同等の計算コストを発生させます。
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Manager はセッションゲートと CSRF 検証をまとめた構造体です。
type Manager struct {
	logger *zap.Logger
}

// NewManager は認証マネージャーを作成します。
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{logger: logger}
}

// HashPassword は平文パスワードを bcrypt でハッシュ化します。
func HashPassword(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyPassword は平文パスワードを bcrypt ハッシュと照合します。
// hash が空（ユーザー不在）の場合もダミーハッシュとの照合を行い、
// 応答時間からユーザー名の存在有無を推測できないようにします。
func VerifyPassword(hash, plaintext string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(plaintext))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// Establish は認証成功後にセッションへユーザー名を記録します。
// 検証に成功した場合にのみ呼び出してください。
func (m *Manager) Establish(c *gin.Context, username string) error {
	session := sessions.Default(c)
	session.Set(sessionKeyUser, username)
	// ログインフォーム用に発行したトークンはここで役目を終える
	session.Delete(sessionKeyCSRF)
	return session.Save()
}

// Clear はセッションを破棄します。以降の IsAuthenticated は false を返します。
func (m *Manager) Clear(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	return session.Save()
}

// CurrentUser はセッションに記録されたユーザー名を返します。
func (m *Manager) CurrentUser(c *gin.Context) (string, bool) {
	session := sessions.Default(c)
	user, ok := session.Get(sessionKeyUser).(string)
	if !ok || user == "" {
		return "", false
	}
	return user, true
}

// IsAuthenticated はリクエストが認証済みセッションを伴うかどうかを返します。
func (m *Manager) IsAuthenticated(c *gin.Context) bool {
	_, ok := m.CurrentUser(c)
	return ok
}

// RequireLogin はセッションを検証するミドルウェアを返します。
// 未認証のリクエストは保護対象の処理に入る前にログイン画面へリダイレクトされます。
func (m *Manager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := m.CurrentUser(c)
		if !ok {
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// IssueCSRFToken はフォーム描画ごとに新しい CSRF トークンを発行し、
// セッションへ保存した上で返します。
func (m *Manager) IssueCSRFToken(c *gin.Context) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	session := sessions.Default(c)
	session.Set(sessionKeyCSRF, token)
	if err := session.Save(); err != nil {
		return "", err
	}
	return token, nil
}

// VerifyFormCSRF は送信フォームの hidden フィールドをセッション内のトークンと
// 照合します。不一致・欠落はストアへ触れる前に拒否してください。
func (m *Manager) VerifyFormCSRF(c *gin.Context) bool {
	session := sessions.Default(c)
	expected, ok := session.Get(sessionKeyCSRF).(string)
	if !ok || expected == "" {
		m.logger.Warn("csrf token missing from session", zap.String("path", c.Request.URL.Path))
		return false
	}

	received := c.PostForm(csrfFormField)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(received)) != 1 {
		m.logger.Warn("csrf token mismatch", zap.String("path", c.Request.URL.Path))
		return false
	}
	return true
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
