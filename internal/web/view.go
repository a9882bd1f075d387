package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates はバイナリに埋め込まれた画面テンプレートを読み込みます。
// 返り値は gin の SetHTMLTemplate にそのまま渡せます。
func Templates() (*template.Template, error) {
	return template.ParseFS(templatesFS, "templates/*.html")
}

type loginView struct {
	Error     string
	CSRFToken string
}

type homeView struct {
	Username string
	Books    []BookItem
}

type bookView struct {
	Title   string
	Author  string
	Content string
}

// BookItem は一覧画面に表示する1冊分の情報です。
type BookItem struct {
	ID     int64
	Title  string
	Author string
}
