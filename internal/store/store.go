// Package store は SQLite を利用した書籍カタログの永続化レイヤーを提供します。
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Account はログイン用アカウントの行を表します。
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
}

// Book は書籍の行を表します。
type Book struct {
	ID      int64
	Title   string
	Author  string
	Content string
}

// BookSummary は一覧表示用の書籍情報です（本文は含みません）。
type BookSummary struct {
	ID     int64
	Title  string
	Author string
}

// Store は SQLite データベースへの問い合わせをまとめた構造体です。
type Store struct {
	db *sql.DB
}

// Open はローカルの SQLite データベースファイルを開き（存在しなければ作成し）、
// スキーマを適用した Store を返します。
func Open(path string) (*Store, error) {
	if path == "" {
		path = "booksaui.db"
	}
	d, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, err
	}
	// journal_mode はインメモリ等でサポートされない場合があるためエラーは無視する
	_, _ = d.Exec(`PRAGMA journal_mode=WAL`)
	if _, err := d.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		_ = d.Close()
		return nil, err
	}
	if _, err := d.Exec(`PRAGMA foreign_keys=ON`); err != nil {
		_ = d.Close()
		return nil, err
	}
	if err := createSchema(d); err != nil {
		_ = d.Close()
		return nil, err
	}
	return &Store{db: d}, nil
}

// Close はデータベース接続を閉じます。
func (s *Store) Close() error {
	return s.db.Close()
}

func createSchema(d *sql.DB) error {
	if _, err := d.Exec(`CREATE TABLE IF NOT EXISTS accounts (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        username TEXT UNIQUE NOT NULL,
        password_hash TEXT NOT NULL
    )`); err != nil {
		return fmt.Errorf("create accounts table: %w", err)
	}
	if _, err := d.Exec(`CREATE TABLE IF NOT EXISTS books (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        title TEXT NOT NULL,
        author TEXT NOT NULL,
        content TEXT NOT NULL
    )`); err != nil {
		return fmt.Errorf("create books table: %w", err)
	}
	return nil
}

// FindAccountByUsername はユーザー名でアカウントを検索します。
// 該当行が存在しない場合は (nil, nil) を返します。
func (s *Store) FindAccountByUsername(ctx context.Context, username string) (*Account, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a Account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash FROM accounts WHERE username = ?`, username,
	).Scan(&a.ID, &a.Username, &a.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// ListBooks は全書籍の一覧（id, title, author のみ）を id 昇順で返します。
func (s *Store) ListBooks(ctx context.Context) ([]BookSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT id, title, author FROM books ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BookSummary
	for rows.Next() {
		var b BookSummary
		if err := rows.Scan(&b.ID, &b.Title, &b.Author); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindBookByID は id で書籍を検索します。
// 該当行が存在しない場合は (nil, nil) を返します。
func (s *Store) FindBookByID(ctx context.Context, id int64) (*Book, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var b Book
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, author, content FROM books WHERE id = ?`, id,
	).Scan(&b.ID, &b.Title, &b.Author, &b.Content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
