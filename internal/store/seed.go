package store

import (
	"context"
	"fmt"
	"time"
)

type seedBook struct {
	title   string
	author  string
	content string
}

// seedBooks は books テーブルが空のときに投入する初期データです。
var seedBooks = []seedBook{
	{"Pride and Prejudice", "Jane Austen", "Content of Pride and Prejudice..."},
	{"1984", "George Orwell", "Content of 1984..."},
	{"To Kill a Mockingbird", "Harper Lee", "Content of To Kill a Mockingbird..."},
}

// SeedIfEmpty は初期データを投入します。アカウントが1件も存在しない場合のみ
// シードアカウントを、書籍が1件も存在しない場合のみシード書籍を挿入するため、
// プロセス起動のたびに呼び出しても行が重複することはありません。
func (s *Store) SeedIfEmpty(ctx context.Context, username, passwordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var accounts int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&accounts); err != nil {
		return fmt.Errorf("count accounts: %w", err)
	}
	if accounts == 0 {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO accounts (username, password_hash) VALUES (?, ?)`,
			username, passwordHash,
		); err != nil {
			return fmt.Errorf("seed account: %w", err)
		}
	}

	var books int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&books); err != nil {
		return fmt.Errorf("count books: %w", err)
	}
	if books == 0 {
		for _, b := range seedBooks {
			if _, err := s.db.ExecContext(ctx,
				`INSERT INTO books (title, author, content) VALUES (?, ?, ?)`,
				b.title, b.author, b.content,
			); err != nil {
				return fmt.Errorf("seed book %q: %w", b.title, err)
			}
		}
	}

	return nil
}
