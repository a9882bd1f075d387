package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSeedIfEmptyIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SeedIfEmpty(ctx, "studentaui", "hash-1"))
	// 2回目は別のユーザー名を渡しても何も挿入されない
	require.NoError(t, s.SeedIfEmpty(ctx, "someoneelse", "hash-2"))

	account, err := s.FindAccountByUsername(ctx, "studentaui")
	require.NoError(t, err)
	require.NotNil(t, account)
	require.Equal(t, "hash-1", account.PasswordHash)

	other, err := s.FindAccountByUsername(ctx, "someoneelse")
	require.NoError(t, err)
	require.Nil(t, other, "second seed must not insert another account")

	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 3)
}

func TestListBooksReturnsSeedRowsInOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SeedIfEmpty(ctx, "studentaui", "hash"))

	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 3)

	titles := []string{books[0].Title, books[1].Title, books[2].Title}
	require.Equal(t, []string{"Pride and Prejudice", "1984", "To Kill a Mockingbird"}, titles)
	require.Equal(t, "Jane Austen", books[0].Author)
	require.Equal(t, "George Orwell", books[1].Author)
	require.Equal(t, "Harper Lee", books[2].Author)
}

func TestFindBookByID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SeedIfEmpty(ctx, "studentaui", "hash"))

	book, err := s.FindBookByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, book)
	require.Equal(t, "Pride and Prejudice", book.Title)
	require.Equal(t, "Jane Austen", book.Author)
	require.NotEmpty(t, book.Content)
}

func TestFindBookByIDAbsent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SeedIfEmpty(ctx, "studentaui", "hash"))

	book, err := s.FindBookByID(ctx, 99)
	require.NoError(t, err)
	require.Nil(t, book)
}

func TestFindAccountByUsernameAbsent(t *testing.T) {
	s := openTestStore(t)

	account, err := s.FindAccountByUsername(context.Background(), "nobody")
	require.NoError(t, err)
	require.Nil(t, account)
}
