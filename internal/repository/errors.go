package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound — запрошенной строки нет в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrEmptyBatch — загрузчику передали пустой набор строк.
	ErrEmptyBatch = errors.New("empty batch")
)

// IsUniqueViolation — нарушение уникального ограничения PostgreSQL.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolation — нарушение внешнего ключа PostgreSQL.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
