// Package repository реализует хранилище данных на основе PostgreSQL
// для управления пользователями, курсами и записями о покупках.
// Предоставляет методы создания, чтения, обновления и удаления записей.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с пользователями, курсами и покупками.
// Экземпляр создается один раз при старте приложения и передается
// компонентам явно.
type Storage struct {
	DB *sql.DB
}

var (
	connectOnce sync.Once
	shared      *Storage
	sharedErr   error
)

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// Connect возвращает общий экземпляр хранилища, создавая подключение
// только при первом вызове. Повторные вызовы возвращают тот же пул.
func Connect(storageConnectionString string) (*Storage, error) {
	connectOnce.Do(func() {
		shared, sharedErr = New(storageConnectionString)
	})
	return shared, sharedErr
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'subscriptions'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table subscriptions missing or query error: %w", err)
	}
	return nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}
