// Package repository содержит реализацию доступа к данным в PostgreSQL.
// Записи заказов, услуг и уведомлений перенесены из прежнего документного
// хранилища и лежат в JSONB как есть, включая разнородные метки времени.
package repository

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"github.com/veloxhost/dashboard-system/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrAlertNotFound возвращается, если уведомление не найдено у пользователя.
var ErrAlertNotFound = errors.New("alert not found")

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// withRetry повторяет операцию при временных ошибках: сбоях сериализации,
// дедлоках и обрывах соединения.
func (r *PostgresRepository) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(200*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected {
				return retry.RetryableError(err)
			}
		}

		if isConnectionError(err) {
			return retry.RetryableError(err)
		}

		return err
	})
}

func isConnectionError(err error) bool {
	// Упрощенная проверка на ошибки соединения
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// GetOrdersByUser возвращает заказы пользователя. Порядок не гарантируется:
// агрегатор фильтрует и сортирует сам.
func (r *PostgresRepository) GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	var orders []model.Order

	err := r.withRetry(ctx, func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, user_id, doc FROM orders WHERE user_id = $1`,
			userID,
		)
		if err != nil {
			return fmt.Errorf("select orders: %w", err)
		}
		defer rows.Close()

		orders = orders[:0]
		for rows.Next() {
			var (
				id  string
				uid int64
				doc []byte
			)
			if err := rows.Scan(&id, &uid, &doc); err != nil {
				return fmt.Errorf("scan order: %w", err)
			}

			var o model.Order
			if err := json.Unmarshal(doc, &o); err != nil {
				return fmt.Errorf("decode order %s: %w", id, err)
			}
			// Колонки авторитетнее полей документа.
			o.ID = id
			o.UserID = uid

			orders = append(orders, o)
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows error: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return orders, nil
}

// GetServicesByUser возвращает услуги пользователя.
func (r *PostgresRepository) GetServicesByUser(ctx context.Context, userID int64) ([]model.Service, error) {
	var services []model.Service

	err := r.withRetry(ctx, func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, user_id, doc FROM services WHERE user_id = $1`,
			userID,
		)
		if err != nil {
			return fmt.Errorf("select services: %w", err)
		}
		defer rows.Close()

		services = services[:0]
		for rows.Next() {
			var (
				id  string
				uid int64
				doc []byte
			)
			if err := rows.Scan(&id, &uid, &doc); err != nil {
				return fmt.Errorf("scan service: %w", err)
			}

			var s model.Service
			if err := json.Unmarshal(doc, &s); err != nil {
				return fmt.Errorf("decode service %s: %w", id, err)
			}
			s.ID = id
			s.UserID = uid

			services = append(services, s)
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows error: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return services, nil
}

// GetAlertsByUser возвращает уведомления пользователя, свежие первыми.
// Флаг прочтения хранится в отдельной колонке: он изменяемый и не должен
// зависеть от формы перенесённого документа.
func (r *PostgresRepository) GetAlertsByUser(ctx context.Context, userID int64, limit int) ([]model.Alert, error) {
	var alerts []model.Alert

	err := r.withRetry(ctx, func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, user_id, read, doc
			 FROM alerts
			 WHERE user_id = $1
			 ORDER BY created_at DESC
			 LIMIT $2`,
			userID, limit,
		)
		if err != nil {
			return fmt.Errorf("select alerts: %w", err)
		}
		defer rows.Close()

		alerts = alerts[:0]
		for rows.Next() {
			var (
				id   string
				uid  int64
				read bool
				doc  []byte
			)
			if err := rows.Scan(&id, &uid, &read, &doc); err != nil {
				return fmt.Errorf("scan alert: %w", err)
			}

			var a model.Alert
			if err := json.Unmarshal(doc, &a); err != nil {
				return fmt.Errorf("decode alert %s: %w", id, err)
			}
			a.ID = id
			a.UserID = uid
			a.Read = read

			alerts = append(alerts, a)
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows error: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return alerts, nil
}

// MarkAlertRead помечает уведомление пользователя прочитанным.
// Переход монотонный, обратного нет; повтор после обрыва связи безопасен.
func (r *PostgresRepository) MarkAlertRead(ctx context.Context, userID int64, alertID string) error {
	return r.withRetry(ctx, func(ctx context.Context) error {
		cmdTag, err := r.pool.Exec(ctx,
			`UPDATE alerts SET read = TRUE WHERE id = $1 AND user_id = $2`,
			alertID, userID,
		)
		if err != nil {
			return fmt.Errorf("mark alert read: %w", err)
		}

		if cmdTag.RowsAffected() == 0 {
			return ErrAlertNotFound
		}

		return nil
	})
}

// GetExpiringServices возвращает услуги с датой окончания в интервале
// (from, to]. Используется фоновой задачей напоминаний о продлении.
func (r *PostgresRepository) GetExpiringServices(ctx context.Context, from, to time.Time) ([]model.Service, error) {
	var services []model.Service

	err := r.withRetry(ctx, func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, user_id, doc
			 FROM services
			 WHERE expires_at > $1 AND expires_at <= $2`,
			from, to,
		)
		if err != nil {
			return fmt.Errorf("select expiring services: %w", err)
		}
		defer rows.Close()

		services = services[:0]
		for rows.Next() {
			var (
				id  string
				uid int64
				doc []byte
			)
			if err := rows.Scan(&id, &uid, &doc); err != nil {
				return fmt.Errorf("scan service: %w", err)
			}

			var s model.Service
			if err := json.Unmarshal(doc, &s); err != nil {
				return fmt.Errorf("decode service %s: %w", id, err)
			}
			s.ID = id
			s.UserID = uid

			services = append(services, s)
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows error: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return services, nil
}

// CreateAlert сохраняет уведомление и возвращает признак того, что запись
// новая. Повторная вставка с тем же идентификатором игнорируется — так
// фоновая задача не плодит дубликаты напоминаний.
func (r *PostgresRepository) CreateAlert(ctx context.Context, a model.Alert) (bool, error) {
	doc, err := json.Marshal(a)
	if err != nil {
		return false, fmt.Errorf("encode alert: %w", err)
	}

	var inserted bool
	err = r.withRetry(ctx, func(ctx context.Context) error {
		cmdTag, err := r.pool.Exec(ctx,
			`INSERT INTO alerts (id, user_id, read, doc) VALUES ($1, $2, FALSE, $3)
			 ON CONFLICT (id) DO NOTHING`,
			a.ID, a.UserID, doc,
		)
		if err != nil {
			return fmt.Errorf("insert alert: %w", err)
		}

		inserted = cmdTag.RowsAffected() == 1
		return nil
	})
	if err != nil {
		return false, err
	}

	return inserted, nil
}
