package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-shop-api/internal/model"
)

type PostgresCartRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresCartRepository(pool *pgxpool.Pool) *PostgresCartRepository {
	return &PostgresCartRepository{pool: pool}
}

func (r *PostgresCartRepository) Items(ctx context.Context, userID string) ([]model.CartLine, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT product_id, quantity FROM cart_items
		 WHERE user_id = $1 ORDER BY added_at, product_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	lines := make([]model.CartLine, 0)
	for rows.Next() {
		var line model.CartLine
		if err := rows.Scan(&line.ProductID, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *PostgresCartRepository) AddItem(ctx context.Context, userID string, productID string, qty int, maxQty int) (int, error) {
	if qty > maxQty {
		return 0, model.ErrInsufficientStock
	}

	var quantity int
	err := r.pool.QueryRow(ctx,
		`INSERT INTO cart_items (user_id, product_id, quantity, added_at)
		 VALUES ($1, $2, $3, $5)
		 ON CONFLICT (user_id, product_id)
		 DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		 WHERE cart_items.quantity <= $4 - EXCLUDED.quantity
		 RETURNING quantity`,
		userID, productID, qty, maxQty, time.Now().UTC()).Scan(&quantity)

	// The conditional update matched nothing: the line exists and would overflow.
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, model.ErrInsufficientStock
	}
	if isForeignKeyViolation(err) {
		return 0, model.ErrProductNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("add cart item: %w", err)
	}
	return quantity, nil
}

func (r *PostgresCartRepository) SetQuantity(ctx context.Context, userID string, productID string, qty int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE user_id = $1 AND product_id = $2`,
		userID, productID, qty)
	if err != nil {
		return fmt.Errorf("set cart item quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}
	return nil
}

func (r *PostgresCartRepository) RemoveItem(ctx context.Context, userID string, productID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}
	return nil
}

func (r *PostgresCartRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
