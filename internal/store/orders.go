package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/safar/coffee-shop/internal/database"
	"github.com/safar/coffee-shop/internal/models"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, user_id, order_number, status, total_amount,
	shipping_name, shipping_phone, address_line1, address_line2, city, state, postal_code, country,
	created_at, updated_at, version`

type CreateOrderRequest struct {
	UserID   string
	Shipping models.ShippingSnapshot
	Items    []LineItem
}

// LineItem is a cart entry already resolved against the catalog.
type LineItem struct {
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

func (li LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// OrderTotal sums unit price times quantity over items.
func OrderTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Total())
	}
	return total
}

func generateOrderNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(id[:12])
}

// Orders owns the orders and order_items tables.
type Orders struct {
	db *sql.DB
}

func NewOrders(db *sql.DB) *Orders {
	return &Orders{db: db}
}

func scanOrder(row rowScanner, order *models.Order) error {
	return row.Scan(
		&order.ID,
		&order.UserID,
		&order.OrderNumber,
		&order.Status,
		&order.TotalAmount,
		&order.Shipping.Name,
		&order.Shipping.Phone,
		&order.Shipping.AddressLine1,
		&order.Shipping.AddressLine2,
		&order.Shipping.City,
		&order.Shipping.State,
		&order.Shipping.PostalCode,
		&order.Shipping.Country,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.Version,
	)
}

// CreateOrder writes the order header and every line item in one
// transaction. The total is computed here from the line items; a failure at
// any point leaves no order behind. Storage faults are returned as
// *database.PersistenceError and are not retried.
func (o *Orders) CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, database.ErrEmptyOrder
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 || item.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("product %d: %w", item.ProductID, database.ErrInvalidLineItem)
		}
	}

	totalAmount := OrderTotal(req.Items)
	order := &models.Order{
		UserID:      req.UserID,
		OrderNumber: generateOrderNumber(),
		Status:      models.OrderStatusPending,
		TotalAmount: totalAmount,
		Shipping:    req.Shipping,
	}

	err := database.WithTransaction(ctx, o.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		s := req.Shipping
		err := tx.QueryRowContext(ctx,
			`INSERT INTO orders (user_id, order_number, status, total_amount,
			     shipping_name, shipping_phone, address_line1, address_line2, city, state, postal_code, country,
			     created_at, updated_at, version)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW(), 1)
			 RETURNING id, created_at, updated_at, version`,
			order.UserID, order.OrderNumber, order.Status, order.TotalAmount,
			s.Name, s.Phone, s.AddressLine1, s.AddressLine2, s.City, s.State, s.PostalCode, s.Country,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt, &order.Version)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		order.Items = make([]models.OrderItem, 0, len(req.Items))
		for _, item := range req.Items {
			orderItem := models.OrderItem{
				OrderID:     order.ID,
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				LineTotal:   item.Total(),
			}

			err := tx.QueryRowContext(ctx,
				`INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity, line_total, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, NOW())
				 RETURNING id, created_at`,
				orderItem.OrderID, orderItem.ProductID, orderItem.ProductName,
				orderItem.UnitPrice, orderItem.Quantity, orderItem.LineTotal,
			).Scan(&orderItem.ID, &orderItem.CreatedAt)
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}

			order.Items = append(order.Items, orderItem)
		}

		return nil
	})
	if err != nil {
		return nil, database.Persistence("create order", err)
	}

	return order, nil
}

func (o *Orders) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	return o.getOrder(ctx, `id = $1`, id)
}

// GetUserOrder is GetOrder restricted to orders owned by userID.
func (o *Orders) GetUserOrder(ctx context.Context, userID string, id int64) (*models.Order, error) {
	return o.getOrder(ctx, `id = $1 AND user_id = $2`, id, userID)
}

func (o *Orders) getOrder(ctx context.Context, where string, args ...any) (*models.Order, error) {
	order := &models.Order{}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + where

	if err := scanOrder(o.db.QueryRowContext(ctx, query, args...), order); err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := o.orderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (o *Orders) orderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	itemsQuery := `
		SELECT id, order_id, product_id, product_name, quantity, unit_price, line_total, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`

	rows, err := o.db.QueryContext(ctx, itemsQuery, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
			&item.LineTotal,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

// ListOrdersCursor pages through a customer's orders, newest first.
func (o *Orders) ListOrdersCursor(ctx context.Context, userID string, cursor string, limit int) (*CursorPage, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		  AND (created_at, id) < ($2, $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4`

	orders, err := o.queryOrders(ctx, query, userID, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		lastOrder := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{
			CreatedAt: lastOrder.CreatedAt,
			ID:        lastOrder.ID,
		})
	}

	return &CursorPage{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// ListOrders is the back-office listing, optionally filtered by status.
func (o *Orders) ListOrders(ctx context.Context, status string, page, pageSize int) (*OffsetPage, error) {
	page, pageSize = NormalizePage(page, pageSize)

	where := ""
	var args []any
	if status != "" {
		where = " WHERE status = $1"
		args = append(args, status)
	}

	var total int64
	if err := o.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	args = append(args, pageSize, (page-1)*pageSize)
	query := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args))

	orders, err := o.queryOrders(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return newOffsetPage(orders, total, page, pageSize), nil
}

func (o *Orders) queryOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := o.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var order models.Order
		if err := scanOrder(rows, &order); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

// UpdateOrderStatus moves an order along its lifecycle. The current row is
// locked while the transition is checked. A positive expectedVersion must
// match the stored version, so an admin acting on a stale view gets
// ErrOptimisticLockFailed instead of silently overwriting a newer status.
func (o *Orders) UpdateOrderStatus(ctx context.Context, id int64, next string, expectedVersion int) (*models.Order, error) {
	if !models.ValidOrderStatus(next) {
		return nil, database.ErrInvalidStatusTransition
	}

	order := &models.Order{}
	err := database.WithRetry(ctx, o.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var current string
		var version int
		err := tx.QueryRowContext(ctx,
			`SELECT status, version FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current, &version)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrOrderNotFound
			}
			return fmt.Errorf("lock order: %w", err)
		}

		if expectedVersion > 0 && version != expectedVersion {
			return database.ErrOptimisticLockFailed
		}
		if !models.CanTransition(current, next) {
			return database.ErrInvalidStatusTransition
		}

		row := tx.QueryRowContext(ctx,
			`UPDATE orders
			 SET status = $1, version = version + 1, updated_at = NOW()
			 WHERE id = $2
			 RETURNING `+orderColumns,
			next, id)
		if err := scanOrder(row, order); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// ClaimNextPendingOrder moves the oldest pending order to processing.
// Concurrent workers skip rows another worker holds, so each order is claimed
// once. Returns ErrOrderNotFound when the queue is empty.
func (o *Orders) ClaimNextPendingOrder(ctx context.Context) (*models.Order, error) {
	order := &models.Order{}

	err := database.WithTransaction(ctx, o.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx,
			`SELECT id
			 FROM orders
			 WHERE status = $1
			 ORDER BY created_at, id
			 FOR UPDATE SKIP LOCKED
			 LIMIT 1`,
			models.OrderStatusPending).Scan(&id)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrOrderNotFound
			}
			return fmt.Errorf("get next pending order: %w", err)
		}

		row := tx.QueryRowContext(ctx,
			`UPDATE orders
			 SET status = $1, version = version + 1, updated_at = NOW()
			 WHERE id = $2
			 RETURNING `+orderColumns,
			models.OrderStatusProcessing, id)
		if err := scanOrder(row, order); err != nil {
			return fmt.Errorf("claim order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}
