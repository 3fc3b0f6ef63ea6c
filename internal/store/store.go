// Package store is the postgres persistence layer for orders and
// notification events.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/khalidIbrahima/kstores-sub002/internal/models"
)

type Store struct {
	db *gorm.DB
}

// Open connects to postgres and makes sure the tables exist.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.NotificationEvent{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an already-open gorm handle.
func NewWithDB(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	if order == nil || order.ID == "" {
		return errors.New("order must have an id")
	}
	normalizeContact(order)
	if result := s.db.WithContext(ctx).Create(order); result.Error != nil {
		return fmt.Errorf("create order %s: %w", order.ID, result.Error)
	}
	return nil
}

// GetOrder returns nil, nil when no order has the given id.
func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	result := s.db.WithContext(ctx).First(&order, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, fmt.Errorf("load order %s: %w", id, result.Error)
	}
	normalizeContact(&order)
	return &order, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id, newStatus string) error {
	result := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", newStatus)
	if result.Error != nil {
		return fmt.Errorf("update status of order %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("order %s not found", id)
	}
	return nil
}

// InsertNotification appends a notification event. Events are never
// updated or deleted here.
func (s *Store) InsertNotification(ctx context.Context, event *models.NotificationEvent) error {
	if result := s.db.WithContext(ctx).Create(event); result.Error != nil {
		return fmt.Errorf("insert notification event: %w", result.Error)
	}
	return nil
}

func (s *Store) ListNotificationsByType(ctx context.Context, eventType string) ([]models.NotificationEvent, error) {
	var events []models.NotificationEvent
	result := s.db.WithContext(ctx).
		Where("type = ?", eventType).
		Order("created_at DESC").
		Find(&events)
	if result.Error != nil {
		return nil, fmt.Errorf("list %s notifications: %w", eventType, result.Error)
	}
	return events, nil
}

// normalizeContact cleans the optional checkout contact fields once, at
// the storage boundary, so the rest of the code can rely on "empty means
// absent" without re-trimming.
func normalizeContact(order *models.Order) {
	order.Shipping.Email = strings.TrimSpace(order.Shipping.Email)
	order.Shipping.Phone = strings.TrimSpace(order.Shipping.Phone)
	order.Shipping.Name = strings.TrimSpace(order.Shipping.Name)
}
