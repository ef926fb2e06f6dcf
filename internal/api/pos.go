package api

import (
	"context"
	"fmt"

	"github.com/gugverein/portal/internal/model"
)

// Articles fetches the point-of-sale catalog.
func (c *Client) Articles(ctx context.Context) ([]model.Article, error) {
	var articles []model.Article
	if err := c.Get(ctx, "/gug/v1/pos/articles", &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// CreateArticle adds a catalog item.
func (c *Client) CreateArticle(ctx context.Context, a model.Article) error {
	return c.Post(ctx, "/gug/v1/pos/articles", a, nil)
}

// UpdateArticle updates a catalog item.
func (c *Client) UpdateArticle(ctx context.Context, id int, a model.Article) error {
	return c.Post(ctx, fmt.Sprintf("/gug/v1/pos/articles/%d", id), a, nil)
}

// CreateOrder submits a point-of-sale order. The server computes the
// total; the returned order carries the authoritative amount.
func (c *Client) CreateOrder(ctx context.Context, items []model.OrderItem) (*model.Order, error) {
	body := struct {
		Items []model.OrderItem `json:"items"`
	}{Items: items}

	var order model.Order
	if err := c.Post(ctx, "/gug/v1/pos/orders", body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Orders fetches past orders.
func (c *Client) Orders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := c.Get(ctx, "/gug/v1/pos/orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// DailyReport fetches today's sales summary.
func (c *Client) DailyReport(ctx context.Context) (*model.DailyReport, error) {
	var report model.DailyReport
	if err := c.Get(ctx, "/gug/v1/pos/reports/daily", &report); err != nil {
		return nil, err
	}
	return &report, nil
}
