package model

// Article is a sellable item in the point-of-sale catalog.
// Prices are integer cents; the server computes all totals.
type Article struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Price    int    `json:"price"`
	Category string `json:"category,omitempty"`
	Active   bool   `json:"active"`
}

// OrderItem is one line of a point-of-sale order.
type OrderItem struct {
	ArticleID int    `json:"article_id"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
	Price     int    `json:"price,omitempty"`
}

// Order is a completed point-of-sale transaction.
type Order struct {
	ID        int         `json:"id"`
	Items     []OrderItem `json:"items"`
	Total     int         `json:"total"`
	CreatedAt string      `json:"created_at,omitempty"`
	SellerID  int         `json:"seller_id,omitempty"`
}

// DailyReport summarizes one day of point-of-sale activity.
type DailyReport struct {
	Date       string `json:"date"`
	OrderCount int    `json:"order_count"`
	Total      int    `json:"total"`
}
