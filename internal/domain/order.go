package domain

// Order records a confirmed purchase. ProductName is a denormalized
// snapshot taken at confirmation time so the order survives later
// product removal.
type Order struct {
	ID          string  `json:"-" db:"id"`
	UserID      int64   `json:"user_id" db:"user_id"`
	Username    *string `json:"username" db:"username"`
	ProductID   string  `json:"product_id" db:"product_id"`
	ProductName string  `json:"product_name" db:"product_name"`
}
