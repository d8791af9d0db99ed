package infrastructure

import (
	"database/sql"
	"time"
)

// OrderModel 对应数据库中的 orders 表。
type OrderModel struct {
	ID               string `gorm:"type:varchar(36);primaryKey"`
	BuyerID          int64  `gorm:"not null;index"`
	ShopID           int64  `gorm:"not null;index"`
	CurrencyID       int64  `gorm:"not null"`
	PaymentType      string `gorm:"type:varchar(20);not null"`
	PayslipReference string `gorm:"type:varchar(255)"`
	Status           string `gorm:"type:varchar(20);not null;index"`
	OrderTotal       float64 `gorm:"type:decimal(12,2);not null"`
	ShippingAddress  string  `gorm:"type:text"`
	InvoiceURL       sql.NullString `gorm:"type:varchar(512)"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Items []OrderItemModel `gorm:"foreignKey:OrderID"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel 对应 order_items 表，插入后不再更新。
type OrderItemModel struct {
	ID        string  `gorm:"type:varchar(36);primaryKey"`
	OrderID   string  `gorm:"type:varchar(36);not null;index"`
	ProductID int64   `gorm:"not null;index"`
	Quantity  int     `gorm:"not null;check:quantity > 0"`
	UnitPrice float64 `gorm:"type:decimal(12,2);not null"`
	LineTotal float64 `gorm:"type:decimal(12,2);not null"`
}

func (OrderItemModel) TableName() string {
	return "order_items"
}

// ProductModel 对应目录侧的 products 表。
// 订单核心只读它的元数据；stock_quantity 只通过 InventoryLedger 的
// 条件更新扣减，没有其他写路径。
type ProductModel struct {
	ID            int64   `gorm:"primaryKey"`
	ShopID        int64   `gorm:"not null;index"`
	CurrencyID    int64   `gorm:"not null"`
	BrandID       int64   `gorm:"index"`
	CategoryID    int64   `gorm:"index"`
	Price         float64 `gorm:"type:decimal(12,2);not null"`
	StockQuantity int     `gorm:"not null;check:stock_quantity >= 0"`
	CreatedBy     int64   `gorm:"not null"`
}

func (ProductModel) TableName() string {
	return "products"
}
