package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnknownProductName — имя позиции, если сервер его не прислал.
const UnknownProductName = "Unknown Product"

// CartItem — позиция корзины. ProductID всегда канонический.
type CartItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

// Subtotal — price × quantity, округлённая до копеек.
func (it CartItem) Subtotal() float64 { return ItemsTotal([]CartItem{it}) }

// Cart — корзина пользователя. Порядок позиций — порядок добавления;
// на один productId приходится не более одной позиции.
type Cart struct {
	UserID    string     `json:"userId,omitempty"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt,omitempty"`
}

// NewCart — пустая корзина пользователя.
func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Items: []CartItem{}}
}

// IsEmpty — в корзине нет позиций.
func (c *Cart) IsEmpty() bool { return c == nil || len(c.Items) == 0 }

// Find — индекс позиции по productId или -1.
func (c *Cart) Find(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add — слияние: если позиция с таким productId есть, увеличиваем количество,
// иначе добавляем в конец. Имя/цена/картинка существующей позиции не меняются.
func (c *Cart) Add(item CartItem) {
	if i := c.Find(item.ProductID); i >= 0 {
		c.Items[i].Quantity += item.Quantity
		return
	}
	c.Items = append(c.Items, item)
}

// SetQuantity — абсолютное количество для позиции.
func (c *Cart) SetQuantity(productID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	i := c.Find(productID)
	if i < 0 {
		return ErrItemNotFound
	}
	c.Items[i].Quantity = quantity
	return nil
}

// Remove — удаляет позицию; false, если её не было.
func (c *Cart) Remove(productID string) bool {
	i := c.Find(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// Total — сумма price × quantity, округлённая до копеек.
func (c *Cart) Total() float64 {
	if c == nil {
		return 0
	}
	return ItemsTotal(c.Items)
}

// Clone — независимая копия корзины.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	cloned := *c
	cloned.Items = CloneItems(c.Items)
	return &cloned
}

// ItemsTotal — сумма по позициям в десятичной арифметике.
func ItemsTotal(items []CartItem) float64 {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	total, _ := sum.Round(2).Float64()
	return total
}

// CloneItems — копия среза позиций (nil остаётся пустым срезом).
func CloneItems(items []CartItem) []CartItem {
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}
