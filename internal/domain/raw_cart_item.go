package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RawCartItem — позиция корзины в том виде, в каком её вернул бэкенд:
// любое поле может отсутствовать, идентификатор может прийти в любой форме
// (productId строкой/объектом или вложенным product).
type RawCartItem struct {
	ProductID ProductRef
	Product   ProductRef
	Name      *string
	Price     *float64
	Image     *string
	Quantity  *int
}

type rawCartItemWire struct {
	ProductID json.RawMessage `json:"productId"`
	Product   json.RawMessage `json:"product"`
	Name      *string         `json:"name"`
	Price     *float64        `json:"price"`
	Image     *string         `json:"image"`
	Quantity  *int            `json:"quantity"`
}

// UnmarshalJSON — разбор позиции с любым допустимым представлением ссылки на товар.
// Неразбираемая ссылка не ломает разбор: позиция останется без идентификатора
// и будет отброшена при нормализации.
func (r *RawCartItem) UnmarshalJSON(data []byte) error {
	var w rawCartItemWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = RawCartItem{Name: w.Name, Price: w.Price, Image: w.Image, Quantity: w.Quantity}
	r.ProductID, _ = DecodeProductRef(w.ProductID)
	r.Product, _ = DecodeProductRef(w.Product)
	return nil
}

// NormalizeItem — каноническая позиция из сырой.
// Идентификатор: productId, затем вложенный product. Умолчания: name — UnknownProductName,
// price — 0, image — "", quantity — 1.
func NormalizeItem(raw RawCartItem) (CartItem, error) {
	id, err := Normalize(raw.ProductID)
	if err != nil && raw.Product != nil {
		id, err = Normalize(raw.Product)
	}
	if err != nil {
		return CartItem{}, fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}

	item := CartItem{ProductID: id, Name: UnknownProductName, Quantity: 1}
	if raw.Name != nil && strings.TrimSpace(*raw.Name) != "" {
		item.Name = *raw.Name
	}
	if raw.Price != nil && *raw.Price > 0 {
		item.Price = *raw.Price
	}
	if raw.Image != nil {
		item.Image = *raw.Image
	}
	if raw.Quantity != nil && *raw.Quantity >= 1 {
		item.Quantity = *raw.Quantity
	}
	// вложенный документ товара может нести имя/цену/картинку
	if doc, ok := asDoc(raw.Product); ok {
		if raw.Name == nil && doc.Name != "" {
			item.Name = doc.Name
		}
		if raw.Price == nil && doc.Price != nil && *doc.Price > 0 {
			item.Price = *doc.Price
		}
		if raw.Image == nil {
			item.Image = doc.Image
		}
	}
	return item, nil
}

// NormalizeItems — нормализует список; неразрешимые позиции пропускаются и
// возвращаются отдельно, дубликаты productId сливаются по правилу Cart.Add.
func NormalizeItems(raws []RawCartItem) (items []CartItem, dropped []RawCartItem) {
	cart := NewCart("")
	for _, raw := range raws {
		item, err := NormalizeItem(raw)
		if err != nil {
			dropped = append(dropped, raw)
			continue
		}
		cart.Add(item)
	}
	return cart.Items, dropped
}

func asDoc(ref ProductRef) (ProductDoc, bool) {
	switch d := ref.(type) {
	case ProductDoc:
		return d, true
	case *ProductDoc:
		if d != nil {
			return *d, true
		}
	}
	return ProductDoc{}, false
}

// RawFromItem — полная «сырая» позиция из нормализованной.
func RawFromItem(it CartItem) RawCartItem {
	name, price, image, qty := it.Name, it.Price, it.Image, it.Quantity
	return RawCartItem{
		ProductID: RawID(it.ProductID),
		Name:      &name,
		Price:     &price,
		Image:     &image,
		Quantity:  &qty,
	}
}

// RawFromItems — то же для среза.
func RawFromItems(items []CartItem) []RawCartItem {
	out := make([]RawCartItem, 0, len(items))
	for _, it := range items {
		out = append(out, RawFromItem(it))
	}
	return out
}
