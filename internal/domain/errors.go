package domain

import "errors"

// Базовые (sentinel) ошибки домена. Сравниваются через errors.Is.
var (
	// ErrInvalidReference — ссылку на товар нельзя привести к каноническому идентификатору.
	ErrInvalidReference = errors.New("invalid product reference")
	// ErrInvalidProduct — операция с корзиной получила товар без разрешимого идентификатора.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrInvalidQuantity — количество меньше 1.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrUnauthenticated — нет учётных данных (или сервер их отверг).
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden — учётные данные есть, но прав недостаточно.
	ErrForbidden = errors.New("forbidden")
	// ErrUnreachable — сервер недоступен или вернул ошибку транспорта.
	ErrUnreachable = errors.New("server unreachable")
	// ErrEmptyCart — попытка оформить заказ из пустой корзины.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrItemNotFound — в корзине нет позиции с таким productId.
	ErrItemNotFound = errors.New("cart item not found")
	// ErrOrderNotFound — заказ не найден.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidStatus — неизвестный статус или недопустимый переход.
	ErrInvalidStatus = errors.New("invalid order status")
)
