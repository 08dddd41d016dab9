package cli

import (
	"errors"

	"github.com/Gunvolt24/voltcart/internal/domain"
)

// Коды выхода cartctl.
const (
	ExitSuccess     = 0
	ExitFailure     = 1 // операция отвергнута (валидация, пустая корзина, запрещённый переход)
	ExitAuth        = 3 // нет или недействителен токен, нет прав
	ExitUnreachable = 4 // сервер недоступен
)

// ExitCode — код выхода по ошибке команды.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrForbidden):
		return ExitAuth
	case errors.Is(err, domain.ErrUnreachable):
		return ExitUnreachable
	default:
		return ExitFailure
	}
}
