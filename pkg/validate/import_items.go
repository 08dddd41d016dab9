package validate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/internal/ports"
)

// InputFormat допустимые значения.
type InputFormat string

const (
	FormatAuto  InputFormat = "auto"
	FormatJSON  InputFormat = "json"
	FormatJSONL InputFormat = "jsonl"
)

// DetectFormat — формат по расширению файла; по умолчанию JSON.
func DetectFormat(path string, format InputFormat) InputFormat {
	if format != FormatAuto && format != "" {
		return format
	}
	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		return FormatJSONL
	}
	return FormatJSON
}

// ImportResult — итог разбора списка позиций.
type ImportResult struct {
	Items   []domain.CartItem
	Valid   int
	Invalid int
}

func (r ImportResult) String() string {
	return fmt.Sprintf("%d valid / %d invalid", r.Valid, r.Invalid)
}

// ImportItems — читает позиции корзины (JSON-массив или JSONL), нормализует
// ссылку на товар и валидирует каждую позицию. Невалидные позиции пропускаются
// и учитываются в Invalid.
func ImportItems(ctx context.Context, validator ports.CheckoutValidator, r io.Reader, format InputFormat) (ImportResult, error) {
	switch format {
	case FormatJSON, FormatAuto, "":
		raw, err := io.ReadAll(r)
		if err != nil {
			return ImportResult{}, fmt.Errorf("read input: %w", err)
		}
		var raws []json.RawMessage
		if err := json.Unmarshal(raw, &raws); err != nil {
			return ImportResult{}, fmt.Errorf("invalid json: %w", err)
		}
		var res ImportResult
		for _, line := range raws {
			res.add(ctx, validator, line)
		}
		return res, nil

	case FormatJSONL:
		var res ImportResult
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			res.add(ctx, validator, line)
		}
		if err := scanner.Err(); err != nil {
			return res, fmt.Errorf("scan: %w", err)
		}
		return res, nil

	default:
		return ImportResult{}, fmt.Errorf("unsupported format: %s", format)
	}
}

func (r *ImportResult) add(ctx context.Context, validator ports.CheckoutValidator, line []byte) {
	item, err := ItemFromJSON(ctx, validator, line)
	if err != nil {
		r.Invalid++
		return
	}
	r.Items = append(r.Items, item)
	r.Valid++
}

// ItemFromJSON — одна позиция: строгий JSON без хвостовых данных, нормализация, валидация.
// Отсутствующее количество — ошибка: импорт не подставляет умолчаний.
func ItemFromJSON(ctx context.Context, validator ports.CheckoutValidator, raw []byte) (domain.CartItem, error) {
	var ri domain.RawCartItem
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&ri); err != nil {
		return domain.CartItem{}, fmt.Errorf("invalid json: %w", err)
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		return domain.CartItem{}, fmt.Errorf("invalid json: trailing data")
	}
	if ri.Quantity == nil {
		return domain.CartItem{}, fmt.Errorf("%w: quantity обязателен", domain.ErrInvalidQuantity)
	}

	item, err := domain.NormalizeItem(ri)
	if err != nil {
		return domain.CartItem{}, err
	}
	item.Quantity = *ri.Quantity
	if err := validator.ValidateItem(ctx, &item); err != nil {
		return domain.CartItem{}, err
	}
	return item, nil
}
