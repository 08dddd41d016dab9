package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ProductRef — ссылка на товар в одной из допустимых форм:
// RawID (голый идентификатор) или ProductDoc (объект с полем _id и/или id).
// Ветвление по форме выполняет только Normalize.
type ProductRef interface {
	productRef()
}

// RawID — идентификатор товара в виде строки.
type RawID string

func (RawID) productRef() {}

// ProductDoc — товар в виде документа. Поле _id приходит из документного хранилища,
// id — из каталога; заполнено может быть любое из них.
type ProductDoc struct {
	DocID string   `json:"_id,omitempty"`
	ID    string   `json:"id,omitempty"`
	Name  string   `json:"name,omitempty"`
	Price *float64 `json:"price,omitempty"`
	Image string   `json:"image,omitempty"`
}

func (ProductDoc) productRef() {}

// Normalize — приводит ссылку на товар к каноническому идентификатору.
// RawID возвращается как есть; у ProductDoc приоритет у _id, затем id.
// nil, пустой RawID и документ без обоих полей — ErrInvalidReference.
func Normalize(ref ProductRef) (string, error) {
	switch r := ref.(type) {
	case RawID:
		if strings.TrimSpace(string(r)) == "" {
			return "", fmt.Errorf("%w: empty id", ErrInvalidReference)
		}
		return string(r), nil
	case ProductDoc:
		if r.DocID != "" {
			return r.DocID, nil
		}
		if r.ID != "" {
			return r.ID, nil
		}
		return "", fmt.Errorf("%w: object has neither _id nor id", ErrInvalidReference)
	case *ProductDoc:
		if r == nil {
			return "", fmt.Errorf("%w: nil reference", ErrInvalidReference)
		}
		return Normalize(*r)
	case nil:
		return "", fmt.Errorf("%w: nil reference", ErrInvalidReference)
	default:
		return "", fmt.Errorf("%w: unsupported reference %T", ErrInvalidReference, ref)
	}
}

// DecodeProductRef — разбирает ссылку на товар из JSON:
// строка и число считаются RawID, объект — ProductDoc.
// Пустое значение и null возвращают (nil, nil).
func DecodeProductRef(raw json.RawMessage) (ProductRef, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidReference, err)
		}
		return RawID(s), nil
	case '{':
		var doc ProductDoc
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidReference, err)
		}
		return doc, nil
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidReference, err)
		}
		return RawID(n.String()), nil
	}
}
