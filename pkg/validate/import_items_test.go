package validate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Gunvolt24/voltcart/internal/domain"
)

func TestImportItems_JSONLMixed(t *testing.T) {
	ctx := context.Background()
	v := NewCheckoutValidator()

	input := strings.Join([]string{
		`{"productId":"lamp","name":"Lamp","price":19.99,"quantity":2}`,
		`{"productId":{"_id":"cable"},"quantity":1}`,
		``,
		`{"productId":"fuse","quantity":0}`,
		`{"name":"no id","quantity":1}`,
		`{broken`,
	}, "\n")

	res, err := ImportItems(ctx, v, strings.NewReader(input), FormatJSONL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Valid != 2 || res.Invalid != 3 {
		t.Fatalf("unexpected counters: %s", res)
	}
	if res.Items[0].ProductID != "lamp" || res.Items[1].ProductID != "cable" {
		t.Fatalf("unexpected items: %+v", res.Items)
	}
	if res.Items[1].Name != domain.UnknownProductName {
		t.Fatalf("missing name should default, got %q", res.Items[1].Name)
	}
}

func TestImportItems_JSONArray(t *testing.T) {
	res, err := ImportItems(context.Background(), NewCheckoutValidator(),
		strings.NewReader(`[{"productId":"a","quantity":1},{"productId":"b","quantity":-1}]`), FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.String() != "1 valid / 1 invalid" {
		t.Fatalf("unexpected summary: %s", res)
	}

	if _, err := ImportItems(context.Background(), NewCheckoutValidator(), strings.NewReader(`{`), FormatJSON); err == nil {
		t.Fatalf("expected invalid json error")
	}
}

func TestItemFromJSON_Strict(t *testing.T) {
	ctx := context.Background()
	v := NewCheckoutValidator()

	if _, err := ItemFromJSON(ctx, v, []byte(`{"productId":"a","quantity":1} {}`)); err == nil || !strings.Contains(err.Error(), "trailing data") {
		t.Fatalf("want trailing data error, got %v", err)
	}
	if _, err := ItemFromJSON(ctx, v, []byte(`{"productId":"a"}`)); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("want ErrInvalidQuantity for missing quantity, got %v", err)
	}
}

func TestDetectFormat(t *testing.T) {
	if DetectFormat("items.JSONL", FormatAuto) != FormatJSONL {
		t.Fatalf("jsonl extension not detected")
	}
	if DetectFormat("items.txt", FormatAuto) != FormatJSON {
		t.Fatalf("default must be json")
	}
	if DetectFormat("items.json", FormatJSONL) != FormatJSONL {
		t.Fatalf("explicit format must win")
	}
}
