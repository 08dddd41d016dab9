package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/Gunvolt24/voltcart/internal/domain"
)

// printer — вывод результата в выбранном формате.
type printer struct {
	format string
	w      io.Writer
	money  *message.Printer
}

func newPrinter(format string, w io.Writer) *printer {
	return &printer{format: format, w: w, money: message.NewPrinter(language.English)}
}

// emit — v в json/yaml, либо text(w) для человекочитаемого вывода.
func (p *printer) emit(v any, text func(w io.Writer)) error {
	switch p.format {
	case "json":
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		// через JSON, чтобы ключи совпадали с json-тегами доменных типов
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		text(p.w)
		return nil
	}
}

// Money — сумма с разделителями разрядов и двумя знаками.
func (p *printer) Money(v float64) string { return p.money.Sprintf("%.2f", v) }

type cartView struct {
	Items []domain.CartItem `json:"items"`
	Total float64           `json:"total"`
}

func viewOf(cart *domain.Cart) cartView {
	if cart == nil || cart.Items == nil {
		return cartView{Items: []domain.CartItem{}}
	}
	return cartView{Items: cart.Items, Total: cart.Total()}
}

func (p *printer) cart(cart *domain.Cart) error {
	v := viewOf(cart)
	return p.emit(v, func(w io.Writer) {
		if len(v.Items) == 0 {
			fmt.Fprintln(w, "cart is empty")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "PRODUCT\tNAME\tQTY\tPRICE\tSUBTOTAL")
		for _, it := range v.Items {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", it.ProductID, it.Name, it.Quantity,
				p.Money(it.Price), p.Money(it.Subtotal()))
		}
		_ = tw.Flush()
		fmt.Fprintf(w, "total: %s\n", p.Money(v.Total))
	})
}

func (p *printer) orders(orders []*domain.Order) error {
	if orders == nil {
		orders = []*domain.Order{}
	}
	return p.emit(orders, func(w io.Writer) {
		if len(orders) == 0 {
			fmt.Fprintln(w, "no orders")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDATE\tSTATUS\tITEMS\tTOTAL")
		for _, o := range orders {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", o.ID, o.Date.Format("2006-01-02 15:04"),
				o.Status, len(o.Items), p.Money(o.Total))
		}
		_ = tw.Flush()
	})
}

func (p *printer) order(o *domain.Order) error {
	return p.emit(o, func(w io.Writer) {
		fmt.Fprintf(w, "order %s: %s, total %s\n", o.ID, o.Status, p.Money(o.Total))
	})
}
