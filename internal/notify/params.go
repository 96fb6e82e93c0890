package notify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dulzuras/storefront/internal/order"
)

// OrderParams flattens an order into the template parameter map the email
// templates expect. Quote requests get placeholder price fields because
// nothing has been priced yet.
func OrderParams(o order.Order) map[string]string {
	params := map[string]string{
		"from_name":    o.Cliente.Nombre,
		"reply_to":     o.Cliente.Correo,
		"telefono":     o.Cliente.Telefono,
		"fechaEntrega": o.FechaEstimada.Format("2006-01-02"),
	}

	if o.IsQuoteRequest {
		params["producto"] = "COTIZACIÓN PERSONALIZADA"
		params["detalle_pedido"] = quoteDetail(o.Items)
		params["precio"] = "A cotizar"
		params["abono"] = "Pendiente"
		return params
	}

	params["producto"] = "PEDIDO CARRITO WEB"
	params["detalle_pedido"] = cartDetail(o.Items)
	params["precio"] = strconv.FormatInt(o.Total, 10)
	params["abono"] = strconv.FormatInt(o.Abono, 10)
	return params
}

func cartDetail(items []order.Item) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		size := it.Size
		if size == "" {
			size = "Unidad"
		}
		lines = append(lines, fmt.Sprintf("%dx %s (%s)", it.Quantity, it.Name, size))
	}
	return strings.Join(lines, "\n")
}

func quoteDetail(items []order.Item) string {
	if len(items) == 0 {
		return ""
	}
	it := items[0]
	return fmt.Sprintf("Temática: %s\nSabor pref: %s\nInvitados: %s", it.Tematica, it.Sabor, it.Invitados)
}
