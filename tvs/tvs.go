// Package tvs reads the TV subscription units and their customers from the remote API.
package tvs

import "encoding/json"

// Customer of one TV subscription unit. Display only.
type Customer struct {
	ID            string            `json:"id"`
	Name          string            `json:"nome"`
	Email         string            `json:"email"`
	Phone         string            `json:"telefone"`
	PaymentStatus bool              `json:"statusPagamento"`
	Payments      []json.RawMessage `json:"pagamento,omitempty"`
}

// PaymentLabel is how the payment status is shown to the operator.
func (c Customer) PaymentLabel() string {
	if c.PaymentStatus {
		return "Pago"
	}
	return "Pendente"
}

// TvGroup is a named collection of customers sharing one TV subscription unit.
type TvGroup struct {
	ID        string     `json:"id"`
	Name      string     `json:"nome"`
	Customers []Customer `json:"clientes"`
}

func (g TvGroup) Empty() bool {
	return len(g.Customers) == 0
}
