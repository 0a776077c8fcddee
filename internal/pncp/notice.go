package pncp

import (
	"github.com/Pedro004-dot/alicit/internal/matching"
)

// Notice is a published procurement notice as the portal reports it. Field
// tags carry the portal's Portuguese JSON names.
type Notice struct {
	ControlNumber  string  `json:"numeroControlePNCP"`
	Object         string  `json:"objetoCompra"`
	PurchaseYear   int     `json:"anoCompra"`
	Sequential     int     `json:"sequencialCompra"`
	Agency         Agency  `json:"orgaoEntidade"`
	State          string  `json:"ufSigla"`
	EstimatedTotal float64 `json:"valorTotalEstimado"`
	OriginLink     string  `json:"linkSistemaOrigem"`
	PublishedAt    string  `json:"dataPublicacao"`
}

// Agency is the contracting government body.
type Agency struct {
	CNPJ string `json:"cnpj"`
	Name string `json:"razaoSocial"`
}

// Item is one line item of a notice.
type Item struct {
	Number      int     `json:"numeroItem"`
	Description string  `json:"descricao"`
	Quantity    float64 `json:"quantidade"`
	Unit        string  `json:"unidadeMedida"`
	UnitValue   float64 `json:"valorUnitarioEstimado"`
}

// Bid converts a notice and its fetched items into the matching domain
// shape. The control number becomes the stable bid ID.
func (n Notice) Bid(items []Item) matching.Bid {
	bid := matching.Bid{
		ID:          n.ControlNumber,
		Description: n.Object,
	}
	for _, item := range items {
		bid.Items = append(bid.Items, matching.Item{
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitValue:   item.UnitValue,
		})
	}
	return bid
}
