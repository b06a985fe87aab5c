package models

// RecognizedCandidate is one item extracted from a screenshot's
// recognized text: a raw name, the resolved quantity and how confident
// the extraction is that the line was really an item.
type RecognizedCandidate struct {
	RawName    string  `json:"raw_name"`
	Quantity   int     `json:"quantity"`   // Always >= 1
	Confidence float64 `json:"confidence"` // 0-1 extraction confidence
}

// CatalogMatch is one entry returned by the item catalog search.
// Price and Icon may be absent depending on the catalog source.
type CatalogMatch struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price *int64 `json:"price"`
	Icon  string `json:"icon,omitempty"`
}

// MatchedCandidate pairs a recognized candidate with the best catalog
// match found for it, if any. MatchConfidence is the product of the
// name similarity and the extraction confidence.
type MatchedCandidate struct {
	Candidate       RecognizedCandidate `json:"candidate"`
	Match           *CatalogMatch       `json:"match"`
	MatchConfidence float64             `json:"match_confidence"`
}

// ImportCandidate is a review-ready row shown to the user before
// confirming an import. The user may toggle Selected, edit BuyPrice and
// assign a category; everything else is fixed at scan time.
type ImportCandidate struct {
	Candidate       RecognizedCandidate `json:"candidate"`
	Match           *CatalogMatch       `json:"match"`
	MatchConfidence float64             `json:"match_confidence"`
	Selected        bool                `json:"selected"`
	BuyPrice        int64               `json:"buy_price"`
	CategoryID      *int64              `json:"category_id"`
}

// Eligible reports whether the candidate may be submitted as a holding:
// it must be selected and resolved against the catalog.
func (c *ImportCandidate) Eligible() bool {
	return c.Selected && c.Match != nil
}

// Holding is one imported inventory row as persisted on confirmation.
type Holding struct {
	ID          int64  `json:"id,omitempty"`
	AccountID   int64  `json:"account_id,omitempty"`
	ItemID      int64  `json:"item_id"`
	ItemName    string `json:"item_name"`
	Icon        string `json:"icon,omitempty"`
	Quantity    int    `json:"quantity"`
	AvgBuyPrice int64  `json:"avg_buy_price"`
	CategoryID  *int64 `json:"category_id"`
}
