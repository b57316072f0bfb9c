package receipts

import (
	"fmt"
	"strings"

	"sparebin-orderbot/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// Receipt is the parsed confirmation for one submitted order.
type Receipt struct {
	OrderNumber string
	Parts       []string
}

// ParseReceipt pulls the order number and the parts list out of the receipt
// markup captured from the storefront.
func ParseReceipt(receiptHtml string) (Receipt, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(receiptHtml))
	if err != nil {
		return Receipt{}, fmt.Errorf("parse receipt html: %w", err)
	}

	number := htmlutil.NormalizeSpace(doc.Find(".badge-success").First().Text())
	if number == "" {
		return Receipt{}, fmt.Errorf("receipt has no order number badge")
	}

	var parts []string
	for _, node := range doc.Find("#parts div").Nodes {
		if text := htmlutil.NormalizeSpace(htmlutil.GetText(node)); text != "" {
			parts = append(parts, text)
		}
	}

	return Receipt{OrderNumber: number, Parts: parts}, nil
}
