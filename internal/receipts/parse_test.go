package receipts

import (
	"testing"

	_ "embed"

	"github.com/stretchr/testify/require"
)

//go:embed receipt_sample_test.html
var receiptSampleTest string

func TestParseReceipt(t *testing.T) {
	receipt, err := ParseReceipt(receiptSampleTest)
	require.NoError(t, err)
	require.Equal(t, "RSB-ROBO-ORDER-7C3D2E1F", receipt.OrderNumber)
	require.Equal(t, []string{
		"Head: Roll-a-thor head",
		"Body: Peanut crusher body",
		"Legs: 4",
	}, receipt.Parts)
}

func TestParseReceiptMissingBadge(t *testing.T) {
	_, err := ParseReceipt(`<div id="receipt"><p>no badge here</p></div>`)
	require.Error(t, err)
}
