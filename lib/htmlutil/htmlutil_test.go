package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestGetText(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(
		`<div>Head: <b>Roll-a-thor</b> <span>(part 1)</span></div>`,
	))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "Head: Roll-a-thor (part 1)", GetText(doc))
}

func TestNormalizeSpace(t *testing.T) {
	require.Equal(t, "RSB-ORDER 42", NormalizeSpace("  RSB-ORDER \n\t 42  "))
	require.Equal(t, "a b", NormalizeSpace("a  \t b"))
}
