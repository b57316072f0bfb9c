package orders

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sparebin-orderbot/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const sampleSheet = `Head,Body,Legs,Address
1,1,2,Nowhere 1
2,3,4,Evergreen 123
6,6,6,Last Stop 9
`

func TestFetch(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:orders")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("content-type", "text/csv")
			w.Write([]byte(sampleSheet))
		},
	))
	defer server.Close()

	client, err := NewClient(ClientOptions{SheetUrl: server.URL})
	require.NoError(t, err)

	rows, err := client.Fetch(context.Background())
	require.NoError(t, err)

	diff := cmp.Diff([]Order{
		{Head: 1, Body: 1, Legs: 2, Address: "Nowhere 1"},
		{Head: 2, Body: 3, Legs: 4, Address: "Evergreen 123"},
		{Head: 6, Body: 6, Legs: 6, Address: "Last Stop 9"},
	}, rows)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
	))
	defer server.Close()

	client, err := NewClient(ClientOptions{SheetUrl: server.URL})
	require.NoError(t, err)

	_, err = client.Fetch(context.Background())
	require.Error(t, err)
	require.ErrorContains(t, err, "500")
}

func TestParseSheetShuffledColumns(t *testing.T) {
	rows, err := ParseSheet(strings.NewReader(
		"Address,Legs,Body,Head\nEvergreen 123,4,3,2\n",
	))
	require.NoError(t, err)
	require.Equal(t, []Order{
		{Head: 2, Body: 3, Legs: 4, Address: "Evergreen 123"},
	}, rows)
}

func TestParseSheetMissingColumn(t *testing.T) {
	_, err := ParseSheet(strings.NewReader("Head,Body,Legs\n1,2,3\n"))
	require.ErrorContains(t, err, "address")
}

func TestParseSheetMalformedRow(t *testing.T) {
	_, err := ParseSheet(strings.NewReader(
		"Head,Body,Legs,Address\n1,2,not-a-number,Nowhere 1\n",
	))
	require.ErrorContains(t, err, "row 1")
}

func TestParseSheetEmpty(t *testing.T) {
	_, err := ParseSheet(strings.NewReader(""))
	require.Error(t, err)
}
