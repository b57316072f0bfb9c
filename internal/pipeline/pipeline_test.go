package pipeline

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"sparebin-orderbot/internal/orders"
	"sparebin-orderbot/internal/receipts"
	"sparebin-orderbot/internal/storefront"

	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	rows []orders.Order
	err  error
}

func (f fakeSource) Fetch(ctx context.Context) ([]orders.Order, error) {
	return f.rows, f.err
}

type fakePlacer struct {
	rejectAddress string
	failAddress   string
	calls         int
}

func (f *fakePlacer) PlaceOrder(ctx context.Context, row orders.Order) (storefront.Placed, error) {
	f.calls++
	switch row.Address {
	case f.rejectAddress:
		return storefront.Placed{}, fmt.Errorf("%w: simulated", storefront.ErrOrderRejected)
	case f.failAddress:
		return storefront.Placed{}, fmt.Errorf("browser exploded")
	}
	number := fmt.Sprintf("RSB-%d", f.calls)
	html := fmt.Sprintf(
		`<div id="receipt"><p class="badge badge-success">%s</p><div id="parts"><div>Head: test head</div></div></div>`,
		number,
	)
	return storefront.Placed{
		OrderNumber: number,
		RobotImage:  []byte("png bytes"),
		ReceiptHTML: html,
	}, nil
}

type fakeRenderer struct{}

func (fakeRenderer) RenderHTMLPDF(ctx context.Context, html string) ([]byte, error) {
	return []byte("%PDF-1.4 fake"), nil
}

func copyStamp(receiptPath, imagePath, outPath string) error {
	data, err := os.ReadFile(receiptPath)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, data, 0644)
}

func newTestPipeline(t *testing.T, source OrderSource, placer OrderPlacer) (*Pipeline, string, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "temp")
	store, err := receipts.Open(root)
	require.NoError(t, err)

	archivePath := filepath.Join(t.TempDir(), "output", "receipts.zip")
	p := &Pipeline{
		Source:      source,
		Placer:      placer,
		Renderer:    fakeRenderer{},
		Stamp:       copyStamp,
		Store:       store,
		ArchivePath: archivePath,
	}
	return p, root, archivePath
}

func archiveNames(t *testing.T, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names
}

var testRows = []orders.Order{
	{Head: 1, Body: 1, Legs: 2, Address: "Nowhere 1"},
	{Head: 2, Body: 3, Legs: 4, Address: "Evergreen 123"},
}

func TestRun(t *testing.T) {
	placer := &fakePlacer{}
	p, root, archivePath := newTestPipeline(t, fakeSource{rows: testRows}, placer)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, summary.Succeeded)
	require.Zero(t, summary.Abandoned)
	require.Equal(t, 2, placer.calls)

	// one undecorated and one stamped pdf per successful order
	require.Equal(t, 4, summary.ArchivedPDFs)
	require.ElementsMatch(t, []string{
		"receipt_RSB-1.pdf",
		"receipt_RSB-1_with_robot_image.pdf",
		"receipt_RSB-2.pdf",
		"receipt_RSB-2_with_robot_image.pdf",
	}, archiveNames(t, archivePath))

	for _, result := range summary.Results {
		require.NoError(t, result.Err)
		require.NotEmpty(t, result.OrderNumber)
		require.Equal(t, []string{"Head: test head"}, result.Parts)
	}

	require.NoDirExists(t, root)
}

func TestRunAbandonsRejectedOrder(t *testing.T) {
	placer := &fakePlacer{rejectAddress: "Evergreen 123"}
	rows := append([]orders.Order{}, testRows...)
	rows = append(rows, orders.Order{Head: 5, Body: 5, Legs: 8, Address: "Far Side 42"})

	p, root, archivePath := newTestPipeline(t, fakeSource{rows: rows}, placer)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, summary.Succeeded)
	require.Equal(t, 1, summary.Abandoned)
	require.Equal(t, 3, placer.calls, "a rejected order must not stop the run")
	require.Len(t, archiveNames(t, archivePath), 4)
	require.NoDirExists(t, root)
}

func TestRunFetchFailure(t *testing.T) {
	placer := &fakePlacer{}
	p, root, archivePath := newTestPipeline(t, fakeSource{err: fmt.Errorf("status 500")}, placer)

	_, err := p.Run(context.Background())
	require.ErrorContains(t, err, "500")
	require.Zero(t, placer.calls, "no order placement after a failed fetch")
	require.NoFileExists(t, archivePath)
	require.NoDirExists(t, root)
}

func TestRunAbortsOnHardFailure(t *testing.T) {
	placer := &fakePlacer{failAddress: "Nowhere 1"}
	p, root, archivePath := newTestPipeline(t, fakeSource{rows: testRows}, placer)

	_, err := p.Run(context.Background())
	require.ErrorContains(t, err, "browser exploded")
	require.Equal(t, 1, placer.calls)
	require.NoFileExists(t, archivePath)
	require.NoDirExists(t, root)
}
