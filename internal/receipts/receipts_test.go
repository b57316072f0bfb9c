package receipts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreOpenWipesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "temp")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "receipts"), 0755))
	stale := filepath.Join(root, "receipts", "receipt_stale.pdf")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))

	store, err := Open(root)
	require.NoError(t, err)

	require.NoFileExists(t, stale)
	require.DirExists(t, store.PDFDir())
	require.DirExists(t, filepath.Join(root, "receipts_images"))
}

func TestStoreSaveAndCleanup(t *testing.T) {
	root := filepath.Join(t.TempDir(), "temp")
	store, err := Open(root)
	require.NoError(t, err)

	imagePath, err := store.SaveImage("RSB-1", []byte("png bytes"))
	require.NoError(t, err)
	require.FileExists(t, imagePath)

	receiptPath, err := store.SaveReceiptPDF("RSB-1", []byte("pdf bytes"))
	require.NoError(t, err)
	require.FileExists(t, receiptPath)
	require.Equal(t, filepath.Join(store.PDFDir(), "receipt_RSB-1.pdf"), receiptPath)
	require.Equal(
		t,
		filepath.Join(store.PDFDir(), "receipt_RSB-1_with_robot_image.pdf"),
		store.StampedPath("RSB-1"),
	)

	store.Cleanup()
	require.NoDirExists(t, root)
}

func TestStorePathsSanitized(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "temp"))
	require.NoError(t, err)

	path := store.ReceiptPath("../../evil order")
	require.Equal(t, "receipt_evil_order.pdf", filepath.Base(path))
	require.Equal(t, store.PDFDir(), filepath.Dir(path))
}
