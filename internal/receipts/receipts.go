// Package receipts owns the transient artifacts of a run: robot screenshots,
// rendered receipt PDFs, and the image-stamped copies.
package receipts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"sparebin-orderbot/lib/textutil"
)

// Layout under the store root. The pdf directory is the one the archiver
// sweeps, so only files that belong in the final archive go there.
const (
	pdfDir   = "receipts"
	imageDir = "receipts_images"
)

// Store is the temporary working directory of one run.
type Store struct {
	root string
}

// Open wipes and recreates the store under root, so every run starts from an
// empty working directory.
func Open(root string) (*Store, error) {
	if err := os.RemoveAll(root); err != nil {
		return nil, fmt.Errorf("clear receipt store: %w", err)
	}
	for _, dir := range []string{pdfDir, imageDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			return nil, fmt.Errorf("create receipt store: %w", err)
		}
	}
	return &Store{root: root}, nil
}

func (s *Store) Root() string {
	return s.root
}

// PDFDir is the directory the archiver sweeps for *.pdf files.
func (s *Store) PDFDir() string {
	return filepath.Join(s.root, pdfDir)
}

func (s *Store) ImagePath(orderNumber string) string {
	name := fmt.Sprintf("robot_%s.png", textutil.SafeFilename(orderNumber))
	return filepath.Join(s.root, imageDir, name)
}

func (s *Store) ReceiptPath(orderNumber string) string {
	name := fmt.Sprintf("receipt_%s.pdf", textutil.SafeFilename(orderNumber))
	return filepath.Join(s.root, pdfDir, name)
}

func (s *Store) StampedPath(orderNumber string) string {
	name := fmt.Sprintf("receipt_%s_with_robot_image.pdf", textutil.SafeFilename(orderNumber))
	return filepath.Join(s.root, pdfDir, name)
}

func (s *Store) SaveImage(orderNumber string, png []byte) (string, error) {
	path := s.ImagePath(orderNumber)
	if err := os.WriteFile(path, png, 0644); err != nil {
		return "", fmt.Errorf("save robot image: %w", err)
	}
	return path, nil
}

func (s *Store) SaveReceiptPDF(orderNumber string, pdf []byte) (string, error) {
	path := s.ReceiptPath(orderNumber)
	if err := os.WriteFile(path, pdf, 0644); err != nil {
		return "", fmt.Errorf("save receipt pdf: %w", err)
	}
	return path, nil
}

// Cleanup removes the whole store. Failures are logged, never raised, so a
// broken cleanup cannot mask the run's real outcome.
func (s *Store) Cleanup() {
	if err := os.RemoveAll(s.root); err != nil {
		slog.Error("failed to clean up temporary files", "root", s.root, "err", err)
		return
	}
	slog.Info("temporary files cleaned up", "root", s.root)
}
