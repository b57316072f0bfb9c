package storefront

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"sparebin-orderbot/internal/orders"
)

// Placed bundles what the storefront hands back for one accepted order.
type Placed struct {
	OrderNumber string
	RobotImage  []byte
	ReceiptHTML string
}

// Session lazily owns one browser for a run. The first order launches it, so
// a run that dies before reaching the storefront never touches chrome. Close
// is safe whether or not the browser ever started.
type Session struct {
	Options    BrowserOptions
	OrderUrl   string
	MaxRetries int
	// FailureDir, when set, receives a full page screenshot for every order
	// that errors out.
	FailureDir string

	browser *Browser
}

func (s *Session) ensureBrowser() (*Browser, error) {
	if s.browser != nil {
		return s.browser, nil
	}
	browser, err := NewBrowser(s.Options)
	if err != nil {
		return nil, err
	}
	s.browser = browser
	return browser, nil
}

// PlaceOrder runs one row through the order form end to end: open, dismiss
// the consent dialog, fill, submit with retry, then capture the receipt
// artifacts. The tab closes before return.
func (s *Session) PlaceOrder(ctx context.Context, row orders.Order) (Placed, error) {
	ctx, span := tracer.Start(ctx, "session:PlaceOrder")
	defer span.End()

	browser, err := s.ensureBrowser()
	if err != nil {
		return Placed{}, err
	}
	page, err := browser.OpenOrderPage(ctx, s.OrderUrl)
	if err != nil {
		return Placed{}, err
	}
	defer page.Close()

	placed, err := s.placeOnPage(ctx, page, row)
	if err != nil {
		s.dumpFailure(page)
		span.RecordError(err)
		return Placed{}, err
	}
	return placed, nil
}

func (s *Session) placeOnPage(ctx context.Context, page *OrderPage, row orders.Order) (Placed, error) {
	if err := page.DismissConsentModal(ctx); err != nil {
		return Placed{}, err
	}
	if err := page.Fill(ctx, row); err != nil {
		return Placed{}, err
	}
	if err := page.Submit(ctx, row, s.MaxRetries); err != nil {
		return Placed{}, err
	}
	number, err := page.OrderNumber(ctx)
	if err != nil {
		return Placed{}, err
	}
	image, err := page.ScreenshotPreview(ctx)
	if err != nil {
		return Placed{}, err
	}
	html, err := page.ReceiptHTML(ctx)
	if err != nil {
		return Placed{}, err
	}
	return Placed{OrderNumber: number, RobotImage: image, ReceiptHTML: html}, nil
}

func (s *Session) dumpFailure(page *OrderPage) {
	if s.FailureDir == "" {
		return
	}
	if err := os.MkdirAll(s.FailureDir, 0755); err != nil {
		slog.Warn("failed to create failure screenshot directory", "dir", s.FailureDir, "err", err)
		return
	}
	path := filepath.Join(s.FailureDir, fmt.Sprintf("failure_%d.png", time.Now().UnixMilli()))
	if err := page.DumpFailureScreenshot(path); err != nil {
		slog.Warn("failed to capture failure screenshot", "path", path, "err", err)
		return
	}
	slog.Info("failure screenshot captured", "path", path)
}

// RenderHTMLPDF prints html through the session browser.
func (s *Session) RenderHTMLPDF(ctx context.Context, html string) ([]byte, error) {
	browser, err := s.ensureBrowser()
	if err != nil {
		return nil, err
	}
	return browser.RenderHTMLPDF(ctx, html)
}

func (s *Session) Close() error {
	if s.browser == nil {
		return nil
	}
	err := s.browser.Close()
	s.browser = nil
	return err
}
