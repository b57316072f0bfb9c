package storefront

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"sparebin-orderbot/internal/orders"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.opentelemetry.io/otel/codes"
)

// Element handles on the order form. The storefront markup keys everything
// off stable ids except the legs input, which only its label identifies.
const (
	consentDismissButton = "button.btn.btn-dark"
	headSelect           = "select#head"
	bodyRadioFormat      = "input#id-body-%d"
	legsInputXPath       = `//div[contains(label, "Legs")]//input`
	addressInput         = "input#address"
	orderButton          = "button#order"
	successBadge         = "p.badge.badge-success"
	rejectionAlert       = "div.alert.alert-danger"
	robotPreviewImage    = "div#robot-preview-image"
	receiptSection       = "div#receipt"
)

// OrderPage is one open tab of the order form.
type OrderPage struct {
	page *rod.Page
}

// DismissConsentModal clicks away the consent dialog shown on page load.
func (p *OrderPage) DismissConsentModal(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "orderPage:DismissConsentModal")
	defer span.End()

	el, err := p.page.Context(ctx).Element(consentDismissButton)
	if err != nil {
		span.SetStatus(codes.Error, "consent dialog never appeared")
		return fmt.Errorf("find consent dialog: %w", err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("dismiss consent dialog: %w", err)
	}
	return nil
}

// Fill sets the four order fields from row. It does not submit.
func (p *OrderPage) Fill(ctx context.Context, row orders.Order) error {
	ctx, span := tracer.Start(ctx, "orderPage:Fill")
	defer span.End()
	page := p.page.Context(ctx)

	head, err := page.Element(headSelect)
	if err != nil {
		return fmt.Errorf("find head select: %w", err)
	}
	err = head.Select(
		[]string{fmt.Sprintf("[value=%q]", strconv.Itoa(row.Head))},
		true, rod.SelectorTypeCSSSector,
	)
	if err != nil {
		return fmt.Errorf("select head %d: %w", row.Head, err)
	}

	body, err := page.Element(fmt.Sprintf(bodyRadioFormat, row.Body))
	if err != nil {
		return fmt.Errorf("find body radio %d: %w", row.Body, err)
	}
	if err := body.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("check body radio %d: %w", row.Body, err)
	}

	legs, err := page.ElementX(legsInputXPath)
	if err != nil {
		return fmt.Errorf("find legs input: %w", err)
	}
	if err := legs.Input(strconv.Itoa(row.Legs)); err != nil {
		return fmt.Errorf("fill legs: %w", err)
	}

	address, err := page.Element(addressInput)
	if err != nil {
		return fmt.Errorf("find address input: %w", err)
	}
	if err := address.Input(row.Address); err != nil {
		return fmt.Errorf("fill address: %w", err)
	}
	return nil
}

// Submit clicks the order button, retrying while the storefront flashes its
// rejection alert. On success the receipt view replaces the form.
func (p *OrderPage) Submit(ctx context.Context, row orders.Order, maxRetries int) error {
	return submitWithRetry(ctx, pageProbe{page: p.page.Context(ctx)}, row, maxRetries)
}

// OrderNumber reads the identifier off the success badge on the receipt.
func (p *OrderPage) OrderNumber(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "orderPage:OrderNumber")
	defer span.End()

	el, err := p.page.Context(ctx).Element(successBadge)
	if err != nil {
		span.SetStatus(codes.Error, "success badge missing")
		return "", fmt.Errorf("find success badge: %w", err)
	}
	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("read success badge: %w", err)
	}
	number := strings.TrimSpace(text)
	if number == "" {
		err := fmt.Errorf("success badge is empty")
		span.RecordError(err)
		span.SetStatus(codes.Error, "success badge is empty")
		return "", err
	}
	return number, nil
}

// ScreenshotPreview captures the robot preview region as a png.
func (p *OrderPage) ScreenshotPreview(ctx context.Context) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "orderPage:ScreenshotPreview")
	defer span.End()

	el, err := p.page.Context(ctx).Element(robotPreviewImage)
	if err != nil {
		span.SetStatus(codes.Error, "robot preview missing")
		return nil, fmt.Errorf("find robot preview: %w", err)
	}
	png, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, fmt.Errorf("screenshot robot preview: %w", err)
	}
	return png, nil
}

// ReceiptHTML returns the markup of the receipt region.
func (p *OrderPage) ReceiptHTML(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "orderPage:ReceiptHTML")
	defer span.End()

	el, err := p.page.Context(ctx).Element(receiptSection)
	if err != nil {
		span.SetStatus(codes.Error, "receipt missing")
		return "", fmt.Errorf("find receipt: %w", err)
	}
	html, err := el.HTML()
	if err != nil {
		return "", fmt.Errorf("read receipt: %w", err)
	}
	return html, nil
}

// DumpFailureScreenshot writes a full page capture to path. Best effort, for
// debugging orders that went sideways.
func (p *OrderPage) DumpFailureScreenshot(path string) error {
	data, err := p.page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (p *OrderPage) Close() error {
	return p.page.Close()
}
