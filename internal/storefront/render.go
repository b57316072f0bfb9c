package storefront

import (
	"context"
	"fmt"
	"io"

	"github.com/go-rod/rod/lib/proto"
	"go.opentelemetry.io/otel/codes"
)

// RenderHTMLPDF prints an html fragment to PDF bytes through a blank tab in
// the same browser that drives the order form.
func (b *Browser) RenderHTMLPDF(ctx context.Context, html string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "browser:RenderHTMLPDF")
	defer span.End()

	page, err := b.rod.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		span.SetStatus(codes.Error, "failed to open render page")
		return nil, fmt.Errorf("open render page: %w", err)
	}
	page = page.Context(ctx)
	defer page.Close()

	if err := page.SetDocumentContent(html); err != nil {
		span.SetStatus(codes.Error, "failed to set content")
		return nil, fmt.Errorf("set render content: %w", err)
	}
	stream, err := page.PDF(&proto.PagePrintToPDF{PrintBackground: true})
	if err != nil {
		span.SetStatus(codes.Error, "print to pdf failed")
		return nil, fmt.Errorf("print receipt pdf: %w", err)
	}
	pdf, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read receipt pdf: %w", err)
	}
	return pdf, nil
}
