// Package pipeline wires the order sheet, the storefront, and the receipt
// store into one synchronous run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sparebin-orderbot/internal/orders"
	"sparebin-orderbot/internal/receipts"
	"sparebin-orderbot/internal/storefront"
	"sparebin-orderbot/lib/archive"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("orderbot/pipeline")

// OrderSource yields the rows to submit.
type OrderSource interface {
	Fetch(ctx context.Context) ([]orders.Order, error)
}

// OrderPlacer drives the storefront for one order at a time.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, row orders.Order) (storefront.Placed, error)
}

// Renderer prints receipt html to pdf bytes.
type Renderer interface {
	RenderHTMLPDF(ctx context.Context, html string) ([]byte, error)
}

// Stamper overlays the robot image onto the receipt pdf.
type Stamper func(receiptPath, imagePath, outPath string) error

// OrderResult is the outcome of one row.
type OrderResult struct {
	Row         orders.Order
	OrderNumber string
	Parts       []string
	ReceiptPath string
	StampedPath string
	ImagePath   string
	Err         error
}

// Summary is what a run reports besides the archive itself.
type Summary struct {
	Results      []OrderResult
	Succeeded    int
	Abandoned    int
	ArchivePath  string
	ArchivedPDFs int
	Duration     time.Duration
}

type Pipeline struct {
	Source   OrderSource
	Placer   OrderPlacer
	Renderer Renderer
	Stamp    Stamper
	Store    *receipts.Store

	ArchivePath string
	// OrderRate paces order submissions, zero means unpaced.
	OrderRate rate.Limit
}

// Run executes the whole workflow: fetch rows, place each order, capture its
// receipt, then archive every pdf in the store. A rejected order is logged
// and abandoned while the run continues; any other failure aborts the run.
// The store is removed on every exit path.
func (p *Pipeline) Run(ctx context.Context) (summary Summary, err error) {
	ctx, span := tracer.Start(ctx, "pipeline:Run")
	defer span.End()
	start := time.Now()

	// cleanup always runs so no run leaves temp artifacts behind
	defer p.Store.Cleanup()

	summary = Summary{ArchivePath: p.ArchivePath}
	defer func() {
		summary.Duration = time.Since(start)
	}()

	rows, err := p.Source.Fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order sheet fetch failed")
		return summary, fmt.Errorf("fetch orders: %w", err)
	}
	slog.InfoContext(ctx, "fetched order sheet", "rows", len(rows))

	limiter := rate.NewLimiter(p.orderRate(), 1)
	for _, row := range rows {
		if err := limiter.Wait(ctx); err != nil {
			return summary, err
		}

		result := p.processOrder(ctx, row)
		summary.Results = append(summary.Results, result)
		if result.Err == nil {
			summary.Succeeded++
			continue
		}
		if errors.Is(result.Err, storefront.ErrOrderRejected) {
			summary.Abandoned++
			slog.ErrorContext(
				ctx, "order abandoned",
				"head", row.Head,
				"body", row.Body,
				"legs", row.Legs,
				"address", row.Address,
				"err", result.Err,
			)
			continue
		}
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, "order processing failed")
		return summary, result.Err
	}

	archived, err := archive.ZipFolder(p.Store.PDFDir(), p.ArchivePath, "*.pdf")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "archiving failed")
		return summary, fmt.Errorf("archive receipts: %w", err)
	}
	summary.ArchivedPDFs = archived

	span.SetAttributes(
		attribute.Int("orders", len(rows)),
		attribute.Int("succeeded", summary.Succeeded),
		attribute.Int("abandoned", summary.Abandoned),
		attribute.Int("archived_pdfs", archived),
	)
	slog.InfoContext(
		ctx, "receipts archived",
		"archive", p.ArchivePath,
		"pdfs", archived,
		"duration", time.Since(start),
	)
	return summary, nil
}

func (p *Pipeline) orderRate() rate.Limit {
	if p.OrderRate <= 0 {
		return rate.Inf
	}
	return p.OrderRate
}

func (p *Pipeline) processOrder(ctx context.Context, row orders.Order) OrderResult {
	ctx, span := tracer.Start(ctx, "pipeline:processOrder")
	defer span.End()

	result := OrderResult{Row: row}

	placed, err := p.Placer.PlaceOrder(ctx, row)
	if err != nil {
		result.Err = err
		return result
	}
	result.OrderNumber = placed.OrderNumber

	receipt, err := receipts.ParseReceipt(placed.ReceiptHTML)
	if err != nil {
		slog.WarnContext(ctx, "receipt did not parse", "order", placed.OrderNumber, "err", err)
	} else {
		result.Parts = receipt.Parts
	}

	result.ImagePath, err = p.Store.SaveImage(placed.OrderNumber, placed.RobotImage)
	if err != nil {
		result.Err = err
		return result
	}

	pdf, err := p.Renderer.RenderHTMLPDF(ctx, placed.ReceiptHTML)
	if err != nil {
		result.Err = fmt.Errorf("render receipt %q: %w", placed.OrderNumber, err)
		return result
	}
	result.ReceiptPath, err = p.Store.SaveReceiptPDF(placed.OrderNumber, pdf)
	if err != nil {
		result.Err = err
		return result
	}

	stampedPath := p.Store.StampedPath(placed.OrderNumber)
	if err := p.Stamp(result.ReceiptPath, result.ImagePath, stampedPath); err != nil {
		result.Err = fmt.Errorf("stamp receipt %q: %w", placed.OrderNumber, err)
		return result
	}
	result.StampedPath = stampedPath

	slog.InfoContext(ctx, "receipt saved with robot image", "order", placed.OrderNumber)
	return result
}
