package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sparebin-orderbot/internal/orders"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrOrderRejected marks an order the storefront refused on every allowed
// submit attempt. Callers treat it as a per-order failure, not a run failure.
var ErrOrderRejected = errors.New("order rejected by storefront")

// submitProbe is the slice of the order page the retry loop touches. Tests
// substitute a fake.
type submitProbe interface {
	ClickOrder() error
	RejectionVisible() (bool, error)
}

// submitWithRetry clicks the order button until the rejection alert stays
// away, allowing maxRetries extra clicks after the first. The row travels
// with every attempt so exhaustion reports which order failed.
func submitWithRetry(ctx context.Context, probe submitProbe, row orders.Order, maxRetries int) error {
	ctx, span := tracer.Start(ctx, "submitWithRetry")
	defer span.End()

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := probe.ClickOrder(); err != nil {
			span.SetStatus(codes.Error, "click failed")
			return fmt.Errorf("click order button: %w", err)
		}
		rejected, err := probe.RejectionVisible()
		if err != nil {
			span.SetStatus(codes.Error, "alert probe failed")
			return fmt.Errorf("check rejection alert: %w", err)
		}
		if !rejected {
			span.SetAttributes(attribute.Int("attempts", attempt))
			return nil
		}
		if attempt > maxRetries {
			err := fmt.Errorf(
				"%w: head=%d body=%d legs=%d address=%q after %d attempts",
				ErrOrderRejected, row.Head, row.Body, row.Legs, row.Address, attempt,
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, "retries exhausted")
			return err
		}
		slog.WarnContext(
			ctx, "order rejected, retrying",
			"head", row.Head,
			"body", row.Body,
			"legs", row.Legs,
			"address", row.Address,
			"attempt", attempt,
		)
	}
}

type pageProbe struct {
	page *rod.Page
}

func (p pageProbe) ClickOrder() error {
	el, err := p.page.Element(orderButton)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (p pageProbe) RejectionVisible() (bool, error) {
	// let the spa finish swapping views before probing for the alert
	if err := p.page.WaitStable(300 * time.Millisecond); err != nil {
		return false, err
	}
	has, el, err := p.page.Has(rejectionAlert)
	if err != nil || !has {
		return false, err
	}
	return el.Visible()
}
