// Package storefront drives the robot order form in a real browser.
package storefront

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("orderbot/storefront")

// Browser owns the chrome instance behind a run. One Browser serves both the
// order form and receipt rendering.
type Browser struct {
	rod      *rod.Browser
	launcher *launcher.Launcher
}

type BrowserOptions struct {
	// Headless hides the browser window. Turn it off to watch a run.
	Headless bool
	// NoSandbox disables the chrome sandbox, needed in most containers.
	NoSandbox bool
	// SlowMotion inserts a pause between browser actions.
	SlowMotion time.Duration
}

func NewBrowser(opts BrowserOptions) (*Browser, error) {
	l := launcher.New().
		Headless(opts.Headless).
		NoSandbox(opts.NoSandbox)
	controlUrl, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlUrl)
	if opts.SlowMotion > 0 {
		browser = browser.SlowMotion(opts.SlowMotion)
	}
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}
	return &Browser{rod: browser, launcher: l}, nil
}

func (b *Browser) Close() error {
	err := b.rod.Close()
	b.launcher.Cleanup()
	return err
}

// OpenOrderPage navigates a fresh tab to the order form. The caller owns the
// returned page and must Close it.
func (b *Browser) OpenOrderPage(ctx context.Context, orderUrl string) (*OrderPage, error) {
	ctx, span := tracer.Start(ctx, "browser:OpenOrderPage")
	defer span.End()

	page, err := b.rod.Page(proto.TargetCreateTarget{URL: orderUrl})
	if err != nil {
		span.SetStatus(codes.Error, "failed to open page")
		return nil, fmt.Errorf("open order page: %w", err)
	}
	page = page.Context(ctx)
	if err := page.WaitLoad(); err != nil {
		page.Close()
		span.SetStatus(codes.Error, "page never loaded")
		return nil, fmt.Errorf("wait for order page: %w", err)
	}
	return &OrderPage{page: page}, nil
}
