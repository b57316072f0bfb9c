// Package orders fetches the order sheet that drives a run and parses it
// into rows.
package orders

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sparebin-orderbot/lib/restyutil"
	"sparebin-orderbot/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/purell"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("orderbot/orders")

// Order is one row of the order sheet, a robot configuration plus the
// address it ships to. Rows are immutable once read.
type Order struct {
	Head    int
	Body    int
	Legs    int
	Address string
}

type Client struct {
	SheetUrl string
	Http     *resty.Client
}

type ClientOptions struct {
	SheetUrl string
	// InstrumentOutput, when set, dumps every exchange to disk instead of
	// only tracing it.
	InstrumentOutput restyutil.InstrumentOutput
}

func NewClient(opts ClientOptions) (*Client, error) {
	parsed, err := url.Parse(opts.SheetUrl)
	if err != nil {
		return nil, err
	}
	sheetUrl := purell.NormalizeURL(parsed, purell.FlagsSafe|purell.FlagsUsuallySafeNonGreedy)

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(parsed.Hostname()))
	client.SetTimeout(time.Second * 30)

	if opts.InstrumentOutput != nil {
		restyutil.InstrumentClient(client, tracer, opts.InstrumentOutput)
	} else {
		telemetry.InstrumentResty(client, "orderbot/orders/http")
	}

	return &Client{SheetUrl: sheetUrl, Http: client}, nil
}

// Fetch downloads the order sheet and parses it. A non-2xx response fails
// the run, there is no retry and no caching.
func (c *Client) Fetch(ctx context.Context) ([]Order, error) {
	ctx, span := tracer.Start(ctx, "client:Fetch")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.SheetUrl)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch order sheet")
		return nil, err
	}
	if res.IsError() {
		err := fmt.Errorf("fetch order sheet: unexpected status %s", res.Status())
		span.RecordError(err)
		span.SetStatus(codes.Error, "unexpected status")
		return nil, err
	}

	rows, err := ParseSheet(bytes.NewReader(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse order sheet")
		return nil, err
	}
	return rows, nil
}

// ParseSheet reads a csv order sheet. The header row names the columns, so
// column order does not matter; row order is preserved. A malformed row
// fails the whole sheet rather than being dropped.
func ParseSheet(r io.Reader) ([]Order, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("order sheet is empty")
	}

	col := map[string]int{}
	for i, name := range records[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"head", "body", "legs", "address"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("order sheet is missing a %q column", required)
		}
	}

	orders := make([]Order, 0, len(records)-1)
	for i, record := range records[1:] {
		order, err := parseRow(col, record)
		if err != nil {
			return nil, fmt.Errorf("order sheet row %d: %w", i+1, err)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func parseRow(col map[string]int, record []string) (Order, error) {
	head, err := strconv.Atoi(strings.TrimSpace(record[col["head"]]))
	if err != nil {
		return Order{}, fmt.Errorf("head: %w", err)
	}
	body, err := strconv.Atoi(strings.TrimSpace(record[col["body"]]))
	if err != nil {
		return Order{}, fmt.Errorf("body: %w", err)
	}
	legs, err := strconv.Atoi(strings.TrimSpace(record[col["legs"]]))
	if err != nil {
		return Order{}, fmt.Errorf("legs: %w", err)
	}
	return Order{
		Head:    head,
		Body:    body,
		Legs:    legs,
		Address: record[col["address"]],
	}, nil
}
