package storefront

import (
	"context"
	"testing"

	"sparebin-orderbot/internal/orders"

	"github.com/stretchr/testify/require"
)

type fakeProbe struct {
	clicks        int
	rejectedUntil int // the alert shows while clicks <= rejectedUntil
}

func (f *fakeProbe) ClickOrder() error {
	f.clicks++
	return nil
}

func (f *fakeProbe) RejectionVisible() (bool, error) {
	return f.clicks <= f.rejectedUntil, nil
}

var sampleRow = orders.Order{Head: 2, Body: 3, Legs: 4, Address: "Evergreen 123"}

func TestSubmitFirstTry(t *testing.T) {
	probe := &fakeProbe{}
	err := submitWithRetry(context.Background(), probe, sampleRow, 3)
	require.NoError(t, err)
	require.Equal(t, 1, probe.clicks)
}

func TestSubmitSucceedsOnLastAttempt(t *testing.T) {
	probe := &fakeProbe{rejectedUntil: 3}
	err := submitWithRetry(context.Background(), probe, sampleRow, 3)
	require.NoError(t, err)
	require.Equal(t, 4, probe.clicks)
}

func TestSubmitExhausted(t *testing.T) {
	probe := &fakeProbe{rejectedUntil: 1 << 30}
	err := submitWithRetry(context.Background(), probe, sampleRow, 3)
	require.ErrorIs(t, err, ErrOrderRejected)
	require.Equal(t, 4, probe.clicks)
	require.ErrorContains(t, err, "Evergreen 123")
}

func TestSubmitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	probe := &fakeProbe{rejectedUntil: 1 << 30}
	err := submitWithRetry(ctx, probe, sampleRow, 3)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, probe.clicks)
}
