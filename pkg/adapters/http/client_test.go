package http

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvalim/lattice/pkg/domain"
)

func TestClient_AgainstServer(t *testing.T) {
	handler, _, inventory, sink := newTestServer(t)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	ctx := context.Background()
	client := NewClient(srv.URL)

	three := 3
	inventory.SetStatuses("orders", []domain.InventoryStatus{
		{StepID: "cake", ChoiceID: "choc", Remaining: &three},
	})

	statuses, err := client.FetchStatus(ctx, "orders")
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "choc", statuses[0].ChoiceID)

	err = client.Submit(ctx, &domain.Submission{
		ID:            "sub-1",
		FormID:        "orders",
		CustomerName:  "Ana",
		CustomerPhone: "7654321",
	})
	require.NoError(t, err)
	require.Len(t, sink.Submissions(), 1)
}

func TestClient_SubmitRejectionIsValidation(t *testing.T) {
	handler, _, _, _ := newTestServer(t)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	client := NewClient(srv.URL)
	err := client.Submit(context.Background(), &domain.Submission{FormID: "orders"})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestClient_FetchStatusUnknownFormIsEmpty(t *testing.T) {
	handler, _, _, _ := newTestServer(t)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	statuses, err := NewClient(srv.URL).FetchStatus(context.Background(), "unknown-form")
	require.NoError(t, err)
	assert.Empty(t, statuses)
}
