package dailymed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spillthepill/internal/domain"
)

func TestSPLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/spls.json" {
			http.NotFound(w, r)
			return
		}
		switch r.URL.Query().Get("rxcui") {
		case "5640":
			_, _ = w.Write([]byte(`{"data":[{"setid":"abc","title":"IBUPROFEN TABLET","published_date":"May 01, 2024","spl_version":3}],"metadata":{"total_elements":1}}`))
		case "1":
			_, _ = w.Write([]byte(`{"metadata":{"total_elements":0}}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client())
	ctx := context.Background()

	page, err := c.SPLs(ctx, "5640")
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, domain.SPL{SetID: "abc", Title: "IBUPROFEN TABLET", PublishedDate: "May 01, 2024", Version: 3}, page.Data[0])
	assert.JSONEq(t, `{"total_elements":1}`, string(page.Metadata))

	page, err = c.SPLs(ctx, "1")
	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)

	_, err = c.SPLs(ctx, "2")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDrugDataUnavailable)
}
