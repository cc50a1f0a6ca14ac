package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/bomengine/pkg/application/services/orchestration"
	"github.com/vsinha/bomengine/pkg/domain/entities"
	"github.com/vsinha/bomengine/pkg/infrastructure/events"
	testhelpers "github.com/vsinha/bomengine/pkg/infrastructure/testing"
	thttp "github.com/vsinha/bomengine/pkg/interfaces/http"
)

type apiError struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Path    []entities.ComponentID `json:"path"`
}

func newBakeryServer(t *testing.T) (*httptest.Server, *entities.BOM) {
	t.Helper()
	repo, _, root := testhelpers.BuildBakeryTestData()
	svc := orchestration.NewBOMService(repo, repo, events.NewInMemoryEventStore())

	srv := httptest.NewServer(thttp.NewRouter(svc, 5*time.Second))
	t.Cleanup(srv.Close)
	return srv, root
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func TestHealth(t *testing.T) {
	srv, _ := newBakeryServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "SERVING", string(body))
}

func TestErrorStatus(t *testing.T) {
	srv, root := newBakeryServer(t)
	bomURL := srv.URL + "/api/v1/boms/" + root.ID.String()

	tests := []struct {
		name   string
		method string
		url    string
		body   string
		status int
	}{
		{"malformed bom id", http.MethodGet, srv.URL + "/api/v1/boms/not-a-uuid/explosion", "", http.StatusBadRequest},
		{"unknown bom", http.MethodGet, srv.URL + "/api/v1/boms/" + uuid.NewString() + "/explosion", "", http.StatusNotFound},
		{"depth out of range", http.MethodGet, bomURL + "/explosion?max_depth=11", "", http.StatusBadRequest},
		{"explicit zero depth", http.MethodGet, bomURL + "/explosion?max_depth=0", "", http.StatusBadRequest},
		{"negative depth", http.MethodGet, bomURL + "/explosion?max_depth=-2", "", http.StatusBadRequest},
		{"depth not a number", http.MethodGet, bomURL + "/explosion?max_depth=deep", "", http.StatusBadRequest},
		{"missing scale parameter", http.MethodPost, bomURL + "/scale", `{}`, http.StatusBadRequest},
		{"both scale parameters", http.MethodPost, bomURL + "/scale", `{"target_batch_size":"10","scale_factor":"2"}`, http.StatusBadRequest},
		{"negative scale", http.MethodPost, bomURL + "/scale", `{"scale_factor":"-1"}`, http.StatusBadRequest},
		{"malformed scale body", http.MethodPost, bomURL + "/scale", `{`, http.StatusBadRequest},
		{"negative realized quantity", http.MethodGet, bomURL + "/by-products?realized_qty=-5", "", http.StatusUnprocessableEntity},
		{"expected yield above 100", http.MethodPut, bomURL + "/yield", `{"expected_yield_percent":"101"}`, http.StatusUnprocessableEntity},
		{"expected yield missing", http.MethodPut, bomURL + "/yield", `{}`, http.StatusBadRequest},
		{"compare with itself", http.MethodGet, srv.URL + "/api/v1/boms/compare?a=" + root.ID.String() + "&b=" + root.ID.String(), "", http.StatusBadRequest},
		{"compare missing id", http.MethodGet, srv.URL + "/api/v1/boms/compare?a=" + root.ID.String(), "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, tt.method, tt.url, tt.body)
			require.Equal(t, tt.status, resp.StatusCode, string(body))

			var apiErr apiError
			require.NoError(t, json.Unmarshal(body, &apiErr))
			assert.Equal(t, tt.status, apiErr.Code)
			assert.NotEmpty(t, apiErr.Message)
		})
	}
}

func TestExplosionEndpoint(t *testing.T) {
	srv, root := newBakeryServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/api/v1/boms/"+root.ID.String()+"/explosion?max_depth=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var res entities.ExplosionResult
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, root.ID, res.BOMID)
	assert.Equal(t, 1, res.TotalLevels)
	assert.Equal(t, 3, res.TotalItems)
}

func TestCircularExplosionReportsPath(t *testing.T) {
	repo, root := testhelpers.BuildChainTestData(3, true)
	svc := orchestration.NewBOMService(repo, repo, nil)
	srv := httptest.NewServer(thttp.NewRouter(svc, 0))
	defer srv.Close()

	resp, body := do(t, http.MethodGet, srv.URL+"/api/v1/boms/"+root.ID.String()+"/explosion", "")
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var apiErr apiError
	require.NoError(t, json.Unmarshal(body, &apiErr))
	assert.Equal(t, []entities.ComponentID{"ROOT", "P0001", "P0002", "P0003", "P0001"}, apiErr.Path)
}

func TestScaleEndpoint(t *testing.T) {
	srv, root := newBakeryServer(t)
	url := srv.URL + "/api/v1/boms/" + root.ID.String()

	resp, body := do(t, http.MethodPost, url+"/scale", `{"target_batch_size":"150"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var preview entities.ScaleResult
	require.NoError(t, json.Unmarshal(body, &preview))
	assert.False(t, preview.Applied)
	assert.True(t, preview.ScaleFactor.Equal(decimal.RequireFromString("1.5")))

	resp, body = do(t, http.MethodPost, url+"/scale", `{"scale_factor":"2","preview_only":false}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var applied entities.ScaleResult
	require.NoError(t, json.Unmarshal(body, &applied))
	assert.True(t, applied.Applied)

	resp, body = do(t, http.MethodGet, url, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bom entities.BOM
	require.NoError(t, json.Unmarshal(body, &bom))
	assert.True(t, bom.OutputQty.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, int64(2), bom.RowVersion)
}

func TestByProductEndpoints(t *testing.T) {
	srv, root := newBakeryServer(t)
	url := srv.URL + "/api/v1/boms/" + root.ID.String()

	resp, body := do(t, http.MethodGet, url+"/by-products?realized_qty=200", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var exps []entities.ByProductExpectation
	require.NoError(t, json.Unmarshal(body, &exps))
	require.Len(t, exps, 1)
	assert.True(t, exps[0].ExpectedQuantity.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, entities.ByProductPending, exps[0].Status)

	itemURL := url + "/by-products/" + exps[0].ItemID.String() + "/actual"
	resp, body = do(t, http.MethodPost, itemURL, `{"realized_qty":"200","actual_qty":"27","main_batch":"B-17"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var outcome orchestration.ByProductOutcome
	require.NoError(t, json.Unmarshal(body, &outcome))
	assert.Equal(t, entities.YieldGreen, outcome.Indicator)
	assert.True(t, outcome.YieldPercent.Equal(decimal.NewFromInt(90)))
	assert.Equal(t, "B-17-BP-BRAN", outcome.Record.BatchNumber)

	resp, body = do(t, http.MethodPost, itemURL, `{"realized_qty":"200","actual_qty":"-1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, string(body))

	resp, body = do(t, http.MethodPost, url+"/by-products/"+uuid.NewString()+"/actual", `{"realized_qty":"200","actual_qty":"1"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, string(body))

	resp, body = do(t, http.MethodGet, url+"/by-products/history", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var records []entities.ByProductRecord
	require.NoError(t, json.Unmarshal(body, &records))
	require.Len(t, records, 1)
	assert.True(t, records[0].ActualQuantity.Equal(decimal.NewFromInt(27)))
}

func TestYieldEndpoints(t *testing.T) {
	srv, root := newBakeryServer(t)
	url := srv.URL + "/api/v1/boms/" + root.ID.String() + "/yield"

	resp, body := do(t, http.MethodPut, url, `{"expected_yield_percent":"95"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = do(t, http.MethodGet, url, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var res entities.YieldAnalysis
	require.NoError(t, json.Unmarshal(body, &res))
	require.True(t, res.ExpectedYieldPercent.Valid)
	assert.True(t, res.ExpectedYieldPercent.Decimal.Equal(decimal.NewFromInt(95)))
}

func TestListBOMs(t *testing.T) {
	srv, _ := newBakeryServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/api/v1/boms", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var boms []entities.BOM
	require.NoError(t, json.Unmarshal(body, &boms))
	assert.Len(t, boms, 2)
}
