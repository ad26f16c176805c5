package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"strategymap/application/commands"
	"strategymap/application/commands/bus"
	"strategymap/application/queries"
	querybus "strategymap/application/queries/bus"
	"strategymap/domain/core/entities"
	"strategymap/domain/core/valueobjects"
	"strategymap/domain/geometry"
	"strategymap/infrastructure/cache"
	"strategymap/infrastructure/config"
	"strategymap/infrastructure/persistence/memory"
	"strategymap/interfaces/http/rest/handlers"
	pkgerrors "strategymap/pkg/errors"
	"strategymap/pkg/observability"
)

func newTestServer(t *testing.T) (*httptest.Server, *observability.Collector) {
	t.Helper()
	logger := zap.NewNop()
	repo := memory.NewStrategyRepository(logger)
	c := cache.NewInMemoryCache(0)
	t.Cleanup(c.Close)
	metrics := observability.NewCollector("strategymap")

	commandBus := bus.NewCommandBus()
	pipeline := bus.NewPipeline(bus.LoggingMiddleware(logger), bus.MetricsMiddleware(metrics))
	require.NoError(t, commandBus.Register(commands.SyncStrategyCommand{},
		pipeline.Execute(commands.NewSyncStrategyHandler(repo, nil, c, nil, logger))))

	queryBus := querybus.NewQueryBus()
	getHandler := querybus.NewCachingMiddleware(c, 30, logger).Wrap(queries.NewGetStrategyHandler(repo, logger))
	require.NoError(t, queryBus.Register(queries.GetStrategyQuery{}, querybus.NewMetricsMiddleware(metrics).Wrap(getHandler)))

	cfg := &config.Config{
		Environment:    "test",
		EnableCORS:     true,
		EnableMetrics:  true,
		AllowedOrigins: []string{"https://app.example"},
	}
	srv := httptest.NewServer(NewRouter(commandBus, queryBus, cfg, metrics, logger).Setup())
	t.Cleanup(srv.Close)
	return srv, metrics
}

func sampleDTOs(t *testing.T) []entities.NodeDTO {
	t.Helper()
	root, err := entities.NewNode(valueobjects.NodeTypeMain, valueobjects.NodeID{}, "Growth", geometry.Pt(0, -300))
	require.NoError(t, err)
	child, err := entities.NewNode(valueobjects.NodeTypeSecondary, root.ID(), "Content", geometry.Pt(320, -270))
	require.NoError(t, err)
	return entities.NodesToDTOs([]entities.Node{root, child})
}

func postSync(t *testing.T, srv *httptest.Server, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/api/strategy/sync", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRouter_SyncThenGet(t *testing.T) {
	srv, _ := newTestServer(t)
	dtos := sampleDTOs(t)

	// Nothing stored yet
	resp, err := http.Get(srv.URL + "/api/strategy/acme")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var empty []entities.NodeDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&empty))
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	syncResp := postSync(t, srv, handlers.SyncStrategyRequest{ClientID: "acme", Nodes: dtos})
	require.Equal(t, http.StatusOK, syncResp.StatusCode)
	var ack handlers.SyncStrategyResponse
	require.NoError(t, json.NewDecoder(syncResp.Body).Decode(&ack))
	assert.True(t, ack.Success)
	assert.False(t, ack.SavedAt.IsZero())

	// The cached empty read was invalidated by the sync
	resp2, err := http.Get(srv.URL + "/api/strategy/acme")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var got []entities.NodeDTO
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&got))
	assert.Equal(t, dtos, got)
}

func TestRouter_ForeignIDsRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	root, mid := "k3j9x2m1a", "x-2"
	dtos := []entities.NodeDTO{
		{ID: root, Type: "main", Label: "Growth", X: 400, Y: 300},
		{ID: mid, Type: "secondary", Label: "Blog", ParentID: &root, X: 720, Y: 330},
		{ID: "3", Type: "post", Label: "Launch", ParentID: &mid, X: 980, Y: 360},
	}

	resp := postSync(t, srv, handlers.SyncStrategyRequest{ClientID: "acme", Nodes: dtos})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got, err := http.Get(srv.URL + "/api/strategy/acme")
	require.NoError(t, err)
	defer got.Body.Close()
	var stored []entities.NodeDTO
	require.NoError(t, json.NewDecoder(got.Body).Decode(&stored))
	assert.Equal(t, dtos, stored)
}

func TestRouter_SyncRejects(t *testing.T) {
	srv, _ := newTestServer(t)

	mains := make([]entities.NodeDTO, 7)
	for i := range mains {
		n, err := entities.NewNode(valueobjects.NodeTypeMain, valueobjects.NodeID{}, "Main", geometry.Pt(float64(i), 0))
		require.NoError(t, err)
		mains[i] = n.ToDTO()
	}

	tests := []struct {
		name   string
		body   interface{}
		status int
		kind   pkgerrors.ErrorType
	}{
		{name: "missing client", body: handlers.SyncStrategyRequest{Nodes: sampleDTOs(t)}, status: http.StatusBadRequest, kind: pkgerrors.ErrorTypeValidation},
		{name: "bad type", body: map[string]interface{}{"clientId": "acme", "nodes": []map[string]interface{}{{"id": valueobjects.NewNodeID().String(), "type": "tertiary"}}}, status: http.StatusBadRequest, kind: pkgerrors.ErrorTypeValidation},
		{name: "too many mains", body: handlers.SyncStrategyRequest{ClientID: "acme", Nodes: mains}, status: http.StatusConflict, kind: pkgerrors.ErrorTypeCapacityExceeded},
		{name: "not json", body: "nodes", status: http.StatusBadRequest, kind: pkgerrors.ErrorTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postSync(t, srv, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body pkgerrors.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.True(t, body.Error)
			assert.Equal(t, string(tt.kind), body.Type)
			assert.NotEmpty(t, body.RequestID)
			if tt.kind == pkgerrors.ErrorTypeCapacityExceeded {
				assert.Equal(t, 7.0, body.Details["count"])
				assert.Equal(t, 6.0, body.Details["limit"])
			}
		})
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/health", "/ready"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, err := http.Get(srv.URL + "/api/strategy/acme")
	require.NoError(t, err)
	resp.Body.Close()

	metricsResp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(metricsResp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `route="/api/strategy/{clientId}"`)
	assert.Contains(t, buf.String(), `name="GetStrategyQuery"`)
}

func TestRouter_CORS(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/strategy/sync", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "https://app.example", resp.Header.Get("Access-Control-Allow-Origin"))
}
