package curves

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/hpdata/internal/catalog"
	"github.com/lepinkainen/hpdata/internal/cmdutil"
	"github.com/lepinkainen/hpdata/internal/errors"
	"github.com/lepinkainen/hpdata/internal/fileutil"
	"github.com/lepinkainen/hpdata/internal/rtings"
	"github.com/lepinkainen/hpdata/internal/testutil"
)

func num(v float64) *float64 { return &v }

func readGraph(t *testing.T) rtings.GraphData {
	t.Helper()
	raw, err := os.ReadFile("testdata/graph-data.json")
	require.NoError(t, err)
	var graph rtings.GraphData
	require.NoError(t, json.Unmarshal(raw, &graph))
	return graph
}

func TestReconcileFallsBackToAlternatePair(t *testing.T) {
	graph := rtings.GraphData{
		Header: []string{"Frequency", "L", "R", "Target Response", "L_alt", "R_alt"},
		Data:   [][]*float64{{num(20), nil, nil, num(-1.2), num(19.8), num(20.1)}},
	}

	rows, err := Reconcile(graph)
	require.NoError(t, err)

	assert.Equal(t, [][4]float64{{20, 19.8, 20.1, -1.2}}, rows)
}

func TestReconcileFixture(t *testing.T) {
	rows, err := Reconcile(readGraph(t))
	require.NoError(t, err)

	assert.Equal(t, [][4]float64{
		{20, 19.8, 20.1, -1.2},
		{50, 21.5, 21.9, -0.8},
		{1000, 24.0, 24.2, 0.0},
	}, rows)
}

func TestReconcileDropRules(t *testing.T) {
	header := []string{"Frequency", "L", "R", "Target Response", "L_alt", "R_alt"}

	tests := []struct {
		name string
		row  []*float64
		want bool
	}{
		{name: "complete primary", row: []*float64{num(1), num(2), num(3), num(4), nil, nil}, want: true},
		{name: "one primary missing keeps primary pair", row: []*float64{num(1), num(2), nil, num(4), num(5), num(6)}, want: false},
		{name: "alternate pair incomplete", row: []*float64{num(1), nil, nil, num(4), num(5), nil}, want: false},
		{name: "target missing", row: []*float64{num(1), num(2), num(3), nil, num(5), num(6)}, want: false},
		{name: "frequency missing", row: []*float64{nil, num(2), num(3), num(4)}, want: false},
		{name: "short row without alternates", row: []*float64{num(1), nil, nil, num(4)}, want: false},
		{name: "empty row", row: []*float64{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Reconcile(rtings.GraphData{Header: header, Data: [][]*float64{tt.row}})
			require.NoError(t, err)
			if tt.want {
				assert.Len(t, rows, 1)
			} else {
				assert.Empty(t, rows)
			}
		})
	}
}

func TestReconcileLocatesNamedColumns(t *testing.T) {
	// Frequency and target are found by name; the channels stay positional.
	graph := rtings.GraphData{
		Header: []string{"Target Response", "L", "R", "Frequency"},
		Data:   [][]*float64{{num(-3), num(10), num(11), num(40)}},
	}

	rows, err := Reconcile(graph)
	require.NoError(t, err)
	assert.Equal(t, [][4]float64{{40, 10, 11, -3}}, rows)
}

func TestReconcileMissingHeaderColumn(t *testing.T) {
	_, err := Reconcile(rtings.GraphData{
		Header: []string{"Frequency", "L", "R"},
		Data:   [][]*float64{{num(20), num(1), num(2)}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsMissingFieldError(err))
}

func TestAdjustHeader(t *testing.T) {
	header := []string{"Frequency", "L", "R", "Target Response", "L_alt", "R_alt"}

	assert.Equal(t, []string{"Frequency", "L", "R", "Target Response"}, AdjustHeader(header))
	assert.Len(t, header, 6, "input header is left untouched")

	assert.Equal(t, []string{"Frequency", "L"}, AdjustHeader([]string{"Frequency", "L"}))
	assert.Equal(t, []string{"a", "b", "c", "d", "g"}, AdjustHeader([]string{"a", "b", "c", "d", "e", "f", "g"}))
}

// graphServer serves the resolve endpoint and the asset host from one server.
type graphServer struct {
	mu       sync.Mutex
	resolved []string
	referers []string
}

func (gs *graphServer) snapshot() (resolved, referers []string) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return append([]string(nil), gs.resolved...), append([]string(nil), gs.referers...)
}

func newGraphServer(t *testing.T, graph []byte) (*graphServer, string) {
	t.Helper()
	gs := &graphServer{}
	server := testutil.NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v2/safe/app/graph_tool__product_graph_data_url":
			var req struct {
				Variables struct {
					ProductID      string `json:"product_id"`
					TestOriginalID string `json:"test_original_id"`
				} `json:"variables"`
			}
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &req)

			gs.mu.Lock()
			gs.resolved = append(gs.resolved, req.Variables.ProductID+"@"+req.Variables.TestOriginalID)
			gs.mu.Unlock()

			switch req.Variables.ProductID {
			case "broken":
				_, _ = io.WriteString(w, `{"data":{"product":{"review":{}}}}`)
			case "empty":
				_, _ = io.WriteString(w, `{"data":{"product":{"review":{"test_results":[]}}}}`)
			default:
				_, _ = io.WriteString(w, `{"data":{"product":{"review":{"test_results":[{"graph_data_url":"/graphs/`+req.Variables.ProductID+`.json"}]}}}}`)
			}
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/graphs/"):
			gs.mu.Lock()
			gs.referers = append(gs.referers, r.Header.Get("Referer"))
			gs.mu.Unlock()
			_, _ = w.Write(graph)
		default:
			http.NotFound(w, r)
		}
	}))
	return gs, server.URL
}

func setupRun(t *testing.T, base string, products []catalog.Product) cmdutil.DataPaths {
	t.Helper()
	env := testutil.NewTestEnv(t)
	testutil.SetTestConfig(t, env, base)
	paths, err := cmdutil.SetupDataDir(env.Path("data"))
	require.NoError(t, err)
	_, err = fileutil.WriteJSONFile(products, paths.Catalog, true)
	require.NoError(t, err)
	return paths
}

func TestRunSkipsProductsWithoutTestResults(t *testing.T) {
	graph, err := os.ReadFile("testdata/graph-data.json")
	require.NoError(t, err)
	gs, base := newGraphServer(t, graph)

	paths := setupRun(t, base, []catalog.Product{
		{ID: "broken", Fullname: "Broken One", TestBench: catalog.TestBenchV16},
		{ID: "p2", Fullname: "Model Y", TestBench: catalog.TestBenchV16},
		{ID: "empty", Fullname: "Empty One", TestBench: catalog.TestBenchV16},
		{ID: "p4", Fullname: "Model W", TestBench: catalog.TestBenchV17},
	})

	client := rtings.NewClient("tok", rtings.WithBaseURL(base), rtings.WithAssetURL(base))
	summary, err := Run(context.Background(), Options{Paths: paths, Source: client, TestID: "3992"})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 2, summary.Failed)
	resolved, referers := gs.snapshot()
	assert.Equal(t, []string{"broken@3992", "p2@3992", "empty@3992", "p4@3992"}, resolved)
	assert.Equal(t, []string{base + "/", base + "/"}, referers)

	records, err := fileutil.ReadJSONFile[[]Record](paths.Curves)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "p2", records[0].ID)
	assert.Equal(t, "Model Y", records[0].Fullname)
	assert.Equal(t, []string{"Frequency", "L", "R", "Target Response"}, records[0].Header)
	assert.Equal(t, [4]float64{20, 19.8, 20.1, -1.2}, records[0].Data[0])
	assert.Len(t, records[0].Data, 3)
	assert.Equal(t, "p4", records[1].ID)
}

func TestRunResume(t *testing.T) {
	graph, err := os.ReadFile("testdata/graph-data.json")
	require.NoError(t, err)
	gs, base := newGraphServer(t, graph)

	paths := setupRun(t, base, []catalog.Product{
		{ID: "p1", Fullname: "Model X", TestBench: catalog.TestBenchV15},
		{ID: "p2", Fullname: "Model Y", TestBench: catalog.TestBenchV15},
	})
	_, err = fileutil.WriteJSONFile([]Record{{ID: "p1", Fullname: "Model X", Header: []string{}, Data: [][4]float64{}}}, paths.Curves, true)
	require.NoError(t, err)

	client := rtings.NewClient("tok", rtings.WithBaseURL(base), rtings.WithAssetURL(base))
	summary, err := Run(context.Background(), Options{Paths: paths, Source: client, TestID: "4100", Resume: true})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	resolved, _ := gs.snapshot()
	assert.Equal(t, []string{"p2@4100"}, resolved)

	records, err := fileutil.ReadJSONFile[[]Record](paths.Curves)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "p1", records[0].ID)
	assert.Equal(t, "p2", records[1].ID)
}

func TestRunWritesCurvePoints(t *testing.T) {
	graph, err := os.ReadFile("testdata/graph-data.json")
	require.NoError(t, err)
	_, base := newGraphServer(t, graph)

	env := testutil.NewTestEnv(t)
	testutil.SetTestConfig(t, env, base)
	dbPath := testutil.SetupDatasetteDB(t, env)
	paths, err := cmdutil.SetupDataDir(env.Path("data"))
	require.NoError(t, err)
	_, err = fileutil.WriteJSONFile([]catalog.Product{{ID: "p1", Fullname: "Model X", TestBench: catalog.TestBenchV15}}, paths.Catalog, true)
	require.NoError(t, err)

	client := rtings.NewClient("tok", rtings.WithBaseURL(base), rtings.WithAssetURL(base))
	_, err = Run(context.Background(), Options{Paths: paths, Source: client, TestID: "3992"})
	require.NoError(t, err)
	assert.FileExists(t, dbPath)
}
