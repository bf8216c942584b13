package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/cogmap/pkg/agent"
	"github.com/m-mizutani/cogmap/pkg/memory"
	"github.com/m-mizutani/cogmap/pkg/server"
	"github.com/m-mizutani/cogmap/pkg/usecase/session"
	"github.com/m-mizutani/gt"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := server.New("127.0.0.1:0", func() (*session.Session, error) {
		store, err := memory.New(memory.NewHashEmbedder(8))
		if err != nil {
			return nil, err
		}
		return session.New(agent.NewMock(), store), nil
	})

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func createSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()

	resp, err := http.Post(ts.URL+"/api/v1/sessions", "application/json", nil)
	gt.NoError(t, err)
	defer resp.Body.Close()
	gt.Equal(t, resp.StatusCode, http.StatusCreated)

	var body map[string]string
	gt.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	gt.NotEqual(t, body["id"], "")
	return body["id"]
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()

	data, err := json.Marshal(payload)
	gt.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	gt.NoError(t, err)
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	gt.NoError(t, err)
	defer resp.Body.Close()
	gt.Equal(t, resp.StatusCode, http.StatusOK)
}

func TestReasonFlow(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	resp := postJSON(t, ts.URL+"/api/v1/sessions/"+id+"/reason", map[string]any{
		"query": "what is consciousness",
		"steps": 4,
	})
	defer resp.Body.Close()
	gt.Equal(t, resp.StatusCode, http.StatusOK)

	var result struct {
		Query string `json:"query"`
		Steps []struct {
			Step     int    `json:"step"`
			Text     string `json:"text"`
			RecordID int64  `json:"vector_id"`
		} `json:"steps"`
		Graph struct {
			Nodes []json.RawMessage `json:"nodes"`
			Links []json.RawMessage `json:"links"`
		} `json:"graph"`
	}
	gt.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	gt.Equal(t, result.Query, "what is consciousness")
	gt.A(t, result.Steps).Length(4)
	gt.A(t, result.Graph.Nodes).Length(5)
	gt.A(t, result.Graph.Links).Length(4)

	// Stats reflect the stored steps
	statsResp, err := http.Get(ts.URL + "/api/v1/sessions/" + id + "/stats")
	gt.NoError(t, err)
	defer statsResp.Body.Close()
	var stats struct {
		Count       int   `json:"count"`
		Dimension   int   `json:"dimension"`
		MemoryBytes int64 `json:"memory_bytes"`
	}
	gt.NoError(t, json.NewDecoder(statsResp.Body).Decode(&stats))
	gt.Equal(t, stats.Count, 4)
	gt.Equal(t, stats.Dimension, 8)
	gt.Equal(t, stats.MemoryBytes, int64(4*8*4))
}

func TestSearchFlow(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	resp := postJSON(t, ts.URL+"/api/v1/sessions/"+id+"/reason", map[string]any{
		"query": "origins of language",
	})
	resp.Body.Close()
	gt.Equal(t, resp.StatusCode, http.StatusOK)

	searchResp := postJSON(t, ts.URL+"/api/v1/sessions/"+id+"/search", map[string]any{
		"query": "origins",
		"k":     2,
	})
	defer searchResp.Body.Close()
	gt.Equal(t, searchResp.StatusCode, http.StatusOK)

	var body struct {
		Results []struct {
			ID    int64   `json:"id"`
			Text  string  `json:"text"`
			Score float64 `json:"score"`
		} `json:"results"`
	}
	gt.NoError(t, json.NewDecoder(searchResp.Body).Decode(&body))
	gt.A(t, body.Results).Length(2)
	gt.True(t, body.Results[0].Score >= body.Results[1].Score)
}

func TestSearchInvalidK(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	resp := postJSON(t, ts.URL+"/api/v1/sessions/"+id+"/search", map[string]any{
		"query": "q",
		"k":     -1,
	})
	defer resp.Body.Close()
	gt.Equal(t, resp.StatusCode, http.StatusBadRequest)
}

func TestReasonValidation(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	t.Run("missing query", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/v1/sessions/"+id+"/reason", map[string]any{})
		defer resp.Body.Close()
		gt.Equal(t, resp.StatusCode, http.StatusBadRequest)
	})

	t.Run("negative steps", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/v1/sessions/"+id+"/reason", map[string]any{
			"query": "q",
			"steps": -2,
		})
		defer resp.Body.Close()
		gt.Equal(t, resp.StatusCode, http.StatusBadRequest)
	})

	t.Run("invalid body", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/v1/sessions/"+id+"/reason", "application/json", bytes.NewReader([]byte("{broken")))
		gt.NoError(t, err)
		defer resp.Body.Close()
		gt.Equal(t, resp.StatusCode, http.StatusBadRequest)
	})
}

func TestUnknownSession(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/sessions/no-such-session/reason", map[string]any{
		"query": "q",
	})
	defer resp.Body.Close()
	gt.Equal(t, resp.StatusCode, http.StatusNotFound)
}

func TestClearEndpoint(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	resp := postJSON(t, ts.URL+"/api/v1/sessions/"+id+"/reason", map[string]any{"query": "q"})
	resp.Body.Close()

	clearResp := postJSON(t, ts.URL+"/api/v1/sessions/"+id+"/clear", nil)
	clearResp.Body.Close()
	gt.Equal(t, clearResp.StatusCode, http.StatusOK)

	statsResp, err := http.Get(ts.URL + "/api/v1/sessions/" + id + "/stats")
	gt.NoError(t, err)
	defer statsResp.Body.Close()
	var stats struct {
		Count int `json:"count"`
	}
	gt.NoError(t, json.NewDecoder(statsResp.Body).Decode(&stats))
	gt.Equal(t, stats.Count, 0)
}

func TestSessionsAreIsolated(t *testing.T) {
	ts := newTestServer(t)
	first := createSession(t, ts)
	second := createSession(t, ts)

	resp := postJSON(t, ts.URL+"/api/v1/sessions/"+first+"/reason", map[string]any{"query": "q", "steps": 3})
	resp.Body.Close()

	statsResp, err := http.Get(ts.URL + "/api/v1/sessions/" + second + "/stats")
	gt.NoError(t, err)
	defer statsResp.Body.Close()
	var stats struct {
		Count int `json:"count"`
	}
	gt.NoError(t, json.NewDecoder(statsResp.Body).Decode(&stats))
	gt.Equal(t, stats.Count, 0)
}

func TestGraphEndpoint(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	resp, err := http.Get(ts.URL + "/api/v1/sessions/" + id + "/graph")
	gt.NoError(t, err)
	defer resp.Body.Close()
	gt.Equal(t, resp.StatusCode, http.StatusOK)

	var payload struct {
		Nodes []json.RawMessage `json:"nodes"`
		Links []json.RawMessage `json:"links"`
	}
	gt.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	gt.A(t, payload.Nodes).Length(0)
	gt.A(t, payload.Links).Length(0)
}
