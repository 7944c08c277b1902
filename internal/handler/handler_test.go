package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pochkachaiki/millsim/internal/metrics"
	"github.com/pochkachaiki/millsim/internal/models/failure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeRuns struct {
	docs      []failure.RunSummary
	insertErr error
}

func (f *fakeRuns) InsertOne(_ context.Context, doc interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.docs = append(f.docs, doc.(failure.RunSummary))
	return &mongo.InsertOneResult{}, nil
}

func (f *fakeRuns) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) *mongo.SingleResult {
	id := filter.(bson.M)["run_id"]
	for _, s := range f.docs {
		if s.RunID == id {
			return mongo.NewSingleResultFromDocument(s, nil, nil)
		}
	}
	return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
}

func newServer(runs *fakeRuns) *httptest.Server {
	mux := http.NewServeMux()
	New(runs, metrics.NewRecorder(prometheus.NewRegistry())).Register(mux)
	return httptest.NewServer(mux)
}

func validSummary() failure.RunSummary {
	return failure.RunSummary{
		RunID:      "7d0c1c8e-run",
		Seed:       42,
		Start:      time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC),
		Units:      []string{"M1", "M2"},
		Rows:       43_000,
		Columns:    64,
		Failures:   9,
		FailuresBy: map[string]int{"M1": 5, "M2": 4},
	}
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url+"/runs", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandleRun(t *testing.T) {
	runs := &fakeRuns{}
	srv := newServer(runs)
	defer srv.Close()

	b, err := json.Marshal(validSummary())
	require.NoError(t, err)

	resp := post(t, srv.URL, string(b))
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Len(t, runs.docs, 1)
	assert.Equal(t, 5, runs.docs[0].FailuresBy["M1"])
}

func TestHandleRunRejects(t *testing.T) {
	noUnits := validSummary()
	noUnits.Units = nil
	reversed := validSummary()
	reversed.End = reversed.Start.Add(-time.Hour)

	tests := map[string]any{
		"invalid json":   "{",
		"missing units":  noUnits,
		"reversed range": reversed,
	}
	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			runs := &fakeRuns{}
			srv := newServer(runs)
			defer srv.Close()

			body, ok := payload.(string)
			if !ok {
				b, err := json.Marshal(payload)
				require.NoError(t, err)
				body = string(b)
			}
			resp := post(t, srv.URL, body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Empty(t, runs.docs)
		})
	}
}

func TestHandleRunStoreError(t *testing.T) {
	srv := newServer(&fakeRuns{insertErr: errors.New("connection reset")})
	defer srv.Close()

	b, err := json.Marshal(validSummary())
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, post(t, srv.URL, string(b)).StatusCode)
}

func TestHandleGetRun(t *testing.T) {
	s := validSummary()
	srv := newServer(&fakeRuns{docs: []failure.RunSummary{s}})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/runs/" + s.RunID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got failure.RunSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, s.Rows, got.Rows)
	assert.True(t, s.End.Equal(got.End))

	missing, err := http.Get(srv.URL + "/runs/nope")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}
