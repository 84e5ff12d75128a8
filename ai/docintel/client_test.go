package docintel

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/doctwin/ai"
)

const sampleResult = `{
	"status": "succeeded",
	"analyzeResult": {
		"pages": [
			{"pageNumber": 1, "width": 8.5, "height": 11.0, "unit": "inch", "angle": 0}
		],
		"paragraphs": [
			{
				"content": "Annual Report",
				"role": "title",
				"boundingRegions": [{"pageNumber": 1, "polygon": [1, 1, 5, 1, 5, 2, 1, 2]}],
				"spans": [{"offset": 0, "length": 13}]
			},
			{
				"content": "Revenue grew this year.",
				"boundingRegions": [{"pageNumber": 1, "polygon": [1, 3, 5, 3, 5, 4, 1, 4]}],
				"spans": [{"offset": 14, "length": 23}]
			}
		],
		"tables": [
			{
				"rowCount": 2,
				"columnCount": 2,
				"cells": [
					{"rowIndex": 0, "columnIndex": 0, "content": "Quarter", "kind": "columnHeader"},
					{"rowIndex": 0, "columnIndex": 1, "content": "Revenue", "kind": "columnHeader"},
					{"rowIndex": 1, "columnIndex": 0, "content": "Q1"},
					{"rowIndex": 1, "columnIndex": 1, "content": "1.2M"}
				],
				"boundingRegions": [{"pageNumber": 1, "polygon": [1, 5, 5, 5, 5, 7, 1, 7]}],
				"spans": [{"offset": 38, "length": 40}]
			}
		]
	}
}`

// newTestClient points a client at a test server with fast polling.
func newTestClient(t *testing.T, srv *httptest.Server) ai.LayoutAnalyzer {
	t.Helper()
	client, err := NewClient(srv.URL, "test-key",
		WithPollInterval(time.Millisecond),
		WithPollTimeout(time.Second),
		WithRateLimit(1000, 1000),
	)
	require.NoError(t, err)
	return client
}

func TestAnalyzeLayoutSuccess(t *testing.T) {
	polls := 0
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("POST /documentModels/prebuilt-layout:analyze", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		w.Header().Set("Operation-Location", srv.URL+"/operations/op-1")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET /operations/op-1", func(w http.ResponseWriter, r *http.Request) {
		polls++
		if polls < 3 {
			fmt.Fprint(w, `{"status": "running"}`)
			return
		}
		fmt.Fprint(w, sampleResult)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv)
	result, err := client.AnalyzeLayout(context.Background(), []byte("%PDF-1.7"), "report.pdf")
	require.NoError(t, err)

	require.Len(t, result.Pages, 1)
	assert.Equal(t, 1, result.Pages[0].Number)
	assert.Equal(t, 8.5, result.Pages[0].Width)

	require.Len(t, result.Paragraphs, 2)
	assert.Equal(t, "Annual Report", result.Paragraphs[0].Content)
	assert.Equal(t, "title", result.Paragraphs[0].Role)
	assert.Len(t, result.Paragraphs[0].Polygon, 8)

	require.Len(t, result.Tables, 1)
	table := result.Tables[0]
	assert.Equal(t, 2, table.RowCount)
	assert.Contains(t, table.HTML, "<th>Quarter</th>")
	assert.Contains(t, table.HTML, "<td>1.2M</td>")
	assert.Equal(t, 38, table.Offset)
	assert.GreaterOrEqual(t, polls, 3)
}

func TestAnalyzeLayoutUnsupportedFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unsupported media type", http.StatusUnsupportedMediaType)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	_, err := client.AnalyzeLayout(context.Background(), []byte("not a document"), "notes.txt")
	assert.ErrorIs(t, err, ai.ErrUnsupportedFormat)
}

func TestAnalyzeLayoutInvalidContent(t *testing.T) {
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("POST /documentModels/prebuilt-layout:analyze", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Operation-Location", srv.URL+"/operations/op-2")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET /operations/op-2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "failed", "error": {"code": "InvalidContent", "message": "file is corrupt"}}`)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv)
	_, err := client.AnalyzeLayout(context.Background(), []byte("garbage"), "broken.pdf")
	assert.ErrorIs(t, err, ai.ErrUnsupportedFormat)
}

func TestAnalyzeLayoutRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	_, err := client.AnalyzeLayout(context.Background(), []byte("%PDF-1.7"), "report.pdf")
	assert.ErrorIs(t, err, ai.ErrServiceUnavailable)
}

func TestAnalyzeLayoutPollTimeout(t *testing.T) {
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("POST /documentModels/prebuilt-layout:analyze", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Operation-Location", srv.URL+"/operations/op-3")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET /operations/op-3", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "running"}`)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	client, err := NewClient(srv.URL, "test-key",
		WithPollInterval(time.Millisecond),
		WithPollTimeout(10*time.Millisecond),
		WithRateLimit(1000, 1000),
	)
	require.NoError(t, err)

	_, err = client.AnalyzeLayout(context.Background(), []byte("%PDF-1.7"), "slow.pdf")
	assert.ErrorIs(t, err, ai.ErrServiceUnavailable)
}

func TestTableToHTMLSpans(t *testing.T) {
	table := resultTable{
		RowCount:    2,
		ColumnCount: 2,
		Cells: []tableCell{
			{RowIndex: 0, ColumnIndex: 0, Content: "Header", Kind: "columnHeader", ColumnSpan: 2},
			{RowIndex: 1, ColumnIndex: 0, Content: "a < b"},
			{RowIndex: 1, ColumnIndex: 1, Content: "c"},
		},
	}

	html := tableToHTML(table)
	assert.Contains(t, html, "<th colspan='2'>Header</th>")
	assert.Contains(t, html, "<td>a &lt; b</td>")
}
