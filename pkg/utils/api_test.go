package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBytes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gbdl/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("payload"))
	}))
	defer ts.Close()

	body, contentType, err := NewClient(time.Second, "").GetBytes(ts.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), body)
	assert.Equal(t, "image/png", contentType)
}

func TestGetBytesRejectsBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, _, err := NewClient(time.Second, "").GetBytes(ts.URL)
	assert.Error(t, err)
}

func TestGetJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"page":[{"pid":"PA1"}]}`))
	}))
	defer ts.Close()

	var got struct {
		Page []struct {
			PID string `json:"pid"`
		} `json:"page"`
	}
	require.NoError(t, NewClient(time.Second, "").GetJSON(ts.URL, &got))
	require.Len(t, got.Page, 1)
	assert.Equal(t, "PA1", got.Page[0].PID)
}

func TestGetDocument(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body><div class="booktitle">LIFE</div></body></html>`))
	}))
	defer ts.Close()

	doc, err := NewClient(time.Second, "").GetDocument(ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "LIFE", doc.Find(".booktitle").Text())
}
