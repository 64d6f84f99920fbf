package services

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/nwatts/gbdl/pkg/data"
)

// mockSource implements sources.Source with per-test overrides.
type mockSource struct {
	resolveIDFunc      func(url string) (string, error)
	getIssueFunc       func(id string) (*data.Issue, map[string]string, error)
	getPagesFunc       func(id string) ([]data.Page, map[string]string, error)
	getPageSourcesFunc func(id, firstPID, pid string) (map[string]string, error)
	getImageFunc       func(src string) ([]byte, string, error)
	getPeriodURLsFunc  func(url string) ([]string, error)
	getIssueURLsFunc   func(url string) ([]string, error)
}

func (m *mockSource) ResolveID(url string) (string, error) {
	if m.resolveIDFunc != nil {
		return m.resolveIDFunc(url)
	}
	if i := strings.LastIndex(url, "id="); i >= 0 {
		return url[i+3:], nil
	}
	return url, nil
}

func (m *mockSource) GetIssue(id string) (*data.Issue, map[string]string, error) {
	if m.getIssueFunc != nil {
		return m.getIssueFunc(id)
	}
	return &data.Issue{
		ID:          id,
		SeriesName:  "LIFE",
		PublishDate: "Oct 3, 1969",
		Type:        data.Magazine,
	}, nil, nil
}

func (m *mockSource) GetPages(id string) ([]data.Page, map[string]string, error) {
	if m.getPagesFunc != nil {
		return m.getPagesFunc(id)
	}
	return []data.Page{
			{Number: 1, PID: "PA1"},
			{Number: 2, PID: "PA2"},
			{Number: 3, PID: "PA3"},
		}, map[string]string{
			"PA1": "http://img/PA1",
			"PA2": "http://img/PA2",
			"PA3": "http://img/PA3",
		}, nil
}

func (m *mockSource) GetPageSources(id, firstPID, pid string) (map[string]string, error) {
	if m.getPageSourcesFunc != nil {
		return m.getPageSourcesFunc(id, firstPID, pid)
	}
	return nil, errors.New("no page sources configured")
}

func (m *mockSource) GetImage(src string) ([]byte, string, error) {
	if m.getImageFunc != nil {
		return m.getImageFunc(src)
	}
	return testPNG(nil, 40, 60), "image/png", nil
}

func (m *mockSource) GetPeriodURLs(url string) ([]string, error) {
	if m.getPeriodURLsFunc != nil {
		return m.getPeriodURLsFunc(url)
	}
	return nil, errors.New("no periods configured")
}

func (m *mockSource) GetIssueURLs(url string) ([]string, error) {
	if m.getIssueURLsFunc != nil {
		return m.getIssueURLsFunc(url)
	}
	return nil, errors.New("no issues configured")
}

// testPNG encodes a solid-color PNG with the given dimensions. The
// nil-receiver form is usable from mock defaults.
func testPNG(t *testing.T, width, height int) []byte {
	if t != nil {
		t.Helper()
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		if t != nil {
			t.Fatalf("failed to encode test PNG: %v", err)
		}
		panic(err)
	}
	return buf.Bytes()
}

func testIssue(id string) *data.Issue {
	return &data.Issue{
		ID:          id,
		SeriesName:  "LIFE",
		PublishDate: "Oct 3, 1969",
		Type:        data.Magazine,
	}
}
