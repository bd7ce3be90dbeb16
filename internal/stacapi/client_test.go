package stacapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/npapad/s1rgb/internal/geo"
)

func itemsResponse(items ...map[string]any) []byte {
	data, _ := json.Marshal(map[string]any{
		"type":     "FeatureCollection",
		"features": items,
	})
	return data
}

func pagedResponse(nextHref string, items ...map[string]any) []byte {
	body := map[string]any{
		"type":     "FeatureCollection",
		"features": items,
	}
	if nextHref != "" {
		body["links"] = []map[string]any{
			{"rel": "next", "href": nextHref, "type": "application/geo+json"},
		}
	}
	data, _ := json.Marshal(body)
	return data
}

func testItem(id, datetime string) map[string]any {
	return map[string]any{
		"type":            "Feature",
		"stac_version":    "1.0.0",
		"id":              id,
		"collection":      "sentinel-1-grd",
		"geometry":        nil,
		"properties":      map[string]any{"datetime": datetime},
		"assets":          map[string]any{},
		"links":           []any{},
	}
}

func TestClient_Search_BuildsQuery(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/search" {
			t.Errorf("expected path /v1/search, got %s", r.URL.Path)
		}
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		w.Header().Set("Content-Type", "application/geo+json")
		w.Write(itemsResponse())
	}))
	defer server.Close()

	client := NewClient(server.URL+"/v1", 30*time.Second)
	aoi, _ := geo.NewAOI(21.65, 40.67, 21.75, 40.76)

	_, err := client.Search(context.Background(), SearchParams{
		Collections: []string{"sentinel-1-grd"},
		AOI:         &aoi,
		Start:       time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC),
		Limit:       50,
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if gotQuery["collections"] != "sentinel-1-grd" {
		t.Errorf("unexpected collections param: %q", gotQuery["collections"])
	}
	if gotQuery["bbox"] != "21.65,40.67,21.75,40.76" {
		t.Errorf("unexpected bbox param: %q", gotQuery["bbox"])
	}
	if gotQuery["datetime"] != "2025-12-01T00:00:00Z/2025-12-15T00:00:00Z" {
		t.Errorf("unexpected datetime param: %q", gotQuery["datetime"])
	}
	if gotQuery["limit"] != "50" {
		t.Errorf("unexpected limit param: %q", gotQuery["limit"])
	}
}

func TestClient_Search_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, 30*time.Second)
	if _, err := client.Search(context.Background(), SearchParams{}); err == nil {
		t.Fatal("expected error on non-200 response, got nil")
	}
}

func TestClient_LatestItem_PicksMostRecent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(itemsResponse(
			testItem("S1A_IW_GRDH_1SDV_20251203T163027_20251203T163052_061234_079ABC_1234", "2025-12-03T16:30:27Z"),
			testItem("S1A_IW_GRDH_1SDV_20251209T163027_20251209T163052_061321_079DEF_5678", "2025-12-09T16:30:27Z"),
			testItem("S1A_IW_GRDH_1SDV_20251201T163027_20251201T163052_061199_079AAA_9ABC", "2025-12-01T16:30:27Z"),
		))
	}))
	defer server.Close()

	client := NewClient(server.URL, 30*time.Second)
	item, err := client.LatestItem(context.Background(), SearchParams{})
	if err != nil {
		t.Fatalf("LatestItem failed: %v", err)
	}

	want := "S1A_IW_GRDH_1SDV_20251209T163027_20251209T163052_061321_079DEF_5678"
	if item.Id != want {
		t.Errorf("expected latest item %s, got %s", want, item.Id)
	}
}

func TestClient_Search_FollowsPagination(t *testing.T) {
	var server *httptest.Server
	requests := 0
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		switch r.URL.Query().Get("page") {
		case "":
			w.Write(pagedResponse(server.URL+"/search?page=2",
				testItem("S1A_IW_GRDH_1SDV_20251203T163027_20251203T163052_061234_079ABC_1234", "2025-12-03T16:30:27Z"),
				testItem("S1A_IW_GRDH_1SDV_20251201T163027_20251201T163052_061199_079AAA_9ABC", "2025-12-01T16:30:27Z"),
			))
		case "2":
			// Relative next link must resolve against the page URL.
			w.Write(pagedResponse("/search?page=3",
				testItem("S1A_IW_GRDH_1SDV_20251205T163027_20251205T163052_061287_079CCC_DEF0", "2025-12-05T16:30:27Z"),
			))
		case "3":
			w.Write(pagedResponse("",
				testItem("S1A_IW_GRDH_1SDV_20251209T163027_20251209T163052_061321_079DEF_5678", "2025-12-09T16:30:27Z"),
			))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, 30*time.Second)
	result, err := client.Search(context.Background(), SearchParams{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if requests != 3 {
		t.Errorf("expected 3 page requests, got %d", requests)
	}
	if len(result.Features) != 4 {
		t.Fatalf("expected 4 items across pages, got %d", len(result.Features))
	}
}

func TestClient_LatestItem_AcrossPages(t *testing.T) {
	// The newest acquisition sits on the second page; a first-page-only
	// search would silently return an older scene.
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.Write(pagedResponse("",
				testItem("S1A_IW_GRDH_1SDV_20251209T163027_20251209T163052_061321_079DEF_5678", "2025-12-09T16:30:27Z"),
			))
			return
		}
		w.Write(pagedResponse(server.URL+"/search?page=2",
			testItem("S1A_IW_GRDH_1SDV_20251203T163027_20251203T163052_061234_079ABC_1234", "2025-12-03T16:30:27Z"),
			testItem("S1A_IW_GRDH_1SDV_20251201T163027_20251201T163052_061199_079AAA_9ABC", "2025-12-01T16:30:27Z"),
		))
	}))
	defer server.Close()

	client := NewClient(server.URL, 30*time.Second)
	item, err := client.LatestItem(context.Background(), SearchParams{})
	if err != nil {
		t.Fatalf("LatestItem failed: %v", err)
	}

	want := "S1A_IW_GRDH_1SDV_20251209T163027_20251209T163052_061321_079DEF_5678"
	if item.Id != want {
		t.Errorf("expected latest item from second page %s, got %s", want, item.Id)
	}
}

func TestClient_Search_PageLoopBounded(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Every page points at itself.
		w.Write(pagedResponse(server.URL + "/search"))
	}))
	defer server.Close()

	client := NewClient(server.URL, 30*time.Second)
	if _, err := client.Search(context.Background(), SearchParams{}); err == nil {
		t.Fatal("expected error on unbounded pagination, got nil")
	}
}

func TestClient_LatestItem_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(itemsResponse())
	}))
	defer server.Close()

	client := NewClient(server.URL, 30*time.Second)
	_, err := client.LatestItem(context.Background(), SearchParams{})
	if !errors.Is(err, ErrNoScenes) {
		t.Errorf("expected ErrNoScenes, got %v", err)
	}
}

func TestItemDatetime_Formats(t *testing.T) {
	tests := []struct {
		name        string
		datetime    any
		expectError bool
	}{
		{name: "RFC3339", datetime: "2025-12-03T16:30:27Z"},
		{name: "fractional seconds without zone", datetime: "2025-12-03T16:30:27.123456"},
		{name: "missing", datetime: nil, expectError: true},
		{name: "not a string", datetime: 42, expectError: true},
		{name: "garbage", datetime: "not a date", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &Item{Id: "x", Properties: map[string]any{}}
			if tt.datetime != nil {
				item.Properties["datetime"] = tt.datetime
			}
			_, err := ItemDatetime(item)
			if tt.expectError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
