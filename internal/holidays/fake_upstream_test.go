package holidays

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeUpstream serves the two API endpoints from fixed data and counts calls
type fakeUpstream struct {
	mu             sync.Mutex
	federal        []Holiday
	provinces      []Province
	federalStatus  int
	provinceStatus int

	federalCalls  atomic.Int32
	provinceCalls atomic.Int32
	lastYear      atomic.Value
}

func newFakeUpstream(t *testing.T, federal []Holiday, provinces []Province) (*fakeUpstream, *httptest.Server) {
	t.Helper()
	f := &fakeUpstream{federal: federal, provinces: provinces}

	mux := http.NewServeMux()
	mux.HandleFunc("/holidays", func(w http.ResponseWriter, r *http.Request) {
		f.federalCalls.Add(1)
		f.lastYear.Store(r.URL.Query().Get("year") + "/" + r.URL.Query().Get("federal"))
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.federalStatus != 0 {
			http.Error(w, "boom", f.federalStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"holidays": f.federal})
	})
	mux.HandleFunc("/provinces", func(w http.ResponseWriter, r *http.Request) {
		f.provinceCalls.Add(1)
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.provinceStatus != 0 {
			http.Error(w, "boom", f.provinceStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"provinces": f.provinces})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeUpstream) calls() int {
	return int(f.federalCalls.Load() + f.provinceCalls.Load())
}

func (f *fakeUpstream) setFederalStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.federalStatus = status
}

func (f *fakeUpstream) setProvinceStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.provinceStatus = status
}

// ontario2024 is the federal/ON fixture: New Year's and Christmas federal,
// Family Day plus a duplicate New Year's for Ontario
func ontario2024() ([]Holiday, []Province) {
	newYear := Holiday{ID: 1, Date: "2024-01-01", ObservedDate: "2024-01-01", NameEn: "New Year's Day", NameFr: "Jour de l'An", Federal: 1}
	christmas := Holiday{ID: 25, Date: "2024-12-25", ObservedDate: "2024-12-25", NameEn: "Christmas Day", NameFr: "Noël", Federal: 1}
	familyDay := Holiday{ID: 3, Date: "2024-02-19", ObservedDate: "2024-02-19", NameEn: "Family Day", NameFr: "Fête de la famille", Federal: 0,
		Provinces: []ProvinceRef{{ID: "ON", NameEn: "Ontario"}}}
	provincialNewYear := newYear
	provincialNewYear.Federal = 0

	federal := []Holiday{newYear, christmas}
	provinces := []Province{
		{ID: "ON", NameEn: "Ontario", Holidays: []Holiday{familyDay, provincialNewYear}},
		{ID: "QC", NameEn: "Quebec", Holidays: []Holiday{
			{ID: 9, Date: "2024-06-24", ObservedDate: "2024-06-24", NameEn: "Saint-Jean-Baptiste Day", Provinces: []ProvinceRef{{ID: "QC", NameEn: "Quebec"}}},
		}},
	}
	return federal, provinces
}
