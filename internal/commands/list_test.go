package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klabast/wb-services/canada-holidays/internal/holidays"
)

// upstream serves a tiny Canada Holidays API
func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/holidays", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"holidays": []holidays.Holiday{
				{Date: "2024-07-01", ObservedDate: "2024-07-01", NameEn: "Canada Day", Federal: 1},
			},
		})
	})
	mux.HandleFunc("/provinces", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"provinces": []holidays.Province{
				{ID: "NL", NameEn: "Newfoundland and Labrador", Holidays: []holidays.Holiday{
					{Date: "2024-07-01", ObservedDate: "2024-07-01", NameEn: "Memorial Day"},
					{Date: "2024-04-23", ObservedDate: "2024-04-22", NameEn: "St. George's Day",
						Provinces: []holidays.ProvinceRef{{ID: "NL", NameEn: "Newfoundland and Labrador", Optional: 1}}},
				}},
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	content := fmt.Sprintf("[upstream]\nbase_url = %q\nrate_limit = 0\n\n[logging]\nlevel = \"error\"\n", baseURL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestListTable(t *testing.T) {
	cfg := writeConfig(t, upstream(t).URL)

	var out bytes.Buffer
	err := List(context.Background(), []string{"-config", cfg, "-year", "2024", "-province", "nl"}, &out)
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 4)
	assert.Contains(t, string(lines[0]), "DATE")
	assert.Contains(t, string(lines[1]), "St. George's Day")
	assert.Contains(t, string(lines[1]), "optional")
	assert.Contains(t, string(lines[2]), "Canada Day")
	assert.Contains(t, string(lines[3]), "Memorial Day")
}

func TestListJSONWithKinds(t *testing.T) {
	cfg := writeConfig(t, upstream(t).URL)

	var out bytes.Buffer
	err := List(context.Background(), []string{"-config", cfg, "-year", "2024", "-province", "NL", "-kinds", "federal", "-json"}, &out)
	require.NoError(t, err)

	var body struct {
		Province string             `json:"province"`
		Holidays []holidays.Holiday `json:"holidays"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	assert.Equal(t, "NL", body.Province)
	require.Len(t, body.Holidays, 1)
	assert.Equal(t, "Canada Day", body.Holidays[0].NameEn)
}

func TestListDate(t *testing.T) {
	cfg := writeConfig(t, upstream(t).URL)

	var out bytes.Buffer
	require.NoError(t, List(context.Background(), []string{"-config", cfg, "-province", "NL", "-date", "2024-04-22"}, &out))
	assert.Equal(t, "2024-04-22 is St. George's Day (optional) in Newfoundland and Labrador\n", out.String())

	out.Reset()
	require.NoError(t, List(context.Background(), []string{"-config", cfg, "-province", "NL", "-date", "2024-04-24"}, &out))
	assert.Contains(t, out.String(), "is not a holiday")
}

func TestListInvalidInput(t *testing.T) {
	cfg := writeConfig(t, upstream(t).URL)

	err := List(context.Background(), []string{"-config", cfg, "-province", "ZZ"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, holidays.ErrInvalidProvince)

	err = List(context.Background(), []string{"-config", cfg, "-year", "1800"}, &bytes.Buffer{})
	assert.Error(t, err)

	err = List(context.Background(), []string{"-config", cfg, "-date", "24-04-2024"}, &bytes.Buffer{})
	assert.Error(t, err)

	var out bytes.Buffer
	err = List(context.Background(), []string{"-config", cfg, "-year", "2024", "-province", "NL", "-kinds", "federl"}, &out)
	assert.ErrorIs(t, err, holidays.ErrInvalidKind)
	assert.Empty(t, out.String())
}

func TestListUpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()
	cfg := writeConfig(t, srv.URL)

	err := List(context.Background(), []string{"-config", cfg, "-year", "2024"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch holidays")
}

func TestResolveConfigPath(t *testing.T) {
	assert.Equal(t, "x.toml", resolveConfigPath("x.toml"))

	t.Setenv("HOLIDAYS_CONFIG", "/etc/holidays.toml")
	assert.Equal(t, "/etc/holidays.toml", resolveConfigPath(""))
}
