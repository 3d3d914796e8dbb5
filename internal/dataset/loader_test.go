package dataset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Marky00100/program-gap/internal/model"
	pkgerrors "github.com/Marky00100/program-gap/pkg/errors"
)

// ── 测试数据 ──

const (
	testLMI = "soc_code,region,annual_openings_growth,ONET % Doctoral,ONET % Master,ONET % Bachelor\n" +
		"29-1141,North,300,0.05,0.15,0.40\n" +
		"29-1141,South,100,0.05,0.15,0.40\n"
	testGraduates = "cip_code,degree_level,graduates,year,region\n" +
		"51.0000,Bachelor,120,2022,North\n" +
		"51.0000,Bachelor,80,2021,North\n" +
		"51.0000,Associate,10,2022,North\n"
	testCrosswalk = "CIP2020Code,SOC2018Code\n51.0000,29-1141\n"
	testInverse   = "SOC2018Code,CIP2020Code\n29-1141,51.0000\n29-1141,51.3801\n"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("写入 %s 失败: %v", name, err)
		}
	}
	return dir
}

func testURIs() URIs {
	return URIs{LMI: "lmi.csv", Graduates: "graduates.csv", Crosswalk: "crosswalk.csv"}
}

// ── SourceLoader + FileSource ──

func TestSourceLoader_File(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"lmi.csv":       testLMI,
		"graduates.csv": testGraduates,
		"crosswalk.csv": testCrosswalk,
	})
	loader := NewSourceLoader(NewFileSource(dir), testURIs(), Options{GraduateYear: 2022}, nil, zap.NewNop())

	tables, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}

	if tables.Source != "file" || tables.ID == "" {
		t.Errorf("unexpected snapshot meta: source=%s id=%s", tables.Source, tables.ID)
	}
	if tables.AllRegionsLabel != DefaultAllRegionsLabel {
		t.Errorf("期望默认全部地区标签，实际=%s", tables.AllRegionsLabel)
	}
	// 年份过滤：只保留 2022
	if len(tables.Graduates) != 2 {
		t.Errorf("期望 2 行 2022 年毕业生，实际=%d", len(tables.Graduates))
	}
	// 默认 columns 权重：小数换算为百分数
	if !floatEq(tables.Occupations[0].PctBachelor, 40) {
		t.Errorf("期望学士占比 40，实际=%v", tables.Occupations[0].PctBachelor)
	}
	// 未提供反向映射：由正向映射推导
	if !reflect.DeepEqual(tables.Inverse, []model.CrosswalkRecord{{CIPCode: "51.0000", SOCCode: "29-1141"}}) {
		t.Errorf("unexpected inverse: %+v", tables.Inverse)
	}
}

func TestSourceLoader_AllYears(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"lmi.csv":       testLMI,
		"graduates.csv": testGraduates,
		"crosswalk.csv": testCrosswalk,
	})
	loader := NewSourceLoader(NewFileSource(dir), testURIs(), Options{}, ColumnWeights{}, zap.NewNop())

	tables, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if len(tables.Graduates) != 3 || tables.GraduateYear != 0 {
		t.Errorf("GraduateYear=0 时不应过滤年份，实际=%d 行", len(tables.Graduates))
	}
}

func TestSourceLoader_InverseProvided(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"lmi.csv":       testLMI,
		"graduates.csv": testGraduates,
		"crosswalk.csv": testCrosswalk,
		"inverse.csv":   testInverse,
	})
	uris := testURIs()
	uris.Inverse = "inverse.csv"
	loader := NewSourceLoader(NewFileSource(dir), uris, Options{}, nil, zap.NewNop())

	tables, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if got := tables.ProgramsForOccupation("29-1141"); !reflect.DeepEqual(got, []string{"51.0000", "51.3801"}) {
		t.Errorf("应使用提供的反向映射，实际=%v", got)
	}
}

func TestSourceLoader_MissingFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"lmi.csv":       testLMI,
		"crosswalk.csv": testCrosswalk,
	})
	loader := NewSourceLoader(NewFileSource(dir), testURIs(), Options{}, nil, zap.NewNop())

	_, err := loader.Load(context.Background())
	if !errors.Is(err, pkgerrors.ErrSourceUnavailable) {
		t.Fatalf("期望 ErrSourceUnavailable，实际: %v", err)
	}
	if !strings.Contains(err.Error(), "graduates") {
		t.Errorf("错误应指明失败的表: %v", err)
	}
}

func TestSourceLoader_MalformedTable(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"lmi.csv":       "title\nnothing useful\n",
		"graduates.csv": testGraduates,
		"crosswalk.csv": testCrosswalk,
	})
	loader := NewSourceLoader(NewFileSource(dir), testURIs(), Options{}, nil, zap.NewNop())

	_, err := loader.Load(context.Background())
	if !errors.Is(err, pkgerrors.ErrMalformedData) {
		t.Errorf("期望 ErrMalformedData，实际: %v", err)
	}
}

// ── SourceLoader + HTTPSource ──

func TestSourceLoader_HTTP(t *testing.T) {
	files := map[string]string{
		"/lmi.csv":       testLMI,
		"/graduates.csv": testGraduates,
		"/crosswalk.csv": testCrosswalk,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	defer srv.Close()

	uris := URIs{
		LMI:       srv.URL + "/lmi.csv",
		Graduates: srv.URL + "/graduates.csv",
		Crosswalk: srv.URL + "/crosswalk.csv",
	}
	loader := NewSourceLoader(NewHTTPSource(0), uris, Options{GraduateYear: 2022}, nil, zap.NewNop())

	tables, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if tables.Source != "http" || len(tables.Occupations) != 2 {
		t.Errorf("unexpected snapshot: source=%s occupations=%d", tables.Source, len(tables.Occupations))
	}

	// 404 视为来源不可用
	uris.Inverse = srv.URL + "/missing.csv"
	loader = NewSourceLoader(NewHTTPSource(0), uris, Options{}, nil, zap.NewNop())
	if _, err := loader.Load(context.Background()); !errors.Is(err, pkgerrors.ErrSourceUnavailable) {
		t.Errorf("期望 ErrSourceUnavailable，实际: %v", err)
	}
}

func TestIsXLSX(t *testing.T) {
	cases := map[string]bool{
		"CIP2020_SOC2018_Crosswalk.xlsx":                   true,
		"https://example.com/data/Crosswalk.XLSX?raw=true": true,
		"s3://bucket/crosswalk.csv":                        false,
		"https://example.com/crosswalk.csv":                false,
		"/abs/path/crosswalk":                              false,
	}
	for uri, want := range cases {
		if got := isXLSX(uri); got != want {
			t.Errorf("isXLSX(%q) = %v, want %v", uri, got, want)
		}
	}
}
