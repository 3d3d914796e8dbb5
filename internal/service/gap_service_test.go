package service

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Marky00100/program-gap/internal/dataset"
	"github.com/Marky00100/program-gap/internal/dto"
)

// ── Mock SnapshotProvider ──

type mockSnapshots struct {
	tables *dataset.Tables
	err    error
}

func (m *mockSnapshots) Current() (*dataset.Tables, error) {
	return m.tables, m.err
}

// ── Mock ResultCache（内存实现）──

type mockCache struct {
	data    map[string][]byte
	gets    int
	sets    int
	lastTTL time.Duration
	getErr  error
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) GetJSON(_ context.Context, key string, dst interface{}) (bool, error) {
	m.gets++
	if m.getErr != nil {
		return false, m.getErr
	}
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (m *mockCache) SetJSON(_ context.Context, key string, v interface{}, ttl time.Duration) error {
	m.sets++
	m.lastTTL = ttl
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func setupTestGapService(tables *dataset.Tables, cache ResultCache) GapService {
	return NewGapService(&mockSnapshots{tables: tables}, cache, time.Minute, zap.NewNop())
}

// ── Compute ──

func TestGapService_Compute_Example(t *testing.T) {
	svc := setupTestGapService(newNursingTables(), nil)

	resp, err := svc.Compute(context.Background(), &dto.GapRequest{
		CIPCode:     "51.0000",
		DegreeLevel: "Bachelor",
		Region:      "North",
	})
	if err != nil {
		t.Fatalf("Compute 失败: %v", err)
	}

	if resp.TotalGraduates != 120 || !almostEqual(resp.AdjustedDemand, 120) {
		t.Errorf("unexpected result: %+v", resp)
	}
	if resp.RatioDisplay != "1.00" {
		t.Errorf("期望 ratio_display=1.00，实际=%s", resp.RatioDisplay)
	}
	if resp.DegreeLevelFallback {
		t.Error("Bachelor 不应触发兜底")
	}
}

func TestGapService_Compute_NormalizesSelection(t *testing.T) {
	svc := setupTestGapService(newMultiRegionTables(), nil)

	// "51" 补齐为 "51.0000"，空地区视为全部地区
	resp, err := svc.Compute(context.Background(), &dto.GapRequest{CIPCode: "51.0"})
	if err != nil {
		t.Fatalf("Compute 失败: %v", err)
	}

	if resp.CIPCode != "51.0000" {
		t.Errorf("期望 cip=51.0000，实际=%s", resp.CIPCode)
	}
	if resp.Region != allRegions {
		t.Errorf("期望 region=%s，实际=%s", allRegions, resp.Region)
	}
	if resp.TotalGraduates != 150 {
		t.Errorf("期望 total_graduates=150，实际=%d", resp.TotalGraduates)
	}
}

func TestGapService_Compute_DegreeFallback(t *testing.T) {
	svc := setupTestGapService(newMultiRegionTables(), nil)

	resp, err := svc.Compute(context.Background(), &dto.GapRequest{
		CIPCode:     "51.0000",
		DegreeLevel: "Associate",
		Region:      "North",
	})
	if err != nil {
		t.Fatalf("Compute 失败: %v", err)
	}

	if resp.DegreeLevel != "Bachelor" || !resp.DegreeLevelFallback {
		t.Errorf("无法识别的学位层级应兜底为 Bachelor 并标记，实际: %+v", resp)
	}
	if !almostEqual(resp.AdjustedDemand, 110) {
		t.Errorf("期望按学士列计算 110，实际=%v", resp.AdjustedDemand)
	}
}

func TestGapService_Compute_DatasetNotReady(t *testing.T) {
	svc := NewGapService(&mockSnapshots{err: dataset.ErrNotLoaded}, nil, 0, zap.NewNop())

	_, err := svc.Compute(context.Background(), &dto.GapRequest{CIPCode: "51.0000"})
	if !errors.Is(err, ErrDatasetNotReady) {
		t.Errorf("期望 ErrDatasetNotReady，实际: %v", err)
	}
}

func TestGapService_Compute_UsesCache(t *testing.T) {
	cache := newMockCache()
	svc := setupTestGapService(newNursingTables(), cache)
	req := &dto.GapRequest{CIPCode: "51.0000", DegreeLevel: "Bachelor", Region: "North"}

	first, err := svc.Compute(context.Background(), req)
	if err != nil {
		t.Fatalf("Compute 失败: %v", err)
	}
	second, err := svc.Compute(context.Background(), req)
	if err != nil {
		t.Fatalf("Compute 失败: %v", err)
	}

	if cache.sets != 1 {
		t.Errorf("期望写缓存 1 次，实际=%d", cache.sets)
	}
	if cache.lastTTL != time.Minute {
		t.Errorf("期望 TTL=1m，实际=%v", cache.lastTTL)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("缓存命中结果应与计算结果一致: %+v vs %+v", first, second)
	}
}

func TestGapService_Compute_CacheSharedAcrossFallback(t *testing.T) {
	cache := newMockCache()
	svc := setupTestGapService(newNursingTables(), cache)

	// 无法识别的学位与 Bachelor 落到同一缓存键
	fallback, err := svc.Compute(context.Background(), &dto.GapRequest{CIPCode: "51.0000", DegreeLevel: "Phd-ish", Region: "North"})
	if err != nil {
		t.Fatalf("Compute 失败: %v", err)
	}
	if !fallback.DegreeLevelFallback {
		t.Fatal("无法识别的学位应标记兜底")
	}

	valid, err := svc.Compute(context.Background(), &dto.GapRequest{CIPCode: "51.0000", DegreeLevel: "Bachelor", Region: "North"})
	if err != nil {
		t.Fatalf("Compute 失败: %v", err)
	}
	if cache.sets != 1 {
		t.Errorf("第二次请求应命中缓存，sets=%d", cache.sets)
	}
	if valid.DegreeLevelFallback {
		t.Error("合法学位命中缓存时不应带回兜底标记")
	}
	if valid.TotalGraduates != fallback.TotalGraduates || valid.RatioDisplay != fallback.RatioDisplay {
		t.Errorf("同一缓存键的计算结果应一致: %+v vs %+v", valid, fallback)
	}

	// 反向：缓存由合法请求写入后，无法识别的学位仍应标记兜底
	again, err := svc.Compute(context.Background(), &dto.GapRequest{CIPCode: "51.0000", DegreeLevel: "Phd-ish", Region: "North"})
	if err != nil {
		t.Fatalf("Compute 失败: %v", err)
	}
	if !again.DegreeLevelFallback {
		t.Error("命中缓存时兜底标记应按本次请求计算")
	}
}

func TestGapService_Compute_CacheErrorIgnored(t *testing.T) {
	cache := newMockCache()
	cache.getErr = errors.New("redis down")
	svc := setupTestGapService(newNursingTables(), cache)

	resp, err := svc.Compute(context.Background(), &dto.GapRequest{CIPCode: "51.0000", Region: "North"})
	if err != nil {
		t.Fatalf("缓存异常不应影响计算: %v", err)
	}
	if resp.TotalGraduates != 120 {
		t.Errorf("unexpected result: %+v", resp)
	}
}

func TestGapService_Compute_CacheKeyedBySnapshot(t *testing.T) {
	cache := newMockCache()
	snaps := &mockSnapshots{tables: newNursingTables()}
	svc := NewGapService(snaps, cache, time.Minute, zap.NewNop())
	req := &dto.GapRequest{CIPCode: "51.0000", Region: "North"}

	if _, err := svc.Compute(context.Background(), req); err != nil {
		t.Fatalf("Compute 失败: %v", err)
	}

	// 重新装载后快照 ID 变化，旧缓存不再命中
	snaps.tables = newMultiRegionTables()
	resp, err := svc.Compute(context.Background(), req)
	if err != nil {
		t.Fatalf("Compute 失败: %v", err)
	}
	if cache.sets != 2 {
		t.Errorf("新快照应重新计算并写缓存，sets=%d", cache.sets)
	}
	if !almostEqual(resp.AdjustedDemand, 110) {
		t.Errorf("期望使用新快照计算 110，实际=%v", resp.AdjustedDemand)
	}
}

// ── Detail ──

func TestGapService_Detail(t *testing.T) {
	svc := setupTestGapService(newMultiRegionTables(), nil)

	resp, err := svc.Detail(context.Background(), &dto.GapRequest{CIPCode: "51.0000", Region: "North"})
	if err != nil {
		t.Fatalf("Detail 失败: %v", err)
	}

	if !reflect.DeepEqual(resp.Occupations, []string{"29-1141", "29-2061"}) {
		t.Errorf("unexpected occupations: %v", resp.Occupations)
	}
	if len(resp.Contributions) != 2 {
		t.Errorf("期望 2 行贡献，实际=%d", len(resp.Contributions))
	}
	if resp.TotalGraduates != 120 || !almostEqual(resp.AdjustedDemand, 110) {
		t.Errorf("明细中的中间值应与 Compute 一致: %+v", resp.GapResponse)
	}
}

// ── Options ──

func TestGapService_Options(t *testing.T) {
	svc := setupTestGapService(newMultiRegionTables(), nil)

	resp, err := svc.Options(context.Background())
	if err != nil {
		t.Fatalf("Options 失败: %v", err)
	}

	if !reflect.DeepEqual(resp.Programs, []string{"11.0701", "51.0000"}) {
		t.Errorf("unexpected programs: %v", resp.Programs)
	}
	if !reflect.DeepEqual(resp.DegreeLevels, []string{"Doctoral", "Master", "Bachelor"}) {
		t.Errorf("unexpected degree levels: %v", resp.DegreeLevels)
	}
	if !reflect.DeepEqual(resp.Regions, []string{allRegions, "North", "South"}) {
		t.Errorf("unexpected regions: %v", resp.Regions)
	}
}

// ── 映射查询 ──

func TestGapService_ProgramOccupations(t *testing.T) {
	svc := setupTestGapService(newMultiRegionTables(), nil)

	resp, err := svc.ProgramOccupations(context.Background(), "51.0")
	if err != nil {
		t.Fatalf("ProgramOccupations 失败: %v", err)
	}
	if resp.CIPCode != "51.0000" || !reflect.DeepEqual(resp.Occupations, []string{"29-1141", "29-2061"}) {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestGapService_OccupationPrograms(t *testing.T) {
	svc := setupTestGapService(newMultiRegionTables(), nil)

	resp, err := svc.OccupationPrograms(context.Background(), " 15-1252 ")
	if err != nil {
		t.Fatalf("OccupationPrograms 失败: %v", err)
	}
	if resp.SOCCode != "15-1252" || !reflect.DeepEqual(resp.Programs, []string{"11.0701"}) {
		t.Errorf("unexpected response: %+v", resp)
	}
}
