package services

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/vishalmadargaon/Flight-delay-predictor/config"
	"github.com/vishalmadargaon/Flight-delay-predictor/models"

	"github.com/alicebob/miniredis/v2"
)

func newTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	if err != nil {
		t.Fatalf("miniredis port: %v", err)
	}
	cache, err := NewCacheService(config.RedisConfig{Enabled: true, Host: mr.Host(), Port: port}, nil)
	if err != nil {
		t.Fatalf("NewCacheService: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache, mr
}

func TestDisabledCacheIsNoop(t *testing.T) {
	cache := DisabledCache()
	ctx := context.Background()

	if cache.Available() {
		t.Fatal("disabled cache should not be available")
	}
	if err := cache.Set(ctx, "k", map[string]int{"a": 1}, time.Minute); err != nil {
		t.Errorf("Set: %v", err)
	}

	var dest map[string]int
	hit, err := cache.Get(ctx, "k", &dest)
	if err != nil {
		t.Errorf("Get: %v", err)
	}
	if hit {
		t.Error("disabled cache should always miss")
	}
	if err := cache.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := cache.Publish(ctx, "ch", "msg"); err != nil {
		t.Errorf("Publish: %v", err)
	}
	if ps := cache.Subscribe(ctx, "ch"); ps != nil {
		t.Error("Subscribe should return nil when disabled")
	}
	if err := cache.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestNewCacheServiceDisabledByConfig(t *testing.T) {
	cache, err := NewCacheService(config.RedisConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.Available() {
		t.Error("cache should be disabled when Redis is not enabled")
	}
}

func TestCacheRoundTrip(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	if !cache.Available() {
		t.Fatal("cache should be available")
	}
	if err := cache.Set(ctx, "k", map[string]int{"a": 1}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ttl := mr.TTL("k"); ttl != time.Minute {
		t.Errorf("ttl = %v, want 1m", ttl)
	}

	var dest map[string]int
	hit, err := cache.Get(ctx, "k", &dest)
	if err != nil || !hit || dest["a"] != 1 {
		t.Fatalf("Get = %v, %v, %v", dest, hit, err)
	}

	if err := cache.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if hit, _ := cache.Get(ctx, "k", &dest); hit {
		t.Error("Get after Delete should miss")
	}
}

func TestHistoryServedFromCache(t *testing.T) {
	db := newTestDB(t)
	cache, mr := newTestCache(t)
	svc := NewPredictionService(db, cache, nil)
	ctx := context.Background()
	userID := createUser(t, db, "alice")

	if _, err := svc.SavePrediction(ctx, userID, sampleInput(), sampleResults()); err != nil {
		t.Fatalf("SavePrediction: %v", err)
	}
	first, err := svc.GetUserPredictions(ctx, userID)
	if err != nil || len(first) != 1 {
		t.Fatalf("GetUserPredictions = %d records, %v", len(first), err)
	}
	if !mr.Exists(historyCacheKey(userID)) {
		t.Fatal("history was not cached")
	}

	// Rows removed behind the service's back stay visible until the key expires.
	if err := db.Where("user_id = ?", userID).Delete(&models.Prediction{}).Error; err != nil {
		t.Fatalf("delete rows: %v", err)
	}
	second, err := svc.GetUserPredictions(ctx, userID)
	if err != nil {
		t.Fatalf("GetUserPredictions: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("cached history has %d records, want 1", len(second))
	}
	if second[0].ID != first[0].ID || second[0].Results != first[0].Results || second[0].InputData != first[0].InputData {
		t.Errorf("cached record = %+v, want %+v", second[0], first[0])
	}
	if !second[0].CreatedAt.Equal(first[0].CreatedAt) {
		t.Errorf("cached created_at = %v, want %v", second[0].CreatedAt, first[0].CreatedAt)
	}

	mr.FastForward(historyCacheTTL + time.Second)
	third, err := svc.GetUserPredictions(ctx, userID)
	if err != nil || len(third) != 0 {
		t.Errorf("after expiry got %d records, %v; want 0", len(third), err)
	}
}

func TestSaveAndDeleteInvalidateHistory(t *testing.T) {
	db := newTestDB(t)
	cache, mr := newTestCache(t)
	svc := NewPredictionService(db, cache, nil)
	ctx := context.Background()
	userID := createUser(t, db, "alice")
	key := historyCacheKey(userID)

	if _, err := svc.SavePrediction(ctx, userID, sampleInput(), sampleResults()); err != nil {
		t.Fatalf("SavePrediction: %v", err)
	}
	if got, _ := svc.GetUserPredictions(ctx, userID); len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}

	second, err := svc.SavePrediction(ctx, userID, sampleInput(), sampleResults())
	if err != nil {
		t.Fatalf("SavePrediction: %v", err)
	}
	if mr.Exists(key) {
		t.Error("save should drop the cached history")
	}
	if got, _ := svc.GetUserPredictions(ctx, userID); len(got) != 2 {
		t.Fatalf("after save got %d records, want 2", len(got))
	}

	ok, err := svc.DeletePrediction(ctx, second.ID, userID)
	if err != nil || !ok {
		t.Fatalf("DeletePrediction = %v, %v", ok, err)
	}
	if mr.Exists(key) {
		t.Error("delete should drop the cached history")
	}
	if got, _ := svc.GetUserPredictions(ctx, userID); len(got) != 1 {
		t.Errorf("after delete got %d records, want 1", len(got))
	}
}

func TestSavePublishesRecord(t *testing.T) {
	db := newTestDB(t)
	cache, _ := newTestCache(t)
	svc := NewPredictionService(db, cache, nil)
	ctx := context.Background()
	userID := createUser(t, db, "alice")

	pubsub := cache.Subscribe(ctx, PredictionChannel(userID))
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	saved, err := svc.SavePrediction(ctx, userID, sampleInput(), sampleResults())
	if err != nil {
		t.Fatalf("SavePrediction: %v", err)
	}

	select {
	case msg := <-pubsub.Channel():
		var rec models.PredictionRecord
		if err := json.Unmarshal([]byte(msg.Payload), &rec); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if rec.ID != saved.ID || rec.UserID != userID || rec.InputData.Carrier != "AA" {
			t.Errorf("published record = %+v", rec)
		}
		if rec.Results != sampleResults().Minutes() {
			t.Errorf("published results = %+v, want minutes", rec.Results)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message published")
	}
}
