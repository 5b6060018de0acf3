package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vishalmadargaon/Flight-delay-predictor/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const historyCacheTTL = 60 * time.Second

// PredictionService stores prediction history per user.
type PredictionService struct {
	db    *gorm.DB
	cache *CacheService
	log   *zap.Logger
}

func NewPredictionService(db *gorm.DB, cache *CacheService, log *zap.Logger) *PredictionService {
	if cache == nil {
		cache = DisabledCache()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PredictionService{db: db, cache: cache, log: log}
}

// PredictionChannel is the pub/sub channel carrying a user's new predictions.
func PredictionChannel(userID uint) string {
	return fmt.Sprintf("flightdelay:predictions:%d", userID)
}

func historyCacheKey(userID uint) string {
	return fmt.Sprintf("predictions:user:%d", userID)
}

// SavePrediction stores input and results (seconds) for userID.
func (s *PredictionService) SavePrediction(ctx context.Context, userID uint, input models.FlightInput, results models.DelayResults) (*models.Prediction, error) {
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode input: %w", err)
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("encode results: %w", err)
	}

	row := models.Prediction{
		UserID:    userID,
		InputData: string(inputJSON),
		Results:   string(resultsJSON),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("insert prediction: %w", err)
	}

	s.invalidate(ctx, userID)
	if rec, err := decodePrediction(row); err == nil {
		if err := s.cache.Publish(ctx, PredictionChannel(userID), rec); err != nil {
			s.log.Warn("publish prediction failed", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return &row, nil
}

// GetUserPredictions returns the user's history, newest first, with results in
// minutes. Rows that cannot be decoded are logged and skipped.
func (s *PredictionService) GetUserPredictions(ctx context.Context, userID uint) ([]models.PredictionRecord, error) {
	key := historyCacheKey(userID)
	var cached []models.PredictionRecord
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.log.Warn("history cache read failed", zap.Uint("user_id", userID), zap.Error(err))
	} else if hit {
		return cached, nil
	}

	var rows []models.Prediction
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}

	records := s.decodeRows(rows)
	if err := s.cache.Set(ctx, key, records, historyCacheTTL); err != nil {
		s.log.Warn("history cache write failed", zap.Uint("user_id", userID), zap.Error(err))
	}
	return records, nil
}

// HistoryCursor marks the last record of a page. History is ordered by
// (created_at, id) descending, so both are needed to resume after rows that
// share a timestamp.
type HistoryCursor struct {
	CreatedAt time.Time
	ID        uint
}

// ListUserPredictions is the paginated form of GetUserPredictions. after, when
// set, only returns rows that sort strictly after it.
func (s *PredictionService) ListUserPredictions(ctx context.Context, userID uint, limit int, after *HistoryCursor) ([]models.PredictionRecord, bool, error) {
	query := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit + 1)
	if after != nil {
		ts := after.CreatedAt.Local()
		query = query.Where("(created_at < ? OR (created_at = ? AND id < ?))", ts, ts, after.ID)
	}

	var rows []models.Prediction
	if err := query.Find(&rows).Error; err != nil {
		return nil, false, fmt.Errorf("query predictions: %w", err)
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	return s.decodeRows(rows), hasMore, nil
}

// DeletePrediction removes predID only when it belongs to userID. It reports
// whether exactly one row was removed.
func (s *PredictionService) DeletePrediction(ctx context.Context, predID, userID uint) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", predID, userID).
		Delete(&models.Prediction{})
	if result.Error != nil {
		return false, fmt.Errorf("delete prediction: %w", result.Error)
	}
	if result.RowsAffected == 1 {
		s.invalidate(ctx, userID)
		return true, nil
	}
	return false, nil
}

func (s *PredictionService) invalidate(ctx context.Context, userID uint) {
	if err := s.cache.Delete(ctx, historyCacheKey(userID)); err != nil {
		s.log.Warn("history cache invalidation failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}

func (s *PredictionService) decodeRows(rows []models.Prediction) []models.PredictionRecord {
	records := make([]models.PredictionRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := decodePrediction(row)
		if err != nil {
			s.log.Error("skipping unreadable prediction",
				zap.Uint("prediction_id", row.ID),
				zap.Uint("user_id", row.UserID),
				zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	return records
}

var errNullPayload = errors.New("null payload")

func decodePrediction(row models.Prediction) (models.PredictionRecord, error) {
	var input *models.FlightInput
	if err := json.Unmarshal([]byte(row.InputData), &input); err != nil {
		return models.PredictionRecord{}, fmt.Errorf("decode input_data: %w", err)
	}
	if input == nil {
		return models.PredictionRecord{}, fmt.Errorf("decode input_data: %w", errNullPayload)
	}

	results, err := decodeResults(row.Results)
	if err != nil {
		return models.PredictionRecord{}, err
	}

	return models.PredictionRecord{
		ID:        row.ID,
		UserID:    row.UserID,
		InputData: *input,
		Results:   results.Minutes(),
		CreatedAt: row.CreatedAt,
	}, nil
}

func decodeResults(text string) (models.DelayResults, error) {
	var m map[string]float64
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		return models.DelayResults{}, fmt.Errorf("decode results: %w", err)
	}
	if m == nil {
		return models.DelayResults{}, fmt.Errorf("decode results: %w", errNullPayload)
	}
	values := make([]float64, len(models.DelayTargets))
	for i, target := range models.DelayTargets {
		v, ok := m[target]
		if !ok {
			return models.DelayResults{}, fmt.Errorf("decode results: missing %q", target)
		}
		values[i] = v
	}
	return models.DelayResultsFromSlice(values), nil
}
