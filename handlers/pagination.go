package handlers

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/vishalmadargaon/Flight-delay-predictor/models"
	"github.com/vishalmadargaon/Flight-delay-predictor/services"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

var ErrInvalidCursor = errors.New("invalid cursor")

type PaginationParams struct {
	Limit int
	After *services.HistoryCursor
}

type CursorResponse struct {
	Data       []models.PredictionRecord `json:"data"`
	NextCursor string                    `json:"next_cursor,omitempty"`
	HasMore    bool                      `json:"has_more"`
}

// ParsePagination reads limit and before. A bad limit falls back to the
// default; a cursor that does not decode is an error.
func ParsePagination(c *gin.Context) (PaginationParams, error) {
	p := PaginationParams{Limit: DefaultLimit}

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			p.Limit = l
		}
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	if raw := c.Query("before"); raw != "" {
		cursor, err := DecodeCursor(raw)
		if err != nil {
			return p, err
		}
		p.After = cursor
	}

	return p, nil
}

// EncodeCursor returns the opaque "before" value that resumes after rec.
func EncodeCursor(rec models.PredictionRecord) string {
	raw := rec.CreatedAt.Format(time.RFC3339Nano) + "|" + strconv.FormatUint(uint64(rec.ID), 10)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func DecodeCursor(s string) (*services.HistoryCursor, error) {
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	ts, idStr, ok := strings.Cut(string(data), "|")
	if !ok {
		return nil, ErrInvalidCursor
	}
	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	id, err := strconv.ParseUint(idStr, 10, 0)
	if err != nil || id == 0 {
		return nil, ErrInvalidCursor
	}
	return &services.HistoryCursor{CreatedAt: createdAt, ID: uint(id)}, nil
}
