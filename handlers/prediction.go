package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vishalmadargaon/Flight-delay-predictor/metrics"
	"github.com/vishalmadargaon/Flight-delay-predictor/middleware"
	"github.com/vishalmadargaon/Flight-delay-predictor/models"
	"github.com/vishalmadargaon/Flight-delay-predictor/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DelayPredictor produces delay predictions in seconds.
type DelayPredictor interface {
	Predict(input models.FlightInput) (models.DelayResults, error)
}

type PredictionHandler struct {
	predictions *services.PredictionService
	engine      DelayPredictor
	log         *zap.Logger
}

func NewPredictionHandler(predictions *services.PredictionService, engine DelayPredictor, log *zap.Logger) *PredictionHandler {
	return &PredictionHandler{predictions: predictions, engine: engine, log: log}
}

// PredictionForm holds the raw form values. Pointers distinguish a missing
// field from an empty one.
type PredictionForm struct {
	Year           *string `form:"year" binding:"required"`
	Month          *string `form:"month" binding:"required"`
	Carrier        *string `form:"carrier" binding:"required"`
	Airport        *string `form:"airport" binding:"required"`
	ArrFlights     *string `form:"arr_flights" binding:"required"`
	ArrDel15       *string `form:"arr_del15" binding:"required"`
	CarrierCt      *string `form:"carrier_ct" binding:"required"`
	WeatherCt      *string `form:"weather_ct" binding:"required"`
	NASCt          *string `form:"nas_ct" binding:"required"`
	SecurityCt     *string `form:"security_ct" binding:"required"`
	LateAircraftCt *string `form:"late_aircraft_ct" binding:"required"`
	ArrCancelled   *string `form:"arr_cancelled" binding:"required"`
	ArrDiverted    *string `form:"arr_diverted" binding:"required"`
}

// FlightInput converts the form to typed input. Counts must be integers and
// the *_ct fields may be fractional.
func (f PredictionForm) FlightInput() (models.FlightInput, error) {
	p := formParser{}
	in := models.FlightInput{
		Year:           p.parseInt("year", f.Year),
		Month:          p.parseInt("month", f.Month),
		Carrier:        *f.Carrier,
		Airport:        *f.Airport,
		ArrFlights:     p.parseInt("arr_flights", f.ArrFlights),
		ArrDel15:       p.parseInt("arr_del15", f.ArrDel15),
		CarrierCt:      p.parseFloat("carrier_ct", f.CarrierCt),
		WeatherCt:      p.parseFloat("weather_ct", f.WeatherCt),
		NASCt:          p.parseFloat("nas_ct", f.NASCt),
		SecurityCt:     p.parseFloat("security_ct", f.SecurityCt),
		LateAircraftCt: p.parseFloat("late_aircraft_ct", f.LateAircraftCt),
		ArrCancelled:   p.parseInt("arr_cancelled", f.ArrCancelled),
		ArrDiverted:    p.parseInt("arr_diverted", f.ArrDiverted),
	}
	return in, p.err
}

// formParser keeps the first conversion error.
type formParser struct {
	err error
}

func (p *formParser) parseInt(name string, raw *string) int {
	if p.err != nil {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(*raw))
	if err != nil {
		p.err = fmt.Errorf("invalid integer for %s: %q", name, *raw)
	}
	return v
}

func (p *formParser) parseFloat(name string, raw *string) float64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		p.err = fmt.Errorf("invalid number for %s: %q", name, *raw)
	}
	return v
}

func (h *PredictionHandler) Dashboard(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)

	records, err := h.predictions.GetUserPredictions(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("load history failed", zap.Uint("user_id", userID), zap.Error(err))
		AddFlash(c, FlashError, "Error: could not load predictions")
		records = nil
	}
	render(c, http.StatusOK, "dashboard.html", gin.H{"Title": "Dashboard", "Predictions": records})
}

func (h *PredictionHandler) InputForm(c *gin.Context) {
	render(c, http.StatusOK, "input.html", gin.H{"Title": "New Prediction"})
}

func (h *PredictionHandler) Predict(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)

	var form PredictionForm
	if err := c.ShouldBind(&form); err != nil {
		metrics.PredictionsFailed.WithLabelValues(metrics.StageParse).Inc()
		AddFlash(c, FlashError, "Error: "+err.Error())
		redirect(c, "/input")
		return
	}
	input, err := form.FlightInput()
	if err != nil {
		metrics.PredictionsFailed.WithLabelValues(metrics.StageParse).Inc()
		AddFlash(c, FlashError, "Error: "+err.Error())
		redirect(c, "/input")
		return
	}

	start := time.Now()
	results, err := h.engine.Predict(input)
	metrics.InferenceDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PredictionsFailed.WithLabelValues(metrics.StageInference).Inc()
		h.log.Warn("prediction failed",
			zap.Uint("user_id", userID),
			zap.String("carrier", input.Carrier),
			zap.String("airport", input.Airport),
			zap.Error(err))
		AddFlash(c, FlashError, "Prediction failed! Please try again.")
		redirect(c, "/input")
		return
	}
	metrics.PredictionsGenerated.Inc()

	if _, err := h.predictions.SavePrediction(c.Request.Context(), userID, input, results); err != nil {
		metrics.PredictionsFailed.WithLabelValues(metrics.StageStore).Inc()
		h.log.Error("save prediction failed", zap.Uint("user_id", userID), zap.Error(err))
		AddFlash(c, FlashError, "Error: "+err.Error())
		redirect(c, "/input")
		return
	}
	metrics.PredictionsStored.Inc()

	render(c, http.StatusOK, "result.html", gin.H{
		"Title":   "Prediction Result",
		"Input":   input,
		"Results": results.Minutes(),
	})
}

func (h *PredictionHandler) Delete(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)

	predID, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil {
		c.String(http.StatusNotFound, "404 page not found")
		return
	}

	deleted, err := h.predictions.DeletePrediction(c.Request.Context(), uint(predID), userID)
	if err != nil {
		h.log.Error("delete prediction failed",
			zap.Uint("user_id", userID),
			zap.Uint64("prediction_id", predID),
			zap.Error(err))
	}
	if deleted {
		metrics.PredictionsDeleted.Inc()
		AddFlash(c, FlashSuccess, "Prediction deleted successfully!")
	} else {
		AddFlash(c, FlashError, "Error deleting prediction!")
	}
	redirect(c, "/dashboard")
}

// List is the JSON form of the dashboard history, newest first.
func (h *PredictionHandler) List(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)
	p, err := ParsePagination(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, hasMore, err := h.predictions.ListUserPredictions(c.Request.Context(), userID, p.Limit, p.After)
	if err != nil {
		h.log.Error("list predictions failed", zap.Uint("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	var nextCursor string
	if hasMore && len(records) > 0 {
		nextCursor = EncodeCursor(records[len(records)-1])
	}
	c.JSON(http.StatusOK, CursorResponse{Data: records, NextCursor: nextCursor, HasMore: hasMore})
}
