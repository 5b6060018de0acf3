// Command predictor runs the delay model over a CSV of flight feature rows and
// writes one JSON object per row. It is meant for checking model artifacts
// without starting the web app.
package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vishalmadargaon/Flight-delay-predictor/inference"
	"github.com/vishalmadargaon/Flight-delay-predictor/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type rowResult struct {
	Row            int                 `json:"row"`
	Input          models.FlightInput  `json:"input"`
	ResultsSeconds models.DelayResults `json:"results_seconds"`
	ResultsMinutes models.DelayResults `json:"results_minutes"`
}

type summary struct {
	Rows     int
	Failed   int
	Duration time.Duration
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("predictor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	modelDir := fs.String("models", getEnv("MODEL_DIR", "."), "directory holding the model artifacts")
	inputPath := fs.String("input", "-", "CSV file with a header row, - for stdin")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logg := newLogger(stderr)
	defer logg.Sync()

	engine, err := inference.Load(*modelDir)
	if err != nil {
		logg.Error("load artifacts failed", zap.String("dir", *modelDir), zap.Error(err))
		return 1
	}

	in := stdin
	if *inputPath != "-" {
		f, err := os.Open(*inputPath)
		if err != nil {
			logg.Error("open input failed", zap.Error(err))
			return 1
		}
		defer f.Close()
		in = f
	}

	sum, err := predictRows(engine, in, stdout, logg)
	if err != nil {
		logg.Error("batch aborted", zap.Int("rows", sum.Rows), zap.Error(err))
		return 1
	}
	logg.Info("batch completed",
		zap.Int("rows", sum.Rows),
		zap.Int("failed", sum.Failed),
		zap.Duration("duration", sum.Duration))
	if sum.Failed > 0 {
		return 1
	}
	return 0
}

func newLogger(w io.Writer) *zap.Logger {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(w), zapcore.InfoLevel)
	return zap.New(core)
}

// predictRows fails only on unreadable CSV. Bad rows are logged and counted.
func predictRows(engine *inference.Engine, r io.Reader, w io.Writer, logg *zap.Logger) (summary, error) {
	start := time.Now()
	var sum summary

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return sum, fmt.Errorf("read header: %w", err)
	}
	columns, err := columnIndex(header)
	if err != nil {
		return sum, err
	}

	enc := json.NewEncoder(w)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sum, fmt.Errorf("read row %d: %w", sum.Rows+1, err)
		}
		sum.Rows++

		input, err := parseRow(record, columns)
		if err != nil {
			sum.Failed++
			logg.Warn("skipping row", zap.Int("row", sum.Rows), zap.Error(err))
			continue
		}
		results, err := engine.Predict(input)
		if err != nil {
			sum.Failed++
			logg.Warn("prediction failed", zap.Int("row", sum.Rows), zap.Error(err))
			continue
		}
		if err := enc.Encode(rowResult{
			Row:            sum.Rows,
			Input:          input,
			ResultsSeconds: results,
			ResultsMinutes: results.Minutes(),
		}); err != nil {
			return sum, fmt.Errorf("write row %d: %w", sum.Rows, err)
		}
	}

	sum.Duration = time.Since(start)
	return sum, nil
}

var inputColumns = []string{
	"year", "month", "carrier", "airport", "arr_flights", "arr_del15",
	"carrier_ct", "weather_ct", "nas_ct", "security_ct", "late_aircraft_ct",
	"arr_cancelled", "arr_diverted",
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, col := range inputColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("header missing columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRow(record []string, columns map[string]int) (models.FlightInput, error) {
	var firstErr error
	field := func(name string) string {
		i := columns[name]
		if i >= len(record) {
			if firstErr == nil {
				firstErr = fmt.Errorf("missing value for %s", name)
			}
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	toInt := func(name string) int {
		v, err := strconv.Atoi(field(name))
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("invalid integer for %s: %w", name, err)
		}
		return v
	}
	toFloat := func(name string) float64 {
		v, err := strconv.ParseFloat(field(name), 64)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("invalid number for %s: %w", name, err)
		}
		return v
	}

	in := models.FlightInput{
		Year:           toInt("year"),
		Month:          toInt("month"),
		Carrier:        field("carrier"),
		Airport:        field("airport"),
		ArrFlights:     toInt("arr_flights"),
		ArrDel15:       toInt("arr_del15"),
		CarrierCt:      toFloat("carrier_ct"),
		WeatherCt:      toFloat("weather_ct"),
		NASCt:          toFloat("nas_ct"),
		SecurityCt:     toFloat("security_ct"),
		LateAircraftCt: toFloat("late_aircraft_ct"),
		ArrCancelled:   toInt("arr_cancelled"),
		ArrDiverted:    toInt("arr_diverted"),
	}
	return in, firstErr
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
