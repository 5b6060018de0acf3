package models

// FlightInput carries the 13 raw fields of a prediction request. The form and
// json tags double as the stored mapping keys.
type FlightInput struct {
	Year           int     `form:"year" json:"year"`
	Month          int     `form:"month" json:"month"`
	Carrier        string  `form:"carrier" json:"carrier"`
	Airport        string  `form:"airport" json:"airport"`
	ArrFlights     int     `form:"arr_flights" json:"arr_flights"`
	ArrDel15       int     `form:"arr_del15" json:"arr_del15"`
	CarrierCt      float64 `form:"carrier_ct" json:"carrier_ct"`
	WeatherCt      float64 `form:"weather_ct" json:"weather_ct"`
	NASCt          float64 `form:"nas_ct" json:"nas_ct"`
	SecurityCt     float64 `form:"security_ct" json:"security_ct"`
	LateAircraftCt float64 `form:"late_aircraft_ct" json:"late_aircraft_ct"`
	ArrCancelled   int     `form:"arr_cancelled" json:"arr_cancelled"`
	ArrDiverted    int     `form:"arr_diverted" json:"arr_diverted"`
}

// Target names in regressor output order.
var DelayTargets = []string{
	"arr_delay",
	"carrier_delay",
	"weather_delay",
	"nas_delay",
	"security_delay",
	"late_aircraft_delay",
}

var delayLabels = map[string]string{
	"arr_delay":           "Arrival Delay",
	"carrier_delay":       "Carrier Delay",
	"weather_delay":       "Weather Delay",
	"nas_delay":           "NAS Delay",
	"security_delay":      "Security Delay",
	"late_aircraft_delay": "Late Aircraft Delay",
}

// DelayResults holds one value per target. The unit depends on where the value
// came from: the engine and the store use seconds, views use minutes.
type DelayResults struct {
	ArrDelay          float64 `json:"arr_delay"`
	CarrierDelay      float64 `json:"carrier_delay"`
	WeatherDelay      float64 `json:"weather_delay"`
	NASDelay          float64 `json:"nas_delay"`
	SecurityDelay     float64 `json:"security_delay"`
	LateAircraftDelay float64 `json:"late_aircraft_delay"`
}

// DelayResultsFromSlice maps regressor outputs positionally onto targets.
// The caller guarantees len(values) == len(DelayTargets).
func DelayResultsFromSlice(values []float64) DelayResults {
	return DelayResults{
		ArrDelay:          values[0],
		CarrierDelay:      values[1],
		WeatherDelay:      values[2],
		NASDelay:          values[3],
		SecurityDelay:     values[4],
		LateAircraftDelay: values[5],
	}
}

func (r DelayResults) Values() []float64 {
	return []float64{
		r.ArrDelay,
		r.CarrierDelay,
		r.WeatherDelay,
		r.NASDelay,
		r.SecurityDelay,
		r.LateAircraftDelay,
	}
}

// Minutes converts seconds to minutes.
func (r DelayResults) Minutes() DelayResults {
	v := r.Values()
	for i := range v {
		v[i] /= 60
	}
	return DelayResultsFromSlice(v)
}

type DelayEntry struct {
	Target string
	Label  string
	Value  float64
}

// Entries lists the results in target order for rendering.
func (r DelayResults) Entries() []DelayEntry {
	values := r.Values()
	out := make([]DelayEntry, len(DelayTargets))
	for i, target := range DelayTargets {
		out[i] = DelayEntry{Target: target, Label: delayLabels[target], Value: values[i]}
	}
	return out
}
