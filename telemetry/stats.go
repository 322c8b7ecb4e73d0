package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Alive int `csv:"alive"`

	// Events during window
	Deaths     int `csv:"deaths"`
	FoodEaten  int `csv:"food_eaten"`
	WaterDrunk int `csv:"water_drunk"`

	// Signaling during window
	Broadcasts  int `csv:"broadcasts"`
	Heard       int `csv:"heard"`
	Adoptions   int `csv:"adoptions"`
	Validations int `csv:"validations"`
	Expiries    int `csv:"expiries"`

	// Lexicon shape (sampled at window end)
	LexiconMean float64 `csv:"lexicon_mean"`
	LexiconStd  float64 `csv:"lexicon_std"`
	LexiconP10  float64 `csv:"lexicon_p10"`
	LexiconP50  float64 `csv:"lexicon_p50"`
	LexiconP90  float64 `csv:"lexicon_p90"`

	// Convergence (most recent sample)
	Convergence float64 `csv:"convergence"`

	// World state at window end
	FoodOnMap  int `csv:"food_on_map"`
	WaterOnMap int `csv:"water_on_map"`
}

// ComputeDistribution calculates mean, standard deviation and percentiles of
// a sample. Values are copied, sorted, and fed through gonum.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, std = stat.MeanStdDev(sorted, nil)
	if len(sorted) < 2 {
		std = 0
	}
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("alive", s.Alive),
		slog.Int("deaths", s.Deaths),
		slog.Int("food_eaten", s.FoodEaten),
		slog.Int("water_drunk", s.WaterDrunk),
		slog.Int("broadcasts", s.Broadcasts),
		slog.Int("heard", s.Heard),
		slog.Int("adoptions", s.Adoptions),
		slog.Int("validations", s.Validations),
		slog.Int("expiries", s.Expiries),
		slog.Float64("lexicon_mean", s.LexiconMean),
		slog.Float64("lexicon_std", s.LexiconStd),
		slog.Float64("lexicon_p10", s.LexiconP10),
		slog.Float64("lexicon_p50", s.LexiconP50),
		slog.Float64("lexicon_p90", s.LexiconP90),
		slog.Float64("convergence", s.Convergence),
		slog.Int("food_on_map", s.FoodOnMap),
		slog.Int("water_on_map", s.WaterOnMap),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
