package logic

// Tuning holds the calibrated constants of the rating, trend and draft models.
// Values are loaded from the tuning file and default to DefaultTuning.
type Tuning struct {
	// Rating engine
	MaxIters      int     `koanf:"max_iters"`
	Decay         float64 `koanf:"decay"`
	UpFactor      float64 `koanf:"up_factor"`
	DownFactor    float64 `koanf:"down_factor"`
	TriplePassEnd int     `koanf:"triple_pass_end"`
	DoublePassEnd int     `koanf:"double_pass_end"`

	// Normalization
	NormCenter float64 `koanf:"norm_center"`
	NormSpread float64 `koanf:"norm_spread"`

	// Trend predictor
	ThreeYearSlopeWeight float64 `koanf:"three_year_slope_weight"`
	TwoYearSlopeWeight   float64 `koanf:"two_year_slope_weight"`
	RookieBump           float64 `koanf:"rookie_bump"`
	GrowthCapCoeff       float64 `koanf:"growth_cap_coeff"`
	GrowthCapExponent    float64 `koanf:"growth_cap_exponent"`
	MaxDecline           float64 `koanf:"max_decline"`

	// Draft simulator
	FirstPickCandidates  int `koanf:"first_pick_candidates"`
	SecondPickCandidates int `koanf:"second_pick_candidates"`

	// Match prediction
	WinProbScale float64 `koanf:"win_prob_scale"`

	// Local scoring model. Empty weights select the FSM-sum model.
	ModelIntercept float64   `koanf:"model_intercept"`
	ModelWeights   []float64 `koanf:"model_weights"`
}

// DefaultTuning returns the calibrated defaults
func DefaultTuning() Tuning {
	return Tuning{
		MaxIters:      500,
		Decay:         0.992,
		UpFactor:      0.4,
		DownFactor:    0.3,
		TriplePassEnd: 25,
		DoublePassEnd: 45,

		NormCenter: 1500,
		NormSpread: 100,

		ThreeYearSlopeWeight: 0.85,
		TwoYearSlopeWeight:   0.64,
		RookieBump:           50,
		GrowthCapCoeff:       9.47614e10,
		GrowthCapExponent:    2.82382,
		MaxDecline:           50,

		FirstPickCandidates:  4,
		SecondPickCandidates: 9,

		WinProbScale: 12,
	}
}
