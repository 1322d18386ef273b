package config

import (
	"errors"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/openfrc/stats-api/internal/logic"
	"github.com/openfrc/stats-api/internal/scoring"
)

// LoadTuning builds the model constants by layering, lowest precedence first:
//  1. logic.DefaultTuning()
//  2. the YAML file at path, if path is set
//  3. env vars prefixed FSM_ (FSM_DECAY -> decay)
func LoadTuning(path string) (logic.Tuning, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return logic.Tuning{}, err
		}
	}

	envProvider := env.Provider("FSM_", ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "fsm_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return logic.Tuning{}, err
	}

	t := logic.DefaultTuning()
	if err := k.UnmarshalWithConf("", &t, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return logic.Tuning{}, err
	}
	return t, validateTuning(t)
}

func validateTuning(t logic.Tuning) error {
	switch {
	case t.MaxIters <= 0:
		return errors.New("max_iters must be positive")
	case t.Decay <= 0 || t.Decay > 1:
		return errors.New("decay must be in (0, 1]")
	case t.NormSpread <= 0:
		return errors.New("norm_spread must be positive")
	case t.FirstPickCandidates <= 0 || t.SecondPickCandidates <= 0:
		return errors.New("draft candidate counts must be positive")
	case t.WinProbScale <= 0:
		return errors.New("win_prob_scale must be positive")
	case len(t.ModelWeights) != 0 && len(t.ModelWeights) != scoring.FeatureCount:
		return errors.New("model_weights must list one weight per model feature")
	}
	return nil
}
