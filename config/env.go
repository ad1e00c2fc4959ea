package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
)

// applyEnvOverrides reads a .env file (CHRONOS_SCHEDULER_* keys) and merges
// it into cfg.Scheduler, for local-development overrides without editing
// the primary YAML file.
func applyEnvOverrides(cfg *FileConfig, path string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		return err
	}

	const prefix = "CHRONOS_SCHEDULER_"
	raw := make(map[string]any)
	for k, v := range env {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		field := strings.ToLower(strings.TrimPrefix(k, prefix))
		raw[field] = v
	}
	if len(raw) == 0 {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg.Scheduler,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}
