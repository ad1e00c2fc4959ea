package config

import (
	"github.com/mitchellh/mapstructure"
	ini "gopkg.in/ini.v1"
)

// loadLegacyINI reads a flat "[scheduler]" INI section into cfg.Scheduler,
// kept for operators migrating from property-file based configuration.
// Jobs and listeners are not expressible in the legacy format; a file that
// only carries a [scheduler] section is otherwise valid.
func loadLegacyINI(cfg *FileConfig, path string) error {
	file, err := ini.LoadSources(ini.LoadOptions{AllowShadows: true, InsensitiveKeys: true}, path)
	if err != nil {
		return err
	}

	section, err := file.GetSection("scheduler")
	if err != nil {
		if !file.HasSection("DEFAULT") {
			return nil
		}
		section = file.Section("DEFAULT")
	}

	raw := make(map[string]any, len(section.Keys()))
	for _, key := range section.Keys() {
		raw[key.Name()] = key.Value()
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
