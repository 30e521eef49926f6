// Package common holds the configuration shared by the thread-graph commands.
package common

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/Ukraine-DAO/thread-graph/dot"
	"github.com/Ukraine-DAO/thread-graph/source"
)

const EnvPrefix = "THREADGRAPH_"

type Config struct {
	Input struct {
		Format string `koanf:"format"`
	} `koanf:"input"`

	Output struct {
		Path string `koanf:"path"`
		// Summary is where the legend goes: stderr, stdout or none.
		Summary string `koanf:"summary"`
	} `koanf:"output"`

	Render struct {
		RankDir    string  `koanf:"rankdir"`
		Label      string  `koanf:"label"`
		ShowText   bool    `koanf:"show_text"`
		TextWidth  int     `koanf:"text_width"`
		Saturation float64 `koanf:"saturation"`
		Value      float64 `koanf:"value"`
		Font       string  `koanf:"font"`
		MarkRoot   bool    `koanf:"mark_root"`
	} `koanf:"render"`

	Warn struct {
		// MaxAgeDays is the root age past which replies are likely missing
		// from recent search results. Zero disables the warning.
		MaxAgeDays int `koanf:"max_age_days"`
	} `koanf:"warn"`
}

func defaults() map[string]interface{} {
	o := dot.DefaultOptions()
	return map[string]interface{}{
		"input.format":      string(source.Auto),
		"output.path":       "",
		"output.summary":    "stderr",
		"render.rankdir":    o.RankDir,
		"render.label":      string(o.Label),
		"render.show_text":  o.ShowText,
		"render.text_width": o.TextWidth,
		"render.saturation": o.Saturation,
		"render.value":      o.Value,
		"render.font":       o.FontName,
		"render.mark_root":  o.MarkRoot,
		"warn.max_age_days": 7,
	}
}

var DefaultPaths = []string{"./thread-graph.yaml", "$HOME/.thread-graph.yaml"}

// envKey maps THREADGRAPH_RENDER_SHOW_TEXT to render.show_text.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}

// Load layers defaults, the YAML file at configPath (or the first existing
// default path when empty) and THREADGRAPH_* environment variables.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config %q: %w", configPath, err)
		}
	} else {
		for _, path := range DefaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("loading config %q: %w", path, err)
			}
			break
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

func (cfg *Config) RenderOptions() dot.Options {
	return dot.Options{
		RankDir:    strings.ToUpper(cfg.Render.RankDir),
		Label:      dot.LabelMode(strings.ToLower(cfg.Render.Label)),
		ShowText:   cfg.Render.ShowText,
		TextWidth:  cfg.Render.TextWidth,
		Saturation: cfg.Render.Saturation,
		Value:      cfg.Render.Value,
		FontName:   cfg.Render.Font,
		MarkRoot:   cfg.Render.MarkRoot,
	}
}

func (cfg *Config) Validate() error {
	if _, err := source.ParseFormat(cfg.Input.Format); err != nil {
		return err
	}
	switch cfg.Output.Summary {
	case "stderr", "stdout", "none":
	default:
		return fmt.Errorf("unknown summary destination %q", cfg.Output.Summary)
	}
	if cfg.Warn.MaxAgeDays < 0 {
		return fmt.Errorf("warn.max_age_days must not be negative")
	}
	if err := cfg.RenderOptions().Validate(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}
