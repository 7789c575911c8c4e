package yaml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnmarshal(t *testing.T) {
	var cfg struct {
		Mod struct {
			Listen   string `yaml:"listen"`
			MediaDir string `yaml:"media_dir"`
		} `yaml:"server"`
	}
	cfg.Mod.Listen = ":5555"

	err := Unmarshal([]byte("server:\n  media_dir: /media\n"), &cfg)
	require.Nil(t, err)
	require.Equal(t, ":5555", cfg.Mod.Listen) // default stays
	require.Equal(t, "/media", cfg.Mod.MediaDir)

	// JSON is valid YAML
	err = Unmarshal([]byte(`{"server": {"listen": ":6666"}}`), &cfg)
	require.Nil(t, err)
	require.Equal(t, ":6666", cfg.Mod.Listen)
}

func TestEncode(t *testing.T) {
	b, err := Encode(map[string]any{"server": map[string]any{"media_dir": "media"}}, 2)
	require.Nil(t, err)
	require.Equal(t, "server:\n  media_dir: media\n", string(b))
}
