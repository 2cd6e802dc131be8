package depot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Config
		wantErr bool
	}{
		{
			name:  "empty input keeps defaults",
			input: "",
			want:  DefaultConfig(),
		},
		{
			name: "full config",
			input: `
name: arena
initial_capacity: 256
max_entities: 1000
log:
  enabled: true
  level: debug
  encoding: console
`,
			want: Config{
				Name:            "arena",
				InitialCapacity: 256,
				MaxEntities:     1000,
				Log:             LogConfig{Enabled: true, Level: "debug", Encoding: "console"},
			},
		},
		{
			name:  "partial config",
			input: "max_entities: 10\n",
			want: func() Config {
				c := DefaultConfig()
				c.MaxEntities = 10
				return c
			}(),
		},
		{
			name:    "negative capacity",
			input:   "initial_capacity: -1\n",
			wantErr: true,
		},
		{
			name:    "unknown encoding",
			input:   "log:\n  encoding: xml\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			input:   "initial_capacity: [1, 2\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestLogConfigBuild(t *testing.T) {
	logger, err := LogConfig{}.Build()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel), "disabled config yields a no-op logger")

	logger, err = LogConfig{Enabled: true, Level: "warn"}.Build()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	_, err = LogConfig{Enabled: true, Level: "loud"}.Build()
	assert.Error(t, err)
}

func TestNewWorldFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Name = "configured"
	cfg.MaxEntities = 1

	w, err := Factory.NewWorldFromConfig(cfg)
	require.NoError(t, err)
	defer w.Destroy()
	assert.Equal(t, "configured", w.Name())

	_, err = w.InsertEntity("only")
	require.NoError(t, err)
	_, err = w.InsertEntity("too many")
	assert.ErrorAs(t, err, &IDSpaceExhaustedError{})

	cfg.InitialCapacity = -5
	_, err = Factory.NewWorldFromConfig(cfg)
	assert.Error(t, err)
}
