package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/ini.v1"

	"znn/internal/config"
	"znn/internal/logging"
)

const trainConfig = `[parameters]
fnet_spec = ../networks/N4.znn
num_threads = 0
dtype = float32
out_type = affinity
train_save_net = ../experiments/net.h5
train_load_net =
train_range = 2-4
test_range = 1
eta = 0.01
anneal_factor = 0.997
momentum = 0.9
weight_decay = 0
train_outsz = 1,100,100
is_optimize = yes
is_data_aug = yes
is_bd_mirror = yes
is_rebalance = no
is_malis = no
is_visual = no
cost_fn = auto
Num_iter_per_show = 100
Num_iter_per_test = 200
test_num = 10
Num_iter_per_save = 1000
Max_iter = 200000
forward_range = 1-3
forward_net = ../experiments/net.h5
forward_outsz = 5,100,100
output_prefix = ../experiments/out

[label1]
fnet = ../dataset/label1.tif
pp_types = auto
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "train.cfg")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseFlags(t *testing.T) {
	env := &config.Env{ConfigPath: "from-env.cfg", LogLevel: "info"}

	tests := []struct {
		name     string
		args     []string
		env      *config.Env
		expected *Options
		wantErr  bool
	}{
		{
			name:     "defaults from environment",
			env:      env,
			expected: &Options{ConfigPath: "from-env.cfg", LogLevel: "info"},
		},
		{
			name:     "all flags",
			args:     []string{"-config", "a.cfg", "-log-level", "debug", "-write", "out.cfg", "-json"},
			env:      env,
			expected: &Options{ConfigPath: "a.cfg", LogLevel: "debug", WriteTo: "out.cfg", JSON: true},
		},
		{
			name:     "positional path",
			args:     []string{"b.cfg"},
			env:      &config.Env{LogLevel: "warn"},
			expected: &Options{ConfigPath: "b.cfg", LogLevel: "warn"},
		},
		{
			name:    "no path anywhere",
			env:     &config.Env{LogLevel: "info"},
			wantErr: true,
		},
		{
			name:    "unknown flag",
			args:    []string{"-bogus"},
			env:     env,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseFlags(tt.args, tt.env)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, opts)
		})
	}
}

func TestParseFlagsHelp(t *testing.T) {
	_, err := parseFlags([]string{"-h"}, &config.Env{})
	assert.ErrorIs(t, err, flag.ErrHelp)
}

func TestRunPrintsSummary(t *testing.T) {
	var out, logs bytes.Buffer
	opts := &Options{ConfigPath: writeConfig(t, trainConfig)}

	require.NoError(t, run(opts, logging.New(&logs, logging.DEBUG), &out))

	s := out.String()
	assert.Contains(t, s, "ZNN configuration: "+opts.ConfigPath)
	assert.Contains(t, s, "= binomial_cross_entropy")
	assert.Contains(t, s, "= 2-4")
	assert.Contains(t, s, "label1")
	assert.Contains(t, s, "= affinity")
	assert.Contains(t, logs.String(), "cost_fn=binomial_cross_entropy")
}

func TestRunJSON(t *testing.T) {
	var out bytes.Buffer
	opts := &Options{ConfigPath: writeConfig(t, trainConfig), JSON: true}

	require.NoError(t, run(opts, logging.Discard(), &out))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "binomial_cross_entropy", decoded["cost_fn"])
	assert.Equal(t, []interface{}{2.0, 3.0, 4.0}, decoded["train_range"])
}

func TestRunWritesResolvedConfig(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "resolved.cfg")
	opts := &Options{ConfigPath: writeConfig(t, trainConfig), WriteTo: dest}

	require.NoError(t, run(opts, logging.Discard(), &bytes.Buffer{}))

	f, err := ini.Load(dest)
	require.NoError(t, err)
	assert.Equal(t, "affinity", f.Section("label1").Key("pp_types").String())
}

func TestRunWarnsOnEmptyRanges(t *testing.T) {
	var logs bytes.Buffer
	content := strings.Replace(trainConfig, "test_range = 1", "test_range = x-y", 1)
	opts := &Options{ConfigPath: writeConfig(t, content)}

	require.NoError(t, run(opts, logging.New(&logs, logging.WARN), &bytes.Buffer{}))
	assert.Contains(t, logs.String(), "test_range selects no samples")
	assert.NotContains(t, logs.String(), "train_range selects no samples")
}

func TestRunInvalidConfig(t *testing.T) {
	content := strings.Replace(trainConfig, "eta = 0.01", "eta = 3", 1)
	opts := &Options{ConfigPath: writeConfig(t, content)}

	err := run(opts, logging.Discard(), &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrValidation)
	assert.Contains(t, err.Error(), "eta")
}
