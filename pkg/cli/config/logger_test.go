package config_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/shipit/pkg/cli/config"
)

func TestLogger_Configure_Level(t *testing.T) {
	tests := []struct {
		level   string
		enabled []string // levels written by the logger
		wantErr bool
	}{
		{level: "debug", enabled: []string{"DEBUG", "INFO", "WARN", "ERROR"}},
		{level: "INFO", enabled: []string{"INFO", "WARN", "ERROR"}},
		{level: "Warn", enabled: []string{"WARN", "ERROR"}},
		{level: "error", enabled: []string{"ERROR"}},
		{level: "verbose", wantErr: true},
		{level: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := &config.Logger{Level: tt.level, Format: "json", Writer: &buf}

			logger, err := cfg.Configure()
			if tt.wantErr {
				gt.Error(t, err)
				gt.Value(t, logger).Nil()
				return
			}
			gt.NoError(t, err)

			logger.Debug("d")
			logger.Info("i")
			logger.Warn("w")
			logger.Error("e")

			var written []string
			dec := json.NewDecoder(&buf)
			for dec.More() {
				var rec struct {
					Level string `json:"level"`
				}
				gt.NoError(t, dec.Decode(&rec))
				written = append(written, rec.Level)
			}
			gt.Value(t, written).Equal(tt.enabled)
		})
	}
}

func TestLogger_Configure_Format(t *testing.T) {
	tests := []struct {
		format   string
		contains string
		wantErr  bool
	}{
		{format: "json", contains: `"msg":"released"`},
		{format: "TEXT", contains: "msg=released"},
		{format: "console", contains: "released"},
		{format: "", contains: "released"},
		{format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("format "+tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := &config.Logger{Level: "info", Format: tt.format, Writer: &buf}

			logger, err := cfg.Configure()
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)

			logger.Info("released", "version", "1.0.0")
			gt.String(t, buf.String()).Contains(tt.contains)
			gt.String(t, buf.String()).Contains("1.0.0")
		})
	}
}

func TestLogger_Configure_Redaction(t *testing.T) {
	for _, format := range []string{"json", "text"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := &config.Logger{Level: "info", Format: format, Writer: &buf}

			logger, err := cfg.Configure()
			gt.NoError(t, err)

			logger.Info("auth", "header", "token ghp_0123456789abcdef")
			gt.String(t, buf.String()).NotContains("ghp_0123456789abcdef")
		})
	}
}

func TestLogger_Flags(t *testing.T) {
	cfg := &config.Logger{}

	var names []string
	for _, f := range cfg.Flags() {
		names = append(names, f.Names()[0])
	}
	gt.Value(t, names).Equal([]string{"log-level", "log-format"})
}
