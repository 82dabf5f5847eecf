// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got '%s'", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("expected default format 'json', got '%s'", cfg.Format)
	}
	if !cfg.Timestamp {
		t.Error("expected default timestamp to be true")
	}
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	Info().Str("user", "42").Msg("ranked")

	out := buf.String()
	if !strings.Contains(out, `"message":"ranked"`) {
		t.Errorf("expected message field, got: %s", out)
	}
	if !strings.Contains(out, `"user":"42"`) {
		t.Errorf("expected user field, got: %s", out)
	}
}

func TestInit_StampsAppAndVersion(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf, Version: "1.2.3"})
	defer Init(DefaultConfig())

	WithComponent("cli").Info().Msg("seeded")

	out := buf.String()
	for _, want := range []string{`"app":"cinemamaya"`, `"version":"1.2.3"`, `"component":"cli"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s, got: %s", want, out)
		}
	}

	buf.Reset()
	Init(Config{Level: "info", Output: &buf})
	Info().Msg("no version")
	if strings.Contains(buf.String(), `"version"`) {
		t.Errorf("unexpected version field: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"DEBUG", zerolog.DebugLevel},
		{" info ", zerolog.InfoLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	defer Init(DefaultConfig())

	l := WithComponent("recommend")
	l.Info().Msg("hello")

	if !strings.Contains(buf.String(), `"component":"recommend"`) {
		t.Errorf("expected component field, got: %s", buf.String())
	}
}
