package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"move-improve-workers/internal/scoring"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func answeredSample(t *testing.T) string {
	t.Helper()
	b := scoring.SampleBundle()
	b.Answers = []scoring.Answer{
		{QuestionID: "q1", Value: scoring.NumberAnswer(1)},
		{QuestionID: "q2", Value: scoring.NumberAnswer(1)},
		{QuestionID: "q3", Value: scoring.NumberAnswer(1)},
		{QuestionID: "q4", Value: scoring.BoolAnswer(false)},
	}
	data, err := json.Marshal(b)
	require.NoError(t, err)
	return string(data)
}

func TestSampleRoundTripsThroughScore(t *testing.T) {
	out, err := run(t, "", "sample")
	require.NoError(t, err)

	var b scoring.Bundle
	require.NoError(t, json.Unmarshal([]byte(out), &b))
	assert.Len(t, b.Categories, 3)
	assert.Len(t, b.Questions, 4)
	assert.Empty(t, b.Answers)

	out, err = run(t, out, "score", "--file", "-", "--format", "json", "--require-answers=false")
	require.NoError(t, err)

	var res scoring.ScoreResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, scoring.DecisionUnclear, res.Decision)
	assert.Equal(t, []string{"motivation", "financial", "location"}, res.Metadata.UnansweredCategories)
}

func TestScoreFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.json")
	require.NoError(t, os.WriteFile(path, []byte(answeredSample(t)), 0o600))

	out, err := run(t, "", "score", "--file", path, "--format", "json", "--require-answers=false")
	require.NoError(t, err)

	var res scoring.ScoreResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, scoring.DecisionMove, res.Decision)
	assert.Equal(t, scoring.LeanStrong, res.LeanStrength)
	assert.Equal(t, -2.0, res.DecisionIndex)
}

func TestScoreTextReport(t *testing.T) {
	out, err := run(t, answeredSample(t), "score", "--file", "-", "--format", "text", "--session", "abc-123", "--require-answers=false")
	require.NoError(t, err)

	assert.Contains(t, out, "Assessment ID: abc-123")
	assert.Contains(t, out, "DECISION\n"+strings.Repeat("-", 50)+"\nMove\nThe data suggests moving to a new situation.")
	assert.Contains(t, out, "Decision Index: -2.00")
	assert.Contains(t, out, "Leans: Move (2.00)")
}

func TestScoreErrors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{
			name:  "unknown format",
			stdin: answeredSample(t),
			args:  []string{"score", "--file", "-", "--format", "pdf"},
			want:  "unknown format",
		},
		{
			name:  "malformed json",
			stdin: "{",
			args:  []string{"score", "--file", "-", "--format", "json"},
			want:  "decode bundle",
		},
		{
			name:  "engine rejects empty bundle",
			stdin: "{}",
			args:  []string{"score", "--file", "-", "--format", "json"},
			want:  "EMPTY_CONFIGURATION",
		},
		{
			name:  "missing file",
			stdin: "",
			args:  []string{"score", "--file", filepath.Join(t.TempDir(), "nope.json"), "--format", "json"},
			want:  "nope.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.stdin, append(tt.args, "--require-answers=false")...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRegistryExportAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")

	out, err := run(t, "", "registry", "export", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	out, err = run(t, "", "registry", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 2 activities")

	require.NoError(t, os.WriteFile(path, []byte(`{"activities":[]}`), 0o600))
	_, err = run(t, "", "registry", "validate", path)
	assert.ErrorContains(t, err, "no activities")
}
