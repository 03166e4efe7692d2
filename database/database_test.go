package database_test

import (
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortelius/forkpoint-cves/database"
	"github.com/ortelius/forkpoint-cves/model"
)

func TestForkPointsRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := database.NewStore(fs, nil)

	want := []model.ForkPoint{
		{Component: "pkg:composer/symfony/console", ForkPoint: "5.3.0"},
		{Component: "pkg:gem/rails", ForkPoint: "6.1.4"},
	}
	require.NoError(t, store.WriteForkPoints("out/forkpoints.json", want))

	raw, err := afero.ReadFile(fs, "out/forkpoints.json")
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"component": "pkg:composer/symfony/console", "forkPoint": "5.3.0"},
		{"component": "pkg:gem/rails", "forkPoint": "6.1.4"}
	]`, string(raw))

	got, err := store.ReadForkPoints("out/forkpoints.json")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadForkPoints_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		wantErr string
	}{
		{
			name:    "missing file",
			wantErr: "failed to read fork points",
		},
		{
			name:    "malformed json",
			content: ptr(`{"component":`),
			wantErr: "failed to parse fork points",
		},
		{
			name:    "record without fork point",
			content: ptr(`[{"component":"pkg:npm/left-pad"}]`),
			wantErr: "record 0 is missing component or forkPoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if tt.content != nil {
				require.NoError(t, afero.WriteFile(fs, "forkpoints.json", []byte(*tt.content), 0o644))
			}

			_, err := database.NewStore(fs, nil).ReadForkPoints("forkpoints.json")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReadForkPoints_EmptyListIsValid(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := database.NewStore(fs, nil)
	require.NoError(t, store.WriteForkPoints("fp.json", nil))

	got, err := store.ReadForkPoints("fp.json")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	require.NoError(t, afero.WriteFile(fs, "null.json", []byte(`null`), 0o644))
	got, err = store.ReadForkPoints("null.json")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEmptyScanStillWritesSummary(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := database.NewStore(fs, nil)

	require.NoError(t, store.WriteResults("vulnerabilities.json", nil))
	require.NoError(t, store.WriteSummary("remediated.txt", nil))

	exists, err := afero.Exists(fs, "remediated.txt")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestWriteResultsAndSummary(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := database.NewStore(fs, nil)

	records := []model.VulnerabilityRecord{{
		ID:                 "GHSA-1234",
		FixedVersions:      []string{"5.4.0"},
		References:         []string{"https://example.com/advisory"},
		AffectedComponents: []string{"pkg:composer/symfony/console"},
	}}
	require.NoError(t, store.WriteResults("vulnerabilities.json", records))

	raw, err := afero.ReadFile(fs, "vulnerabilities.json")
	require.NoError(t, err)
	var got []model.VulnerabilityRecord
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "GHSA-1234", got[0].ID)
	assert.Equal(t, []string{"pkg:composer/symfony/console"}, got[0].AffectedComponents)

	summary := []model.RemediationSummary{
		{Component: "pkg:composer/symfony/console", Remediated: 2},
		{Component: "pkg:gem/rails", Remediated: 1},
	}
	require.NoError(t, store.WriteSummary("remediated.txt", summary))

	text, err := afero.ReadFile(fs, "remediated.txt")
	require.NoError(t, err)
	assert.Equal(t, "pkg:composer/symfony/console: 2 remediated vulnerabilities\n"+
		"pkg:gem/rails: 1 remediated vulnerabilities\n", string(text))
}

func TestWriteResults_NilIsEmptyArray(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, database.NewStore(fs, nil).WriteResults("r.json", nil))

	raw, err := afero.ReadFile(fs, "r.json")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func ptr(s string) *string { return &s }
