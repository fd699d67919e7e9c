package cli

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
	"github.com/custodia-labs/tbr-cli/internal/core/ports/driving"
)

func TestAddCmd_RequiresExactlyOneArg(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"add"})

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAddCmd_IngestsThread(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	// Not in the library yet.
	threadResolver.(*mockResolver).externalID = "zzz999"

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"add", "https://reddit.com/r/printSF/comments/zzz999/"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `Ingesting "Best sci-fi?" (1 comments)`)
	assert.Contains(t, buf.String(), "Dune by Frank Herbert")
	assert.Contains(t, buf.String(), "Books added:     1")
	assert.Contains(t, buf.String(), "Books linked:    1")
}

func TestAddCmd_SkipsKnownThread(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	// The mock library already holds a source with external ID abc123.
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"add", "https://reddit.com/r/printSF/comments/abc123/"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "already ingested")
	assert.Empty(t, threadResolver.(*mockResolver).resolved)
}

func TestAddCmd_ForceReprocessesKnownThread(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"add", "--force", "https://reddit.com/r/printSF/comments/abc123/"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "already ingested")
	assert.Len(t, threadResolver.(*mockResolver).resolved, 1)
}

func TestAddCmd_ResolveError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	threadResolver.(*mockResolver).err = fmt.Errorf("%w: not a thread", domain.ErrInvalidThread)
	threadResolver.(*mockResolver).externalID = ""

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"add", "https://example.com/whatever"})

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve thread")
}

func TestAddCmd_QuotaAbortShowsPartialReport(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := ingestService.(*mockIngestor)
	mock.report = &driving.IngestReport{Mentions: 3, Added: 2}
	mock.err = fmt.Errorf("catalog lookup: %w", domain.ErrQuotaExceeded)
	threadResolver.(*mockResolver).externalID = ""

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"add", "https://reddit.com/r/printSF/comments/zzz999/"})

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, buf.String(), "quota exhausted")
	assert.Contains(t, buf.String(), "Books added:     2")
	assert.Contains(t, buf.String(), "resume")
}

func TestAddCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestService = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"add", "whatever"})

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest service not configured")
}
