package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
)

func TestListCmd_PrintsBooks(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"list"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Dune")
	assert.Contains(t, buf.String(), "Hyperion")
	assert.Contains(t, buf.String(), "9780441013593")
	assert.Contains(t, buf.String(), "2 book(s)")
}

func TestListCmd_PassesFilters(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"list", "--status", "new", "--filter", "dune", "-n", "10"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	mock := libraryService.(*mockLibrary)
	assert.Equal(t, domain.StatusNew, mock.lastOpts.Status)
	assert.Equal(t, "dune", mock.lastOpts.Filter)
	assert.Equal(t, 10, mock.lastOpts.Limit)
}

func TestListCmd_RejectsUnknownStatus(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"list", "--status", "bogus"})

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListCmd_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	libraryService.(*mockLibrary).books = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"list"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No books found")
}

func TestListCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	libraryService = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"list"})

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "library service not configured")
}
