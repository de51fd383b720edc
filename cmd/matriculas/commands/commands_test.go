package commands

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"ufsc-matriculas/internal/roster"
	"ufsc-matriculas/internal/scrapers/cagr"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), defaultConfigName), false)
	require.NoError(t, err)
	require.Equal(t, roster.DefaultBatchSize, cfg.BatchSize)
	require.Equal(t, ".", cfg.OutDir)
	require.Equal(t, 8080, cfg.Port)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matriculas.json5")
	err := os.WriteFile(path, []byte(`{
		username: "aluno",
		prefix: "2020",
		rooms: ["civil", "medicina"],
		batch_size: 1000,
		cagr: {requests_per_second: 5, timeout_seconds: 10},
	}`), 0600)
	require.NoError(t, err)

	cfg, err := loadConfig(path, false)
	require.NoError(t, err)
	require.Equal(t, "aluno", cfg.Username)
	require.Equal(t, "2020", cfg.Prefix)
	require.Equal(t, []string{"civil", "medicina"}, cfg.Rooms)
	require.Equal(t, 1000, cfg.BatchSize)
	require.Equal(t, float64(5), cfg.Cagr.RequestsPerSecond)

	opts, err := cfg.cagrOptions()
	require.NoError(t, err)
	require.Equal(t, float64(5), opts.RequestsPerSecond)
	require.Equal(t, "10s", opts.Timeout.String())
	require.Nil(t, opts.MessageOutput)
}

func TestLoadConfigLookup(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "turmas", "2020")
	require.NoError(t, os.MkdirAll(nested, 0700))
	err := os.WriteFile(filepath.Join(root, defaultConfigName), []byte(`{prefix: "2020"}`), 0600)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(root, "matriculas.local.json5"), []byte(`{username: "aluno"}`), 0600)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() {
		os.Chdir(wd)
	})

	cfg, err := loadConfig(defaultConfigName, true)
	require.NoError(t, err)
	require.Equal(t, "2020", cfg.Prefix)
	require.Equal(t, "aluno", cfg.Username)
	require.Equal(t, roster.DefaultBatchSize, cfg.BatchSize)

	cfg, err = loadConfig(defaultConfigName, false)
	require.NoError(t, err)
	require.Empty(t, cfg.Prefix)
}

func testPrompt(input string, password string, passwordErr error) (credentialPrompt, *bytes.Buffer) {
	var out bytes.Buffer
	return credentialPrompt{
		in:  bufio.NewReader(strings.NewReader(input)),
		out: &out,
		readPassword: func() ([]byte, error) {
			return []byte(password), passwordErr
		},
	}, &out
}

func TestCredentials(t *testing.T) {
	prompt, out := testPrompt("aluno\n", "segredo", nil)
	username, password, err := prompt.credentials("", "")
	require.NoError(t, err)
	require.Equal(t, "aluno", username)
	require.Equal(t, "segredo", password)
	require.Contains(t, out.String(), "idUFSC: ")
	require.Contains(t, out.String(), "Senha: ")

	prompt, out = testPrompt("", "", errors.New("should not be called"))
	username, password, err = prompt.credentials("config", "config-pass")
	require.NoError(t, err)
	require.Equal(t, "config", username)
	require.Equal(t, "config-pass", password)
	require.Empty(t, out.String())

	prompt, _ = testPrompt("aluno\n", "", nil)
	_, _, err = prompt.credentials("", "")
	require.Error(t, err)

	prompt, _ = testPrompt("", "segredo", nil)
	_, _, err = prompt.credentials("", "")
	require.Error(t, err)
}

func TestRenderRooms(t *testing.T) {
	var out bytes.Buffer
	renderRooms(&out, []cagr.Room{
		{Id: "123", Name: "Engenharia"},
		{Id: "4567", Name: "Medicina"},
	})

	rendered := out.String()
	require.Contains(t, rendered, "SALAID")
	require.Contains(t, rendered, "123")
	require.Contains(t, rendered, "Engenharia")
	require.Contains(t, rendered, "Medicina")
}

func TestBatchWarning(t *testing.T) {
	require.Contains(t, batchWarning(1000), "no máximo 1000.")
	require.Contains(t, batchWarning(roster.DefaultBatchSize), "no máximo 5000.")
}
