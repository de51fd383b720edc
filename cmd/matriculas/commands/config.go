package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"ufsc-matriculas/internal/components/telemetry"
	"ufsc-matriculas/internal/roster"
	"ufsc-matriculas/internal/scrapers/cagr"
	"ufsc-matriculas/pkg/configutil"

	"golang.org/x/term"
)

const messageAuthError = "Erro de autenticação."

type CagrConfig struct {
	LoginUrl          string  `json:"login_url"`
	ServiceUrl        string  `json:"service_url"`
	ForumUrl          string  `json:"forum_url"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`
}

type Config struct {
	Username string `json:"username"`
	// Password is optional, it is prompted for when missing.
	Password  string   `json:"password"`
	Prefix    string   `json:"prefix"`
	Rooms     []string `json:"rooms"`
	BatchSize int      `json:"batch_size"`
	OutDir    string   `json:"out_dir"`
	Port      int      `json:"port"`
	Verbose   bool     `json:"verbose"`

	Cagr      CagrConfig       `json:"cagr"`
	Telemetry telemetry.Config `json:"telemetry"`
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = roster.DefaultBatchSize
	}
	if c.OutDir == "" {
		c.OutDir = "."
	}
	if c.Port <= 0 {
		c.Port = 8080
	}
	return c
}

const defaultConfigName = "matriculas.json5"

// loadConfig reads the config file, a missing file just means defaults. When
// lookup is set, path is searched for in the working directory and then in
// each of its parents.
func loadConfig(path string, lookup bool) (Config, error) {
	read := configutil.ReadConfig[Config]
	if lookup {
		read = configutil.ReadRecursively[Config]
	}
	cfg, err := read(path)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return cfg.withDefaults(), nil
}

func (c Config) cagrOptions() (cagr.Options, error) {
	opts := cagr.Options{
		LoginUrl:          c.Cagr.LoginUrl,
		ServiceUrl:        c.Cagr.ServiceUrl,
		ForumUrl:          c.Cagr.ForumUrl,
		Timeout:           time.Duration(c.Cagr.TimeoutSeconds) * time.Second,
		RequestsPerSecond: c.Cagr.RequestsPerSecond,
		Telemetry:         telemetry.SlogAPI{},
	}
	if *dumpDir != "" {
		output, err := telemetry.NewFilesystemOutput(*dumpDir)
		if err != nil {
			return cagr.Options{}, fmt.Errorf("prepare dump directory: %w", err)
		}
		opts.MessageOutput = output
	}
	return opts, nil
}

// credentialPrompt asks for whatever credential the config did not provide.
type credentialPrompt struct {
	in  *bufio.Reader
	out io.Writer
	// readPassword reads a line without echoing it
	readPassword func() ([]byte, error)
}

func newTerminalPrompt() credentialPrompt {
	fd := int(os.Stdin.Fd())
	in := bufio.NewReader(os.Stdin)
	readPassword := func() ([]byte, error) {
		if term.IsTerminal(fd) {
			return term.ReadPassword(fd)
		}
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return nil, err
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}
	return credentialPrompt{in: in, out: os.Stderr, readPassword: readPassword}
}

func (p credentialPrompt) credentials(username, password string) (string, string, error) {
	if username == "" {
		fmt.Fprint(p.out, "idUFSC: ")
		line, err := p.in.ReadString('\n')
		if err != nil && line == "" {
			return "", "", fmt.Errorf("reading idUFSC: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if password == "" {
		fmt.Fprint(p.out, "Senha: ")
		pass, err := p.readPassword()
		fmt.Fprintln(p.out)
		if err != nil {
			return "", "", fmt.Errorf("reading password: %w", err)
		}
		password = string(pass)
	}
	if username == "" || password == "" {
		return "", "", fmt.Errorf("idUFSC and password are required")
	}
	return username, password, nil
}
