package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/dayglow/internal/constants"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// ErrAgentNotRunning is returned when no live reminder agent can be found.
var ErrAgentNotRunning = errors.New("dayglow-agent is not running")

// agent is a located, validated reminder agent.
type agent struct {
	port   string
	secret string
}

func (a agent) baseURL() string {
	return "http://127.0.0.1:" + a.port
}

type notifyPayload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

// AgentConfigDir returns the directory the reminder agent keeps its lockfile in.
func AgentConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}

	agentDir := filepath.Join(configDir, constants.AgentIdentifier)

	// settings.json may point the lockfile elsewhere
	data, err := os.ReadFile(filepath.Join(agentDir, "settings.json"))
	if err == nil {
		var store struct {
			Settings struct {
				LockfileDir *string `json:"lockfile_dir"`
			} `json:"settings"`
		}
		if err := json.Unmarshal(data, &store); err == nil {
			if store.Settings.LockfileDir != nil && *store.Settings.LockfileDir != "" {
				return *store.Settings.LockfileDir, nil
			}
		}
	}

	return agentDir, nil
}

func locateAgent() (agent, error) {
	dir, err := AgentConfigDir()
	if err != nil {
		return agent{}, err
	}
	return readLockfile(filepath.Join(dir, constants.AgentLockfileName))
}

// readLockfile parses a "port|pid|secret" lockfile and checks the pid still
// belongs to the agent.
func readLockfile(lockfilePath string) (agent, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return agent{}, ErrAgentNotRunning
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return agent{}, errors.New("lockfile is malformed")
	}

	port := strings.TrimSpace(parts[0])
	if port == "" {
		return agent{}, errors.New("port in lockfile is empty")
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return agent{}, errors.New("invalid port number in lockfile")
	}
	if portNum < 1 || portNum > 65535 {
		return agent{}, fmt.Errorf("port number %d is outside valid range (1-65535)", portNum)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return agent{}, errors.New("invalid process ID in lockfile")
	}
	secret := strings.TrimSpace(parts[2])
	if secret == "" {
		return agent{}, errors.New("secret in lockfile is empty")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return agent{}, ErrAgentNotRunning
	}
	if !strings.HasPrefix(process.Executable(), constants.AgentExecutablePrefix) {
		return agent{}, fmt.Errorf("process with PID %d is not %s (is %s)", pid, constants.AgentExecutablePrefix, process.Executable())
	}

	return agent{port: port, secret: secret}, nil
}

func (a agent) notify(ctx context.Context, client *http.Client, text string) error {
	jsonData, err := json.Marshal(notifyPayload{
		Text:       text,
		DurationMs: constants.NotificationDurationMs,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL(), bytes.NewReader(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Dayglow-Secret", a.secret)

	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, string(body))
}
