package toast

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"
)

const (
	// TrayLockfileName is written by the desktop tray helper as "port|pid|secret"
	TrayLockfileName = "tray.lock"
	trayExecutable   = "resdesk-tray"
)

var findProcessFunc = ps.FindProcess

// Tray forwards toasts to the resdesk-tray desktop helper when it is
// running. The helper is rediscovered on every toast so it can be started
// or restarted at any time.
type Tray struct {
	lockfile string
	client   *http.Client
}

func NewTray(lockfile string) *Tray {
	return &Tray{
		lockfile: lockfile,
		client:   &http.Client{Timeout: 2 * time.Second},
	}
}

// Available reports whether a live tray helper owns the lockfile
func (t *Tray) Available() bool {
	_, _, err := findTrayProcess(t.lockfile)
	return err == nil
}

func (t *Tray) Show(toast Toast) error {
	port, secret, err := findTrayProcess(t.lockfile)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("http://127.0.0.1:%s", port)
	return post(context.Background(), t.client, url, secret, payloadFor(toast))
}

func findTrayProcess(lockfilePath string) (string, string, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return "", "", errors.New("resdesk-tray is not running")
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return "", "", errors.New("tray lockfile is malformed")
	}

	port := strings.TrimSpace(parts[0])
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return "", "", errors.New("invalid port number in tray lockfile")
	}
	if portNum < 1 || portNum > 65535 {
		return "", "", fmt.Errorf("port number %d is outside valid range (1-65535)", portNum)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", "", errors.New("invalid process ID in tray lockfile")
	}
	secret := strings.TrimSpace(parts[2])
	if secret == "" {
		return "", "", errors.New("secret in tray lockfile is empty")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return "", "", errors.New("resdesk-tray process not running")
	}
	if !strings.HasPrefix(process.Executable(), trayExecutable) {
		return "", "", fmt.Errorf("process with PID %d is not %s (is %s)", pid, trayExecutable, process.Executable())
	}

	return port, secret, nil
}
