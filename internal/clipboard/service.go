package clipboard

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

// Service copies text to the system clipboard, used for sharing resolved
// embed URLs
type Service interface {
	Write(text string) error
}

type service struct {
	// command overrides the platform tool when set, split into argv form
	command []string
	logger  *slog.Logger
}

// NewService creates a clipboard service. An empty override picks the
// platform default tool.
func NewService(commandOverride string, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		command: strings.Fields(commandOverride),
		logger:  logger,
	}
}

func (s *service) Write(text string) error {
	// The cross-platform library handles the common cases; the external
	// tool path is the fallback for headless or Wayland setups it misses
	if err := clipboard.WriteAll(text); err == nil {
		return nil
	} else {
		s.logger.Debug("clipboard library write failed, trying external tool", "error", err)
	}

	argv := s.command
	if len(argv) == 0 {
		var err error
		argv, err = platformWriteCommand()
		if err != nil {
			return err
		}
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("clipboard tool %s failed: %w", argv[0], err)
	}
	return nil
}

// platformWriteCommand picks a copy tool for the current OS
func platformWriteCommand() ([]string, error) {
	switch runtime.GOOS {
	case "darwin":
		return []string{"pbcopy"}, nil
	case "linux":
		for _, candidate := range [][]string{
			{"wl-copy"},
			{"xclip", "-selection", "clipboard"},
			{"xsel", "--clipboard", "--input"},
		} {
			if _, err := exec.LookPath(candidate[0]); err == nil {
				return candidate, nil
			}
		}
		return nil, fmt.Errorf("no clipboard tool found (install wl-clipboard, xclip, or xsel)")
	case "windows":
		return []string{"clip"}, nil
	default:
		return nil, fmt.Errorf("clipboard not supported on %s", runtime.GOOS)
	}
}
