package util

import (
	"fmt"
	"net"
	"os/exec"
	"runtime"
)

// browserCommands 各平台按顺序尝试的打开方式
func browserCommands(url string) [][]string {
	switch runtime.GOOS {
	case "windows":
		// rundll32 在 Windows 7 上比 cmd /c start 稳定
		return [][]string{
			{"rundll32", "url.dll,FileProtocolHandler", url},
			{"explorer", url},
		}
	case "darwin":
		return [][]string{{"open", url}}
	default:
		return [][]string{
			{"xdg-open", url},
			{"sensible-browser", url},
			{"google-chrome", url},
			{"firefox", url},
		}
	}
}

// OpenBrowser 用默认浏览器打开 url，失败时依次尝试备选方式
func OpenBrowser(url string) error {
	var lastErr error
	for _, args := range browserCommands(url) {
		if err := exec.Command(args[0], args[1:]...).Start(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("open browser: %w", lastErr)
}

// FindAvailablePort 从 startPort 起查找可监听的端口，最多尝试 attempts 个
func FindAvailablePort(startPort, attempts int) (int, error) {
	for p := startPort; p < startPort+attempts; p++ {
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", p))
		if err != nil {
			continue
		}
		_ = ln.Close()
		return p, nil
	}
	return 0, fmt.Errorf("no free port in [%d, %d)", startPort, startPort+attempts)
}
