package engines

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/letterboard/internal/speech"
)

// GracePeriod is how long a canceled subprocess gets between the interrupt
// and the kill.
const GracePeriod = 500 * time.Millisecond

// maxOutput caps what a subprocess may write to stdout.
const maxOutput = 20 << 20

// run executes bin with args, feeding stdin and returning stdout. When ctx
// is done the process is interrupted, then killed after GracePeriod.
func run(ctx context.Context, bin string, args []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Cancel = func() error {
		if runtime.GOOS == "windows" {
			return cmd.Process.Kill()
		}
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = GracePeriod

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	log.Debug("Subprocess finished", "bin", bin, "args", args, "duration", time.Since(start), "error", err)

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, speech.NewSpeechError(speech.ErrorCodeEngineTimeout, bin+" timed out", speech.ErrTimeout)
		}
		return nil, speech.NewSpeechError(speech.ErrorCodeCanceled, bin+" canceled", speech.ErrCanceled)
	}
	if err != nil {
		var notFound *exec.Error
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s: %v", speech.ErrEngineNotAvailable, bin, err)
		}
		return nil, speech.NewSpeechError(speech.ErrorCodeEngineFailure,
			fmt.Sprintf("%s failed: %s", bin, firstLine(stderr.String())), err)
	}
	if stdout.Len() > maxOutput {
		return nil, speech.NewSpeechError(speech.ErrorCodeAudioFormat,
			fmt.Sprintf("%s output too large: %d bytes", bin, stdout.Len()), speech.ErrSynthesisFailed)
	}
	return stdout.Bytes(), nil
}

// lookPath resolves bin, trying each fallback name in turn.
func lookPath(bin string, fallbacks ...string) (string, error) {
	for _, name := range append([]string{bin}, fallbacks...) {
		if name == "" {
			continue
		}
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s not found in PATH", speech.ErrEngineNotAvailable, bin)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
