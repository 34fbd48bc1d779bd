//go:build unix

package bootstrap

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/kbukum/tokengate/config"
	"github.com/kbukum/tokengate/logger"
)

func TestRunTask_CustomSignalCancelsTask(t *testing.T) {
	app, err := NewApp(&appConfig{ServiceConfig: config.ServiceConfig{Name: "tokengate"}},
		WithLogger(logger.NewNop()), WithSignals(syscall.SIGUSR1))
	if err != nil {
		t.Fatal(err)
	}

	err = app.RunTask(context.Background(), func(ctx context.Context) error {
		if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR1); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return errors.New("signal did not cancel the task")
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
