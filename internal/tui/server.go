package tui

import (
	"context"
	"errors"
	"log"
	"net"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
)

const shutdownTimeout = 5 * time.Second

// StartSSHServer serves the dashboard over SSH. It blocks until ctx is
// cancelled, then shuts the listener down.
func StartSSHServer(ctx context.Context, addr string, svc Services) error {
	srv, err := wish.NewServer(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(".ssh/marketpulse_ed25519"),
		wish.WithMiddleware(
			bubbletea.Middleware(teaHandler(svc)),
			activeterm.Middleware(),
			logging.Middleware(),
		),
	)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	log.Printf("SSH dashboard listening on %s", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return err
	}
	return nil
}

func teaHandler(svc Services) bubbletea.Handler {
	return func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
		sessionSvc := svc
		sessionSvc.Username = s.User()

		m := NewAppModel(sessionSvc)
		if pty, _, ok := s.Pty(); ok {
			m.SetSize(pty.Window.Width, pty.Window.Height)
		}
		return m, []tea.ProgramOption{tea.WithAltScreen()}
	}
}

// SSHAddr joins a bind host and port for the SSH listener.
func SSHAddr(bind string, port int) string {
	return net.JoinHostPort(bind, strconv.Itoa(port))
}
