package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ctkit/ctview/internal/logging"
	"github.com/ctkit/ctview/internal/logstore"
)

// ErrNoPort reports that every port in the fallback range was taken.
var ErrNoPort = errors.New("no available port")

const (
	portAttempts    = 10
	shutdownTimeout = 5 * time.Second
)

// Run serves the API, binding the first free port in
// [port, port+portAttempts) and shutting down when ctx is cancelled.
func Run(ctx context.Context, store *logstore.Store, port int) error {
	ln, bound, err := listen(port, portAttempts)
	if err != nil {
		return err
	}

	for _, stream := range store.Missing() {
		logging.Warn("no log file bound for panel %s", stream)
	}
	logging.Info("ctviewd listening on http://localhost:%d", bound)

	srv := &http.Server{Handler: New(store).Handler()}
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error("shutdown: %v", err)
		}
	}()

	err = srv.Serve(ln)
	<-done
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// listen binds the first free port in [port, port+attempts).
func listen(port, attempts int) (net.Listener, int, error) {
	for i := 0; i < attempts; i++ {
		candidate := port + i
		ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(candidate)))
		if err != nil {
			logging.Debug("port %d unavailable: %v", candidate, err)
			continue
		}
		if candidate == 0 {
			candidate = ln.Addr().(*net.TCPAddr).Port
		}
		return ln, candidate, nil
	}
	return nil, 0, fmt.Errorf("%w in range %d-%d", ErrNoPort, port, port+attempts-1)
}
