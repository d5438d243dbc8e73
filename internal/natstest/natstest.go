// Package natstest runs an embedded NATS server for tests.
package natstest

import (
	"fmt"
	"net"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

const readyTimeout = 5 * time.Second

// NewConn creates a nats test connection and returns a shutdown function to be deferred.
func NewConn() (conn *nats.Conn, shutdown func(), err error) {
	srv, err := NewServer()
	if err != nil {
		return nil, nil, err
	}

	conn, err = nats.Connect(srv.ClientURL())
	if err != nil {
		srv.Shutdown()
		return nil, nil, fmt.Errorf("failed to connect to nats server: %w", err)
	}
	if r := conn.Flush(); r != nil {
		conn.Close()
		srv.Shutdown()
		return nil, nil, fmt.Errorf("failed to reach nats server: %w", r)
	}

	return conn, func() {
		conn.Close()
		srv.Shutdown()
	}, nil
}

// NewServer starts an embedded NATS server on a free local port.
// The caller is responsible for shutting it down.
func NewServer() (*server.Server, error) {
	port, err := getFreePort(3)
	if err != nil {
		return nil, fmt.Errorf("no free port found")
	}

	opts := server.Options{
		Host:   "localhost",
		Port:   port,
		NoLog:  true,
		NoSigs: true,
	}
	gnatsd, err := server.NewServer(&opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create nats server: %w", err)
	}
	gnatsd.Start()
	if !gnatsd.ReadyForConnections(readyTimeout) {
		gnatsd.Shutdown()
		return nil, fmt.Errorf("nats server not ready after %v", readyTimeout)
	}
	return gnatsd, nil
}

func getFreePort(n int) (port int, err error) {
	for i := 0; i < n; i++ {
		if port, err = getPort(); err == nil {
			return port, err
		}
	}
	return 0, err
}

func getPort() (port int, err error) {
	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	port = ln.Addr().(*net.TCPAddr).Port
	err = ln.Close()
	return port, err
}
