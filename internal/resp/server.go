// Package resp serves a string cache over the Redis protocol.
package resp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/tidwall/redcon"

	cacheman "github.com/appleboy/cacheman-promise"
)

// Run listens on addr and serves c until ctx is cancelled.
func Run(ctx context.Context, addr string, c cacheman.Cache[string], log cacheman.Logger) error {
	if addr == "" {
		return errors.New("expected a non-empty address")
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return Serve(ctx, ln, c, log)
}

// Serve accepts connections on ln until ctx is cancelled. ln is closed on return.
func Serve(ctx context.Context, ln net.Listener, c cacheman.Cache[string], log cacheman.Logger) error {
	h, err := newHandler(c)
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("failed to create a new redis handler: %w", err)
	}
	if log == nil {
		log = cacheman.NopLogger{}
	}

	server := redcon.NewServerNetwork("tcp" /*net*/, ln.Addr().String(),
		/*handler*/ func(conn redcon.Conn, cmd redcon.Command) {
			command := command{name: strings.ToUpper(string(cmd.Args[0])), args: make([]string, len(cmd.Args)-1)}
			for i := 1; i < len(cmd.Args); i++ {
				command.args[i-1] = string(cmd.Args[i])
			}
			write(conn, h.handle(ctx, command), log)
		},
		/*accept*/ func(conn redcon.Conn) bool {
			log.Debug("connection accepted", cacheman.Fields{"remote": conn.RemoteAddr()})
			return true
		},
		/*closed*/ func(conn redcon.Conn, err error) {
			if err != nil {
				log.Debug("connection closed", cacheman.Fields{"remote": conn.RemoteAddr(), "err": err})
			}
		})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Serve(ln)
		close(serverErr)
	}()
	log.Info("serving redis protocol", cacheman.Fields{"addr": ln.Addr().String(), "ns": c.Namespace()})

	select {
	case <-ctx.Done():
		// Close reports "not serving" if Serve has not started yet; closing
		// ln directly stops the accept loop either way.
		_ = server.Close()
		_ = ln.Close()
		<-serverErr
		return nil
	case err := <-serverErr:
		if err == nil {
			return errors.New("redis server stopped unexpectedly")
		}
		return fmt.Errorf("redis server stopped unexpectedly: %w", err)
	}
}

func write(conn redcon.Conn, out output, log cacheman.Logger) {
	switch {
	case out.closeConnection:
		conn.WriteString(out.writeString)
		if err := conn.Close(); err != nil {
			log.Warn("failed to close connection", cacheman.Fields{"err": err})
		}
	case out.err != nil:
		conn.WriteError(*out.err)
	case out.writeNil:
		conn.WriteNull()
	case out.writeInt != nil:
		conn.WriteInt(*out.writeInt)
	case out.writeBulk != nil:
		conn.WriteBulkString(*out.writeBulk)
	case out.isArray:
		conn.WriteArray(len(out.writeArray))
		for _, v := range out.writeArray {
			if v == nil {
				conn.WriteNull()
				continue
			}
			conn.WriteBulkString(*v)
		}
	default:
		conn.WriteString(out.writeString)
	}
}
