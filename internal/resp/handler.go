package resp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	cacheman "github.com/appleboy/cacheman-promise"
)

// command is one decoded request; name is upper-cased.
type command struct {
	name string
	args []string
}

// output is the reply to one command. Exactly one of the write fields is used.
type output struct {
	closeConnection bool      // Closes the connection after writing.
	writeNil        bool      // Writes a null bulk string.
	err             *string   // Error reply.
	writeInt        *int      // Integer reply.
	writeString     string    // Simple string reply.
	writeBulk       *string   // Bulk string reply.
	writeArray      []*string // Array of bulk strings; nil entries are nulls.
	isArray         bool
}

func closeConnection(msg string) output { return output{writeString: msg, closeConnection: true} }
func writeNil() output                  { return output{writeNil: true} }
func writeInt(i int) output             { return output{writeInt: &i} }
func writeString(s string) output       { return output{writeString: s} }
func writeBulk(s string) output         { return output{writeBulk: &s} }
func writeArray(a []*string) output     { return output{writeArray: a, isArray: true} }

func writeError(err error) output {
	msg := "ERR " + err.Error()
	return output{err: &msg}
}

func wrongArgs(name string) output {
	return writeError(fmt.Errorf("wrong number of arguments for '%s' command", strings.ToLower(name)))
}

var errSyntax = errors.New("syntax error")

type handler struct {
	cache cacheman.Cache[string]
}

func newHandler(c cacheman.Cache[string]) (*handler, error) {
	if c == nil {
		return nil, errors.New("expected a non-nil cache")
	}
	return &handler{cache: c}, nil
}

func (h *handler) handle(ctx context.Context, cmd command) output {
	switch cmd.name {
	case "PING":
		switch len(cmd.args) {
		case 0:
			return writeString("PONG")
		case 1:
			return writeBulk(cmd.args[0])
		}
		return wrongArgs(cmd.name)
	case "QUIT":
		return closeConnection("OK")
	case "CLIENT":
		// client libraries announce themselves on connect
		return writeString("OK")
	case "GET":
		if len(cmd.args) != 1 {
			return wrongArgs(cmd.name)
		}
		v, ok, err := h.cache.Get(ctx, cmd.args[0])
		if err != nil {
			return writeError(err)
		}
		if !ok {
			return writeNil()
		}
		return writeBulk(v)
	case "MGET":
		if len(cmd.args) < 1 {
			return wrongArgs(cmd.name)
		}
		vals, _, err := h.cache.GetMany(ctx, cmd.args)
		if err != nil {
			return writeError(err)
		}
		out := make([]*string, len(cmd.args))
		for i, k := range cmd.args {
			if v, ok := vals[k]; ok {
				out[i] = &v
			}
		}
		return writeArray(out)
	case "EXISTS":
		if len(cmd.args) < 1 {
			return wrongArgs(cmd.name)
		}
		vals, _, err := h.cache.GetMany(ctx, cmd.args)
		if err != nil {
			return writeError(err)
		}
		n := 0
		for _, k := range cmd.args {
			if _, ok := vals[k]; ok {
				n++
			}
		}
		return writeInt(n)
	case "SET":
		if len(cmd.args) != 2 && len(cmd.args) != 4 {
			return wrongArgs(cmd.name)
		}
		var ttl time.Duration
		if len(cmd.args) == 4 {
			var err error
			if ttl, err = parseExpiry(cmd.args[2], cmd.args[3]); err != nil {
				return writeError(err)
			}
		}
		if err := h.cache.Set(ctx, cmd.args[0], cmd.args[1], ttl); err != nil {
			return writeError(err)
		}
		return writeString("OK")
	case "DEL":
		if len(cmd.args) < 1 {
			return wrongArgs(cmd.name)
		}
		// count what existed; the delete itself reports nothing
		vals, _, err := h.cache.GetMany(ctx, cmd.args)
		if err != nil {
			return writeError(err)
		}
		if err := h.cache.Del(ctx, cmd.args...); err != nil {
			return writeError(err)
		}
		return writeInt(len(vals))
	case "GETDEL":
		if len(cmd.args) != 1 {
			return wrongArgs(cmd.name)
		}
		// Pull cannot tell a stored "" from absence and may delete in the
		// background, so read and delete explicitly before replying.
		v, ok, err := h.cache.Get(ctx, cmd.args[0])
		if err != nil {
			return writeError(err)
		}
		if !ok {
			return writeNil()
		}
		if err := h.cache.Del(ctx, cmd.args[0]); err != nil {
			return writeError(err)
		}
		return writeBulk(v)
	case "FLUSHDB", "FLUSHALL":
		if err := h.cache.Clear(ctx); err != nil {
			return writeError(err)
		}
		return writeString("OK")
	default:
		return writeError(fmt.Errorf("unknown command '%s'", strings.ToLower(cmd.name)))
	}
}

// parseExpiry handles the EX seconds / PX milliseconds options of SET.
func parseExpiry(opt, val string) (time.Duration, error) {
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid expire time in 'set' command")
	}
	switch strings.ToUpper(opt) {
	case "EX":
		return time.Duration(n) * time.Second, nil
	case "PX":
		return time.Duration(n) * time.Millisecond, nil
	}
	return 0, errSyntax
}
