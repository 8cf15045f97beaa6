// Package tracetoolcontext carries a logrus entry alongside a Go context so that every stage of a command
// logs with the fields (command, run id, series name) of the work it is doing.
package tracetoolcontext

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Context is a context.Context with a contextual logger.
type Context struct {
	context.Context
	Log *logrus.Entry
}

// Background is context.Background() logging through the standard logger.
func Background() *Context {
	return New(context.Background(), logrus.NewEntry(logrus.StandardLogger()))
}

func New(ctx context.Context, log *logrus.Entry) *Context {
	return &Context{Context: ctx, Log: log}
}

// derive keeps the logger of c but replaces the underlying context.
func (c *Context) derive(ctx context.Context) *Context {
	return New(ctx, c.Log)
}

func WithCancel(parent *Context) (*Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent.Context)
	return parent.derive(ctx), cancel
}

// WithInterrupt is cancelled on SIGINT or SIGTERM. Calling the returned function stops the signal relay.
func WithInterrupt(parent *Context) (*Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent.Context, os.Interrupt, syscall.SIGTERM)
	return parent.derive(ctx), stop
}

func WithLogField(parent *Context, key string, val interface{}) *Context {
	return New(parent.Context, parent.Log.WithField(key, val))
}

func WithLogFields(parent *Context, fields logrus.Fields) *Context {
	return New(parent.Context, parent.Log.WithFields(fields))
}

// ErrGroup is errgroup.WithContext for a Context. If limit is positive, at most limit goroutines run at once.
func ErrGroup(parent *Context, limit int) (*errgroup.Group, *Context) {
	group, ctx := errgroup.WithContext(parent)
	if limit > 0 {
		group.SetLimit(limit)
	}
	return group, parent.derive(ctx)
}
