// Package wm runs the window manager loop: one goroutine owns the model and
// applies messages run-to-completion, so everything downstream of Update is
// free of locks.
package wm

import (
	"context"
	"errors"
	"fmt"

	"github.com/lx7/monotile/internal/backend"
)

var errQuit = fmt.Errorf("quit")

// Quit is a Render that stops the loop cleanly.
func Quit(ctx context.Context, b *backend.Backend) error {
	return errQuit
}

// Msg contains data from the result of an IO operation. Msgs trigger the
// update function and, henceforth, the next frame.
type Msg interface{}

type Model interface {
	// Init is called once before any message arrives.
	Init() (Model, Render)

	// Update is called when a message is received. Use it to inspect messages
	// and, in response, update the model and/or render.
	Update(Msg) (Model, Render)
}

type Render func(ctx context.Context, b *backend.Backend) error

// Run drives the loop until the context ends, the backend closes msgC, or a
// Render returns an error. Quit stops it with a nil error. msgC carries
// backend events, cmdC carries bus traffic; both run through Update one at a
// time.
func Run(ctx context.Context, b *backend.Backend, model Model, msgC <-chan any, cmdC <-chan any) error {
	model, render := model.Init()
	if stop, err := invoke(ctx, b, render); stop {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgC:
			if !ok {
				return nil
			}

			model, render = model.Update(msg)
			if stop, err := invoke(ctx, b, render); stop {
				return err
			}
		case msg := <-cmdC:
			model, render = model.Update(msg)
			if stop, err := invoke(ctx, b, render); stop {
				return err
			}
		}
	}
}

func invoke(ctx context.Context, b *backend.Backend, render Render) (bool, error) {
	if render == nil {
		return false, nil
	}
	if err := render(ctx, b); err != nil {
		if errors.Is(err, errQuit) {
			return true, nil
		}
		return true, err
	}
	return false, nil
}
