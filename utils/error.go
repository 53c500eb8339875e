package utils

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// ErrExec executes a list of functions concurrently and returns an error if
// any function fails. Remaining functions are cancelled via context.
func ErrExec(functions ...func() error) error {
	group, ctx := errgroup.WithContext(context.Background())

	for _, one := range functions {
		group.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return one()
			}
		})
	}

	return group.Wait()
}

// ErrExecSequential executes a list of functions sequentially, accumulating
// errors instead of stopping at the first failure.
func ErrExecSequential(functions ...func() error) error {
	var multErr error

	for _, one := range functions {
		if err := one(); err != nil {
			multErr = multierror.Append(multErr, err)
		}
	}

	return multErr
}

// ErrExecFormat formats the error returned from a function according to the
// provided format string.
func ErrExecFormat(format string, function func() error) func() error {
	return func() error {
		if err := function(); err != nil {
			return fmt.Errorf(format, err)
		}
		return nil
	}
}
