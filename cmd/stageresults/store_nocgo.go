//go:build !cgo

package main

import (
	"errors"

	"github.com/dusk-indust/stageresults/internal/results"
)

func openKuzuStore(string) (results.Store, error) {
	return nil, errors.New("kuzu store needs a cgo build")
}
