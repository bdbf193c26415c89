//go:build cgo

package main

import "github.com/dusk-indust/stageresults/internal/results"

func openKuzuStore(path string) (results.Store, error) {
	if path == "" {
		return results.NewKuzuStore()
	}
	return results.NewKuzuFileStore(path)
}
