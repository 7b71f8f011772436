// Package testinfra starts the containers integration tests run against.
//
// Tests using it carry the integration build tag and are skipped when no
// Docker daemon is reachable:
//
//	go test -tags integration ./...
package testinfra
