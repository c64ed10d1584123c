//go:build mage

// Package main provides build targets for the partlabels project using Mage.
//
// Usage:
//
//	mage build          Compile the partlabels binary to bin/
//	mage install        Install partlabels to GOPATH/bin
//	mage clean          Remove build artifacts
//	mage test:all       Run all tests
//	mage test:race      Run all tests with the race detector
//	mage test:cover     Run all tests and write a coverage profile
//	mage lint           Run golangci-lint
//	mage catalog        Download the bulk tables with a fresh build
package main

const (
	binGo      = "go"
	binaryName = "partlabels"
	binaryDir  = "bin"
	cmdDir     = "./cmd/partlabels"
)
