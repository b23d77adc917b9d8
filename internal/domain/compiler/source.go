package compiler

import (
	"net/url"

	"github.com/felixgeelhaar/pactverify/internal/domain/config"
	"github.com/felixgeelhaar/pactverify/internal/ports"
)

// SourceKind is what a pact source location resolves to.
type SourceKind int

const (
	SourceInvalid SourceKind = iota
	SourceURL
	SourceDirectory
	SourceFile
)

// String returns the kind name.
func (k SourceKind) String() string {
	switch k {
	case SourceURL:
		return "url"
	case SourceDirectory:
		return "directory"
	case SourceFile:
		return "file"
	default:
		return "invalid"
	}
}

// Classify decides whether location is a remote URL, a directory or a file.
// http and https URLs with a host are never looked up on disk. Everything else
// is inspected without following symlinks; symlinks count as files.
func Classify(fs ports.FileSystem, location string) (SourceKind, error) {
	if isRemote(location) {
		return SourceURL, nil
	}

	kind, err := fs.Lstat(location)
	if err != nil {
		return SourceInvalid, NewSourceMissingError(location, err)
	}

	switch kind {
	case ports.KindDirectory:
		return SourceDirectory, nil
	case ports.KindRegular, ports.KindSymlink:
		return SourceFile, nil
	default:
		return SourceInvalid, NewSourceUnsupportedError(location, kind.String())
	}
}

func isRemote(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// mergeSource collapses a classified pact source onto the one physical
// engine call that accepts it. URL sources carry the resolved broker
// credentials.
func mergeSource(kind SourceKind, location string, opts *config.Resolved) call {
	switch kind {
	case SourceURL:
		username, password, token := opts.PactBrokerUsername, opts.PactBrokerPassword, opts.PactBrokerToken
		return call{op: "url_source", invoke: func(e ports.VerifierSetup, h *ports.SessionHandle) error {
			return e.URLSource(h, location, username, password, token)
		}}
	case SourceDirectory:
		return call{op: "add_directory_source", invoke: func(e ports.VerifierSetup, h *ports.SessionHandle) error {
			return e.AddDirectorySource(h, location)
		}}
	default:
		return call{op: "add_file_source", invoke: func(e ports.VerifierSetup, h *ports.SessionHandle) error {
			return e.AddFileSource(h, location)
		}}
	}
}
