package gateway

import (
	"golang.org/x/mod/semver"
)

// APIVersion is the wire protocol version spoken by this client and by
// package server.
const APIVersion = "v1.2.0"

// CheckCompatible compares a server API version against APIVersion. Only
// the major version has to match.
func CheckCompatible(server string) error {
	if !semver.IsValid(server) {
		return &ErrIncompatible{Server: server, Client: APIVersion}
	}
	if semver.Major(server) != semver.Major(APIVersion) {
		return &ErrIncompatible{Server: server, Client: APIVersion}
	}
	return nil
}
