package controllers

import (
	"net/http"

	"mirage/backend/app/models"
)

// Agents identify themselves through request headers rather than tokens; the
// id header is only present once the server has assigned one.
const (
	HeaderMachineID      = "mirage-id"
	HeaderMachineName    = "mirage-name"
	HeaderMachineFQDN    = "mirage-fqdn"
	HeaderMachineDomain  = "mirage-domain"
	HeaderMachineHost    = "mirage-host"
	HeaderResolvedHost   = "mirage-resolvedhost"
	HeaderMachineIP      = "mirage-ip"
	HeaderCurrentUser    = "mirage-user"
	HeaderClientVersion  = "mirage-version"
)

// readMachine builds the reported machine identity from check-in headers.
func readMachine(r *http.Request) models.Machine {
	return models.Machine{
		ID:              r.Header.Get(HeaderMachineID),
		Name:            r.Header.Get(HeaderMachineName),
		FQDN:            r.Header.Get(HeaderMachineFQDN),
		Domain:          r.Header.Get(HeaderMachineDomain),
		Host:            r.Header.Get(HeaderMachineHost),
		ResolvedHost:    r.Header.Get(HeaderResolvedHost),
		HostIP:          r.Header.Get(HeaderMachineIP),
		IPAddress:       r.RemoteAddr,
		CurrentUsername: r.Header.Get(HeaderCurrentUser),
		ClientVersion:   r.Header.Get(HeaderClientVersion),
	}
}
