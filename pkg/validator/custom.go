package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mcpadm/mcpadm/pkg/models"
)

var hostnameRe = regexp.MustCompile(
	`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// registerBuiltinCustoms installs the custom validators every engine instance
// carries: the cross-document port check and the format validators.
func registerBuiltinCustoms(v *Validator) {
	v.customs["uniquePort"] = uniquePort
	v.customs["hostname"] = hostnameFormat
	v.customs["absolute-path"] = absolutePathFormat
}

// uniquePort compares the target port against the port of every peer document
// with a different _id. Peers arrive via args["configs"]; without a cohort the
// check passes.
func uniquePort(value any, _ *models.Schema, _ string, args map[string]any) *CustomResult {
	port, ok := toFloat(value)
	if !ok {
		return &CustomResult{Valid: true}
	}

	configs, ok := args["configs"].([]models.ConfigDocument)
	if !ok {
		return &CustomResult{Valid: true}
	}

	selfID, _ := args["_id"].(string)

	for _, peer := range configs {
		if peer.ID() == selfID {
			continue
		}

		peerPort, ok := toFloat(peer["port"])
		if ok && peerPort == port {
			return &CustomResult{
				Valid:  false,
				Errors: []string{fmt.Sprintf("Port %s is already in use by another server", formatNumber(port))},
			}
		}
	}

	return &CustomResult{Valid: true}
}

func hostnameFormat(value any, _ *models.Schema, path string, _ map[string]any) *CustomResult {
	s, ok := value.(string)
	if !ok || hostnameRe.MatchString(s) {
		return &CustomResult{Valid: true}
	}

	return &CustomResult{
		Valid:  false,
		Errors: []string{fmt.Sprintf("Field %q should be a valid hostname", path)},
	}
}

func absolutePathFormat(value any, _ *models.Schema, path string, _ map[string]any) *CustomResult {
	s, ok := value.(string)
	if !ok || strings.HasPrefix(s, "/") {
		return &CustomResult{Valid: true}
	}

	return &CustomResult{
		Valid:  false,
		Errors: []string{fmt.Sprintf("Field %q should be an absolute path", path)},
	}
}
