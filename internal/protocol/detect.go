package protocol

import "strings"

// DeviceDescriptor is the identity a device presents: its transport
// address, advertised name, and the service identifiers discovered after
// connecting. Immutable once captured.
type DeviceDescriptor struct {
	ID           string
	Name         string
	ServiceUUIDs []string
}

// DetectionResult is the immutable outcome of one detection pass.
// Resolved is the single kind the session binds to; Matched lists every
// kind whose markers fired, highest priority first, for diagnostics.
type DetectionResult struct {
	Resolved Kind
	Matched  []Kind
	// Fallback is true when no marker matched and CSC was assumed.
	Fallback bool
}

// Name-substring markers for vendor bikes that cannot be told apart by a
// standard service. Tokens are matched against the uppercased device name.
var nameMarkers = map[Kind][]string{
	KindMobi:    {"MOB"},
	KindReborn:  {"XQ"},
	KindTacx:    {"TAC"},
	KindFitShow: {"FS-"},
	KindYafitS3: {"YAFITS3", "YA FIT"},
	KindYafitS4: {"R-Q", "YAFITF1"},
}

// Service-identifier markers. Vendor services count toward their vendor
// kind alongside the name markers above.
var serviceMarkers = map[Kind][]string{
	KindFTMS:    {ServiceUUIDFTMS},
	KindCSC:     {ServiceUUIDCSC},
	KindCPS:     {ServiceUUIDCyclingPower},
	KindHRS:     {ServiceUUIDHeartRate},
	KindBMS:     {ServiceUUIDBattery},
	KindDIS:     {ServiceUUIDDeviceInformation},
	KindNUS:     {ServiceUUIDNUS},
	KindMobi:    {ServiceUUIDMobi},
	KindReborn:  {ServiceUUIDReborn},
	KindTacx:    {ServiceUUIDTacx},
	KindFitShow: {ServiceUUIDFitShow},
}

// Resolution priority, highest first. Standard, richly populated profiles
// win over name heuristics; CSC is the universal fallback because any
// cycling sensor exposing a standard profile exposes at least CSC.
var resolutionOrder = []Kind{
	KindCPS,
	KindFTMS,
	KindMobi,
	KindReborn,
	KindTacx,
	KindFitShow,
	KindYafitS3,
	KindYafitS4,
	KindCSC,
}

// Detect classifies a device into exactly one protocol kind. It is a pure
// function of the descriptor: no state survives between calls. Callers that
// hit a service-discovery failure must not call Detect with a partial
// descriptor; they propagate a DetectionError instead.
func Detect(dev DeviceDescriptor) DetectionResult {
	matched := matchedKinds(dev)

	for _, kind := range resolutionOrder {
		if matched[kind] {
			return DetectionResult{Resolved: kind, Matched: orderMatches(matched)}
		}
	}
	return DetectionResult{Resolved: KindCSC, Matched: orderMatches(matched), Fallback: true}
}

func matchedKinds(dev DeviceDescriptor) map[Kind]bool {
	matched := make(map[Kind]bool)

	name := strings.ToUpper(dev.Name)
	if name != "" {
		for kind, tokens := range nameMarkers {
			for _, token := range tokens {
				if strings.Contains(name, token) {
					matched[kind] = true
					break
				}
			}
		}
	}

	services := make(map[string]bool, len(dev.ServiceUUIDs))
	for _, uuid := range dev.ServiceUUIDs {
		services[NormalizeUUID(uuid)] = true
	}
	for kind, uuids := range serviceMarkers {
		for _, uuid := range uuids {
			if services[uuid] {
				matched[kind] = true
				break
			}
		}
	}

	return matched
}

func orderMatches(matched map[Kind]bool) []Kind {
	var out []Kind
	for _, kind := range AllKinds {
		if matched[kind] {
			out = append(out, kind)
		}
	}
	return out
}
