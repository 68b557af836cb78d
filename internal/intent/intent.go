// Package intent turns free-text customer messages into a structured
// view of what they're asking about: property size, service tier, and
// add-ons. Extraction is heuristic regex/keyword matching; unresolved
// fields report as unknown and callers handle partial intent.
package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// ServiceType is the cleaning tier a customer is asking about.
type ServiceType string

const (
	ServiceStandard  ServiceType = "Standard"
	ServiceDeep      ServiceType = "Deep"
	ServiceSuper     ServiceType = "Super"
	ServiceMoveInOut ServiceType = "Move In/Out"
)

// Addon identifies one optional extra a customer mentioned.
type Addon string

const (
	AddonInsideFridge    Addon = "Inside fridge"
	AddonInsideOven      Addon = "Inside oven"
	AddonInsideMicrowave Addon = "Inside microwave"
	AddonInteriorWindows Addon = "Interior windows"
	AddonLaundry         Addon = "Laundry"
	AddonDishes          Addon = "Dishes"
	AddonRoomCabinets    Addon = "Bedroom/bathroom cabinets"
	AddonKitchenCabinets Addon = "Kitchen cabinets"
	AddonBasement        Addon = "Basement cleaning"
	AddonPetHair         Addon = "Pet hair removal"
	AddonOrganization    Addon = "Organization"
	AddonExtraHour       Addon = "Extra hour"
	AddonWasherDryer     Addon = "Washer/dryer cleaning"
	AddonBaseboards      Addon = "Baseboards"
	AddonWallStains      Addon = "Wall stain removal"
	AddonTileGrout       Addon = "Tile/grout cleaning"
	AddonHardwood        Addon = "Hardwood floors"
	AddonOffice          Addon = "Office"
	AddonTownhouse       Addon = "Townhouse"
	AddonStairs          Addon = "Stairs"
)

// BedroomsStudio is the bedroom value for a studio apartment.
const BedroomsStudio = "Studio"

// Turn is a minimal view of one stored conversation message, enough
// for history fallback scans without depending on the storage layer.
type Turn struct {
	Outgoing bool
	Body     string
}

// Intent is the structured interpretation of a single inbound message
// plus whatever the conversation history already established. Bedrooms
// is "Studio" or a digit string; Bathrooms is a digit string possibly
// with a half ("1.5"). Empty string means unresolved.
type Intent struct {
	Bedrooms           string      `json:"bedrooms,omitempty"`
	Bathrooms          string      `json:"bathrooms,omitempty"`
	Service            ServiceType `json:"service,omitempty"`
	Addons             []Addon     `json:"addons,omitempty"`
	HasPropertyDetails bool        `json:"has_property_details"`
}

var (
	bedroomsRE  = regexp.MustCompile(`(?i)(\d+)\s*(?:bed|bedroom|br|bd)`)
	bathroomsRE = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:bath|bathroom|ba)`)
)

// quoteBotSignatures mark outgoing messages produced by the quoting
// path. When the customer never restated the property size, the size a
// prior quote was computed for is the most reliable thing to carry
// forward, so those messages are scanned before the general history
// fallback.
var quoteBotSignatures = []string{
	"i just received your inquiry",
	"our base price for a",
}

// orderedAddons fixes the output order of the add-on set so callers
// get deterministic slices regardless of mention order.
var orderedAddons = []struct {
	keywords []string
	addon    Addon
}{
	{[]string{"fridge", "refrigerator"}, AddonInsideFridge},
	{[]string{"oven"}, AddonInsideOven},
	{[]string{"window"}, AddonInteriorWindows},
	{[]string{"laundry"}, AddonLaundry},
	{[]string{"dishes"}, AddonDishes},
}

// Extract derives an Intent from the current message and the stored
// history. Resolution order for bedrooms/bathrooms: current message,
// then prior quote-bot messages, then the full joined history text
// (oldest first, so the earliest mention wins). Add-ons come from the
// current message only.
func Extract(current string, history []Turn) Intent {
	out := Intent{Service: ServiceStandard}

	out.Bedrooms = extractBedrooms(current)
	out.Bathrooms = extractBathrooms(current)

	if out.Bedrooms == "" || out.Bathrooms == "" {
		if quoted := findQuoteBotMessage(history); quoted != "" {
			if out.Bedrooms == "" {
				out.Bedrooms = extractBedrooms(quoted)
			}
			if out.Bathrooms == "" {
				out.Bathrooms = extractBathrooms(quoted)
			}
		}
	}

	if out.Bedrooms == "" || out.Bathrooms == "" {
		joined := joinHistory(history)
		if out.Bedrooms == "" {
			out.Bedrooms = extractBedrooms(joined)
		}
		if out.Bathrooms == "" {
			out.Bathrooms = extractBathrooms(joined)
		}
	}

	if svc, ok := matchService(current); ok {
		out.Service = svc
	} else if svc, ok := matchService(joinHistory(history)); ok {
		out.Service = svc
	}

	lower := strings.ToLower(current)
	if !strings.Contains(lower, "remove") && !strings.Contains(lower, "without") {
		for _, a := range orderedAddons {
			for _, kw := range a.keywords {
				if strings.Contains(lower, kw) {
					out.Addons = append(out.Addons, a.addon)
					break
				}
			}
		}
	}

	out.HasPropertyDetails = out.Bedrooms != "" && out.Bathrooms != ""
	return out
}

func extractBedrooms(text string) string {
	if m := bedroomsRE.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if strings.Contains(strings.ToLower(text), "studio") {
		return BedroomsStudio
	}
	return ""
}

func extractBathrooms(text string) string {
	m := bathroomsRE.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return normalizeCount(m[1])
}

// normalizeCount collapses "2.0" to "2" so values line up with the
// rate table keys; genuine halves ("1.5") pass through.
func normalizeCount(s string) string {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	if f == float64(int(f)) {
		return strconv.Itoa(int(f))
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func matchService(text string) (ServiceType, bool) {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "deep"):
		return ServiceDeep, true
	case strings.Contains(lower, "super"):
		return ServiceSuper, true
	case strings.Contains(lower, "move"):
		return ServiceMoveInOut, true
	case strings.Contains(lower, "standard"):
		return ServiceStandard, true
	}
	return "", false
}

func findQuoteBotMessage(history []Turn) string {
	for _, t := range history {
		if !t.Outgoing {
			continue
		}
		lower := strings.ToLower(t.Body)
		for _, sig := range quoteBotSignatures {
			if strings.Contains(lower, sig) {
				return t.Body
			}
		}
	}
	return ""
}

func joinHistory(history []Turn) string {
	if len(history) == 0 {
		return ""
	}
	bodies := make([]string, 0, len(history))
	for _, t := range history {
		bodies = append(bodies, t.Body)
	}
	return strings.Join(bodies, " ")
}
