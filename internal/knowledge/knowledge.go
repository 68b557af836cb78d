// Package knowledge holds the static business knowledge the concierge
// leans on: brand contact details and the system prompt handed to the
// language model. Pricing math lives in internal/pricing; this package
// only carries the prose the model sees.
package knowledge

import "strings"

// Brand describes one cleaning brand the concierge can answer for.
type Brand struct {
	Name         string
	Phone        string
	Email        string
	Website      string
	BookingURL   string
	DashboardURL string
}

var brands = map[string]Brand{
	"brooklyn maids": {
		Name:         "Brooklyn Maids",
		Phone:        "(347) 750-4380",
		Email:        "hello@brooklynmaids.com",
		Website:      "https://brooklynmaids.com",
		BookingURL:   "https://brooklynmaids.com/booking",
		DashboardURL: "https://brooklynmaids.com/customer-dashboard",
	},
	"mesa maids": {
		Name:         "Mesa Maids",
		Phone:        "(480) 520-0202",
		Email:        "hello@mesamaids.com",
		Website:      "https://mesamaids.com",
		BookingURL:   "https://mesamaids.com/booking",
		DashboardURL: "https://mesamaids.com/customer-dashboard",
	},
	"st. louis maids": {
		Name:         "St. Louis Maids",
		Phone:        "(314) 310-0970",
		Email:        "hello@stlouismaids.com",
		Website:      "https://stlouismaids.com",
		BookingURL:   "https://stlouismaids.com/booking",
		DashboardURL: "https://stlouismaids.com/customer-dashboard",
	},
}

// DefaultBrand is used when configuration names no brand or names an
// unknown one.
var DefaultBrand = brands["brooklyn maids"]

// BrandByName looks up a brand case-insensitively. The boolean reports
// whether the name matched a known brand; on a miss the default brand
// is returned so callers always have usable contact info.
func BrandByName(name string) (Brand, bool) {
	b, ok := brands[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return DefaultBrand, false
	}
	return b, true
}
