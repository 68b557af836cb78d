// Package pricing computes cleaning quotes from structured intent.
// All math is whole dollars against fixed rate tables; nothing here
// does I/O or carries state.
package pricing

import (
	"errors"

	"github.com/brooklynmaids/sms-concierge/internal/intent"
)

// ErrManualQuote means the property falls outside the rate tables and
// a human has to price it. Callers must treat this as a distinct
// outcome, never as a zero or default price.
var ErrManualQuote = errors.New("pricing: property size requires a manual quote")

// Frequency is how often a recurring customer wants service.
type Frequency string

const (
	FrequencyOneTime  Frequency = "one-time"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "bi-weekly"
	FrequencyMonthly  Frequency = "monthly"
)

var bedroomRates = map[string]int{
	intent.BedroomsStudio: 70,
	"1":                   80,
	"2":                   120,
	"3":                   160,
	"4":                   200,
	"5":                   240,
	"6":                   280,
}

var bathroomRates = map[string]int{
	"1":   80,
	"1.5": 100,
	"2":   120,
	"2.5": 140,
	"3":   160,
	"4":   200,
	"5":   240,
	"6":   280,
}

var serviceSurcharges = map[intent.ServiceType]int{
	intent.ServiceStandard:  0,
	intent.ServiceDeep:      100,
	intent.ServiceSuper:     250,
	intent.ServiceMoveInOut: 150,
}

var addonPrices = map[intent.Addon]int{
	intent.AddonInsideFridge:    40,
	intent.AddonInsideOven:      40,
	intent.AddonInsideMicrowave: 20,
	intent.AddonInteriorWindows: 30,
	intent.AddonLaundry:         30,
	intent.AddonDishes:          40,
	intent.AddonRoomCabinets:    40,
	intent.AddonKitchenCabinets: 40,
	intent.AddonBasement:        100,
	intent.AddonPetHair:         20,
	intent.AddonOrganization:    40,
	intent.AddonExtraHour:       80,
	intent.AddonWasherDryer:     80,
	intent.AddonBaseboards:      40,
	intent.AddonWallStains:      20,
	intent.AddonTileGrout:       40,
	intent.AddonHardwood:        40,
	intent.AddonOffice:          50,
	intent.AddonTownhouse:       100,
	intent.AddonStairs:          100,
}

// Price returns the one-time total in dollars for an intent:
// bedroom rate + bathroom rate + service surcharge + add-ons.
// Returns ErrManualQuote when either room count is off the tables,
// including sizes the extractor resolved but no rate exists for.
func Price(in intent.Intent) (int, error) {
	bed, ok := bedroomRates[in.Bedrooms]
	if !ok {
		return 0, ErrManualQuote
	}
	bath, ok := bathroomRates[in.Bathrooms]
	if !ok {
		return 0, ErrManualQuote
	}

	total := bed + bath + serviceSurcharges[in.Service]
	for _, a := range in.Addons {
		total += addonPrices[a]
	}
	return total, nil
}

// Discount applies recurring and first-time discounts to a one-time
// total. Percentage discounts round to the nearest dollar and apply
// before flat ones.
func Discount(total int, freq Frequency, firstTime bool) int {
	switch freq {
	case FrequencyWeekly:
		total = (total*90 + 50) / 100
	case FrequencyBiweekly:
		total = (total*95 + 50) / 100
	case FrequencyMonthly:
		total -= 10
	}
	if firstTime {
		total -= 25
	}
	if total < 0 {
		total = 0
	}
	return total
}

// AddonPrice reports the fixed price for a single add-on, zero for
// unknown kinds.
func AddonPrice(a intent.Addon) int {
	return addonPrices[a]
}
