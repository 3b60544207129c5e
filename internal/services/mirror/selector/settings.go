package selector

import (
	"encoding/json"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
)

// Settings keys read by the storefront.
const (
	KeySquareApplicationID    = "SQUARE_APPLICATION_ID"
	KeySquareLocation         = "SQUARE_LOCATION"
	KeyDefaultFulfillmentID   = "DEFAULT_FULFILLMENTID"
	KeyAllowAdvanced          = "ALLOW_ADVANCED"
	KeyServiceCharge          = "SERVICE_CHARGE"
	KeyDeliveryLink           = "DELIVERY_LINK"
	KeyTipPreamble            = "TIP_PREAMBLE"
	KeyTaxRate                = "TAX_RATE"
	KeyAutogratThreshold      = "AUTOGRAT_THRESHOLD"
	KeyMessageRequestVegan    = "MESSAGE_REQUEST_VEGAN"
	KeyMessageRequestHalf     = "MESSAGE_REQUEST_HALF"
	KeyMessageRequestWellDone = "MESSAGE_REQUEST_WELLDONE"
	KeyMessageRequestSlicing  = "MESSAGE_REQUEST_SLICING"
)

// DefaultAutogratThreshold is the party size at which auto gratuity applies
// when settings do not say otherwise.
const DefaultAutogratThreshold = 5

func setting[T any](s *catalog.Settings, key string) (T, bool) {
	var zero T
	if s == nil {
		return zero, false
	}
	raw, ok := s.Config[key]
	if !ok || string(raw) == "null" {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, false
	}
	return v, true
}

func settingOr[T any](s *catalog.Settings, key string, fallback T) T {
	if v, ok := setting[T](s, key); ok {
		return v
	}
	return fallback
}

// SquareAppID returns the Square application id, or "".
func SquareAppID(s *catalog.Settings) string {
	return settingOr(s, KeySquareApplicationID, "")
}

// SquareLocationID returns the Square location id, or "".
func SquareLocationID(s *catalog.Settings) string {
	return settingOr(s, KeySquareLocation, "")
}

// DefaultFulfillmentID reports the configured default fulfillment, if any.
func DefaultFulfillmentID(s *catalog.Settings) (string, bool) {
	return setting[string](s, KeyDefaultFulfillmentID)
}

func AllowAdvanced(s *catalog.Settings) bool {
	return settingOr(s, KeyAllowAdvanced, false)
}

func GratuityServiceCharge(s *catalog.Settings) float64 {
	return settingOr(s, KeyServiceCharge, 0.0)
}

func DeliveryAreaLink(s *catalog.Settings) string {
	return settingOr(s, KeyDeliveryLink, "")
}

func TipPreamble(s *catalog.Settings) string {
	return settingOr(s, KeyTipPreamble, "")
}

func TaxRate(s *catalog.Settings) float64 {
	return settingOr(s, KeyTaxRate, 0.0)
}

// AutoGratuityThreshold defaults to DefaultAutogratThreshold.
func AutoGratuityThreshold(s *catalog.Settings) int {
	return settingOr(s, KeyAutogratThreshold, DefaultAutogratThreshold)
}

func MessageRequestVegan(s *catalog.Settings) string {
	return settingOr(s, KeyMessageRequestVegan, "")
}

func MessageRequestHalf(s *catalog.Settings) string {
	return settingOr(s, KeyMessageRequestHalf, "")
}

func MessageRequestWellDone(s *catalog.Settings) string {
	return settingOr(s, KeyMessageRequestWellDone, "")
}

func MessageRequestSlicing(s *catalog.Settings) string {
	return settingOr(s, KeyMessageRequestSlicing, "")
}

// View is the typed settings summary served to clients.
type View struct {
	SquareAppID            string  `json:"square_app_id"`
	SquareLocationID       string  `json:"square_location_id"`
	DefaultFulfillmentID   *string `json:"default_fulfillment_id"`
	AllowAdvanced          bool    `json:"allow_advanced"`
	ServiceCharge          float64 `json:"service_charge"`
	DeliveryLink           string  `json:"delivery_link"`
	TipPreamble            string  `json:"tip_preamble"`
	TaxRate                float64 `json:"tax_rate"`
	AutoGratuityThreshold  int     `json:"autograt_threshold"`
	MessageRequestVegan    string  `json:"message_request_vegan"`
	MessageRequestHalf     string  `json:"message_request_half"`
	MessageRequestWellDone string  `json:"message_request_welldone"`
	MessageRequestSlicing  string  `json:"message_request_slicing"`
}

// SettingsView reads every typed setting.
func SettingsView(s *catalog.Settings) View {
	v := View{
		SquareAppID:            SquareAppID(s),
		SquareLocationID:       SquareLocationID(s),
		AllowAdvanced:          AllowAdvanced(s),
		ServiceCharge:          GratuityServiceCharge(s),
		DeliveryLink:           DeliveryAreaLink(s),
		TipPreamble:            TipPreamble(s),
		TaxRate:                TaxRate(s),
		AutoGratuityThreshold:  AutoGratuityThreshold(s),
		MessageRequestVegan:    MessageRequestVegan(s),
		MessageRequestHalf:     MessageRequestHalf(s),
		MessageRequestWellDone: MessageRequestWellDone(s),
		MessageRequestSlicing:  MessageRequestSlicing(s),
	}
	if id, ok := DefaultFulfillmentID(s); ok {
		v.DefaultFulfillmentID = &id
	}
	return v
}
