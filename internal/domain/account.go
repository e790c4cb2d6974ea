package domain

// AccountRole distinguishes the three marketplace parties.
type AccountRole string

const (
	AccountRoleCustomer AccountRole = "CUSTOMER"
	AccountRoleProvider AccountRole = "PROVIDER"
	AccountRoleCompany  AccountRole = "COMPANY"
)

// Account carries the payment-engine view of a user: the processor references
// needed to charge them (PayerRef) or pay them out (DestinationRef), plus the
// location used for transport-fee calculation. Profile data lives elsewhere.
type Account struct {
	ID             int64       `json:"id"`
	Role           AccountRole `json:"role"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	PayerRef       string      `json:"payer_ref"`        // processor customer reference
	DestinationRef string      `json:"destination_ref"`  // processor connected-account reference
	DeviceToken    string      `json:"device_token"`     // FCM registration token
	Latitude       float64     `json:"latitude"`
	Longitude      float64     `json:"longitude"`
}
