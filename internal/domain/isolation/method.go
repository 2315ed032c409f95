package isolation

import "github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"

// Method selects the mechanism used to restrict a customer's access on the
// router. Exactly one method is active per isolate/reopen call.
type Method string

const (
	// MethodAddressList adds the customer's IP to a firewall address list.
	MethodAddressList Method = "address_list"
	// MethodProfile swaps the PPP secret to a restricted profile.
	MethodProfile Method = "profile"
	// MethodDisable disables the PPP secret outright.
	MethodDisable Method = "disable"
)

// ParseMethod validates a configured method string
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodAddressList, MethodProfile, MethodDisable:
		return Method(s), nil
	default:
		return "", shared.NewDomainError("INVALID_ISOLATION_METHOD", "Isolation method must be 'address_list', 'profile' or 'disable'")
	}
}
