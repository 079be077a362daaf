package license

import (
	"fmt"

	"autonaver/internal/machineid"
	"autonaver/internal/registry"
)

// Status is the outcome of a verification.
type Status string

const (
	StatusUnregistered Status = "UNREGISTERED"
	StatusActive       Status = "ACTIVE"
	StatusExpired      Status = "EXPIRED"
	StatusUnreachable  Status = "UNREACHABLE"
)

// ExpiryLayout is the registry's expiry date format. Sellers also type
// dates without zero padding, which expiryLayouts accepts.
const ExpiryLayout = "2006-01-02"

var expiryLayouts = []string{ExpiryLayout, "2006-1-2"}

// shortIDLength is how much of the identifier the success message shows.
const shortIDLength = 16

const (
	msgUnreachable = "구매자 정보를 불러올 수 없습니다. 인터넷 연결을 확인해주세요."
	msgMalformed   = "머신 ID 형식이 올바르지 않습니다."
)

func activeMessage(buyer registry.BuyerRecord, id machineid.ID) string {
	return fmt.Sprintf("인증 성공\n구매자: %s\n머신 ID: %s...", buyer.Name, id.Short(shortIDLength))
}

func expiredMessage(buyer registry.BuyerRecord) string {
	return fmt.Sprintf("라이선스가 만료되었습니다.\n구매자: %s\n만료일: %s", buyer.Name, buyer.ExpiryDate)
}

func unregisteredMessage(id machineid.ID) string {
	return fmt.Sprintf("등록되지 않은 컴퓨터입니다.\n현재 머신 ID: %s\n\n구매 후 머신 ID를 등록해주세요.", id)
}

// Result is what Verify reports to the host application.
type Result struct {
	Status    Status
	Message   string
	MachineID machineid.ID
	// Buyer is set for ACTIVE and EXPIRED.
	Buyer *registry.BuyerRecord

	err error
}

// Authorized reports whether the application may run.
func (r Result) Authorized() bool {
	return r.Status == StatusActive
}

// Err returns nil for ACTIVE and a sentinel-wrapping error otherwise.
func (r Result) Err() error {
	return r.err
}
