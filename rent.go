package vaultswap

// AccountStorageOverhead is the number of bytes every account is charged
// for on top of its data.
const AccountStorageOverhead = 128

// Rent describes how much an account must hold to be exempt from storage
// reclamation.
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
}

// DefaultRent is used whenever no rent configuration was provided.
var DefaultRent = Rent{
	LamportsPerByteYear: 3480,
	ExemptionThreshold:  2.0,
}

// MinimumBalance returns the storage-exemption balance of an account
// holding dataLen bytes.
func (r Rent) MinimumBalance(dataLen int) uint64 {
	perYear := (AccountStorageOverhead + uint64(dataLen)) * r.LamportsPerByteYear
	return uint64(float64(perYear) * r.ExemptionThreshold)
}

// IsExempt returns true if given balance is enough for an account of
// dataLen bytes.
func (r Rent) IsExempt(balance uint64, dataLen int) bool {
	return balance >= r.MinimumBalance(dataLen)
}
