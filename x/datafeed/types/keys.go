package types

import (
	"github.com/ethereum/go-ethereum/common"
)

const (
	// ModuleName defines the module name
	ModuleName = "datafeed"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName
)

var (
	// ParamsKey is the key for module parameters
	ParamsKey = []byte{0x01}

	// DataFeedKeyPrefix is the prefix for packed beacon and beacon set records
	DataFeedKeyPrefix = []byte{0x02}

	// DapiNameKeyPrefix is the prefix for dAPI name hash -> data feed ID
	DapiNameKeyPrefix = []byte{0x03}

	// OevBeneficiaryKeyPrefix is the prefix for data feed ID -> OEV beneficiary
	OevBeneficiaryKeyPrefix = []byte{0x04}

	// ProxyKeyPrefix is the prefix for deployed proxy address -> binding
	ProxyKeyPrefix = []byte{0x05}
)

func prefixed(prefix []byte, key []byte) []byte {
	out := make([]byte, 0, len(prefix)+len(key))
	return append(append(out, prefix...), key...)
}

// DataFeedKey returns the store key of a beacon or beacon set record.
func DataFeedKey(dataFeedID common.Hash) []byte {
	return prefixed(DataFeedKeyPrefix, dataFeedID.Bytes())
}

// DapiNameKey returns the store key of a dAPI name hash.
func DapiNameKey(dapiNameHash common.Hash) []byte {
	return prefixed(DapiNameKeyPrefix, dapiNameHash.Bytes())
}

// OevBeneficiaryKey returns the store key of a data feed's OEV beneficiary.
func OevBeneficiaryKey(dataFeedID common.Hash) []byte {
	return prefixed(OevBeneficiaryKeyPrefix, dataFeedID.Bytes())
}

// ProxyKey returns the store key of a deployed proxy.
func ProxyKey(proxy common.Address) []byte {
	return prefixed(ProxyKeyPrefix, proxy.Bytes())
}
