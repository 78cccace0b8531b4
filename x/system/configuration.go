package system

import (
	"math"

	"github.com/gogo/protobuf/proto"
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
	"github.com/vaultswap/vaultswap/gconf"
)

const packageName = "system"

// Configuration holds the rent parameters. It is stored as a gconf
// singleton.
type Configuration struct {
	// Price of a single byte of account storage for one year.
	LamportsPerByteYear uint64 `protobuf:"varint,1,opt,name=lamports_per_byte_year,json=lamportsPerByteYear,proto3" json:"lamports_per_byte_year,omitempty"`
	// Number of years of rent an account must hold to be exempt.
	ExemptionThreshold float64 `protobuf:"fixed64,2,opt,name=exemption_threshold,json=exemptionThreshold,proto3" json:"exemption_threshold,omitempty"`
}

func (m *Configuration) Reset()         { *m = Configuration{} }
func (m *Configuration) String() string { return proto.CompactTextString(m) }
func (*Configuration) ProtoMessage()    {}

var _ gconf.Configuration = (*Configuration)(nil)

// Validate ensures the rent parameters are usable.
func (m *Configuration) Validate() error {
	if math.IsNaN(m.ExemptionThreshold) || math.IsInf(m.ExemptionThreshold, 0) {
		return errors.Wrap(errors.ErrInput, "exemption threshold must be a finite number")
	}
	if m.ExemptionThreshold < 0 {
		return errors.Wrap(errors.ErrInput, "exemption threshold must not be negative")
	}
	return nil
}

// Rent returns the rent parameters described by this configuration.
func (m *Configuration) Rent() vaultswap.Rent {
	return vaultswap.Rent{
		LamportsPerByteYear: m.LamportsPerByteYear,
		ExemptionThreshold:  m.ExemptionThreshold,
	}
}

// SaveConfig validates and stores the rent configuration.
func SaveConfig(db gconf.Store, conf *Configuration) error {
	return gconf.Save(db, packageName, conf)
}

// LoadRent returns the rent parameters stored in the database, or
// vaultswap.DefaultRent if no configuration was saved.
func LoadRent(db gconf.ReadStore) (vaultswap.Rent, error) {
	var conf Configuration
	switch err := gconf.Load(db, packageName, &conf); {
	case err == nil:
		return conf.Rent(), nil
	case errors.ErrNotFound.Is(err):
		return vaultswap.DefaultRent, nil
	default:
		return vaultswap.Rent{}, errors.Wrap(err, "rent configuration")
	}
}
