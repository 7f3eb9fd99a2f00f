// Package broker models the cost side of a fill: per-profile
// commissions, lot rounding and share availability. Profiles mirror
// real retail brokerages; picking an unknown one is a configuration
// error and aborts the run.
package broker

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type Profile string

const (
	IBTiered    Profile = "ib_tiered"
	IBCFD       Profile = "ib_cfd"
	IBCFDStrict Profile = "ib_cfd_strict"
	Fondexx     Profile = "fondexx"
)

var ErrUnknownProfile = errors.New("unsupported broker profile")

// Profiles lists every supported profile id.
func Profiles() []Profile {
	return []Profile{IBTiered, IBCFD, IBCFDStrict, Fondexx}
}

// Per-share ECN and exchange fees added on top of the base commission
// for profiles that pass them through.
var defaultMarketFees = decimal.RequireFromString("0.004")

var (
	tieredPerShare = decimal.RequireFromString("0.0035")
	tieredMinimum  = decimal.RequireFromString("0.35")
	cfdPerShare    = decimal.RequireFromString("0.005")
	cfdMinimum     = decimal.RequireFromString("1.0")
	fondexxShare   = decimal.RequireFromString("0.003")
)

// Broker computes commissions and adjusts volumes for one profile.
type Broker struct {
	profile Profile
	cfdList *Availability
}

func New(profile Profile) (*Broker, error) {
	switch profile {
	case IBTiered, IBCFD, IBCFDStrict, Fondexx:
		return &Broker{profile: profile}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, profile)
}

func (b *Broker) Profile() Profile { return b.profile }

// SetAvailability installs the CFD share list consulted by the strict
// profile.
func (b *Broker) SetAvailability(a *Availability) { b.cfdList = a }

// Commission prices a fill of volume shares at the given price.
// The fee schedules are exact decimal amounts; the result is converted
// to float64 only at the boundary. For every profile the commission is
// monotonically non-decreasing in volume at fixed price, which the
// affordable-volume walk below relies on to terminate.
func (b *Broker) Commission(volume int, price float64) float64 {
	v := decimal.NewFromInt(int64(volume))

	var comm decimal.Decimal
	switch b.profile {
	case IBTiered:
		comm = decimal.Max(tieredMinimum, v.Mul(tieredPerShare))
		notional := v.Mul(decimal.NewFromFloat(price))
		comm = decimal.Min(comm, notional)
		comm = comm.Add(v.Mul(defaultMarketFees))
	case IBCFD, IBCFDStrict:
		comm = decimal.Max(cfdMinimum, v.Mul(cfdPerShare))
	case Fondexx:
		comm = v.Mul(fondexxShare.Add(defaultMarketFees))
	}

	return comm.InexactFloat64()
}

// LotVolume rounds a requested volume down to the profile's lot unit.
func (b *Broker) LotVolume(volume int) int {
	if b.profile == Fondexx {
		return (volume / 100) * 100
	}
	return volume
}

// Available reports whether a ticker can be traded on this profile.
// Only the strict CFD profile filters; without a loaded list it lets
// everything through.
func (b *Broker) Available(ticker string) bool {
	if b.profile != IBCFDStrict || b.cfdList == nil {
		return true
	}
	return b.cfdList.Contains(ticker)
}

// MaxAffordableVolume finds the largest volume whose notional plus
// commission fits the budget, starting from floor(budget/price) and
// walking down.
func (b *Broker) MaxAffordableVolume(budget, price float64) int {
	if price <= 0 || budget <= 0 {
		return 0
	}

	volume := int(budget / price)
	for volume > 0 && float64(volume)*price+b.Commission(volume, price) > budget {
		volume--
	}
	return volume
}
