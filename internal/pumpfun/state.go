package pumpfun

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// BondingCurveState is the decoded on-chain bonding curve account.
type BondingCurveState struct {
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
	Creator              solana.PublicKey
}

// GlobalState is the decoded global configuration account of the program.
type GlobalState struct {
	Initialized    bool
	Authority      solana.PublicKey
	FeeRecipient   solana.PublicKey
	FeeBasisPoints uint64
}

const bondingCurveStateLen = 8 + 5*8 + 1 + 32

// ParseBondingCurveState decodes the fixed layout of a bonding curve
// account: 8-byte discriminator, five u64 LE fields, a completion flag
// and the creator pubkey.
func ParseBondingCurveState(data []byte) (*BondingCurveState, error) {
	if len(data) < bondingCurveStateLen {
		return nil, fmt.Errorf("bonding curve data too short: %d bytes", len(data))
	}

	pos := 8 // skip account discriminator

	state := &BondingCurveState{}
	state.VirtualTokenReserves = binary.LittleEndian.Uint64(data[pos : pos+8])
	pos += 8
	state.VirtualSolReserves = binary.LittleEndian.Uint64(data[pos : pos+8])
	pos += 8
	state.RealTokenReserves = binary.LittleEndian.Uint64(data[pos : pos+8])
	pos += 8
	state.RealSolReserves = binary.LittleEndian.Uint64(data[pos : pos+8])
	pos += 8
	state.TokenTotalSupply = binary.LittleEndian.Uint64(data[pos : pos+8])
	pos += 8
	state.Complete = data[pos] != 0
	pos++
	state.Creator = solana.PublicKeyFromBytes(data[pos : pos+32])

	return state, nil
}

// ParseGlobalState decodes the global account: 8-byte discriminator,
// initialized flag, authority and fee recipient pubkeys, fee basis
// points.
func ParseGlobalState(data []byte) (*GlobalState, error) {
	if len(data) < 8+1+64 {
		return nil, fmt.Errorf("global account data too short: %d bytes", len(data))
	}

	state := &GlobalState{}
	state.Initialized = data[8] != 0
	state.Authority = solana.PublicKeyFromBytes(data[9:41])
	state.FeeRecipient = solana.PublicKeyFromBytes(data[41:73])
	if len(data) >= 81 {
		state.FeeBasisPoints = binary.LittleEndian.Uint64(data[73:81])
	}

	return state, nil
}
