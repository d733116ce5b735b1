package pumpswap

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// GlobalConfig represents the global configuration account of PumpSwap.
type GlobalConfig struct {
	Admin                  solana.PublicKey
	LPFeeBasisPoints       uint64
	ProtocolFeeBasisPoints uint64
	DisableFlags           uint8
	ProtocolFeeRecipients  [8]solana.PublicKey
}

// Pool represents a PumpSwap liquidity pool account.
type Pool struct {
	PoolBump              uint8
	Index                 uint16
	Creator               solana.PublicKey
	BaseMint              solana.PublicKey
	QuoteMint             solana.PublicKey
	LPMint                solana.PublicKey
	PoolBaseTokenAccount  solana.PublicKey
	PoolQuoteTokenAccount solana.PublicKey
	LPSupply              uint64
	CoinCreator           solana.PublicKey
}

// ParseGlobalConfig parses account data into a GlobalConfig structure.
func ParseGlobalConfig(data []byte) (*GlobalConfig, error) {
	if len(data) < 8 || !bytes.Equal(data[0:8], GlobalConfigDiscriminator) {
		return nil, fmt.Errorf("invalid discriminator for GlobalConfig")
	}

	pos := 8
	if len(data) < pos+32+8+8+1+(32*8) {
		return nil, fmt.Errorf("data too short for GlobalConfig content")
	}

	config := &GlobalConfig{}
	config.Admin = solana.PublicKeyFromBytes(data[pos : pos+32])
	pos += 32
	config.LPFeeBasisPoints = binary.LittleEndian.Uint64(data[pos : pos+8])
	pos += 8
	config.ProtocolFeeBasisPoints = binary.LittleEndian.Uint64(data[pos : pos+8])
	pos += 8
	config.DisableFlags = data[pos]
	pos++
	for i := 0; i < 8; i++ {
		config.ProtocolFeeRecipients[i] = solana.PublicKeyFromBytes(data[pos : pos+32])
		pos += 32
	}

	return config, nil
}

// ParsePool parses account data into a Pool structure.
func ParsePool(data []byte) (*Pool, error) {
	if len(data) < 8 || !bytes.Equal(data[0:8], PoolDiscriminator) {
		return nil, fmt.Errorf("invalid discriminator for Pool")
	}

	pos := 8
	if len(data) < pos+1+2+(32*6)+8 {
		return nil, fmt.Errorf("data too short for Pool content")
	}

	pool := &Pool{}
	pool.PoolBump = data[pos]
	pos++
	pool.Index = binary.LittleEndian.Uint16(data[pos : pos+2])
	pos += 2
	pool.Creator = solana.PublicKeyFromBytes(data[pos : pos+32])
	pos += 32
	pool.BaseMint = solana.PublicKeyFromBytes(data[pos : pos+32])
	pos += 32
	pool.QuoteMint = solana.PublicKeyFromBytes(data[pos : pos+32])
	pos += 32
	pool.LPMint = solana.PublicKeyFromBytes(data[pos : pos+32])
	pos += 32
	pool.PoolBaseTokenAccount = solana.PublicKeyFromBytes(data[pos : pos+32])
	pos += 32
	pool.PoolQuoteTokenAccount = solana.PublicKeyFromBytes(data[pos : pos+32])
	pos += 32
	pool.LPSupply = binary.LittleEndian.Uint64(data[pos : pos+8])
	pos += 8

	// Newer pools append the coin creator; older layouts stop at the LP
	// supply, in which case the pool creator stands in.
	if len(data) >= pos+32 {
		pool.CoinCreator = solana.PublicKeyFromBytes(data[pos : pos+32])
	} else {
		pool.CoinCreator = pool.Creator
	}

	return pool, nil
}

// parseTokenAmount reads the balance out of a raw SPL token account:
// mint (32), owner (32), amount (u64 LE).
func parseTokenAmount(data []byte) (uint64, error) {
	if len(data) < 72 {
		return 0, fmt.Errorf("token account data too short: %d bytes", len(data))
	}
	return binary.LittleEndian.Uint64(data[64:72]), nil
}
