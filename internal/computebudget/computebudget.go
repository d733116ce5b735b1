// Package computebudget builds ComputeBudget program instructions that
// are prepended to every batch transaction.
package computebudget

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var ProgramID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")

const (
	SetComputeUnitLimit uint8 = 2
	SetComputeUnitPrice uint8 = 3
)

const (
	// DefaultUnits covers a couple of simple instructions.
	DefaultUnits uint32 = 200_000
	// BatchUnits covers a full batch of mixed operations.
	BatchUnits uint32 = 1_000_000
)

// Config selects the compute budget of one transaction.
type Config struct {
	Units     uint32
	UnitPrice uint64 // micro-lamports per compute unit
}

// NewDefaultConfig returns the budget applied when the caller configures
// nothing.
func NewDefaultConfig() Config {
	return Config{
		Units:     BatchUnits,
		UnitPrice: 1_000,
	}
}

// BuildInstructions creates the unit-limit and, when a price is set, the
// unit-price instructions.
func BuildInstructions(config Config) ([]solana.Instruction, error) {
	if config.Units == 0 {
		config = NewDefaultConfig()
	}

	var instructions []solana.Instruction

	limitInstruction, err := buildInstruction(SetComputeUnitLimit, config.Units)
	if err != nil {
		return nil, fmt.Errorf("failed to build compute unit limit instruction: %w", err)
	}
	instructions = append(instructions, limitInstruction)

	if config.UnitPrice > 0 {
		priceInstruction, err := buildInstruction(SetComputeUnitPrice, config.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to build compute unit price instruction: %w", err)
		}
		instructions = append(instructions, priceInstruction)
	}

	return instructions, nil
}

func buildInstruction(tag uint8, value any) (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, tag); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, value); err != nil {
		return nil, err
	}
	return solana.NewInstruction(ProgramID, []*solana.AccountMeta{}, buf.Bytes()), nil
}
