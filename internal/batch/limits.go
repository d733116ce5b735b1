package batch

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Protocol hard limits for one transaction.
const (
	MaxTransactionSize  = 1232
	MaxUniqueAccounts   = 64
	signatureSize       = 64
	accountKeySize      = 32
	perInstructionExtra = 4
	// Message header, blockhash and compact-array framing. Rounded up;
	// the estimate must never pass something the network would reject.
	messageOverhead = 100
)

// TransactionLimits reports whether a candidate instruction set fits in
// one transaction. Reasons lists every violated constraint; both limits
// can be violated at once.
type TransactionLimits struct {
	CanFit             bool
	EstimatedSizeBytes int
	UniqueAccountCount int
	Reasons            []string
}

// EstimateLimits approximates the serialized size and unique account
// count of a transaction carrying the given instructions and signers.
// It is a conservative estimator, not a byte-exact serializer.
func EstimateLimits(instructions []solana.Instruction, signers []solana.PublicKey) TransactionLimits {
	unique := make(map[solana.PublicKey]struct{})
	for _, signer := range signers {
		unique[signer] = struct{}{}
	}

	size := signatureSize*len(signers) + messageOverhead
	for _, instruction := range instructions {
		unique[instruction.ProgramID()] = struct{}{}
		accounts := instruction.Accounts()
		for _, account := range accounts {
			unique[account.PublicKey] = struct{}{}
		}

		data, err := instruction.Data()
		if err != nil {
			// Unencodable data cannot be sized; treat it as oversized
			// so the caller re-plans instead of submitting blind.
			return TransactionLimits{
				CanFit:  false,
				Reasons: []string{fmt.Sprintf("instruction data unavailable: %v", err)},
			}
		}
		size += len(data) + perInstructionExtra + len(accounts)
	}
	size += accountKeySize * len(unique)

	limits := TransactionLimits{
		EstimatedSizeBytes: size,
		UniqueAccountCount: len(unique),
	}
	if size > MaxTransactionSize {
		limits.Reasons = append(limits.Reasons,
			fmt.Sprintf("estimated size %d exceeds %d byte limit", size, MaxTransactionSize))
	}
	if len(unique) > MaxUniqueAccounts {
		limits.Reasons = append(limits.Reasons,
			fmt.Sprintf("unique account count %d exceeds %d account limit", len(unique), MaxUniqueAccounts))
	}
	limits.CanFit = len(limits.Reasons) == 0
	return limits
}
