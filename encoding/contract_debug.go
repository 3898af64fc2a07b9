//go:build modbusdebug

package encoding

const defaultContractMode = ContractPanic
