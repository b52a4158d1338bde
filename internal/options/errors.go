package options

import "errors"

var (
	ErrContractNotFound = errors.New("contract not found")
	ErrInvalidState     = errors.New("invalid contract state")
	ErrExpiredContract  = errors.New("contract has expired")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrZeroQuantity     = errors.New("contract quantity is zero")
	ErrInvalidMargin    = errors.New("invalid margin")
	ErrQuantityExceeded = errors.New("requirement quantity exceeds contract quantity")
)
