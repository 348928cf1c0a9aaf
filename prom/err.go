package prom

import (
	"errors"

	"github.com/ezrec/promdump/translate"
)

var f = translate.From

var (
	ErrChunkSize    = errors.New(f("chunk size must be positive"))
	ErrLogicalWidth = errors.New(f("logical address width out of range"))
	ErrStart        = errors.New(f("start address beyond the top address"))
	ErrUpperBound   = errors.New(f("source has no addressable bytes"))
)
